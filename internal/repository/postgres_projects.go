package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"renova-rooms/internal/domain"

	"github.com/google/uuid"
)

// PostgresProjectsRepository projects 表实现
// rooms 引用列表存 JSONB（有序）
type PostgresProjectsRepository struct {
	db *sql.DB
}

func NewPostgresProjectsRepository(db *sql.DB) *PostgresProjectsRepository {
	return &PostgresProjectsRepository{db: db}
}

func (r *PostgresProjectsRepository) FindProject(ctx context.Context, projectID string) (*domain.Project, error) {
	if projectID == "" {
		return nil, nil
	}
	q := `
		SELECT project_id::text, project_name, rooms
		FROM projects
		WHERE project_id = $1
	`
	var p domain.Project
	var rooms []byte
	err := r.db.QueryRowContext(ctx, q, projectID).Scan(&p.ProjectID, &p.ProjectName, &rooms)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	refs, err := unmarshalRefs(rooms)
	if err != nil {
		return nil, err
	}
	p.Rooms = refs
	return &p, nil
}

func (r *PostgresProjectsRepository) CreateProject(ctx context.Context, project *domain.Project) (string, error) {
	rooms, err := marshalRefs(project.Rooms)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	q := `
		INSERT INTO projects (project_id, project_name, rooms)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, q, id, project.ProjectName, rooms); err != nil {
		return "", fmt.Errorf("insert project: %w", err)
	}
	return id, nil
}

func (r *PostgresProjectsRepository) SaveProject(ctx context.Context, project *domain.Project) error {
	rooms, err := marshalRefs(project.Rooms)
	if err != nil {
		return err
	}
	q := `
		UPDATE projects
		SET project_name = $2, rooms = $3, updated_at = NOW()
		WHERE project_id = $1
	`
	res, err := r.db.ExecContext(ctx, q, project.ProjectID, project.ProjectName, rooms)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update project: %s not found", project.ProjectID)
	}
	return nil
}

func marshalRefs(refs []string) ([]byte, error) {
	if refs == nil {
		refs = []string{}
	}
	b, err := json.Marshal(refs)
	if err != nil {
		return nil, fmt.Errorf("marshal refs: %w", err)
	}
	return b, nil
}

func unmarshalRefs(b []byte) ([]string, error) {
	if len(b) == 0 {
		return []string{}, nil
	}
	var refs []string
	if err := json.Unmarshal(b, &refs); err != nil {
		return nil, fmt.Errorf("unmarshal refs: %w", err)
	}
	if refs == nil {
		refs = []string{}
	}
	return refs, nil
}
