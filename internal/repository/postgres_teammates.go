package repository

import (
	"context"
	"database/sql"
	"fmt"

	"renova-rooms/internal/domain"

	"github.com/google/uuid"
)

// PostgresTeammatesRepository teammates 表实现
// items 镜像列表存 JSONB
type PostgresTeammatesRepository struct {
	db *sql.DB
}

func NewPostgresTeammatesRepository(db *sql.DB) *PostgresTeammatesRepository {
	return &PostgresTeammatesRepository{db: db}
}

func (r *PostgresTeammatesRepository) FindTeammate(ctx context.Context, teammateID string) (*domain.Teammate, error) {
	if teammateID == "" {
		return nil, nil
	}
	q := `
		SELECT teammate_id::text, teammate_name, items
		FROM teammates
		WHERE teammate_id = $1
	`
	var t domain.Teammate
	var items []byte
	err := r.db.QueryRowContext(ctx, q, teammateID).Scan(&t.TeammateID, &t.TeammateName, &items)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	refs, err := unmarshalRefs(items)
	if err != nil {
		return nil, err
	}
	t.Items = refs
	return &t, nil
}

func (r *PostgresTeammatesRepository) ListTeammates(ctx context.Context) ([]*domain.Teammate, error) {
	q := `
		SELECT teammate_id::text, teammate_name, items
		FROM teammates
		ORDER BY teammate_id
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Teammate{}
	for rows.Next() {
		var t domain.Teammate
		var items []byte
		if err := rows.Scan(&t.TeammateID, &t.TeammateName, &items); err != nil {
			return nil, err
		}
		refs, err := unmarshalRefs(items)
		if err != nil {
			return nil, err
		}
		t.Items = refs
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (r *PostgresTeammatesRepository) CreateTeammate(ctx context.Context, teammate *domain.Teammate) (string, error) {
	items, err := marshalRefs(teammate.Items)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	q := `
		INSERT INTO teammates (teammate_id, teammate_name, items)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, q, id, teammate.TeammateName, items); err != nil {
		return "", fmt.Errorf("insert teammate: %w", err)
	}
	return id, nil
}

func (r *PostgresTeammatesRepository) SaveTeammate(ctx context.Context, teammate *domain.Teammate) error {
	items, err := marshalRefs(teammate.Items)
	if err != nil {
		return err
	}
	q := `
		UPDATE teammates
		SET teammate_name = $2, items = $3, updated_at = NOW()
		WHERE teammate_id = $1
	`
	res, err := r.db.ExecContext(ctx, q, teammate.TeammateID, teammate.TeammateName, items)
	if err != nil {
		return fmt.Errorf("update teammate: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update teammate: %s not found", teammate.TeammateID)
	}
	return nil
}
