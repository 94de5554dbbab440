package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"renova-rooms/internal/domain"

	"github.com/google/uuid"
)

// PostgresRoomsRepository rooms 表实现
// items 存 JSONB；project_id 为空字符串表示尚未挂到项目
type PostgresRoomsRepository struct {
	db *sql.DB
}

func NewPostgresRoomsRepository(db *sql.DB) *PostgresRoomsRepository {
	return &PostgresRoomsRepository{db: db}
}

func (r *PostgresRoomsRepository) FindRoom(ctx context.Context, roomID string) (*domain.Room, error) {
	if roomID == "" {
		return nil, nil
	}
	q := `
		SELECT room_id::text, room_type, room_name, surface, comment, COALESCE(project_id::text, ''), items
		FROM rooms
		WHERE room_id = $1
	`
	row := r.db.QueryRowContext(ctx, q, roomID)
	room, err := scanRoom(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return room, err
}

func (r *PostgresRoomsRepository) FindRoomsByProject(ctx context.Context, projectID string) ([]*domain.Room, error) {
	q := `
		SELECT room_id::text, room_type, room_name, surface, comment, COALESCE(project_id::text, ''), items
		FROM rooms
		WHERE project_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Room{}
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

func (r *PostgresRoomsRepository) CreateRoom(ctx context.Context, room *domain.Room) (string, error) {
	items, err := marshalItems(room.Items)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	q := `
		INSERT INTO rooms (room_id, room_type, room_name, surface, comment, project_id, items)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, '')::uuid, $7)
	`
	if _, err := r.db.ExecContext(ctx, q, id, room.RoomType, room.RoomName, room.Surface, room.Comment, room.ProjectID, items); err != nil {
		return "", fmt.Errorf("insert room: %w", err)
	}
	return id, nil
}

func (r *PostgresRoomsRepository) SaveRoom(ctx context.Context, room *domain.Room) error {
	items, err := marshalItems(room.Items)
	if err != nil {
		return err
	}
	q := `
		UPDATE rooms
		SET room_type = $2, room_name = $3, surface = $4, comment = $5,
		    project_id = NULLIF($6, '')::uuid, items = $7, updated_at = NOW()
		WHERE room_id = $1
	`
	res, err := r.db.ExecContext(ctx, q, room.RoomID, room.RoomType, room.RoomName, room.Surface, room.Comment, room.ProjectID, items)
	if err != nil {
		return fmt.Errorf("update room: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update room: %s not found", room.RoomID)
	}
	return nil
}

func (r *PostgresRoomsRepository) DeleteRoom(ctx context.Context, roomID string) (*domain.Room, error) {
	q := `
		DELETE FROM rooms
		WHERE room_id = $1
		RETURNING room_id::text, room_type, room_name, surface, comment, COALESCE(project_id::text, ''), items
	`
	row := r.db.QueryRowContext(ctx, q, roomID)
	room, err := scanRoom(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return room, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (*domain.Room, error) {
	var room domain.Room
	var items []byte
	if err := row.Scan(&room.RoomID, &room.RoomType, &room.RoomName, &room.Surface, &room.Comment, &room.ProjectID, &items); err != nil {
		return nil, err
	}
	parsed, err := unmarshalItems(items)
	if err != nil {
		return nil, err
	}
	room.Items = parsed
	return &room, nil
}

func marshalItems(items []domain.Item) ([]byte, error) {
	if items == nil {
		items = []domain.Item{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal items: %w", err)
	}
	return b, nil
}

func unmarshalItems(b []byte) ([]domain.Item, error) {
	if len(b) == 0 {
		return []domain.Item{}, nil
	}
	var items []domain.Item
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	if items == nil {
		items = []domain.Item{}
	}
	return items, nil
}
