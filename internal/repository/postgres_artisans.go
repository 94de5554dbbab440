package repository

import (
	"context"
	"database/sql"
	"fmt"

	"renova-rooms/internal/domain"

	"github.com/google/uuid"
)

// PostgresArtisansRepository artisans 表实现
type PostgresArtisansRepository struct {
	db *sql.DB
}

func NewPostgresArtisansRepository(db *sql.DB) *PostgresArtisansRepository {
	return &PostgresArtisansRepository{db: db}
}

func (r *PostgresArtisansRepository) FindArtisan(ctx context.Context, artisanID string) (*domain.Artisan, error) {
	if artisanID == "" {
		return nil, nil
	}
	q := `
		SELECT artisan_id::text, artisan_name, trade, COALESCE(phone, ''), COALESCE(email, '')
		FROM artisans
		WHERE artisan_id = $1
	`
	var a domain.Artisan
	err := r.db.QueryRowContext(ctx, q, artisanID).Scan(&a.ArtisanID, &a.ArtisanName, &a.Trade, &a.Phone, &a.Email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PostgresArtisansRepository) ListArtisans(ctx context.Context) ([]*domain.Artisan, error) {
	q := `
		SELECT artisan_id::text, artisan_name, trade, COALESCE(phone, ''), COALESCE(email, '')
		FROM artisans
		ORDER BY artisan_name
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Artisan{}
	for rows.Next() {
		var a domain.Artisan
		if err := rows.Scan(&a.ArtisanID, &a.ArtisanName, &a.Trade, &a.Phone, &a.Email); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (r *PostgresArtisansRepository) CreateArtisan(ctx context.Context, artisan *domain.Artisan) (string, error) {
	id := uuid.NewString()
	q := `
		INSERT INTO artisans (artisan_id, artisan_name, trade, phone, email)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.ExecContext(ctx, q, id, artisan.ArtisanName, artisan.Trade, artisan.Phone, artisan.Email); err != nil {
		return "", fmt.Errorf("insert artisan: %w", err)
	}
	return id, nil
}

func (r *PostgresArtisansRepository) SaveArtisan(ctx context.Context, artisan *domain.Artisan) error {
	q := `
		UPDATE artisans
		SET artisan_name = $2, trade = $3, phone = $4, email = $5, updated_at = NOW()
		WHERE artisan_id = $1
	`
	res, err := r.db.ExecContext(ctx, q, artisan.ArtisanID, artisan.ArtisanName, artisan.Trade, artisan.Phone, artisan.Email)
	if err != nil {
		return fmt.Errorf("update artisan: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update artisan: %s not found", artisan.ArtisanID)
	}
	return nil
}
