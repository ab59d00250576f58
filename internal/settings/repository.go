package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines data access for user preferences.
type Repository interface {
	Get(ctx context.Context, userID string) (Preferences, error)
	Save(ctx context.Context, p Preferences) error
}

// PGRepository stores preferences in Postgres.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Get returns the stored preferences, or the defaults when the user has
// never saved any.
func (r *PGRepository) Get(ctx context.Context, userID string) (Preferences, error) {
	const query = `
		SELECT theme, rows_per_page, landing_module
		FROM user_preferences
		WHERE user_id = $1`
	p := Preferences{UserID: userID}
	err := r.pool.QueryRow(ctx, query, userID).Scan(&p.Theme, &p.RowsPerPage, &p.LandingModule)
	if errors.Is(err, pgx.ErrNoRows) {
		return DefaultPreferences(userID), nil
	}
	if err != nil {
		return Preferences{}, fmt.Errorf("settings: get preferences: %w", err)
	}
	return p, nil
}

// Save inserts the preferences, retrying as an update when the row already
// exists.
func (r *PGRepository) Save(ctx context.Context, p Preferences) error {
	const insert = `
		INSERT INTO user_preferences (user_id, theme, rows_per_page, landing_module)
		VALUES ($1, $2, $3, $4)`
	_, err := r.pool.Exec(ctx, insert, p.UserID, p.Theme, p.RowsPerPage, p.LandingModule)
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return fmt.Errorf("settings: save preferences: %w", err)
	}

	const update = `
		UPDATE user_preferences
		SET theme = $2, rows_per_page = $3, landing_module = $4
		WHERE user_id = $1`
	if _, err := r.pool.Exec(ctx, update, p.UserID, p.Theme, p.RowsPerPage, p.LandingModule); err != nil {
		return fmt.Errorf("settings: update preferences: %w", err)
	}
	return nil
}
