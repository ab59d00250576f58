package activity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines data access for the activity log.
type Repository interface {
	Insert(ctx context.Context, e Entry) error
	Timeline(ctx context.Context, f Filters, limit, offset int) ([]Entry, error)
	Purge(ctx context.Context, before time.Time) (int64, error)
}

// PGRepository stores activity entries in Postgres.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Insert appends one entry.
func (r *PGRepository) Insert(ctx context.Context, e Entry) error {
	const query = `
		INSERT INTO activity_log (actor, action, module, detail, ip, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query, e.Actor, e.Action, e.Module, e.Detail, e.IP, e.OccurredAt)
	if err != nil {
		return fmt.Errorf("activity: insert: %w", err)
	}
	return nil
}

// Timeline returns entries newest first, filtered and windowed.
func (r *PGRepository) Timeline(ctx context.Context, f Filters, limit, offset int) ([]Entry, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Actor != "" {
		conds = append(conds, "actor = "+arg(f.Actor))
	}
	if f.Action != "" {
		conds = append(conds, "action = "+arg(f.Action))
	}
	if !f.From.IsZero() {
		conds = append(conds, "occurred_at >= "+arg(f.From))
	}
	if !f.To.IsZero() {
		conds = append(conds, "occurred_at <= "+arg(f.To))
	}
	query := "SELECT id, actor, action, module, detail, ip, occurred_at FROM activity_log"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY occurred_at DESC, id DESC LIMIT " + arg(limit) + " OFFSET " + arg(offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("activity: timeline: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.Module, &e.Detail, &e.IP, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("activity: scan: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Purge removes entries older than the cutoff and reports how many went.
func (r *PGRepository) Purge(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM activity_log WHERE occurred_at < $1", before)
	if err != nil {
		return 0, fmt.Errorf("activity: purge: %w", err)
	}
	return tag.RowsAffected(), nil
}
