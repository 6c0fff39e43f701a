package ratelimit

import (
	"context"
	"time"

	"github.com/hollowayclinic/intake/internal/database"
)

// PostgresStore backs the limiter with the rate_events table, sharing the
// service's connection pool. Pruning deletes rows older than the cutoff
// so the table stays bounded by the window.
type PostgresStore struct {
	db *database.DB
}

func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

var _ Store = (*PostgresStore)(nil)

func (s *PostgresStore) Tally(ctx context.Context, key string, cutoff time.Time) (int, error) {
	if _, err := s.db.Pool.Exec(ctx,
		`DELETE FROM rate_events WHERE identity = $1 AND occurred_at <= $2`,
		key, cutoff,
	); err != nil {
		return 0, err
	}

	var count int
	err := s.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM rate_events WHERE identity = $1 AND occurred_at > $2`,
		key, cutoff,
	).Scan(&count)
	return count, err
}

func (s *PostgresStore) Record(ctx context.Context, key string, at time.Time) error {
	_, err := s.db.Pool.Exec(ctx,
		`INSERT INTO rate_events (identity, occurred_at) VALUES ($1, $2)`,
		key, at,
	)
	return err
}
