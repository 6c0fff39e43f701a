package ratelimit

import (
	"context"
	"log/slog"
	"time"
)

// Store is the keyed timestamp store backing the submission limiter. It
// can be an in-memory map, a database table or an external cache without
// the limiter logic changing.
type Store interface {
	// Tally prunes entries for key older than cutoff and returns the
	// number of entries remaining inside the window.
	Tally(ctx context.Context, key string, cutoff time.Time) (int, error)
	// Record appends one timestamp for key.
	Record(ctx context.Context, key string, at time.Time) error
}

// Limiter caps submissions per client identity within a rolling window.
type Limiter struct {
	store  Store
	max    int
	window time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewLimiter creates a Limiter allowing max submissions per window.
func NewLimiter(store Store, max int, window time.Duration, logger *slog.Logger) *Limiter {
	return &Limiter{
		store:  store,
		max:    max,
		window: window,
		logger: logger,
		now:    time.Now,
	}
}

// Allow reports whether one more submission from identity fits inside the
// rolling window. The count is checked before insertion, so the max-th
// submission within the window is still accepted and the one after it is
// the first denial. A denied request records nothing.
//
// Store errors fail open: availability wins over enforcement. The
// decision is still true, and the error is returned so the caller can
// log it.
func (l *Limiter) Allow(ctx context.Context, identity string) (bool, error) {
	now := l.now()
	cutoff := now.Add(-l.window)

	count, err := l.store.Tally(ctx, identity, cutoff)
	if err != nil {
		return true, err
	}

	if count >= l.max {
		l.logger.Warn("submission rate limited",
			slog.String("identity", identity),
			slog.Int("count", count),
			slog.Duration("window", l.window))
		return false, nil
	}

	if err := l.store.Record(ctx, identity, now); err != nil {
		return true, err
	}
	return true, nil
}
