package ratelimit_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/hollowayclinic/intake/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func TestLimiter_FifthAllowedSixthRejected(t *testing.T) {
	// The boundary is count-before-insert: exactly max submissions pass,
	// the next one is the first denial.
	store := ratelimit.NewMemoryStore()
	limiter := ratelimit.NewLimiter(store, 5, 1*time.Hour, testLogger())
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		allowed, err := limiter.Allow(ctx, "203.0.113.42")
		require.NoError(t, err)
		assert.True(t, allowed, "submission %d should be allowed", i)
	}

	allowed, err := limiter.Allow(ctx, "203.0.113.42")
	require.NoError(t, err)
	assert.False(t, allowed, "6th submission within the window must be rejected")
}

func TestLimiter_DenialRecordsNothing(t *testing.T) {
	store := ratelimit.NewMemoryStore()
	limiter := ratelimit.NewLimiter(store, 2, 1*time.Hour, testLogger())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, _ := limiter.Allow(ctx, "client")
		require.True(t, allowed)
	}
	for i := 0; i < 10; i++ {
		allowed, _ := limiter.Allow(ctx, "client")
		require.False(t, allowed)
	}

	// Rejected requests must not have grown the stored record.
	count, err := store.Tally(ctx, "client", time.Now().Add(-1*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestLimiter_IdentitiesAreIndependent(t *testing.T) {
	store := ratelimit.NewMemoryStore()
	limiter := ratelimit.NewLimiter(store, 1, 1*time.Hour, testLogger())
	ctx := context.Background()

	allowed, _ := limiter.Allow(ctx, "198.51.100.1")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow(ctx, "198.51.100.1")
	assert.False(t, allowed)

	allowed, _ = limiter.Allow(ctx, "198.51.100.2")
	assert.True(t, allowed, "a different identity has its own window")
}

func TestLimiter_WindowExpiryFreesSlots(t *testing.T) {
	store := ratelimit.NewMemoryStore()
	ctx := context.Background()

	// Seed a timestamp older than the window directly.
	require.NoError(t, store.Record(ctx, "client", time.Now().Add(-2*time.Hour)))

	limiter := ratelimit.NewLimiter(store, 1, 1*time.Hour, testLogger())
	allowed, err := limiter.Allow(ctx, "client")
	require.NoError(t, err)
	assert.True(t, allowed, "entries outside the window are pruned, not counted")
}

// failingStore errors on every call to exercise the fail-open path.
type failingStore struct{}

func (failingStore) Tally(ctx context.Context, key string, cutoff time.Time) (int, error) {
	return 0, errors.New("store unavailable")
}

func (failingStore) Record(ctx context.Context, key string, at time.Time) error {
	return errors.New("store unavailable")
}

func TestLimiter_StoreErrorFailsOpen(t *testing.T) {
	limiter := ratelimit.NewLimiter(failingStore{}, 5, 1*time.Hour, testLogger())

	allowed, err := limiter.Allow(context.Background(), "client")
	require.Error(t, err, "the store error is surfaced for logging")
	assert.True(t, allowed, "store outages must not block legitimate submitters")
}

func TestMemoryStore_PruneDropsEmptyKeys(t *testing.T) {
	store := ratelimit.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, "client", time.Now().Add(-2*time.Hour)))

	count, err := store.Tally(ctx, "client", time.Now().Add(-1*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, count)
}
