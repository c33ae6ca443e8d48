package table

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/mesa-pedidos/internal/infrastructure/storage"
	"github.com/your-org/mesa-pedidos/internal/pkg/logger"
)

func newTestStore(kv storage.KV, now time.Time) *Store {
	return NewStore(kv, Options{Now: func() time.Time { return now }}, logger.Discard())
}

func TestLoad_Expiration(t *testing.T) {
	now := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		age    time.Duration
		expect bool
	}{
		{"three hours old is valid", 3 * time.Hour, true},
		{"five hours old is absent", 5 * time.Hour, false},
		{"exactly four hours is absent", 4 * time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			kv := storage.NewMemory()
			require.NoError(t, storage.SetJSON(ctx, kv, storage.KeyTable, Session{Number: 7, AcquiredAt: now.Add(-tt.age)}))

			got := newTestStore(kv, now).Load(ctx)
			if tt.expect {
				require.NotNil(t, got)
				assert.Equal(t, 7, got.Number)
			} else {
				assert.Nil(t, got)
				_, err := kv.Get(ctx, storage.KeyTable)
				assert.ErrorIs(t, err, storage.ErrNotFound)
			}
		})
	}
}

func TestLoad_MalformedIsAbsent(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	require.NoError(t, kv.Set(ctx, storage.KeyTable, "{oops"))

	store := newTestStore(kv, time.Now())
	assert.Nil(t, store.Load(ctx))
	assert.Nil(t, store.Current())
}

func TestLoad_OutOfRangeIsAbsent(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	now := time.Now()
	require.NoError(t, storage.SetJSON(ctx, kv, storage.KeyTable, Session{Number: 99, AcquiredAt: now}))

	assert.Nil(t, newTestStore(kv, now).Load(ctx))
}

func TestSetTable(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	now := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	store := newTestStore(kv, now)

	for _, n := range []int{0, -1, 51} {
		_, err := store.SetTable(ctx, n)
		assert.ErrorIs(t, err, ErrInvalidTableNumber, "table %d", n)
	}
	assert.Nil(t, store.Current())

	sess, err := store.SetTable(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, sess.Number)
	assert.Equal(t, now, sess.AcquiredAt)

	// a fresh store sees the persisted session
	reloaded := newTestStore(kv, now.Add(time.Hour)).Load(ctx)
	require.NotNil(t, reloaded)
	assert.Equal(t, 5, reloaded.Number)
}

func TestSetTable_RescanRefreshesTimestamp(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	start := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

	_, err := newTestStore(kv, start).SetTable(ctx, 5)
	require.NoError(t, err)

	later := start.Add(3*time.Hour + 30*time.Minute)
	_, err = newTestStore(kv, later).SetTable(ctx, 5)
	require.NoError(t, err)

	// 4h30 after the first scan, but only 1h after the second
	got := newTestStore(kv, start.Add(4*time.Hour+30*time.Minute)).Load(ctx)
	require.NotNil(t, got)
	assert.Equal(t, later, got.AcquiredAt)
}

func TestClearTable(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	store := newTestStore(kv, time.Now())

	_, err := store.SetTable(ctx, 3)
	require.NoError(t, err)
	require.NoError(t, store.ClearTable(ctx))

	assert.Nil(t, store.Current())
	assert.Nil(t, store.Load(ctx))
}

func TestParseNumber(t *testing.T) {
	n, err := ParseNumber(" 05 ", 50)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	for _, raw := range []string{"", "abc", "0", "51", "4.5", "-2"} {
		_, err := ParseNumber(raw, 50)
		assert.ErrorIs(t, err, ErrInvalidTableNumber, raw)
	}
}
