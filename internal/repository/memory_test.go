package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodewatch-systems/nodewatch/internal/models"
)

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }

func TestMemoryRepository_LatestEmpty(t *testing.T) {
	repo := NewMemoryRepository()

	reading, err := repo.Latest(context.Background())

	assert.ErrorIs(t, err, ErrNoReadings)
	assert.Nil(t, reading)
}

func TestMemoryRepository_InsertAssignsIDAndTimestamp(t *testing.T) {
	repo := NewMemoryRepository()
	fixed := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	repo.SetClock(func() time.Time { return fixed })

	reading := &models.Reading{Temperature: floatPtr(24.5), RelayOn: boolPtr(true)}
	require.NoError(t, repo.Insert(context.Background(), reading))

	assert.Equal(t, int64(1), reading.ID)
	assert.Equal(t, fixed, reading.CapturedAt)

	latest, err := repo.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), latest.ID)
	require.NotNil(t, latest.Temperature)
	assert.Equal(t, 24.5, *latest.Temperature)
	require.NotNil(t, latest.RelayOn)
	assert.True(t, *latest.RelayOn)
}

func TestMemoryRepository_Monotonicity(t *testing.T) {
	repo := NewMemoryRepository()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	repo.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	})

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		require.NoError(t, repo.Insert(ctx, &models.Reading{Humidity: floatPtr(float64(i))}))
	}

	history, err := repo.History(ctx, base, 100)
	require.NoError(t, err)
	require.Len(t, history, 10)

	for i := 1; i < len(history); i++ {
		assert.Greater(t, history[i].ID, history[i-1].ID)
		assert.True(t, history[i].CapturedAt.After(history[i-1].CapturedAt) ||
			history[i].CapturedAt.Equal(history[i-1].CapturedAt),
			"captured_at must be non-decreasing with id")
	}
}

func TestMemoryRepository_HistoryWindowAndLimit(t *testing.T) {
	repo := NewMemoryRepository()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	repo.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})

	ctx := context.Background()
	for i := 0; i < 20; i++ {
		require.NoError(t, repo.Insert(ctx, &models.Reading{Temperature: floatPtr(20)}))
	}

	t.Run("window excludes older rows", func(t *testing.T) {
		history, err := repo.History(ctx, base.Add(15*time.Minute), 100)
		require.NoError(t, err)
		assert.Len(t, history, 6) // captures at minutes 15..20
	})

	t.Run("limit keeps the newest rows ascending", func(t *testing.T) {
		history, err := repo.History(ctx, base, 5)
		require.NoError(t, err)
		require.Len(t, history, 5)
		assert.Equal(t, int64(16), history[0].ID)
		assert.Equal(t, int64(20), history[4].ID)
	})
}

func TestMemoryRepository_InsertCopiesReading(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	reading := &models.Reading{Temperature: floatPtr(21)}
	require.NoError(t, repo.Insert(ctx, reading))

	// Mutating the caller's struct after insert must not touch the
	// ledger; rows are immutable.
	reading.Temperature = floatPtr(99)

	latest, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 21.0, *latest.Temperature)
}
