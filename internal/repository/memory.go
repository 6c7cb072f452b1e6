package repository

import (
	"context"
	"sync"
	"time"

	"github.com/nodewatch-systems/nodewatch/internal/models"
)

// MemoryRepository keeps the ledger in a slice. It backs tests and the
// "memory" database type for single-process development; the ledger is
// lost on restart.
type MemoryRepository struct {
	mu       sync.RWMutex
	readings []*models.Reading
	nextID   int64

	// now is swappable so tests can control capture timestamps.
	now func() time.Time
}

// NewMemoryRepository returns an empty in-memory ledger.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{nextID: 1, now: time.Now}
}

// SetClock replaces the capture-time source. Test use only.
func (r *MemoryRepository) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

func (r *MemoryRepository) Insert(ctx context.Context, reading *models.Reading) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reading.ID = r.nextID
	r.nextID++
	reading.CapturedAt = r.now()

	stored := *reading
	r.readings = append(r.readings, &stored)
	return nil
}

func (r *MemoryRepository) Latest(ctx context.Context) (*models.Reading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.readings) == 0 {
		return nil, ErrNoReadings
	}
	latest := *r.readings[len(r.readings)-1]
	return &latest, nil
}

func (r *MemoryRepository) History(ctx context.Context, since time.Time, limit int) ([]*models.Reading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var window []*models.Reading
	for _, reading := range r.readings {
		if !reading.CapturedAt.Before(since) {
			window = append(window, reading)
		}
	}

	// Keep the newest rows when over limit, then return ascending.
	if limit > 0 && len(window) > limit {
		window = window[len(window)-limit:]
	}

	out := make([]*models.Reading, len(window))
	for i, reading := range window {
		cp := *reading
		out[i] = &cp
	}
	return out, nil
}

func (r *MemoryRepository) Ping(ctx context.Context) error { return nil }

func (r *MemoryRepository) Close() {}
