package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nodewatch-systems/nodewatch/internal/liveness"
	"github.com/nodewatch-systems/nodewatch/internal/metrics"
	"github.com/nodewatch-systems/nodewatch/internal/models"
	"github.com/nodewatch-systems/nodewatch/internal/repository"
)

// History window defaults. A missing limit means 500; an invalid one is
// bumped to 100 and anything above 1000 is clamped down.
const (
	DefaultHistoryHours = 24
	DefaultHistoryLimit = 500
	MinHistoryLimit     = 100
	MaxHistoryLimit     = 1000
)

// ReadingsService serves the read path. The liveness verdict on the
// latest reading is computed at request time against this service's
// clock, never cached.
type ReadingsService struct {
	repo repository.ReadingRepository
	eval liveness.Evaluator
	now  func() time.Time
}

// NewReadingsService builds the read path with the given staleness
// threshold.
func NewReadingsService(repo repository.ReadingRepository, threshold time.Duration) *ReadingsService {
	return &ReadingsService{
		repo: repo,
		eval: liveness.NewEvaluator(threshold),
		now:  time.Now,
	}
}

// SetClock replaces the verdict clock. Test use only.
func (s *ReadingsService) SetClock(now func() time.Time) { s.now = now }

// Latest returns the liveness verdict on the most recent reading. An
// empty ledger is the UNKNOWN verdict, not an error.
func (s *ReadingsService) Latest(ctx context.Context) (liveness.Verdict, error) {
	last, err := s.repo.Latest(ctx)
	if errors.Is(err, repository.ErrNoReadings) {
		metrics.LatestReads.WithLabelValues(string(liveness.StateUnknown)).Inc()
		return liveness.Verdict{State: liveness.StateUnknown}, nil
	}
	if err != nil {
		return liveness.Verdict{}, fmt.Errorf("failed to load latest reading: %w", err)
	}

	verdict := s.eval.Evaluate(s.now(), last)
	metrics.LatestReads.WithLabelValues(string(verdict.State)).Inc()
	return verdict, nil
}

// History returns readings within the requested window, ascending by
// capture time, plus the normalized hours and limit actually used.
func (s *ReadingsService) History(ctx context.Context, hours, limit int) ([]*models.Reading, int, int, error) {
	hours, limit = NormalizeHistoryParams(hours, limit)

	since := s.now().Add(-time.Duration(hours) * time.Hour)
	readings, err := s.repo.History(ctx, since, limit)
	if err != nil {
		return nil, hours, limit, fmt.Errorf("failed to load history: %w", err)
	}

	metrics.HistoryQueries.Inc()
	return readings, hours, limit, nil
}

// NormalizeHistoryParams applies the window defaults and clamps:
// hours < 1 falls back to 24, limit < 1 to 100, limit above 1000 down
// to 1000.
func NormalizeHistoryParams(hours, limit int) (int, int) {
	if hours < 1 {
		hours = DefaultHistoryHours
	}
	if limit < 1 {
		limit = MinHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	return hours, limit
}
