// Package repository persists the telemetry ledger: an append-only
// sequence of sensor readings. Rows are immutable once written; ids are
// assigned by the store and strictly increase with capture time.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nodewatch-systems/nodewatch/internal/models"
)

// ErrNoReadings is returned by Latest when the ledger is empty. Callers
// translate it into the "no data available yet" response, never into an
// HTTP error.
var ErrNoReadings = errors.New("no readings recorded")

// ReadingRepository is the telemetry ledger contract.
type ReadingRepository interface {
	// Insert appends one reading. The store assigns ID and CapturedAt
	// (server clock is authoritative; the node's own clock is never
	// trusted) and writes them back into r.
	Insert(ctx context.Context, r *models.Reading) error

	// Latest returns the most recent reading, or ErrNoReadings.
	Latest(ctx context.Context) (*models.Reading, error)

	// History returns up to limit of the most recent readings captured
	// at or after since, ordered ascending by capture time. Ascending is
	// the canonical order of the history contract; callers must not
	// re-sort.
	History(ctx context.Context, since time.Time, limit int) ([]*models.Reading, error)

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error

	Close()
}
