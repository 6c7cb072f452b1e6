// Package liveness classifies the sensor node as connected or not from
// the age of its most recent ledger row. The same evaluator runs in two
// places with two different clocks: once per request on the server, and
// once per watchdog tick inside the dashboard poller. Keep it that way;
// collapsing the two into a single server-truth check makes a dead
// network look like a live feed.
package liveness

import (
	"time"

	"github.com/nodewatch-systems/nodewatch/internal/models"
)

// State is the liveness classification of the device.
type State string

const (
	// StateUnknown means no reading has ever been observed.
	StateUnknown State = "unknown"
	// StateFresh means the most recent reading is within the threshold.
	StateFresh State = "fresh"
	// StateStale means the most recent reading is older than the
	// threshold; the device is considered disconnected.
	StateStale State = "stale"
)

// DefaultThreshold is the maximum tolerated age of the latest reading
// before the node counts as disconnected.
const DefaultThreshold = 10 * time.Second

// Verdict is the outcome of one evaluation. It is computed fresh every
// time and never persisted.
type Verdict struct {
	State       State
	Age         time.Duration
	LastReading *models.Reading
}

// AgeSeconds returns the verdict age in whole-ish seconds for wire use.
func (v Verdict) AgeSeconds() float64 {
	return v.Age.Seconds()
}

// Evaluator classifies a reading's age against a fixed threshold.
type Evaluator struct {
	threshold time.Duration
}

// NewEvaluator returns an Evaluator with the given staleness threshold.
// A zero or negative threshold falls back to DefaultThreshold.
func NewEvaluator(threshold time.Duration) Evaluator {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return Evaluator{threshold: threshold}
}

// Threshold returns the configured staleness threshold.
func (e Evaluator) Threshold() time.Duration { return e.threshold }

// Evaluate classifies the device given the most recent reading (nil when
// the ledger is empty) and the caller's notion of now. Age exactly equal
// to the threshold is still fresh; only age strictly greater is stale.
func (e Evaluator) Evaluate(now time.Time, last *models.Reading) Verdict {
	if last == nil {
		return Verdict{State: StateUnknown}
	}
	age := now.Sub(last.CapturedAt)
	if age > e.threshold {
		return Verdict{State: StateStale, Age: age, LastReading: last}
	}
	return Verdict{State: StateFresh, Age: age, LastReading: last}
}
