// Package controlstate holds the actuator flag registers. Each flag
// (relay, led) is an independent last-write-wins boolean: no
// compare-and-swap, no versioning, no cross-flag atomicity. The sensor
// node polls these values; the dashboard writes them.
package controlstate

import (
	"context"
	"errors"
)

// ErrStorageUnavailable wraps backend failures. A caller seeing it must
// not assume the flag changed.
var ErrStorageUnavailable = errors.New("control store unavailable")

// Store is the flag register contract. Get never fails with "not found":
// a flag that was never written reads as false.
type Store interface {
	Get(ctx context.Context, name string) (bool, error)
	Set(ctx context.Context, name string, value bool) error
	Close() error
}
