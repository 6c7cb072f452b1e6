package models

import "time"

// Actuator flag names. Each flag is an independent last-write-wins
// register; relay and led never toggle together.
const (
	FlagRelay = "relay"
	FlagLED   = "led"
)

// ControlFlag is the persisted state of one actuator register.
// UpdatedAt is kept for audit only and plays no part in liveness.
type ControlFlag struct {
	Name      string    `json:"name"`
	Value     bool      `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// KnownFlag reports whether name is a recognized actuator flag.
func KnownFlag(name string) bool {
	return name == FlagRelay || name == FlagLED
}
