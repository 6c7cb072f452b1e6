package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nodewatch-systems/nodewatch/internal/controlstate"
	"github.com/nodewatch-systems/nodewatch/internal/logging"
	"github.com/nodewatch-systems/nodewatch/internal/metrics"
	"github.com/nodewatch-systems/nodewatch/internal/models"
)

var (
	// ErrUnknownFlag means the actuator name is not relay or led.
	ErrUnknownFlag = errors.New("unknown actuator flag")
	// ErrBadFlagValue means the supplied value could not be coerced to
	// a boolean.
	ErrBadFlagValue = errors.New("invalid flag value")
)

// FlagPublisher is the optional bus tap for flag writes. Nil disables it.
type FlagPublisher interface {
	PublishFlag(models.ControlFlag) error
}

// ControlService is the command gate in front of the flag registers.
// Writes are unconditional overwrites and idempotent per flag.
type ControlService struct {
	store     controlstate.Store
	publisher FlagPublisher
	logger    *logging.Logger
	now       func() time.Time
}

// NewControlService builds the command gate. publisher may be nil.
func NewControlService(store controlstate.Store, publisher FlagPublisher, logger *logging.Logger) *ControlService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ControlService{store: store, publisher: publisher, logger: logger, now: time.Now}
}

// Get returns the current flag value; a flag never written reads false.
func (s *ControlService) Get(ctx context.Context, name string) (bool, error) {
	if !models.KnownFlag(name) {
		return false, fmt.Errorf("%w: %q", ErrUnknownFlag, name)
	}
	return s.store.Get(ctx, name)
}

// Set overwrites the flag and returns the accepted state. On a store
// failure the caller must not assume the flag changed.
func (s *ControlService) Set(ctx context.Context, name string, value bool) (models.ControlFlag, error) {
	if !models.KnownFlag(name) {
		return models.ControlFlag{}, fmt.Errorf("%w: %q", ErrUnknownFlag, name)
	}

	if err := s.store.Set(ctx, name, value); err != nil {
		metrics.FlagWriteErrors.Inc()
		return models.ControlFlag{}, err
	}

	flag := models.ControlFlag{Name: name, Value: value, UpdatedAt: s.now()}
	metrics.FlagWrites.WithLabelValues(name).Inc()

	if s.publisher != nil {
		if err := s.publisher.PublishFlag(flag); err != nil {
			metrics.PublishErrors.Inc()
			s.logger.WarnContext(ctx, "failed to publish flag update", "flag", name, "error", err)
		}
	}

	return flag, nil
}

// ParseFlagValue coerces boolean-like command input into a strict bool.
// Accepted strings: 1/0, true/false, on/off, yes/no (case-insensitive).
func ParseFlagValue(raw interface{}) (bool, error) {
	switch t := raw.(type) {
	case bool:
		return t, nil
	case float64:
		return t != 0, nil
	case int:
		return t != 0, nil
	case string:
		return parseBoolish(t)
	default:
		return false, fmt.Errorf("%w: %v", ErrBadFlagValue, raw)
	}
}

func parseBoolish(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes":
		return true, nil
	case "0", "false", "off", "no":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrBadFlagValue, s)
	}
}
