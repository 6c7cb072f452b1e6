// Package service implements the ingestion gate, the read path with its
// liveness verdict, and the actuator command gate.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nodewatch-systems/nodewatch/internal/logging"
	"github.com/nodewatch-systems/nodewatch/internal/metrics"
	"github.com/nodewatch-systems/nodewatch/internal/models"
	"github.com/nodewatch-systems/nodewatch/internal/repository"
)

// ErrEmptyPayload means the payload carried none of the recognized
// fields. This is the only reason an ingest is rejected for shape: the
// node must never be blocked by strict-schema errors, so malformed
// values degrade to null instead.
var ErrEmptyPayload = errors.New("no recognized fields in payload")

// ReadingPublisher is the optional live tap. A nil publisher disables it.
type ReadingPublisher interface {
	PublishReading(*models.Reading) error
}

// IngestService validates and normalizes inbound readings and appends
// them to the ledger.
type IngestService struct {
	repo      repository.ReadingRepository
	publisher ReadingPublisher
	logger    *logging.Logger
}

// NewIngestService builds the ingestion gate. publisher may be nil.
func NewIngestService(repo repository.ReadingRepository, publisher ReadingPublisher, logger *logging.Logger) *IngestService {
	if logger == nil {
		logger = logging.Default()
	}
	return &IngestService{repo: repo, publisher: publisher, logger: logger}
}

// Ingest normalizes the loosely-typed payload, appends one reading and
// returns it with ledger-assigned id and capture time. A store failure
// surfaces to the caller with no retry; the node resends on its own
// next cycle.
func (s *IngestService) Ingest(ctx context.Context, payload map[string]interface{}) (*models.Reading, error) {
	start := time.Now()

	reading, recognized := ParsePayload(payload)
	if recognized == 0 {
		metrics.ReadingsIngested.WithLabelValues("rejected").Inc()
		return nil, ErrEmptyPayload
	}

	if err := s.repo.Insert(ctx, reading); err != nil {
		metrics.ReadingsIngested.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to save reading: %w", err)
	}

	metrics.ReadingsIngested.WithLabelValues("accepted").Inc()
	metrics.IngestDuration.Observe(time.Since(start).Seconds())

	if s.publisher != nil {
		// Fire and forget: a bus outage must not fail the ingest.
		if err := s.publisher.PublishReading(reading); err != nil {
			metrics.PublishErrors.Inc()
			s.logger.WarnContext(ctx, "failed to publish reading", "id", reading.ID, "error", err)
		}
	}

	return reading, nil
}

// ParsePayload coerces the recognized fields out of a loose key/value
// payload. It returns the normalized reading and how many recognized
// keys were present; malformed values coerce to null rather than
// rejecting the payload.
func ParsePayload(payload map[string]interface{}) (*models.Reading, int) {
	recognized := 0
	grab := func(key string) (interface{}, bool) {
		v, ok := payload[key]
		if ok {
			recognized++
		}
		return v, ok
	}

	var reading models.Reading
	if v, ok := grab("temperature"); ok {
		reading.Temperature = floatValue(v)
	}
	if v, ok := grab("humidity"); ok {
		reading.Humidity = floatValue(v)
	}
	if v, ok := grab("mq135_raw"); ok {
		reading.MQ135Raw = intValue(v)
	}
	if v, ok := grab("mq135_voltage"); ok {
		reading.MQ135Voltage = floatValue(v)
	}
	if v, ok := grab("co2_ppm"); ok {
		reading.CO2PPM = floatValue(v)
	}
	if v, ok := grab("nh4_ppm"); ok {
		reading.NH4PPM = floatValue(v)
	}
	if v, ok := grab("alcohol_ppm"); ok {
		reading.AlcoholPPM = floatValue(v)
	}
	if v, ok := grab("co_ppm"); ok {
		reading.COPPM = floatValue(v)
	}
	if v, ok := grab("acetone_ppm"); ok {
		reading.AcetonePPM = floatValue(v)
	}
	if v, ok := grab("soil_raw"); ok {
		reading.SoilRaw = intValue(v)
	}
	if v, ok := grab("soil_percent"); ok {
		reading.SoilPercent = intValue(v)
	}
	if v, ok := grab("motion_detected"); ok {
		reading.MotionDetected = boolValue(v)
	}
	if v, ok := grab("relay_on"); ok {
		reading.RelayOn = boolValue(v)
	}
	if v, ok := grab("led_on"); ok {
		reading.LedOn = boolValue(v)
	}

	return &reading, recognized
}

func floatValue(v interface{}) *float64 {
	switch t := v.(type) {
	case float64:
		return &t
	case float32:
		f := float64(t)
		return &f
	case int:
		f := float64(t)
		return &f
	case int64:
		f := float64(t)
		return &f
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return &f
		}
	}
	return nil
}

func intValue(v interface{}) *int {
	switch t := v.(type) {
	case float64:
		i := int(t)
		return &i
	case int:
		return &t
	case int64:
		i := int(t)
		return &i
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			i := int(f)
			return &i
		}
	}
	return nil
}

func boolValue(v interface{}) *bool {
	switch t := v.(type) {
	case bool:
		return &t
	case float64:
		b := t != 0
		return &b
	case int:
		b := t != 0
		return &b
	case string:
		if b, err := parseBoolish(t); err == nil {
			return &b
		}
	}
	return nil
}
