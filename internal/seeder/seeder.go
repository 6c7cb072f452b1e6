// Package seeder simulates an ESP32-class sensor node against a running
// server: it generates plausible telemetry with gofakeit, pulls the
// actuator flags each cycle, and echoes the previously pulled values in
// the next reading the way the real firmware does.
package seeder

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/nodewatch-systems/nodewatch/internal/client"
	"github.com/nodewatch-systems/nodewatch/internal/models"
)

const adcMax = 4095

// Config controls the simulated node.
type Config struct {
	// Count is the number of readings to post. Zero means run until
	// the context is cancelled.
	Count int
	// Interval is the pause between posts.
	Interval time.Duration
	// DropRate is the chance (0..1) that a given optional channel is
	// omitted from a reading, mimicking flaky sensor wiring.
	DropRate float64
}

func (c *Config) applyDefaults() {
	if c.Interval == 0 {
		c.Interval = 3 * time.Second
	}
	if c.DropRate == 0 {
		c.DropRate = 0.05
	}
}

// NodeAPI is the slice of the HTTP client the simulated node uses.
type NodeAPI interface {
	Ingest(ctx context.Context, payload map[string]interface{}) (*client.IngestResult, error)
	GetFlag(ctx context.Context, name string) (bool, error)
}

// Runner drives the simulation loop.
type Runner struct {
	api NodeAPI
	cfg Config

	// Echo state lags the pulled flag values by one cycle, matching
	// the real node which applies commands after posting.
	relayEcho bool
	ledEcho   bool
}

// NewRunner creates a Runner for the given API client.
func NewRunner(api NodeAPI, cfg Config) *Runner {
	cfg.applyDefaults()
	return &Runner{api: api, cfg: cfg}
}

// Run executes the simulation until Count readings have been posted or
// the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	gofakeit.Seed(time.Now().UnixNano())

	log.Printf("Starting node simulator:")
	log.Printf("  Interval: %v", r.cfg.Interval)
	if r.cfg.Count > 0 {
		log.Printf("  Count: %d", r.cfg.Count)
	} else {
		log.Printf("  Count: unbounded")
	}

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	posted := 0
	for {
		if err := r.cycle(ctx); err != nil {
			log.Printf("Post failed: %v", err)
		} else {
			posted++
		}

		if r.cfg.Count > 0 && posted >= r.cfg.Count {
			log.Printf("Done: posted %d readings", posted)
			return nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// cycle posts one reading carrying the previous cycle's flag echo, then
// pulls the current flags for the next cycle.
func (r *Runner) cycle(ctx context.Context) error {
	payload := r.GenerateReading()
	payload["relay_on"] = r.relayEcho
	payload["led_on"] = r.ledEcho

	if _, err := r.api.Ingest(ctx, payload); err != nil {
		return err
	}

	if v, err := r.api.GetFlag(ctx, models.FlagRelay); err == nil {
		r.relayEcho = v
	}
	if v, err := r.api.GetFlag(ctx, models.FlagLED); err == nil {
		r.ledEcho = v
	}
	return nil
}

// GenerateReading produces one telemetry payload. Gas concentrations
// are derived from the raw MQ-135 value so the channels stay
// physically consistent with each other.
func (r *Runner) GenerateReading() map[string]interface{} {
	payload := map[string]interface{}{
		"temperature": round1(gofakeit.Float64Range(15, 35)),
		"humidity":    round1(gofakeit.Float64Range(20, 90)),
	}

	if !r.drop() {
		raw := gofakeit.Number(200, adcMax)
		voltage := float64(raw) / adcMax * 3.3
		payload["mq135_raw"] = raw
		payload["mq135_voltage"] = round3(voltage)
		payload["co2_ppm"] = round1(400 + voltage*350 + gofakeit.Float64Range(-20, 20))
		payload["nh4_ppm"] = round2(voltage * 2.5)
		payload["alcohol_ppm"] = round2(voltage * 1.8)
		payload["co_ppm"] = round2(voltage * 1.2)
		payload["acetone_ppm"] = round2(voltage * 0.9)
	}

	if !r.drop() {
		soilRaw := gofakeit.Number(500, adcMax)
		payload["soil_raw"] = soilRaw
		payload["soil_percent"] = (adcMax - soilRaw) * 100 / adcMax
	}

	if !r.drop() {
		payload["motion_detected"] = rand.Float64() < 0.2
	}

	return payload
}

func (r *Runner) drop() bool {
	return rand.Float64() < r.cfg.DropRate
}

func round1(v float64) float64 { return float64(int(v*10+0.5)) / 10 }
func round2(v float64) float64 { return float64(int(v*100+0.5)) / 100 }
func round3(v float64) float64 { return float64(int(v*1000+0.5)) / 1000 }
