package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/nodewatch-systems/nodewatch/internal/models"
)

// Config holds NATS connection settings.
type Config struct {
	URL           string
	Name          string
	MaxReconnects int
	ReconnectWait time.Duration
	Timeout       time.Duration
}

// DefaultConfig returns connection defaults with infinite reconnects.
func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		Name:          "nodewatch",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
		Timeout:       5 * time.Second,
	}
}

// Publisher is the live-tap side of the ingestion gate. Publish failures
// are the caller's to log and count; they never fail an ingest.
type Publisher struct {
	conn *nats.Conn
}

// Connect establishes the NATS connection.
func Connect(cfg Config) (*Publisher, error) {
	if cfg.URL == "" {
		cfg.URL = nats.DefaultURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.ReconnectWait == 0 {
		cfg.ReconnectWait = 2 * time.Second
	}

	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.Timeout),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &Publisher{conn: conn}, nil
}

// PublishReading publishes one accepted reading.
func (p *Publisher) PublishReading(reading *models.Reading) error {
	data, err := json.Marshal(reading)
	if err != nil {
		return fmt.Errorf("failed to marshal reading: %w", err)
	}
	if err := p.conn.Publish(SubjectReadingsAccepted, data); err != nil {
		return fmt.Errorf("failed to publish reading: %w", err)
	}
	return nil
}

// PublishFlag publishes one accepted actuator flag write.
func (p *Publisher) PublishFlag(flag models.ControlFlag) error {
	data, err := json.Marshal(flag)
	if err != nil {
		return fmt.Errorf("failed to marshal flag: %w", err)
	}
	if err := p.conn.Publish(FlagSubject(flag.Name), data); err != nil {
		return fmt.Errorf("failed to publish flag update: %w", err)
	}
	return nil
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
