// Package client is the typed HTTP client for the nodewatch API, shared
// by the CLI one-shots, the dashboard poller and the seeder.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nodewatch-systems/nodewatch/internal/models"
)

// Client talks to one nodewatch server.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a Client pointing at the given base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// IngestResult is the accepted-reading receipt.
type IngestResult struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// LatestResult is the decoded latest-read envelope. Exactly one of
// Reading != nil (fresh), NoData (empty ledger) or Stale is the case;
// transport and decode problems surface as errors instead.
type LatestResult struct {
	Reading    *models.Reading
	NoData     bool
	Stale      bool
	LastUpdate time.Time
	AgeSeconds float64
}

// Ingest posts one loose reading payload.
func (c *Client) Ingest(ctx context.Context, payload map[string]interface{}) (*IngestResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/ingest", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env struct {
		Success   bool      `json:"success"`
		ID        int64     `json:"id"`
		Timestamp time.Time `json:"timestamp"`
		Error     string    `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode ingest response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !env.Success {
		return nil, apiError("ingest", resp.StatusCode, env.Error)
	}

	return &IngestResult{ID: env.ID, Timestamp: env.Timestamp}, nil
}

// Latest fetches the most recent reading together with the server's
// request-time staleness verdict.
func (c *Client) Latest(ctx context.Context) (*LatestResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/latest", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env struct {
		Success    bool            `json:"success"`
		Data       *models.Reading `json:"data"`
		LastUpdate *time.Time      `json:"last_update"`
		AgeSeconds float64         `json:"age_seconds"`
		Error      string          `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode latest response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError("latest", resp.StatusCode, env.Error)
	}

	switch {
	case env.Success && env.Data != nil:
		return &LatestResult{Reading: env.Data}, nil
	case env.Success:
		return &LatestResult{NoData: true}, nil
	default:
		// Logical stale verdict inside an HTTP 200: distinct from a
		// transport failure, so not an error.
		result := &LatestResult{Stale: true, AgeSeconds: env.AgeSeconds}
		if env.LastUpdate != nil {
			result.LastUpdate = *env.LastUpdate
		}
		return result, nil
	}
}

// History fetches readings within the window, ascending by capture time.
func (c *Client) History(ctx context.Context, hours, limit int) ([]*models.Reading, error) {
	url := fmt.Sprintf("%s/api/history?hours=%d&limit=%d", c.baseURL, hours, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env struct {
		Success bool              `json:"success"`
		Count   int               `json:"count"`
		Data    []*models.Reading `json:"data"`
		Error   string            `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode history response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !env.Success {
		return nil, apiError("history", resp.StatusCode, env.Error)
	}

	return env.Data, nil
}

// GetFlag reads one actuator register.
func (c *Client) GetFlag(ctx context.Context, name string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/actuator/"+name, nil)
	if err != nil {
		return false, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	return decodeFlag(resp, name)
}

// SetFlag writes one actuator register and returns the accepted value.
func (c *Client) SetFlag(ctx context.Context, name string, value bool) (bool, error) {
	body, err := json.Marshal(map[string]interface{}{name + "_on": value})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/actuator/"+name, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	return decodeFlag(resp, name)
}

func decodeFlag(resp *http.Response, name string) (bool, error) {
	var env map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return false, fmt.Errorf("failed to decode actuator response: %w", err)
	}

	success, _ := env["success"].(bool)
	if resp.StatusCode != http.StatusOK || !success {
		msg, _ := env["error"].(string)
		return false, apiError("actuator "+name, resp.StatusCode, msg)
	}

	value, ok := env[name+"_on"].(bool)
	if !ok {
		return false, fmt.Errorf("actuator %s: response missing %s_on", name, name)
	}
	return value, nil
}

func apiError(op string, status int, msg string) error {
	if msg == "" {
		msg = "status " + strconv.Itoa(status)
	}
	return fmt.Errorf("%s request failed: %s", op, msg)
}
