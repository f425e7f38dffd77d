// Package api is a typed client for the fleet-sim HTTP server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pefman/fleet-sim/internal/defs"
	"github.com/pefman/fleet-sim/internal/scenario"
	"github.com/pefman/fleet-sim/internal/sim"
)

var httpClient = &http.Client{Timeout: 60 * time.Second}

// DefinitionsTTL is how long fetched definitions are reused.
const DefinitionsTTL = 5 * time.Minute

// Error is a non-2xx answer, decoded from the server's error envelope.
type Error struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return fmt.Sprintf("api status %d: %s", e.Status, e.Message) }

// Config holds API configuration
type Config struct {
	BaseURL string
}

type Client struct {
	config Config

	// definitions cache
	defsMu   sync.RWMutex
	defs     *defs.Definitions
	defsTime time.Time
}

func NewClient(baseURL string) *Client {
	return &Client{
		config: Config{BaseURL: baseURL},
	}
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	url := strings.TrimRight(c.config.BaseURL, "/") + path
	var body *bytes.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		apiErr := &Error{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		apiErr.Status = resp.StatusCode
		return apiErr
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) apiGet(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) apiPost(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPost, path, in, out)
}

// Definitions fetches the server's battle definitions, reusing them for
// DefinitionsTTL.
func (c *Client) Definitions(ctx context.Context) (*defs.Definitions, error) {
	c.defsMu.RLock()
	if c.defs != nil && time.Since(c.defsTime) < DefinitionsTTL {
		d := c.defs
		c.defsMu.RUnlock()
		return d, nil
	}
	c.defsMu.RUnlock()

	var d defs.Definitions
	if err := c.apiGet(ctx, "/api/definitions", &d); err != nil {
		return nil, err
	}

	c.defsMu.Lock()
	c.defs = &d
	c.defsTime = time.Now()
	c.defsMu.Unlock()
	return &d, nil
}

// Simulate runs sc on the server n times.
func (c *Client) Simulate(ctx context.Context, sc *scenario.Scenario, n int, seed int64) (*sim.Summary, error) {
	raw, err := json.Marshal(sc)
	if err != nil {
		return nil, err
	}
	req := struct {
		Scenario json.RawMessage `json:"scenario"`
		Trials   int             `json:"trials"`
		Seed     int64           `json:"seed,omitempty"`
	}{raw, n, seed}
	var out sim.Summary
	if err := c.apiPost(ctx, "/api/sim", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Run fetches a stored run summary.
func (c *Client) Run(ctx context.Context, id string) (*sim.Summary, error) {
	var out sim.Summary
	if err := c.apiGet(ctx, "/api/sim/runs/"+id, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
