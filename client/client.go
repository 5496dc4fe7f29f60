// Package client performs the downstream JSON-over-HTTP call in the
// service chain, carrying the caller's trace context forward as a child
// span via explicit transport instrumentation.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Vijay-papanaboina/LGTM-stack/observe"
)

// Error is a structured downstream failure: the hop answered with an error
// status and a JSON body. Callers propagate both unchanged.
type Error struct {
	Status int
	Body   json.RawMessage
}

func (e *Error) Error() string {
	return fmt.Sprintf("downstream returned %d", e.Status)
}

// ErrorText extracts the "error" field from the structured body, falling
// back to the generic status text.
func (e *Error) ErrorText() string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(e.Body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return http.StatusText(e.Status)
}

// Client calls one downstream service. The otelhttp transport starts a
// client span and injects the trace context headers, so the receiving hop
// continues the same trace.
type Client struct {
	base string
	http *http.Client
}

// New creates a Client for the downstream base URL.
func New(baseURL string, obs *observe.Observer) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithPropagators(obs.Propagator()),
			),
		},
	}
}

// PostJSON posts in as JSON to path and decodes the response into out
// (which may be nil). Structured downstream failures are returned as
// *Error so the caller can pass status and body through unchanged;
// transport failures and unstructured responses are returned as plain
// errors. No retries: failures surface immediately.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding request for %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response from %s: %w", path, err)
	}

	if resp.StatusCode >= 400 {
		if json.Valid(payload) {
			return &Error{Status: resp.StatusCode, Body: payload}
		}
		return fmt.Errorf("calling %s: status %d with unstructured body", path, resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("decoding response from %s: %w", path, err)
		}
	}
	return nil
}
