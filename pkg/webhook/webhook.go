// Package webhook posts session summaries to HTTP endpoints.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ccollicutt/forensilog/pkg/output"
	"github.com/ccollicutt/forensilog/pkg/parser"
	"github.com/ccollicutt/forensilog/pkg/session"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// maxResponseSize caps how much of a response body is read.
const maxResponseSize = 1024 * 1024

// Trigger selects when a webhook fires.
type Trigger string

const (
	TriggerOnSuspicious Trigger = "on_suspicious"
	TriggerAlways       Trigger = "always"
	TriggerNever        Trigger = "never"
)

// Fires reports whether a webhook with this trigger fires for s. An empty
// or unknown trigger behaves as TriggerOnSuspicious.
func (t Trigger) Fires(s *session.Session) bool {
	switch t {
	case TriggerAlways:
		return true
	case TriggerNever:
		return false
	default:
		return s != nil && s.Report != nil && s.Report.HasSuspicious()
	}
}

// Payload is the JSON body posted to a webhook.
type Payload struct {
	Event      string             `json:"event"`
	Summary    output.Summary     `json:"summary"`
	Suspicious []parser.LogRecord `json:"suspicious"`
}

// NewPayload builds the payload for s, listing at most limit suspicious
// entries (all when limit <= 0).
func NewPayload(s *session.Session, limit int) *Payload {
	p := &Payload{
		Event:      "analysis",
		Summary:    output.NewSummary(s),
		Suspicious: []parser.LogRecord{},
	}
	if s != nil && s.Report != nil {
		suspicious := s.Report.Suspicious
		if limit > 0 && len(suspicious) > limit {
			suspicious = suspicious[:limit]
		}
		p.Suspicious = append(p.Suspicious, suspicious...)
	}
	if p.Summary.Suspicious > 0 {
		p.Event = "suspicious_activity"
	}
	return p
}

// Client sends session summaries to webhook endpoints.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new webhook client.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{},
	}
}

// SendOptions configures a webhook request.
type SendOptions struct {
	URL     string
	Token   string        // Bearer token (optional)
	Timeout time.Duration // Request timeout (uses DefaultTimeout if zero)
}

// Response contains the result of a webhook request.
type Response struct {
	StatusCode int
	Body       string
	Duration   time.Duration
	Error      error
}

// Success returns true if the webhook was sent successfully (2xx status).
func (r *Response) Success() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Send posts a payload to a webhook endpoint.
func (c *Client) Send(ctx context.Context, p *Payload, opts SendOptions) *Response {
	start := time.Now()
	resp := &Response{}

	// Marshal payload to JSON
	payload, err := json.Marshal(p)
	if err != nil {
		resp.Error = fmt.Errorf("failed to marshal payload: %w", err)
		resp.Duration = time.Since(start)
		return resp
	}

	// Apply timeout
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Create request
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.URL, bytes.NewReader(payload))
	if err != nil {
		resp.Error = fmt.Errorf("failed to create request: %w", err)
		resp.Duration = time.Since(start)
		return resp
	}

	// Set headers
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "forensilog-webhook")
	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}

	// Send request
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		resp.Error = fmt.Errorf("request failed: %w", err)
		resp.Duration = time.Since(start)
		return resp
	}
	defer httpResp.Body.Close()

	// Read response body
	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		resp.Error = fmt.Errorf("failed to read response: %w", err)
		resp.Duration = time.Since(start)
		return resp
	}

	resp.StatusCode = httpResp.StatusCode
	resp.Body = string(body)
	resp.Duration = time.Since(start)

	// Check for error status codes
	if resp.StatusCode >= 400 {
		resp.Error = fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return resp
}

// Target is one configured webhook endpoint.
type Target struct {
	Name    string
	URL     string
	Token   string
	Timeout time.Duration
	Trigger Trigger
}

// Dispatch sends the payload for s to every target whose trigger fires and
// returns how many deliveries succeeded. Failures are logged, never returned.
func (c *Client) Dispatch(ctx context.Context, s *session.Session, targets []Target, limit int, logger *slog.Logger) int {
	if logger == nil {
		logger = slog.Default()
	}

	var payload *Payload
	sent := 0
	for _, t := range targets {
		if !t.Trigger.Fires(s) {
			continue
		}
		if payload == nil {
			payload = NewPayload(s, limit)
		}

		name := t.Name
		if name == "" {
			name = t.URL
		}

		resp := c.Send(ctx, payload, SendOptions{URL: t.URL, Token: t.Token, Timeout: t.Timeout})
		if resp.Success() {
			sent++
			logger.Info("webhook sent", "name", name, "status", resp.StatusCode, "duration", resp.Duration)
		} else {
			logger.Warn("webhook failed", "name", name, "error", resp.Error)
		}
	}
	return sent
}
