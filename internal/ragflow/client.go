// Package ragflow is a client for the RAGFlow HTTP API (datasets and their documents).
package ragflow

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/cloo-solutions/kbdocs/internal/config"
	"github.com/cloo-solutions/kbdocs/internal/domain"
	"github.com/cloo-solutions/kbdocs/internal/telemetry"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const maxErrorBody = 512

// Client issues authenticated requests against one RAGFlow base URL.
// Requests are sequential and never retried.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client from a resolved configuration.
func NewClient(cfg *config.Config, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.APIURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: http.DefaultClient,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Envelope is the standard RAGFlow response body.
type Envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Err returns an application error when the envelope carries a non-zero code.
func (e *Envelope) Err() error {
	if e.Code == 0 {
		return nil
	}
	return domain.NewApplicationError(e.Code, e.Message)
}

// Do performs a request and decodes the envelope. It fails with a transport error when the
// call fails, the status is not 2xx, or the body is not JSON. Application-level codes are
// left for the caller to interpret through Envelope.Err.
func (c *Client) Do(ctx context.Context, method, endpoint string, query url.Values) (*Envelope, error) {
	target := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, domain.NewTransportError("failed to create request", 0, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	c.logger.Debug().Str("method", method).Str("url", target).Str("request_id", requestID).Msg("api request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		telemetry.AddBreadcrumb(ctx, "ragflow", method+" "+endpoint, map[string]interface{}{"error": err.Error()})
		return nil, domain.NewTransportError(method+" "+endpoint+" failed", 0, err)
	}
	defer resp.Body.Close()

	telemetry.AddBreadcrumb(ctx, "ragflow", method+" "+endpoint, map[string]interface{}{
		"status_code": resp.StatusCode,
		"request_id":  requestID,
	})

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewTransportError("failed to read response body", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.NewTransportError(
			fmt.Sprintf("%s %s: %s", method, endpoint, snippet(body)), resp.StatusCode, nil)
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, domain.NewTransportError("failed to parse response", resp.StatusCode, err)
	}

	c.logger.Debug().Int("status", resp.StatusCode).Int("code", env.Code).Str("request_id", requestID).Msg("api response")
	return &env, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, endpoint string, query url.Values) (*Envelope, error) {
	return c.Do(ctx, http.MethodGet, endpoint, query)
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "empty response"
	}
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}
