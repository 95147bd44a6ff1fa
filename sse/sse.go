// Package sse implements [wizard.Transport] over HTTP.
//
// The request is a POST with a JSON body, so the response is framed by hand:
// the body is split into lines and every line starting with "data: " yields
// one payload. Other event-stream fields are ignored.
package sse

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/fwojciec/wizard"
	wizardjson "github.com/fwojciec/wizard/json"
	"github.com/google/uuid"
)

// Interface compliance check.
var _ wizard.Transport = (*Client)(nil)

// maxErrorBody caps how much of a failed response body is kept.
const maxErrorBody = 4 << 10

// Client implements [wizard.Transport] for a streaming HTTP endpoint.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	header     http.Header
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for connection diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.header.Add(key, value) }
}

// New creates a new [Client] with the given options.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		logger:     slog.New(slog.DiscardHandler),
		header:     make(http.Header),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Open posts req to url and returns the framed payloads of the response.
// It returns once the server answered with a 2xx status. A non-2xx status
// is reported as a *StatusError.
func (c *Client) Open(ctx context.Context, url string, req wizard.Request) (wizard.Lines, error) {
	body, err := wizardjson.MarshalRequest(req)
	if err != nil {
		return nil, fmt.Errorf("sse: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("sse: %w", err)
	}
	for k, vs := range c.header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Cache-Control", "no-cache")
	httpReq.Header.Set("X-Request-Id", requestID)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sse: %w", err)
	}

	c.logger.Debug("stream response",
		slog.String("request_id", requestID),
		slog.String("feature", req.Feature),
		slog.String("step", req.Step),
		slog.Int("status", resp.StatusCode),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}

	return newLines(ctx, resp.Body), nil
}

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return &StatusError{StatusCode: resp.StatusCode, Body: fmt.Sprintf("(failed to read body: %v)", err)}
	}
	return &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
}
