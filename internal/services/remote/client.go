package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"mangatl/internal/logging"
)

// Options configures a Client.
type Options struct {
	// Timeout bounds each request. Zero leaves requests unbounded apart from
	// the caller's context.
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client issues single-attempt JSON requests to remote services.
type Client struct {
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
}

// NewClient constructs the shared proxy client.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		httpClient: httpClient,
		userAgent:  strings.TrimSpace(opts.UserAgent),
		logger:     logging.NewComponentLogger(opts.Logger, "remote"),
	}
}

// Endpoint joins a service base URL and an operation suffix, dropping any
// trailing slashes from the base.
func Endpoint(base, suffix string) string {
	return strings.TrimRight(base, "/") + suffix
}

// RequestOption customizes one outbound request.
type RequestOption func(*requestConfig)

type requestConfig struct {
	bearer      string
	parsePrefix string
}

// WithBearer adds an Authorization header when token is non-empty.
func WithBearer(token string) RequestOption {
	return func(c *requestConfig) { c.bearer = token }
}

// WithParsePrefix overrides the text that introduces JSON parse failures.
func WithParsePrefix(prefix string) RequestOption {
	return func(c *requestConfig) { c.parsePrefix = prefix }
}

func buildConfig(opts []RequestOption) requestConfig {
	cfg := requestConfig{parsePrefix: ParsePrefixDefault}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// GetJSON issues a GET and decodes the JSON response.
func (c *Client) GetJSON(ctx context.Context, url string, opts ...RequestOption) (any, error) {
	cfg := buildConfig(opts)
	resp, err := c.do(ctx, http.MethodGet, url, nil, cfg)
	if err != nil {
		return nil, err
	}
	return c.decode(resp, cfg)
}

// PostJSON marshals body, POSTs it, and decodes the JSON response.
func (c *Client) PostJSON(ctx context.Context, url string, body any, opts ...RequestOption) (any, error) {
	cfg := buildConfig(opts)
	resp, err := c.post(ctx, url, body, cfg)
	if err != nil {
		return nil, err
	}
	return c.decode(resp, cfg)
}

// PostStream POSTs body and returns the response body for incremental
// reading. Non-2xx responses are drained and returned as *APIError. The
// caller must close the returned reader.
func (c *Client) PostStream(ctx context.Context, url string, body any, opts ...RequestOption) (io.ReadCloser, error) {
	cfg := buildConfig(opts)
	resp, err := c.post(ctx, url, body, cfg)
	if err != nil {
		return nil, err
	}
	if !success(resp.StatusCode) {
		return nil, apiError(resp)
	}
	return resp.Body, nil
}

// FetchBytes GETs url and returns the raw body. Non-2xx responses yield a
// *StatusError.
func (c *Client) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, url, nil, requestConfig{})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if !success(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: statusText(resp)}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	return data, nil
}

func (c *Client) post(ctx context.Context, url string, body any, cfg requestConfig) (*http.Response, error) {
	var payload []byte
	switch v := body.(type) {
	case json.RawMessage:
		payload = v
	case []byte:
		payload = v
	default:
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		payload = encoded
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		payload = []byte("null")
	}
	return c.do(ctx, http.MethodPost, url, payload, cfg)
}

func (c *Client) do(ctx context.Context, method, url string, payload []byte, cfg requestConfig) (*http.Response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json, text/event-stream")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if cfg.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.bearer)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.WithContext(ctx, c.logger).Debug("remote request failed",
			logging.String("method", method),
			logging.String("url", url),
			logging.Error(err),
		)
		return nil, &TransportError{Err: err}
	}
	logging.WithContext(ctx, c.logger).Debug("remote request",
		logging.String("method", method),
		logging.String("url", url),
		logging.Int("status", resp.StatusCode),
		logging.Duration("elapsed", time.Since(started)),
	)
	return resp, nil
}

func (c *Client) decode(resp *http.Response, cfg requestConfig) (any, error) {
	defer resp.Body.Close()
	if !success(resp.StatusCode) {
		return nil, apiError(resp)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	return DecodeJSON(body, cfg.parsePrefix)
}

// DecodeJSON parses body into a generic value, preserving number precision.
func DecodeJSON(body []byte, parsePrefix string) (any, error) {
	if parsePrefix == "" {
		parsePrefix = ParsePrefixDefault
	}
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, &ParseError{Prefix: parsePrefix, Err: err}
	}
	if _, err := decoder.Token(); err != io.EOF {
		return nil, &ParseError{Prefix: parsePrefix, Err: fmt.Errorf("trailing characters after JSON value")}
	}
	return value, nil
}

func apiError(resp *http.Response) error {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ParseError{Prefix: "Failed to read error body", Err: err}
	}
	return &APIError{StatusCode: resp.StatusCode, Status: statusText(resp), Body: string(body)}
}

func success(code int) bool {
	return code >= 200 && code < 300
}
