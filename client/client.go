// Package client is the request layer of the Mini App storefront SDK.
// It owns the authenticated transport (bearer and host-context header
// injection, failure diagnostics) and the response normalizer that
// absorbs backend shape drift for list endpoints.
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

	"github.com/tgmarket/miniapp-client/credential"
	"github.com/tgmarket/miniapp-client/pkg/logging"
	"github.com/tgmarket/miniapp-client/session"
)

// DefaultContextHeader carries the captured host-context string on every
// request that does not already set it.
const DefaultContextHeader = "X-Telegram-Init-Data"

// Config holds client configuration.
type Config struct {
	// BaseURL is the backend root, e.g. "https://shop.example".
	BaseURL string
	// HTTPClient is the underlying client. Its transport is wrapped,
	// never replaced. Defaults to a client with a 30s timeout.
	HTTPClient *http.Client
	// Session supplies the captured host context. Optional; requests
	// proceed without the context header when absent.
	Session *session.Bridge
	// Credentials supplies bearer tokens by audience. Optional.
	Credentials *credential.Store
	// Logger receives request diagnostics. Defaults to a logger named
	// "client".
	Logger *logging.Logger
	// Metrics, when set, records request counters and latencies.
	Metrics *Metrics
	// ContextHeader overrides DefaultContextHeader.
	ContextHeader string
}

// Client issues storefront API requests through the intercepting
// transport. It is safe for concurrent use.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	credentials *credential.Store
	logger      *logging.Logger
}

// New creates a client. The transport decorators are installed here, in
// a fixed order: metrics, then diagnostics, then header injection, then
// the underlying transport.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("BaseURL is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.New("client")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	contextHeader := cfg.ContextHeader
	if contextHeader == "" {
		contextHeader = DefaultContextHeader
	}

	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	var rt http.RoundTripper = &headerTransport{
		next:          base,
		session:       cfg.Session,
		credentials:   cfg.Credentials,
		contextHeader: contextHeader,
	}
	rt = &diagnosticTransport{next: rt, logger: logger}
	if cfg.Metrics != nil {
		rt = &metricsTransport{next: rt, metrics: cfg.Metrics}
	}

	// Wrap a copy so the caller's client keeps its own transport.
	wrapped := *httpClient
	wrapped.Transport = rt

	return &Client{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient:  &wrapped,
		credentials: cfg.Credentials,
		logger:      logger,
	}, nil
}

// Request issues a call against the backend. body, when non-nil, is
// JSON-encoded. headers are the caller's explicit headers; they always
// win over anything the transport would inject. The response is
// delivered whatever its status; use Response.Err to turn a non-success
// status into an error.
func (c *Client) Request(ctx context.Context, method, path string, body interface{}, headers http.Header) (*Response, error) {
	reqURL := c.baseURL + "/" + strings.TrimPrefix(path, "/")

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       respBody,
		Headers:    resp.Header,
		path:       path,
	}, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Request(ctx, http.MethodGet, path, nil, nil)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Request(ctx, http.MethodPost, path, body, nil)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Request(ctx, http.MethodPut, path, body, nil)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Request(ctx, http.MethodDelete, path, nil, nil)
}

// Response is a buffered API response.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header

	path string
}

// JSON unmarshals the response body into v.
func (r *Response) JSON(v interface{}) error {
	return json.Unmarshal(r.Body, v)
}

// Err returns an *APIError when the response status signals failure,
// nil otherwise.
func (r *Response) Err() error {
	if r.StatusCode < 400 {
		return nil
	}
	return &APIError{
		StatusCode: r.StatusCode,
		Path:       r.path,
		Excerpt:    excerpt(r.Body),
	}
}

// APIError is a non-success response surfaced as an error.
type APIError struct {
	StatusCode int
	Path       string
	Excerpt    string
}

func (e *APIError) Error() string {
	if e.Excerpt == "" {
		return fmt.Sprintf("api error: %s returned status %d", e.Path, e.StatusCode)
	}
	return fmt.Sprintf("api error: %s returned status %d: %s", e.Path, e.StatusCode, e.Excerpt)
}

const excerptLimit = 512

func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > excerptLimit {
		return s[:excerptLimit] + "...(truncated)"
	}
	return s
}
