package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
)

const (
	HeaderRequestID = "X-Request-Id"

	defaultBreakerFailures = 5
	defaultBreakerTimeout  = 30 * time.Second
)

var ErrMalformedResponse = errors.New("malformed response body")

// APIError is a non-2xx answer from the shop API. Message is the "message"
// field of the error body and may be empty.
type APIError struct {
	Service string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Service, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: unexpected status %d", e.Service, e.Status)
}

type Config struct {
	Name    string
	BaseURL string
	HTTP    *http.Client
	Logger  *log.Logger
	// BreakerFailures is the number of consecutive transport failures that
	// open the circuit. Zero means the default.
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// Client is the shared REST base used by the typed clients.
type Client struct {
	Name    string
	BaseURL *url.URL
	HTTP    *http.Client

	logger  *log.Logger
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

func New(cfg Config) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid %s base url %q: %w", cfg.Name, cfg.BaseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid %s base url %q: missing scheme or host", cfg.Name, cfg.BaseURL)
	}

	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = defaultBreakerFailures
	}
	timeout := cfg.BreakerTimeout
	if timeout == 0 {
		timeout = defaultBreakerTimeout
	}

	c := &Client{Name: cfg.Name, BaseURL: u, HTTP: httpClient, logger: logger}
	c.breaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:    cfg.Name,
		Timeout: timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// a caller giving up says nothing about the server
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Printf("circuit breaker %s: %s -> %s", name, from, to)
		},
	})
	return c, nil
}

// Request describes one call against the API. Path is relative to the base
// URL, so "/products" against ".../api" hits ".../api/products".
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Token  string
	Body   any
}

// Do sends req and returns the response for any 2xx status. Other statuses
// are turned into *APIError and the body is consumed.
func (c *Client) Do(ctx context.Context, req Request) (*http.Response, error) {
	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s %s body: %w", req.Method, req.Path, err)
		}
		body = bytes.NewReader(data)
	}

	u := c.BaseURL.JoinPath(req.Path)
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(HeaderRequestID, uuid.NewString())
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}

	// only transport failures count against the breaker; an error status is
	// still a working server
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		return c.HTTP.Do(httpReq)
	})
	if err != nil {
		return nil, fmt.Errorf("%s %s %s: %w", c.Name, req.Method, req.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, c.apiError(resp)
	}
	return resp, nil
}

// DoJSON sends req and decodes a 2xx body into out. A nil out discards the
// body. An empty body leaves out untouched.
func (c *Client) DoJSON(ctx context.Context, req Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := decodeBody(resp.Body, out); err != nil {
		return fmt.Errorf("%s %s %s: %w", c.Name, req.Method, req.Path, err)
	}
	return nil
}

func (c *Client) apiError(resp *http.Response) *APIError {
	apiErr := &APIError{Service: c.Name, Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		c.logger.Printf("%s: failed to read error body: %v", c.Name, err)
		return apiErr
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		apiErr.Message = payload.Message
	}
	return apiErr
}

// envelope is the wrapper some endpoints put around their payload.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeBody(r io.Reader, out any) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	if data[0] == '{' {
		var env envelope
		if err := json.Unmarshal(data, &env); err == nil && len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
			data = env.Data
		}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
