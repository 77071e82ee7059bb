package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
)

const maxBodyBytes = 1 << 20

var (
	// ErrNetwork wraps failures where no HTTP response was received.
	ErrNetwork = errors.New("network failure")
	// ErrMalformedResponse is returned when a 2xx body cannot be decoded.
	ErrMalformedResponse = errors.New("malformed response body")
)

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.StatusCode, strings.TrimSpace(string(e.Body)))
}

// Client sends JSON requests relative to a base URL through a Transport.
type Client struct {
	httpClient *http.Client
	transport  *Transport
	baseURL    string
}

// NewClient returns a Client for baseURL. A zero timeout leaves requests
// unbounded beyond the caller's context.
func NewClient(baseURL string, transport *Transport, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		transport: transport,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// BaseURL returns the URL every path is resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// OnUnauthorized registers fn with the underlying Transport.
func (c *Client) OnUnauthorized(fn UnauthorizedListener) (remove func()) {
	return c.transport.OnUnauthorized(fn)
}

// PostJSON sends body as JSON to path and decodes the response into result.
// A nil result discards the response body.
func (c *Client) PostJSON(ctx context.Context, path string, body any, result any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, result)
}

// GetJSON sends a GET to path and decodes the response into result.
func (c *Client) GetJSON(ctx context.Context, path string, result any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, result)
}

// Get sends a GET to path and returns the raw response body.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, autherrors.Join(ErrNetwork, err)
	}
	return data, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return autherrors.Wrapf(err, "marshal request body")
		}
	}

	resp, err := c.do(ctx, method, path, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if result == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(result); err != nil {
		return autherrors.Join(ErrMalformedResponse, err)
	}
	return nil
}

// do returns the response only when its status is 2xx; the caller closes the body.
func (c *Client) do(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, autherrors.Wrapf(err, "create request")
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, autherrors.Join(ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: respBody}
	}
	return resp, nil
}
