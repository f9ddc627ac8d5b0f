// Package transport issues HTTP POST requests to a device RPC endpoint and
// decodes the envelope replies. It is a pure request executor: no retries and
// no interpretation of device error codes happen here.
package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kostya9/khome-tapo/internal/wire"
)

// requestTimeout bounds one request/response round-trip with the device.
const requestTimeout = 5 * time.Second

// ErrUnreachable is wrapped by every transport-level failure: timeouts,
// refused or dropped connections, and caller cancellation. The retry layer
// treats all of them as one transient class.
var ErrUnreachable = errors.New("transport: device unreachable")

// Client executes requests against one device's RPC endpoint. It owns its
// HTTP client and the connections behind it; Close releases them.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client bound to baseURL (e.g. "http://192.168.1.40").
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// Close releases the connections held for this device.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// Post sends body as JSON to path and decodes the envelope response.
func (c *Client) Post(ctx context.Context, path string, body any) (*wire.Response, error) {
	return c.do(ctx, c.baseURL+path, body)
}

// PostWithToken is Post with the session token appended as a query
// parameter. Used for every request after login.
func (c *Client) PostWithToken(ctx context.Context, path, token string, body any) (*wire.Response, error) {
	return c.do(ctx, c.baseURL+path+"?token="+url.QueryEscape(token), body)
}

func (c *Client) do(ctx context.Context, fullURL string, body any) (*wire.Response, error) {
	payload, err := wire.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnreachable, err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", httpResp.StatusCode, respBody)
	}

	var resp wire.Response
	if err := wire.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// IsUnreachable reports whether err is a transport-level failure eligible
// for retry.
func IsUnreachable(err error) bool {
	return errors.Is(err, ErrUnreachable)
}
