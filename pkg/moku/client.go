package moku

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/samvad-hq/moku-rest-client/pkg/httpclient"
)

const (
	// ClientKeyHeader carries the session credential on every request after a claim.
	ClientKeyHeader = "Moku-Client-Key"

	// DevicePrefix addresses device-level resources such as name and ownership.
	DevicePrefix = "moku"

	apiPrefix      = "/api/"
	defaultTimeout = 30 * time.Second
)

// Client talks to a single Moku device over its REST API.
type Client struct {
	host      string
	timeout   time.Duration
	http      httpclient.Client
	log       Logger
	clientKey string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default resty-backed transport.
func WithHTTPClient(hc httpclient.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default transport.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger attaches a logger for request diagnostics.
func WithLogger(log Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// NewClient returns a client for the device reachable at host (an IP address or hostname, optionally with port).
func NewClient(host string, opts ...Option) *Client {
	c := &Client{
		host:    strings.TrimSpace(host),
		timeout: defaultTimeout,
		log:     noopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpclient.NewRestyClient(c.timeout)
	}
	return c
}

// Host returns the device address the client was built with.
func (c *Client) Host() string { return c.host }

// ClientKey returns the session credential, or "" when ownership is not held.
func (c *Client) ClientKey() string { return c.clientKey }

// BuildURL joins the device address, the API prefix and path. path is used verbatim.
func (c *Client) BuildURL(path string) string {
	return "http://" + c.host + apiPrefix + path
}

// Get issues a GET and returns the unwrapped data payload.
func (c *Client) Get(ctx context.Context, url string) (json.RawMessage, error) {
	data, _, err := c.do(ctx, http.MethodGet, url, nil)
	return data, err
}

// Post JSON-encodes body, issues a POST and returns the unwrapped data payload.
// A nil body is sent as an empty request body.
func (c *Client) Post(ctx context.Context, url string, body any) (json.RawMessage, error) {
	data, _, err := c.do(ctx, http.MethodPost, url, body)
	return data, err
}

func (c *Client) do(ctx context.Context, method, url string, body any) (json.RawMessage, httpclient.Response, error) {
	var (
		resp httpclient.Response
		err  error
	)

	switch method {
	case http.MethodGet:
		resp, err = c.http.Get(ctx, url, c.headers(false))
	case http.MethodPost:
		var payload []byte
		if body != nil {
			payload, err = json.Marshal(body)
			if err != nil {
				return nil, nil, fmt.Errorf("encode request body: %w", err)
			}
		}
		resp, err = c.http.Post(ctx, url, c.headers(true), payload)
	default:
		return nil, nil, fmt.Errorf("unsupported method %q", method)
	}
	if err != nil {
		c.log.WarnObj("moku request failed", "moku_request", map[string]any{
			"method": method,
			"url":    url,
			"error":  err.Error(),
		})
		return nil, nil, &TransportError{Method: method, URL: url, Err: err}
	}

	c.log.DebugObj("moku request completed", "moku_request", map[string]any{
		"method": method,
		"url":    url,
		"status": resp.StatusCode(),
	})

	if status := resp.StatusCode(); status < 200 || status > 299 {
		return nil, resp, newStatusError(method, url, resp)
	}

	data, err := UnwrapEnvelope(resp.Body())
	if err != nil {
		return nil, resp, err
	}
	return data, resp, nil
}

func (c *Client) headers(withBody bool) map[string]string {
	headers := make(map[string]string, 2)
	if withBody {
		headers["Content-Type"] = "application/json"
	}
	if c.clientKey != "" {
		headers[ClientKeyHeader] = c.clientKey
	}
	return headers
}

func newStatusError(method, url string, resp httpclient.Response) *StatusError {
	se := &StatusError{
		Method:     method,
		URL:        url,
		StatusCode: resp.StatusCode(),
	}
	if env, err := decodeEnvelope(resp.Body()); err == nil {
		se.Code = env.Code
		se.Messages = env.Messages
	} else {
		se.Body = bodySnippet(resp.Body())
	}
	return se
}

// decodeText renders a scalar payload as text: JSON strings are unquoted,
// anything else keeps its literal form.
func decodeText(raw json.RawMessage) (string, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return "", nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("decode text payload: %w", err)
		}
		return s, nil
	}
	return trimmed, nil
}
