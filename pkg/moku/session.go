package moku

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/samvad-hq/moku-rest-client/pkg/httpclient"
)

// ClaimRequest is the body of the claim_ownership call.
type ClaimRequest struct {
	ForceConnect bool `json:"force_connect"`
}

// Claim takes ownership of the device and keeps the returned client key for
// all later requests. force takes the device from any current owner.
func (c *Client) Claim(ctx context.Context, force bool) (string, error) {
	url := c.BuildURL(DevicePrefix + "/claim_ownership")
	data, resp, err := c.do(ctx, http.MethodPost, url, ClaimRequest{ForceConnect: force})
	if err != nil {
		return "", fmt.Errorf("claim ownership: %w", err)
	}

	key := clientKeyFrom(data, resp)
	if key == "" {
		return "", fmt.Errorf("claim ownership: %w", ErrNoClientKey)
	}
	c.clientKey = key
	return key, nil
}

// Relinquish releases ownership and forgets the client key. It does nothing
// when no key is held.
func (c *Client) Relinquish(ctx context.Context) error {
	if c.clientKey == "" {
		return nil
	}
	url := c.BuildURL(DevicePrefix + "/relinquish_ownership")
	if _, err := c.Post(ctx, url, nil); err != nil {
		return fmt.Errorf("relinquish ownership: %w", err)
	}
	c.clientKey = ""
	return nil
}

// clientKeyFrom reads the key from the data payload, which the device sends
// as a bare JSON string, falling back to the response header.
func clientKeyFrom(data json.RawMessage, resp httpclient.Response) string {
	var key string
	if err := json.Unmarshal(data, &key); err == nil {
		if key = strings.TrimSpace(key); key != "" {
			return key
		}
	}
	if resp == nil {
		return ""
	}
	return strings.TrimSpace(resp.Header(ClientKeyHeader))
}
