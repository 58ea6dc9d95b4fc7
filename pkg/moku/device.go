package moku

import (
	"context"
	"fmt"
)

// Name returns the user-assigned device name.
func (c *Client) Name(ctx context.Context) (string, error) {
	return c.deviceText(ctx, "name")
}

// SerialNumber returns the device serial number.
func (c *Client) SerialNumber(ctx context.Context) (string, error) {
	return c.deviceText(ctx, "serial_number")
}

func (c *Client) deviceText(ctx context.Context, resource string) (string, error) {
	data, err := c.Get(ctx, c.BuildURL(DevicePrefix+"/"+resource))
	if err != nil {
		return "", fmt.Errorf("get %s: %w", resource, err)
	}
	text, err := decodeText(data)
	if err != nil {
		return "", fmt.Errorf("get %s: %w", resource, err)
	}
	return text, nil
}
