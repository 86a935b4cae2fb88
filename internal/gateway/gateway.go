// Package gateway issues outbound status, command, and acknowledgement calls
// to the REST collaborator.
package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultTimeout = 30 * time.Second

// Client posts event payloads to the REST collaborator and classifies the
// outcome. A nil error means success, including an empty response body;
// transport errors and non-2xx statuses are returned as errors rather than
// an in-band sentinel value.
type Client struct {
	http *resty.Client
}

// NewClient creates a gateway client with a default timeout.
func NewClient() *Client {
	return NewClientWithTimeout(defaultTimeout)
}

// NewClientWithTimeout creates a gateway client with the given request timeout.
func NewClientWithTimeout(timeout time.Duration) *Client {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &Client{http: client}
}

// Post sends body to url and returns the response body.
func (c *Client) Post(ctx context.Context, url string, body string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("gateway url is required")
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(url)
	if err != nil {
		return "", fmt.Errorf("gateway call to %s failed: %w", url, err)
	}

	if resp.IsError() {
		return "", fmt.Errorf("gateway call to %s returned status %d", url, resp.StatusCode())
	}

	return resp.String(), nil
}
