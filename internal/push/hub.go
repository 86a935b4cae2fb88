package push

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const hubTimeout = 30 * time.Second

// Sender dispatches one prepared payload to one recipient tag on one channel.
type Sender interface {
	SendAndroid(ctx context.Context, payload []byte, tag string) error
	SendApple(ctx context.Context, payload []byte, tag string) error
}

// HubClient sends notifications through the push hub's REST interface.
// Channel and recipient targeting travel in the notification headers.
type HubClient struct {
	http *resty.Client
}

// NewHubClient creates a hub client for the given hub endpoint and access token.
func NewHubClient(hubURL string, token string) *HubClient {
	client := resty.New().
		SetBaseURL(hubURL).
		SetTimeout(hubTimeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", token)

	return &HubClient{http: client}
}

// SendAndroid dispatches an FCM-style payload to the recipient tag.
func (c *HubClient) SendAndroid(ctx context.Context, payload []byte, tag string) error {
	return c.send(ctx, payload, tag, "gcm")
}

// SendApple dispatches an APNS-style payload to the recipient tag.
func (c *HubClient) SendApple(ctx context.Context, payload []byte, tag string) error {
	return c.send(ctx, payload, tag, "apple")
}

func (c *HubClient) send(ctx context.Context, payload []byte, tag string, format string) error {
	if tag == "" {
		return fmt.Errorf("recipient tag is required")
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("ServiceBusNotification-Format", format).
		SetHeader("ServiceBusNotification-Tags", tag).
		SetBody(payload).
		Post("/messages")
	if err != nil {
		return fmt.Errorf("failed to send %s notification: %w", format, err)
	}

	if resp.IsError() {
		return fmt.Errorf("hub returned status %d for %s notification", resp.StatusCode(), format)
	}

	return nil
}
