package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"StockScraper/internal/models"
)

// WebhookClient pushes scrape results to caller-supplied URLs.
type WebhookClient struct {
	client *resty.Client
}

// NewWebhookClient builds a client. A nil resty client gets a default one.
func NewWebhookClient(client *resty.Client) *WebhookClient {
	if client == nil {
		client = resty.New().SetTimeout(60 * time.Second)
	}
	return &WebhookClient{client: client}
}

// Push posts the payload as JSON. Any non-2xx status is an error.
func (c *WebhookClient) Push(ctx context.Context, targetURL string, payload models.ForwardPayload) error {
	res, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(targetURL)
	if err != nil {
		return fmt.Errorf("post to webhook: %w", err)
	}
	if res.IsError() {
		return fmt.Errorf("webhook returned an error. Status: %s | Body: %s", res.Status(), res.String())
	}
	return nil
}
