package sink

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"StockScraper/internal/models"
)

// Pusher posts a payload to a push target.
type Pusher interface {
	Push(ctx context.Context, targetURL string, payload models.ForwardPayload) error
}

// Forward pushes the full product list to a URL as a single payload,
// without diffing.
type Forward struct {
	pusher    Pusher
	targetURL string
	now       func() time.Time
	log       *slog.Logger
}

var _ Sink = (*Forward)(nil)

// NewForward builds a forward sink for targetURL.
func NewForward(pusher Pusher, targetURL string, log *slog.Logger) *Forward {
	if log == nil {
		log = slog.Default()
	}
	return &Forward{pusher: pusher, targetURL: targetURL, now: time.Now, log: log}
}

func (f *Forward) Name() string { return "forward" }

// Consume posts the products. A failed push fails the run, since it is the
// only thing this mode does.
func (f *Forward) Consume(ctx context.Context, products []models.Product) (Outcome, error) {
	if f.targetURL == "" {
		return Outcome{}, fmt.Errorf("forward: no push target")
	}
	payload := models.ForwardPayload{
		ScrapedAt: f.now().UTC(),
		Count:     len(products),
		Products:  products,
	}
	if err := f.pusher.Push(ctx, f.targetURL, payload); err != nil {
		return Outcome{}, fmt.Errorf("forward products: %w", err)
	}
	f.log.Info("products forwarded", "target", f.targetURL, "count", len(products))
	return Outcome{Forwarded: true}, nil
}

// Return hands the normalized products back to the caller.
type Return struct{}

var _ Sink = Return{}

func (Return) Name() string { return "return" }

// Consume never fails.
func (Return) Consume(_ context.Context, products []models.Product) (Outcome, error) {
	return Outcome{Products: products}, nil
}
