// Package notify formats stock changes into a single digest and delivers it.
package notify

import (
	"context"
	"log/slog"

	"StockScraper/internal/models"
)

// Sender delivers one rich-text (HTML subset) message to a fixed
// destination.
type Sender interface {
	Send(ctx context.Context, message string) error
}

// Report describes what a dispatch did. Err is set when the single send
// failed; it is never returned as a pipeline error.
type Report struct {
	Sent  bool
	Lines int
	Err   error
}

// Dispatcher batches changed products into one message per run.
type Dispatcher struct {
	sender Sender
	log    *slog.Logger
}

// NewDispatcher wraps a sender. A nil logger falls back to slog.Default.
func NewDispatcher(sender Sender, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{sender: sender, log: log}
}

// Dispatch sends at most one message. An empty list sends nothing. A send
// failure is logged and reported, not returned.
func (d *Dispatcher) Dispatch(ctx context.Context, products []models.Product) Report {
	if len(products) == 0 {
		return Report{}
	}

	report := Report{Lines: len(products)}
	if err := d.sender.Send(ctx, Digest(products)); err != nil {
		d.log.Error("sending batched notification failed", "lines", len(products), "err", err)
		report.Err = err
		return report
	}

	d.log.Info("batched notification sent", "lines", len(products))
	report.Sent = true
	return report
}
