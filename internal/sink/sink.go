// Package sink holds the strategies that consume a normalized product list
// at the end of a scrape cycle.
package sink

import (
	"context"

	"StockScraper/internal/models"
	"StockScraper/internal/notify"
	"StockScraper/internal/persist"
)

// Sink consumes the products of one scrape cycle. A returned error fails
// the run; downstream best-effort failures are reported in the Outcome.
type Sink interface {
	Name() string
	Consume(ctx context.Context, products []models.Product) (Outcome, error)
}

// Outcome is what a sink did with the products.
type Outcome struct {
	// Products is set by the return sink only.
	Products []models.Product
	// Diff is set by the diff sink only.
	Diff *DiffReport
	// Forwarded is set by the forward sink after a successful push.
	Forwarded bool
}

// DiffReport summarizes a diff+notify+persist pass.
type DiffReport struct {
	Unmatched int
	Unchanged int
	Changed   int
	Notify    notify.Report
	Persist   persist.Report
}
