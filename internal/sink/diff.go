package sink

import (
	"context"
	"fmt"
	"log/slog"

	"StockScraper/internal/baseline"
	"StockScraper/internal/diff"
	"StockScraper/internal/models"
	"StockScraper/internal/notify"
	"StockScraper/internal/persist"
)

// Diff compares products with the baseline, sends one digest of the stock
// changes and writes the changes back to the store.
type Diff struct {
	store      baseline.Store
	dispatcher *notify.Dispatcher
	persister  *persist.Persister
	log        *slog.Logger
}

var _ Sink = (*Diff)(nil)

// NewDiff builds the sink. A nil dispatcher disables notifications.
func NewDiff(store baseline.Store, dispatcher *notify.Dispatcher, persister *persist.Persister, log *slog.Logger) *Diff {
	if log == nil {
		log = slog.Default()
	}
	return &Diff{store: store, dispatcher: dispatcher, persister: persister, log: log}
}

func (d *Diff) Name() string { return "diff" }

// Consume reads the baseline once, diffs, notifies and persists. Only the
// baseline read can fail the run: notification and persistence failures are
// logged and reported, and neither prevents the other.
func (d *Diff) Consume(ctx context.Context, products []models.Product) (Outcome, error) {
	records, err := d.store.ReadAll(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("read baseline: %w", err)
	}

	res := diff.Compute(products, records)
	for _, o := range res.Outcomes {
		switch o.Kind {
		case diff.Changed:
			d.log.Info("stock status changed",
				"item", o.Baseline.Name,
				"id", o.RecordID,
				"from", o.Baseline.Stock,
				"to", o.Product.StockStatus,
			)
		case diff.Unchanged:
			d.log.Debug("stock status unchanged", "item", o.Product.Name)
		case diff.Unmatched:
			closest, score := diff.Closest(o.Product.Name, records)
			d.log.Info("product not found in baseline", "item", o.Product.Name, "closest", closest, "similarity", score)
		}
	}

	report := &DiffReport{
		Unmatched: res.Unmatched,
		Unchanged: res.Unchanged,
		Changed:   len(res.Changes),
	}
	if d.dispatcher != nil {
		report.Notify = d.dispatcher.Dispatch(ctx, res.Products())
	}
	if d.persister != nil {
		report.Persist = d.persister.Apply(ctx, res.Updates)
	}

	d.log.Info("diff finished",
		"scraped", len(products),
		"changed", report.Changed,
		"unchanged", report.Unchanged,
		"unmatched", report.Unmatched,
	)
	return Outcome{Diff: report}, nil
}
