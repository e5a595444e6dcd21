// Package baseline defines the store that holds the last known state of
// every tracked product.
package baseline

import (
	"context"

	"StockScraper/internal/models"
)

// Store is the baseline backend consumed by the pipeline.
type Store interface {
	// ReadAll returns every tracked record in one bulk read.
	ReadAll(ctx context.Context) ([]models.BaselineRecord, error)
	// Update overwrites price and stock on each record of the batch. The
	// batch is never larger than the store's per-call cap.
	Update(ctx context.Context, batch []models.BaselineUpdate) error
}

// Limited is implemented by stores with a per-call update cap.
type Limited interface {
	MaxBatch() int
}
