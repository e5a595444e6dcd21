package scraper

import (
	"context"

	"StockScraper/internal/models"
)

// Renderer loads a catalog page and extracts one raw record per product
// container. Implementations own their browser session for the duration of
// a single call and release it before returning.
type Renderer interface {
	Render(ctx context.Context, url string) ([]models.RawRecord, error)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, url string) ([]models.RawRecord, error)

// Render calls f.
func (f RendererFunc) Render(ctx context.Context, url string) ([]models.RawRecord, error) {
	return f(ctx, url)
}
