package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"StockScraper/internal/models"
	"StockScraper/internal/normalize"
	"StockScraper/internal/scraper"
	"StockScraper/internal/sink"
)

var tracer = otel.Tracer("StockScraper/internal/app")

// ErrNoURL is returned when the pipeline has no catalog page to scrape.
var ErrNoURL = errors.New("no catalog url configured")

// Result is what a pipeline run reports to its trigger.
type Result struct {
	Count    int
	Products []models.Product
	Sink     string
	Outcome  sink.Outcome
}

// Pipeline runs one scrape cycle: render, normalize, then hand the products
// to a sink. Runs are serialized.
type Pipeline struct {
	renderer scraper.Renderer
	url      string
	log      *slog.Logger
	slot     chan struct{}
}

// NewPipeline builds a pipeline for the catalog page at url.
func NewPipeline(renderer scraper.Renderer, url string, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{renderer: renderer, url: url, log: log, slot: make(chan struct{}, 1)}
}

// Run executes one cycle. A render failure fails the run with no partial
// result; everything downstream is up to the sink. A caller waiting behind
// another run gives up when ctx is done.
func (p *Pipeline) Run(ctx context.Context, s sink.Sink) (Result, error) {
	select {
	case p.slot <- struct{}{}:
	case <-ctx.Done():
		return Result{}, fmt.Errorf("wait for running scrape: %w", ctx.Err())
	}
	defer func() { <-p.slot }()
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("wait for running scrape: %w", err)
	}

	ctx, span := tracer.Start(ctx, "pipeline.Run")
	defer span.End()
	span.SetAttributes(attribute.String("pipeline.sink", s.Name()))

	fail := func(err error) (Result, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.log.Error("scrape cycle failed", "sink", s.Name(), "err", err)
		return Result{}, err
	}

	if p.url == "" {
		return fail(ErrNoURL)
	}

	p.log.Info("--- starting scrape cycle ---", "sink", s.Name(), "url", p.url)
	raws, err := p.renderer.Render(ctx, p.url)
	if err != nil {
		return fail(fmt.Errorf("scrape products: %w", err))
	}
	products := normalize.Products(raws)
	span.SetAttributes(attribute.Int("pipeline.products", len(products)))

	out, err := s.Consume(ctx, products)
	if err != nil {
		return fail(err)
	}

	p.log.Info("--- scrape cycle finished ---", "sink", s.Name(), "count", len(products))
	return Result{
		Count:    len(products),
		Products: out.Products,
		Sink:     s.Name(),
		Outcome:  out,
	}, nil
}
