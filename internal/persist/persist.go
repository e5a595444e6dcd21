// Package persist applies baseline updates in bounded, sequential chunks.
package persist

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"StockScraper/internal/baseline"
	"StockScraper/internal/models"
)

// DefaultChunkSize matches the per-request cap of the Airtable API.
const DefaultChunkSize = 10

var tracer = otel.Tracer("StockScraper/internal/persist")

// ChunkError records one failed chunk.
type ChunkError struct {
	Index int
	IDs   []string
	Err   error
}

// Report describes the outcome of Apply. Partial application is a normal
// outcome: FailedChunks lists what did not make it.
type Report struct {
	Chunks       int
	Applied      int
	FailedChunks []ChunkError
}

// Failed reports whether any chunk failed.
func (r Report) Failed() bool {
	return len(r.FailedChunks) > 0
}

// Persister writes updates to a baseline store.
type Persister struct {
	store     baseline.Store
	chunkSize int
	log       *slog.Logger
}

// New builds a persister. A chunkSize <= 0 means DefaultChunkSize; the size
// is clamped to the store's own cap when it has one.
func New(store baseline.Store, chunkSize int, log *slog.Logger) *Persister {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if l, ok := store.(baseline.Limited); ok && l.MaxBatch() > 0 && chunkSize > l.MaxBatch() {
		chunkSize = l.MaxBatch()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Persister{store: store, chunkSize: chunkSize, log: log}
}

// ChunkSize is the effective chunk size.
func (p *Persister) ChunkSize() int {
	return p.chunkSize
}

// Apply sends the updates in input order, one chunk at a time. A failing
// chunk is logged and recorded; the remaining chunks are still attempted and
// nothing is retried or rolled back.
func (p *Persister) Apply(ctx context.Context, updates []models.BaselineUpdate) Report {
	var report Report
	for i, chunk := range Chunk(updates, p.chunkSize) {
		report.Chunks++
		if err := p.applyChunk(ctx, i, chunk); err != nil {
			ids := make([]string, len(chunk))
			for j, u := range chunk {
				ids[j] = u.ID
			}
			p.log.Error("updating baseline chunk failed", "chunk", i, "size", len(chunk), "err", err)
			report.FailedChunks = append(report.FailedChunks, ChunkError{Index: i, IDs: ids, Err: err})
			continue
		}
		report.Applied += len(chunk)
	}

	if report.Chunks > 0 && !report.Failed() {
		p.log.Info("baseline records updated", "records", report.Applied, "chunks", report.Chunks)
	}
	return report
}

func (p *Persister) applyChunk(ctx context.Context, index int, chunk []models.BaselineUpdate) error {
	ctx, span := tracer.Start(ctx, "persist.chunk",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.Int("chunk.index", index), attribute.Int("chunk.size", len(chunk))),
	)
	defer span.End()

	if err := p.store.Update(ctx, chunk); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "chunk update failed")
		return err
	}
	return nil
}

// Chunk splits updates into consecutive slices of at most size elements.
func Chunk(updates []models.BaselineUpdate, size int) [][]models.BaselineUpdate {
	if size <= 0 {
		size = DefaultChunkSize
	}
	var chunks [][]models.BaselineUpdate
	for start := 0; start < len(updates); start += size {
		end := min(start+size, len(updates))
		chunks = append(chunks, updates[start:end])
	}
	return chunks
}
