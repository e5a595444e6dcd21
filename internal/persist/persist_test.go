package persist

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"StockScraper/internal/models"

	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	calls  [][]models.BaselineUpdate
	failOn map[int]bool
	max    int
}

func (s *fakeStore) ReadAll(context.Context) ([]models.BaselineRecord, error) {
	return nil, nil
}

func (s *fakeStore) Update(_ context.Context, batch []models.BaselineUpdate) error {
	call := len(s.calls)
	s.calls = append(s.calls, append([]models.BaselineUpdate(nil), batch...))
	if s.failOn[call] {
		return errors.New("store rejected batch")
	}
	return nil
}

func (s *fakeStore) MaxBatch() int {
	return s.max
}

func makeUpdates(n int) []models.BaselineUpdate {
	updates := make([]models.BaselineUpdate, n)
	for i := range updates {
		updates[i] = models.BaselineUpdate{
			ID:     fmt.Sprintf("rec%02d", i),
			Fields: models.UpdateFields{Price: fmt.Sprintf("$%d", i), Stock: models.InStock},
		}
	}
	return updates
}

func TestApplyTwentyThreeUpdates(t *testing.T) {
	store := &fakeStore{}
	updates := makeUpdates(23)

	report := New(store, 10, nil).Apply(context.Background(), updates)

	require.Len(t, store.calls, 3)
	require.Len(t, store.calls[0], 10)
	require.Len(t, store.calls[1], 10)
	require.Len(t, store.calls[2], 3)

	var flat []models.BaselineUpdate
	for _, c := range store.calls {
		flat = append(flat, c...)
	}
	require.Equal(t, updates, flat)
	require.Equal(t, 23, report.Applied)
	require.Equal(t, 3, report.Chunks)
	require.False(t, report.Failed())
}

func TestApplyNothing(t *testing.T) {
	store := &fakeStore{}
	report := New(store, 10, nil).Apply(context.Background(), nil)

	require.Empty(t, store.calls)
	require.Zero(t, report.Chunks)
}

func TestApplyContinuesAfterFailedChunk(t *testing.T) {
	store := &fakeStore{failOn: map[int]bool{1: true}}
	report := New(store, 10, nil).Apply(context.Background(), makeUpdates(25))

	require.Len(t, store.calls, 3)
	require.True(t, report.Failed())
	require.Len(t, report.FailedChunks, 1)
	require.Equal(t, 1, report.FailedChunks[0].Index)
	require.Equal(t, "rec10", report.FailedChunks[0].IDs[0])
	require.Equal(t, 15, report.Applied)
}

func TestChunkSizeClampedToStoreCap(t *testing.T) {
	store := &fakeStore{max: 5}
	p := New(store, 50, nil)
	require.Equal(t, 5, p.ChunkSize())

	p.Apply(context.Background(), makeUpdates(12))
	require.Len(t, store.calls, 3)
	require.Len(t, store.calls[2], 2)
}

func TestDefaultChunkSize(t *testing.T) {
	require.Equal(t, DefaultChunkSize, New(&fakeStore{}, 0, nil).ChunkSize())
}

func TestChunk(t *testing.T) {
	require.Nil(t, Chunk(nil, 10))
	chunks := Chunk(makeUpdates(20), 10)
	require.Len(t, chunks, 2)
	require.Len(t, chunks[1], 10)
}
