package mock

import (
	"context"
	"sync"
	"time"

	"github.com/govseek/govseek"
)

var (
	_ govseek.ChunkWriter      = (*ChunkWriter)(nil)
	_ govseek.ChunkStoreOpener = (*ChunkStoreOpener)(nil)
)

// ChunkWriter is a mock implementation of govseek.ChunkWriter. With no
// AppendFn it records appended chunks in Chunks for inspection.
type ChunkWriter struct {
	AppendFn   func(ctx context.Context, chunk *govseek.Chunk) error
	FinalizeFn func() error

	mu        sync.Mutex
	Chunks    []govseek.Chunk
	Finalized bool
}

func (w *ChunkWriter) Append(ctx context.Context, chunk *govseek.Chunk) error {
	if w.AppendFn != nil {
		return w.AppendFn(ctx, chunk)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Chunks = append(w.Chunks, *chunk)
	return nil
}

func (w *ChunkWriter) Finalize() error {
	if w.FinalizeFn != nil {
		return w.FinalizeFn()
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Finalized = true
	return nil
}

// ChunkStoreOpener is a mock implementation of govseek.ChunkStoreOpener.
type ChunkStoreOpener struct {
	OpenStoreFn func(domain string, start time.Time) (govseek.ChunkWriter, error)
}

func (o *ChunkStoreOpener) OpenStore(domain string, start time.Time) (govseek.ChunkWriter, error) {
	return o.OpenStoreFn(domain, start)
}
