// Package batch buffers generated documents and writes them to a collection
// in fixed-size bulk inserts.
package batch

import (
	"context"
	"fmt"
	"time"

	pkgerrors "github.com/angelmondragon/activity-seeder/pkg/errors"
)

// Inserter is the slice of docstore.Collection the persister needs.
type Inserter[T any] interface {
	Name() string
	InsertMany(ctx context.Context, docs []T) ([]string, error)
}

// Flushed describes one successful batch.
type Flushed struct {
	Collection string
	Batch      int
	Size       int
	Persisted  int
	Duration   time.Duration
}

// Persister accumulates documents and submits them when Size is reached.
// A failed batch is never retried: documents from earlier batches stay
// written, the failed and pending ones are dropped.
type Persister[T any] struct {
	store   Inserter[T]
	size    int
	pending []T
	ids     []string
	batches int
	added   int

	// OnFlush, when set, observes every successful batch.
	OnFlush func(ctx context.Context, f Flushed)
}

// NewPersister returns a persister flushing every size documents.
func NewPersister[T any](store Inserter[T], size int) (*Persister[T], error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "batch store required")
	}
	if size < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeConfig, fmt.Sprintf("batch size must be positive, got %d", size))
	}
	return &Persister[T]{store: store, size: size, pending: make([]T, 0, size)}, nil
}

// Add buffers doc and flushes when the batch is full.
func (p *Persister[T]) Add(ctx context.Context, doc T) error {
	p.pending = append(p.pending, doc)
	p.added++
	if len(p.pending) >= p.size {
		return p.Flush(ctx)
	}
	return nil
}

// Flush submits whatever is pending. It is a no-op on an empty buffer.
func (p *Persister[T]) Flush(ctx context.Context) error {
	if len(p.pending) == 0 {
		return nil
	}
	batch := p.pending
	p.pending = make([]T, 0, p.size)
	p.batches++

	if err := ctx.Err(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeCanceled, err, fmt.Sprintf("%s: run canceled before batch %d", p.store.Name(), p.batches)).
			WithDetails(p.details(len(batch)))
	}

	start := time.Now()
	ids, err := p.store.InsertMany(ctx, batch)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, fmt.Sprintf("%s: batch %d rejected", p.store.Name(), p.batches)).
			WithDetails(p.details(len(batch)))
	}
	if len(ids) != len(batch) {
		return pkgerrors.New(pkgerrors.CodePersistence,
			fmt.Sprintf("%s: batch %d returned %d ids for %d documents", p.store.Name(), p.batches, len(ids), len(batch))).
			WithDetails(p.details(len(batch)))
	}
	p.ids = append(p.ids, ids...)

	if p.OnFlush != nil {
		p.OnFlush(ctx, Flushed{
			Collection: p.store.Name(),
			Batch:      p.batches,
			Size:       len(batch),
			Persisted:  len(p.ids),
			Duration:   time.Since(start),
		})
	}
	return nil
}

func (p *Persister[T]) details(batchSize int) map[string]any {
	return map[string]any{
		"collection": p.store.Name(),
		"batch":      p.batches,
		"batch_size": batchSize,
		"attempted":  p.added,
		"persisted":  len(p.ids),
	}
}

// IDs returns the assigned identifiers in submission order.
func (p *Persister[T]) IDs() []string {
	out := make([]string, len(p.ids))
	copy(out, p.ids)
	return out
}

// Persisted is the number of documents written so far.
func (p *Persister[T]) Persisted() int { return len(p.ids) }

// Pending is the number of buffered documents.
func (p *Persister[T]) Pending() int { return len(p.pending) }

// PersistAll streams n documents from next through a persister and flushes
// the remainder.
func PersistAll[T any](ctx context.Context, p *Persister[T], n int, next func() T) error {
	for i := 0; i < n; i++ {
		if err := p.Add(ctx, next()); err != nil {
			return err
		}
	}
	return p.Flush(ctx)
}
