// Package memory is an in-process store.Backend.
package memory

import (
	"context"
	"sync"

	"github.com/reoring/dstruct"
	"github.com/reoring/dstruct/store"
)

// Backend keeps deep copies of document bodies in maps.
type Backend struct {
	mu   sync.RWMutex
	data map[string]map[string]any
}

// New returns an empty Backend.
func New() *Backend {
	return &Backend{data: make(map[string]map[string]any)}
}

func (b *Backend) Put(ctx context.Context, collection, key string, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.data[collection]
	if !ok {
		c = make(map[string]any)
		b.data[collection] = c
	}
	c[key] = dstruct.Copy(data)
	return nil
}

func (b *Backend) Get(ctx context.Context, collection, key string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.data[collection][key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return dstruct.Copy(v), nil
}

func (b *Backend) Delete(ctx context.Context, collection, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.data[collection][key]; !ok {
		return store.ErrNotFound
	}
	delete(b.data[collection], key)
	return nil
}

func (b *Backend) List(ctx context.Context, collection string) ([]store.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	recs := make([]store.Record, 0, len(b.data[collection]))
	for k, v := range b.data[collection] {
		recs = append(recs, store.Record{Key: k, Data: dstruct.Copy(v)})
	}
	store.SortRecords(recs)
	return recs, nil
}

func (b *Backend) Close() error { return nil }
