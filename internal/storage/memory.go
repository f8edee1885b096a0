package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
)

// MemoryGateway keeps objects in a map. It backs the service test suites
// and small single-node deployments that opt out of object storage.
type MemoryGateway struct {
	mu      sync.RWMutex
	objects map[string][]byte

	// FailPut and FailDelete force errors on keys matching the entry as a
	// prefix, so tests can drive partial-failure paths even for generated
	// keys they cannot predict exactly.
	FailPut    map[string]error
	FailDelete map[string]error
}

func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		objects:    make(map[string][]byte),
		FailPut:    make(map[string]error),
		FailDelete: make(map[string]error),
	}
}

func (g *MemoryGateway) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if err := forcedFailure(g.FailPut, key); err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.objects[key] = data
	return nil
}

func (g *MemoryGateway) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	data, ok := g.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (g *MemoryGateway) Delete(ctx context.Context, key string) error {
	if err := forcedFailure(g.FailDelete, key); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.objects, key)
	return nil
}

func (g *MemoryGateway) Exists(ctx context.Context, key string) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.objects[key]
	return ok, nil
}

func forcedFailure(failures map[string]error, key string) error {
	for prefix, err := range failures {
		if strings.HasPrefix(key, prefix) {
			return err
		}
	}
	return nil
}

// Len reports the number of stored objects.
func (g *MemoryGateway) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.objects)
}
