package store

import (
	"context"
	"sort"
	"sync"

	"github.com/traceband/traceband/pkg/errors"
)

// MemoryStore is an in-process trace catalog. Safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	traces map[string]TraceInfo
}

// NewMemoryStore creates an empty in-memory catalog.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{traces: make(map[string]TraceInfo)}
}

// Put registers a trace, replacing any existing entry with the same name.
func (s *MemoryStore) Put(ctx context.Context, info TraceInfo) error {
	if err := validateInfo(info); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.traces[info.Name] = info
	return nil
}

// Get returns the trace registered under name.
func (s *MemoryStore) Get(ctx context.Context, name string) (TraceInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.traces[name]
	if !ok {
		return TraceInfo{}, errors.New(errors.ErrCodeTraceNotFound, "trace %q is not registered", name)
	}
	return info, nil
}

// List returns all registered traces sorted by name.
func (s *MemoryStore) List(ctx context.Context) ([]TraceInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]TraceInfo, 0, len(s.traces))
	for _, info := range s.traces {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Delete removes the trace registered under name.
func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.traces[name]; !ok {
		return errors.New(errors.ErrCodeTraceNotFound, "trace %q is not registered", name)
	}
	delete(s.traces, name)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
