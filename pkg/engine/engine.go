// Package engine provides the dynamic-table protocol binding layout
// computations to a query layer.
//
// A query engine that supports table-valued computations calls into a named
// [Provider] with an equality constraint on the provider's designated
// parameter column plus optional, advisory ordering hints. The provider
// returns a fully materialized [Table]. The protocol is deliberately narrow:
// providers know nothing about any concrete query frontend, and the layout
// core knows nothing about providers.
package engine

import (
	"context"
	"sync"

	"github.com/traceband/traceband/pkg/errors"
	"github.com/traceband/traceband/pkg/layout"
)

// Constraint is an equality constraint on a provider column. The dynamic
// table mechanism only supports equality on the parameter column, so no
// operator field is carried.
type Constraint struct {
	Column string
	Value  string
}

// Provider computes a materialized table for one invocation. Implementations
// must be stateless across calls: repeated invocations with equal arguments
// return equal tables.
type Provider interface {
	ComputeTable(ctx context.Context, constraints []Constraint, hints []layout.OrderHint) (*Table, error)
}

// Registry maps table names to providers. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register binds a provider to a table name. Registering a name twice is an
// internal error: table names are a fixed part of the query surface.
func (r *Registry) Register(name string, p Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[name]; exists {
		return errors.New(errors.ErrCodeInternal, "table %q already registered", name)
	}
	r.providers[name] = p
	return nil
}

// Lookup resolves a table name to its provider.
func (r *Registry) Lookup(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeTableNotFound, "no such table: %q", name)
	}
	return p, nil
}

// Names returns the registered table names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.providers))
	for name := range r.providers {
		out = append(out, name)
	}
	return out
}
