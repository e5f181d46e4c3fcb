// Package store provides the trace catalog used in serve mode.
//
// The catalog maps logical trace names to file paths and metadata so API
// clients can query traces by name instead of by server-side path. Two
// backends are provided: an in-memory store for tests and single-process
// use, and a MongoDB store for deployments where several server instances
// share one catalog.
package store

import (
	"context"
	"time"

	"github.com/traceband/traceband/pkg/errors"
)

// TraceInfo describes one registered trace.
type TraceInfo struct {
	// Name is the unique logical name used in API requests.
	Name string `bson:"_id" json:"name"`

	// Path is the server-side location of the trace file.
	Path string `bson:"path" json:"path"`

	// Description is free-form text shown in listings.
	Description string `bson:"description,omitempty" json:"description,omitempty"`

	// AddedAt records when the trace was registered.
	AddedAt time.Time `bson:"added_at" json:"added_at"`
}

// Store is the trace catalog interface.
type Store interface {
	// Put registers a trace, replacing any existing entry with the same name.
	Put(ctx context.Context, info TraceInfo) error

	// Get returns the trace registered under name.
	Get(ctx context.Context, name string) (TraceInfo, error)

	// List returns all registered traces sorted by name.
	List(ctx context.Context) ([]TraceInfo, error)

	// Delete removes the trace registered under name.
	Delete(ctx context.Context, name string) error

	// Close releases the backend.
	Close() error
}

func validateInfo(info TraceInfo) error {
	if err := errors.ValidateTraceName(info.Name); err != nil {
		return err
	}
	return errors.ValidateTracePath(info.Path)
}
