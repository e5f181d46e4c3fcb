// Package api implements the traceband HTTP API.
//
// The API exposes layout queries over traces registered in the catalog:
//
//	GET /healthz                               liveness probe
//	GET /v1/traces                             catalog listing
//	GET /v1/tracks?trace=<name>                track ids of a trace
//	GET /v1/layout?trace=<name>&tracks=1,2     layout query
//	GET /v1/tables/{table}?trace=<name>&...    dynamic-table query
//
// Layout responses default to JSON; the format parameter selects ascii,
// svg or dot artifacts instead. Errors are returned as a JSON envelope
// carrying the machine-readable error code.
package api

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/traceband/traceband/pkg/pipeline"
	"github.com/traceband/traceband/pkg/store"
)

// Server is the HTTP API server.
type Server struct {
	store  store.Store
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router
}

// NewServer creates a server over the given catalog and pipeline runner.
func NewServer(st store.Store, runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		store:  st,
		runner: runner,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger(logger))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/traces", s.handleTraces)
		r.Get("/tracks", s.handleTracks)
		r.Get("/layout", s.handleLayout)
		r.Get("/tables/{table}", s.handleTable)
	})
	s.router = r
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}
