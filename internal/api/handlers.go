package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/traceband/traceband/pkg/engine"
	"github.com/traceband/traceband/pkg/errors"
	"github.com/traceband/traceband/pkg/layout"
	"github.com/traceband/traceband/pkg/pipeline"
	"github.com/traceband/traceband/pkg/render"
	"github.com/traceband/traceband/pkg/store"
)

var formatContentTypes = map[string]string{
	render.FormatJSON:  "application/json",
	render.FormatASCII: "text/plain; charset=utf-8",
	render.FormatSVG:   "image/svg+xml",
	render.FormatDOT:   "text/vnd.graphviz",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleTraces(w http.ResponseWriter, r *http.Request) {
	traces, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, map[string]any{"traces": traces})
}

func (s *Server) lookupTrace(r *http.Request) (store.TraceInfo, error) {
	name := r.URL.Query().Get("trace")
	if name == "" {
		return store.TraceInfo{}, errors.New(errors.ErrCodeInvalidInput, "trace parameter is required")
	}
	return s.store.Get(r.Context(), name)
}

func (s *Server) handleTracks(w http.ResponseWriter, r *http.Request) {
	info, err := s.lookupTrace(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tbl, _, err := s.runner.LoadTrace(r.Context(), info.Path)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, map[string]any{
		"trace":  info.Name,
		"tracks": tbl.Tracks(),
		"slices": tbl.Len(),
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	info, err := s.lookupTrace(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := r.URL.Query()

	format := q.Get("format")
	if format == "" {
		format = render.FormatJSON
	}
	if !render.IsValidFormat(format) {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidFormat,
			"unknown format %q (supported: %v)", format, render.Formats))
		return
	}

	result, err := s.runner.Execute(r.Context(), pipeline.Options{
		TracePath: info.Path,
		Filter:    q.Get("tracks"),
		Hints:     layout.ParseHints(q.Get("order")),
		Formats:   []string{format},
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", formatContentTypes[format])
	_, _ = w.Write(result.Artifacts[format])
}

// handleTable serves the dynamic-table protocol: every query parameter
// except trace and order becomes an equality constraint on the named
// column.
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	info, err := s.lookupTrace(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tbl, _, err := s.runner.LoadTrace(r.Context(), info.Path)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	registry := engine.NewRegistry()
	if err := registry.Register(engine.SliceLayoutTableName, engine.NewSliceLayoutProvider(tbl)); err != nil {
		s.writeError(w, r, err)
		return
	}
	provider, err := registry.Lookup(chi.URLParam(r, "table"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	var constraints []engine.Constraint
	for column, values := range q {
		if column == "trace" || column == "order" || len(values) == 0 {
			continue
		}
		constraints = append(constraints, engine.Constraint{Column: column, Value: values[0]})
	}

	out, err := provider.ComputeTable(r.Context(), constraints, layout.ParseHints(q.Get("order")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, map[string]any{
		"columns":   out.Columns,
		"rows":      out.Rows,
		"row_count": out.RowCount(),
	})
}
