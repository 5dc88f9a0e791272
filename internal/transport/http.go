package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tupadhub/tupadhub/internal/domain/project"
	"github.com/tupadhub/tupadhub/internal/export"
)

// Exporter renders export documents.
type Exporter interface {
	Render(ctx context.Context, format export.Format, id string) (*export.Document, error)
}

// Options configures the HTTP router. Nil handlers leave their routes unmounted.
type Options struct {
	MCP     http.Handler
	Metrics http.Handler
	Exports Exporter
	Logger  *slog.Logger
}

// ErrorBody is the JSON payload of a failed download.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type server struct {
	exports Exporter
	logger  *slog.Logger
}

// NewServer creates the HTTP router: the streamable MCP endpoint, health,
// metrics and export downloads.
func NewServer(opts Options) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	srv := &server{exports: opts.Exports, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", srv.handleHealth)
	if opts.MCP != nil {
		r.Handle("/mcp", opts.MCP)
	}
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics)
	}
	if opts.Exports != nil {
		r.Route("/exports", func(r chi.Router) {
			r.Get("/projects.json", srv.handleExport(export.FormatJSON))
			r.Get("/projects.xlsx", srv.handleExport(export.FormatXLSX))
			r.Get("/projects/{id}.csv", srv.handleExport(export.FormatCSV))
		})
	}

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *server) handleExport(format export.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		doc, err := s.exports.Render(r.Context(), format, id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", doc.ContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Name+`"`)
		w.Header().Set("Content-Length", strconv.Itoa(len(doc.Body)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(doc.Body)
	}
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := http.StatusInternalServerError, ErrorBody{Code: "INTERNAL", Message: "export failed"}
	switch {
	case errors.Is(err, project.ErrProjectNotFound):
		status, body = http.StatusNotFound, ErrorBody{Code: "PROJECT_NOT_FOUND", Message: "project not found"}
	case errors.Is(err, export.ErrUnknownFormat), errors.Is(err, export.ErrProjectRequired):
		status, body = http.StatusBadRequest, ErrorBody{Code: "BAD_REQUEST", Message: err.Error()}
	default:
		s.logger.Error("export download failed", "path", r.URL.Path, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
