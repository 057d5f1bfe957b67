package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"maps"
	"mime"
	"net/http"
	"slices"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thoreinstein/rx/internal/loader"
	"github.com/thoreinstein/rx/internal/logging"
	"github.com/thoreinstein/rx/pkg/fileutil"
	"github.com/thoreinstein/rx/pkg/rx"
)

// Timeouts applied by ListenAndServe.
const (
	ReadHeaderTimeout = 5 * time.Second
	ShutdownTimeout   = 5 * time.Second
)

// ErrDuplicateSchema indicates two schemas registered under one name.
var ErrDuplicateSchema = errors.New("duplicate schema name")

// Server checks request bodies against named, precompiled schemas.
type Server struct {
	schemas  map[string]rx.Validator
	logger   *slog.Logger
	metrics  *Metrics
	gatherer prometheus.Gatherer
}

// New creates a Server with its own Prometheus registry. A nil logger
// discards output.
func New(logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewDiscard()
	}
	reg := prometheus.NewRegistry()
	return &Server{
		schemas:  map[string]rx.Validator{},
		logger:   logger,
		metrics:  NewMetrics(reg),
		gatherer: reg,
	}
}

// AddSchema makes v available at /check/{name}. Register every schema
// before serving.
func (s *Server) AddSchema(name string, v rx.Validator) error {
	if _, ok := s.schemas[name]; ok {
		return errors.Wrapf(ErrDuplicateSchema, "%q", name)
	}
	s.schemas[name] = v
	return nil
}

// Names returns the registered schema names in order.
func (s *Server) Names() []string {
	return slices.Sorted(maps.Keys(s.schemas))
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ALIVE"))
	})
	r.Get("/schemas", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, s.Names())
	})
	r.Post("/check/{schema}", s.check)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return r
}

// CheckResponse is the body returned by POST /check/{schema}.
type CheckResponse struct {
	Schema  string `json:"schema"`
	Checked int    `json:"checked"`
	Valid   bool   `json:"valid"`
	Failed  []int  `json:"failed,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) check(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := chi.URLParam(r, "schema")

	v, ok := s.schemas[name]
	if !ok {
		writeError(w, http.StatusNotFound, errors.Newf("unknown schema %q", name))
		return
	}

	format, err := requestFormat(r.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, http.StatusUnsupportedMediaType, err)
		return
	}

	data, err := fileutil.ReadWithLimit(r.Body)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, fileutil.ErrFileTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, status, err)
		return
	}

	docs, err := loader.Decode(data, format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(docs) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("request body contains no documents"))
		return
	}

	resp := CheckResponse{Schema: name, Checked: len(docs), Valid: true}
	for i, doc := range docs {
		if !v.Check(doc) {
			resp.Valid = false
			resp.Failed = append(resp.Failed, i+1)
		}
	}
	s.metrics.observe(name, len(docs)-len(resp.Failed), len(resp.Failed), time.Since(start).Seconds())

	status := http.StatusOK
	if !resp.Valid {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

// requestFormat maps a Content-Type header to a document format. An empty
// header means JSON.
func requestFormat(contentType string) (loader.Format, error) {
	if contentType == "" {
		return loader.FormatJSON, nil
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", errors.Wrap(err, "parsing Content-Type")
	}
	switch mediaType {
	case "application/json":
		return loader.FormatJSON, nil
	case "application/yaml", "application/x-yaml", "text/yaml":
		return loader.FormatYAML, nil
	case "application/toml":
		return loader.FormatTOML, nil
	case "text/markdown":
		return loader.FormatMarkdown, nil
	}
	return "", errors.Newf("unsupported media type %q", mediaType)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// ListenAndServe serves Handler on addr until ctx is canceled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("serving schemas", "addr", addr, "schemas", len(s.schemas))

	var err error
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if serr := srv.Shutdown(shutdownCtx); serr != nil {
			return errors.Wrap(serr, "shutting down server")
		}
		err = <-errCh
	case err = <-errCh:
	}

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "serving schemas")
	}
	return nil
}
