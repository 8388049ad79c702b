// Package server serves rendered schema graphs over HTTP for the serve
// command.
//
// Every schema passed on the command line is addressed by its file stem:
//
//	GET /                     viewer for the first schema
//	GET /schemas              JSON list of served schemas
//	GET /view/{name}          HTML viewer
//	GET /svg/{name}           SVG drawing
//	GET /graph/{name}         graph JSON
//	GET /dot/{name}           Graphviz DOT
//	GET /_version             change counter polled by the viewer
//	GET /healthz              liveness probe
//
// Schemas are read from disk on demand and rendered through the pipeline
// runner, so its artifact cache serves repeated requests.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	apperrors "github.com/matzehuels/schemagraph/pkg/errors"
	"github.com/matzehuels/schemagraph/pkg/observability"
	"github.com/matzehuels/schemagraph/pkg/pipeline"
)

// VersionPath is polled by viewer pages when live reload is enabled.
const VersionPath = "/_version"

// Server renders schema files on request.
type Server struct {
	runner  *pipeline.Runner
	opts    pipeline.Options
	logger  *log.Logger
	names   []string
	paths   map[string]string
	version atomic.Uint64
	reload  bool
	poll    time.Duration
}

// Options configures a Server.
type Options struct {
	// Pipeline holds the render options; Formats is ignored.
	Pipeline pipeline.Options
	// LiveReload makes viewer pages poll VersionPath.
	LiveReload bool
	// PollInterval is how often viewers poll VersionPath.
	PollInterval time.Duration
	Logger       *log.Logger
}

// New creates a server for the schema files at paths. Names are file stems;
// a repeated stem gets a -2, -3, ... suffix.
func New(runner *pipeline.Runner, paths []string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = runner.Logger
	}
	s := &Server{
		runner: runner,
		opts:   opts.Pipeline,
		logger: logger,
		paths:  make(map[string]string, len(paths)),
		reload: opts.LiveReload,
		poll:   opts.PollInterval,
	}
	for _, p := range paths {
		stem := pipeline.Source{Name: p}.Stem()
		name := stem
		for i := 2; s.paths[name] != ""; i++ {
			name = stem + "-" + strconv.Itoa(i)
		}
		s.names = append(s.names, name)
		s.paths[name] = p
	}
	return s
}

// Names returns the served schema names in command-line order.
func (s *Server) Names() []string { return append([]string(nil), s.names...) }

// Invalidate marks every schema as changed. Open viewers reload on their
// next poll.
func (s *Server) Invalidate() {
	v := s.version.Add(1)
	s.logger.Debug("schemas changed", "version", v)
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get(VersionPath, s.handleVersion)
	r.Get("/schemas", s.handleList)
	r.Get("/", s.handleIndex)
	r.Get("/view/{name}", s.artifact(pipeline.FormatHTML, "text/html; charset=utf-8"))
	r.Get("/svg/{name}", s.artifact(pipeline.FormatSVG, "image/svg+xml"))
	r.Get("/graph/{name}", s.artifact(pipeline.FormatJSON, "application/json"))
	r.Get("/dot/{name}", s.artifact(pipeline.FormatDOT, "text/vnd.graphviz; charset=utf-8"))

	return r
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, s.version.Load())
}

type schemaInfo struct {
	Name string `json:"name"`
	Path string `json:"path"`
	View string `json:"view"`
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	list := make([]schemaInfo, 0, len(s.names))
	for _, name := range s.names {
		list = append(list, schemaInfo{Name: name, Path: s.paths[name], View: "/view/" + name})
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if len(s.names) == 0 {
		writeError(w, apperrors.New(apperrors.ErrCodeNotFound, "no schemas are being served"))
		return
	}
	http.Redirect(w, r, "/view/"+s.names[0], http.StatusFound)
}

// artifact returns a handler that renders format for the {name} schema.
func (s *Server) artifact(format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		path, ok := s.paths[name]
		if !ok {
			writeError(w, apperrors.New(apperrors.ErrCodeNotFound, "unknown schema %q", name))
			return
		}

		src, err := pipeline.LoadSource(path)
		if err != nil {
			writeError(w, err)
			return
		}

		opts := s.opts
		opts.Formats = []string{format}
		opts.Title = name
		if s.reload {
			opts.ReloadURL = VersionPath
			opts.ReloadInterval = s.poll
		}
		res, err := s.runner.Execute(r.Context(), src, opts)
		if err != nil {
			s.logger.Error("render failed", "schema", name, "error", err)
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("X-Schema-Warnings", strconv.Itoa(res.Stats.WarningCount))
		w.Write(res.Artifacts[format])
	}
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeInvalidSchema, apperrors.ErrCodeInvalidFormat, apperrors.ErrCodeInvalidInput,
		apperrors.ErrCodeInvalidStyle, apperrors.ErrCodeInvalidPath:
		return http.StatusUnprocessableEntity
	case apperrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorBody{
		Error: apperrors.UserMessage(err),
		Code:  string(apperrors.GetCode(err)),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requestLogger logs each request at debug level and reports it to the
// HTTP observability hooks.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			hooks := observability.HTTP()
			hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, time.Since(start))
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", chimiddleware.GetReqID(r.Context()))
		})
	}
}
