package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MJE43/trainerrand/internal/legal"
	"github.com/MJE43/trainerrand/internal/runner"
	"github.com/MJE43/trainerrand/internal/scan"
	"github.com/MJE43/trainerrand/internal/store"
)

const (
	defaultRequestTimeout = 60 * time.Second
	defaultMaxBodyBytes   = 32 << 20
)

// Options tunes a Server. Zero values use the defaults.
type Options struct {
	// Addr is only reported in the startup log.
	Addr           string
	Catalog        *legal.Catalog
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	// LogOutput receives the API, run and security logs. Defaults to stdout.
	LogOutput      io.Writer
}

// Server handles HTTP requests
type Server struct {
	db             store.DB
	service        *runner.Service
	scanner        *scan.Scanner
	catalog        *legal.Catalog
	errorHandler   *ErrorHandler
	logger         *log.Logger
	securityLogger *SecurityLogger
	requestLog     func(http.Handler) http.Handler
	startTime      time.Time
	requestTimeout time.Duration
	maxBodyBytes   int64
}

// NewServer creates a new API server. db may be nil, in which case runs are
// not persisted and the run endpoints report the service as unavailable.
func NewServer(db store.DB, opts Options) *Server {
	out := opts.LogOutput
	if out == nil {
		out = os.Stdout
	}
	logger := log.New(out, "[API] ", log.LstdFlags|log.Lshortfile)
	securityLogger := NewSecurityLogger(log.New(out, "[SECURITY] ", log.LstdFlags|log.LUTC))

	catalog := opts.Catalog
	if catalog == nil {
		catalog = legal.DefaultCatalog()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}

	requestLog := middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  log.New(out, "[HTTP] ", log.LstdFlags),
		NoColor: true,
	})
	run := runner.New(catalog, log.New(out, "[RUN] ", log.LstdFlags|log.Lshortfile))
	server := &Server{
		db:             db,
		service:        runner.NewService(run, db, EngineVersion),
		scanner:        scan.NewScanner(runner.New(catalog, nil), 0),
		catalog:        catalog,
		errorHandler:   NewErrorHandler(logger, securityLogger),
		logger:         logger,
		securityLogger: securityLogger,
		requestLog:     requestLog,
		startTime:      time.Now(),
		requestTimeout: opts.RequestTimeout,
		maxBodyBytes:   opts.MaxBodyBytes,
	}

	addr := opts.Addr
	if addr == "" {
		addr = "unknown"
	}
	securityLogger.LogSystemStartup(addr, map[string]interface{}{
		"versions_available": len(legal.Groups()),
		"database_enabled":   db != nil,
		"request_timeout":    opts.RequestTimeout.String(),
	})

	return server
}

// Routes sets up the HTTP routes with proper middleware
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLog)
	r.Use(s.SecurityLoggingMiddleware)
	r.Use(s.errorHandler.RecoveryHandler)
	r.Use(s.CORSMiddleware)

	r.Get("/health", s.handleHealthCheck)
	r.Get("/health/live", s.handleLiveness)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/randomize", s.handleRandomize)
		r.Post("/scan", s.handleScan)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
		r.Get("/runs/{id}/trainers", s.handleGetRunTrainers)
		r.Get("/versions", s.handleListVersions)
		r.Get("/settings/default", s.handleDefaultSettings)
	})

	return r
}

// Shutdown records the shutdown reason and uptime.
func (s *Server) Shutdown(reason string) {
	s.securityLogger.LogSystemShutdown(reason, time.Since(s.startTime))
}

// writeJSON writes a JSON response with proper headers
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Printf("response_encode_failed status=%d err=%v", status, err)
	}
}
