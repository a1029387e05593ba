// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/primeapi/internal/domain/query"
	"github.com/okian/primeapi/internal/domain/types"
	"github.com/okian/primeapi/pkg/logger"
	"github.com/okian/primeapi/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// About summarizes the dataset.
	About(ctx context.Context) (types.About, error)

	// Numbers runs a range query.
	Numbers(ctx context.Context, p query.Params) ([]types.Number, error)

	// CheckIfPrime classifies a batch of raw integer tokens.
	CheckIfPrime(ctx context.Context, raw []string) ([]types.Lookup, error)

	// Health reports whether the backing store answers.
	Health(ctx context.Context) error
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for request and fault logging.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithCORSAllowOrigin sets the Access-Control-Allow-Origin value. Empty disables the header.
func WithCORSAllowOrigin(origin string) Option {
	return func(s *Server) {
		s.corsOrigin = origin
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	aboutHandler   *AboutHandler
	numbersHandler *NumbersHandler
	checkHandler   *CheckHandler
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler

	log        logger.Logger
	corsOrigin string
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		log:        logger.Named("http"),
		corsOrigin: "*",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.aboutHandler = NewAboutHandler(deps, s.log)
	s.numbersHandler = NewNumbersHandler(deps, s.log)
	s.checkHandler = NewCheckHandler(deps, s.log)
	s.healthHandler = NewHealthHandler(deps)
	s.statsHandler = NewStatsHandler(statsProvider)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.Handle("/{$}", s.wrap(s.aboutHandler.HandleAbout, "about"))
	mux.Handle("/about", s.wrap(s.aboutHandler.HandleAbout, "about"))
	mux.Handle("/numbers", s.wrap(s.numbersHandler.HandleNumbers, "numbers"))
	mux.Handle("/primeNumbers", s.wrap(s.numbersHandler.HandleNumbers, "numbers"))
	mux.Handle("/checkIfPrime", s.wrap(s.checkHandler.HandleCheck, "checkIfPrime"))
	mux.Handle("/healthz", s.wrap(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/stats", s.wrap(s.statsHandler.HandleStats, "stats"))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
}

// wrap applies the handler chain shared by every API route.
func (s *Server) wrap(h http.HandlerFunc, endpoint string) http.Handler {
	return RequestIDMiddleware(
		CORSMiddleware(s.corsOrigin,
			LoggingMiddleware(s.log,
				MetricsMiddleware(h, endpoint))))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
