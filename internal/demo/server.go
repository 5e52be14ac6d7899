// Package demo serves a small JSON lookup backend for trying the fetch
// pipeline against a real HTTP endpoint.
package demo

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// DefaultWords is the corpus searched by /lookup when none is given.
var DefaultWords = []string{
	"cat", "catalog", "catapult", "caterpillar", "cathedral",
	"dog", "dogma", "door", "dormant", "dot",
	"hello", "help", "helmet", "hero", "heron",
}

// Server answers prefix lookups over a fixed word list.
type Server struct {
	words    []string
	logger   *zap.Logger
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// lookupResponse is the body of a successful /lookup.
type lookupResponse struct {
	Query   string   `json:"query"`
	Results []string `json:"results"`
}

// errorResponse carries a message the fetch pipeline classifies as ERROR.
type errorResponse struct {
	Message string `json:"message"`
}

// New creates a server over words. A nil logger discards.
func New(words []string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	sorted := append([]string(nil), words...)
	sort.Strings(sorted)

	s := &Server{
		words:    sorted,
		logger:   logger,
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "actionz",
				Subsystem: "demo",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"path", "method", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "actionz",
				Subsystem: "demo",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"path", "method", "status"},
		),
	}
	s.registry.MustRegister(s.requests, s.duration)
	return s
}

// Registry returns the registry served on /metrics, so callers can add the
// collectors of their own pipelines to it.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

// Handler builds the router:
//
//	GET /lookup?q=   prefix search; 400 without q
//	GET /healthz     liveness
//	GET /metrics     Prometheus exposition
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(s.instrument)

	r.Get("/lookup", s.lookup)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}).ServeHTTP)

	return r
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) {
	q, ok := r.URL.Query()["q"]
	if !ok || len(q) == 0 {
		http.Error(w, "missing q", http.StatusBadRequest)
		return
	}
	query := strings.ToLower(strings.TrimSpace(q[0]))

	if strings.Contains(query, "fail") {
		writeJSON(w, errorResponse{Message: "lookup error"})
		return
	}

	results := make([]string, 0)
	for _, word := range s.words {
		if strings.HasPrefix(word, query) {
			results = append(results, word)
		}
	}
	writeJSON(w, lookupResponse{Query: query, Results: results})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// instrument records Prometheus metrics and logs one line per request.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		path := routePatternOrPath(r)
		statusLabel := strconv.Itoa(status)
		elapsed := time.Since(start)

		s.requests.WithLabelValues(path, r.Method, statusLabel).Inc()
		s.duration.WithLabelValues(path, r.Method, statusLabel).Observe(elapsed.Seconds())

		s.logger.Info("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", elapsed),
		)
	})
}

// routePatternOrPath prefers the chi route pattern to keep label
// cardinality bounded.
func routePatternOrPath(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
