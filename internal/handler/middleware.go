package handler

import (
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"infostore/internal/access"
)

// Collectors of HTTP metrics.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "infostore_http_requests_total",
		Help: "Cumulative number of HTTP requests, by method and status code.",
	}, []string{"method", "code"})
	requestSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "infostore_http_request_seconds",
		Help:    "HTTP request latency, by method.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
)

// Middleware wraps a handler
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares so that the last one listed runs first
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for _, m := range middlewares {
		h = m(h)
	}
	return h
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Recover turns a panicking handler into a 500 response
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.WithFields(log.Fields{
					"panic": rec,
					"path":  r.URL.Path,
					"stack": string(debug.Stack()),
				}).Error("handler panicked")
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Logger logs every request and records its metrics
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		requestsTotal.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
		requestSeconds.WithLabelValues(r.Method).Observe(elapsed.Seconds())

		log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": elapsed,
		}).Debug("request")
	})
}

// NewMux registers the API, health and metrics routes
func NewMux(point *access.Point) http.Handler {
	h := NewInformationHandler(point)
	mux := http.NewServeMux()

	// Record endpoints
	mux.HandleFunc("GET /api/information", h.ListRoots)
	mux.HandleFunc("POST /api/information", h.CreateRecord)
	mux.HandleFunc("GET /api/information/{id}", h.GetRecord)
	mux.HandleFunc("PUT /api/information/{id}", h.UpdateRecord)
	mux.HandleFunc("DELETE /api/information/{id}", h.DeleteRecord)

	// Relation endpoints
	mux.HandleFunc("GET /api/information/{id}/children", h.ListChildren)
	mux.HandleFunc("GET /api/information/{id}/clones", h.ListClones)
	mux.HandleFunc("GET /api/information/{id}/origin", h.GetOrigin)

	// Import/export endpoints
	mux.HandleFunc("GET /api/export", h.Export)
	mux.HandleFunc("POST /api/import", h.Import)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if !point.Configured() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	return Chain(mux, Recover, Logger)
}
