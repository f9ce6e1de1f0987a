// Package metrics provides Prometheus instrumentation for the simulator.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// TradesTotal counts executed trades, partitioned by side.
	TradesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradetutor_trades_total",
		Help: "Total number of trades executed",
	}, []string{"side"})

	// DayAdvancesTotal counts simulated market days advanced.
	DayAdvancesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradetutor_day_advances_total",
		Help: "Total simulated days advanced",
	})

	// TicksSkipped counts timer ticks dropped because the previous day
	// advance was still in flight.
	TicksSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradetutor_clock_ticks_skipped_total",
		Help: "Timer ticks skipped while a day advance was in progress",
	})

	// ScenariosStarted counts scenario runs, partitioned by category.
	ScenariosStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradetutor_scenarios_started_total",
		Help: "Total scenario runs started",
	}, []string{"category"})

	// EvaluationsTotal counts completed scenario evaluations.
	EvaluationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradetutor_evaluations_total",
		Help: "Total scenario evaluations produced",
	})

	// OracleRequestDuration tracks text-generation latency by operation.
	OracleRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tradetutor_oracle_request_duration_seconds",
		Help:    "Oracle request duration in seconds",
		Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"operation", "outcome"})

	// WebSocketClients tracks connected WebSocket clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tradetutor_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradetutor_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tradetutor_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		path := r.URL.Path
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
