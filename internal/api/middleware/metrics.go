package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dockpanel_http_requests_total",
			Help: "Panel API requests by route, status and outcome kind",
		},
		[]string{"method", "route", "status", "outcome"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "dockpanel_http_request_duration_seconds",
			Help: "Panel API request duration in seconds",
			// Compose commands run inside the request, so the tail is long.
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 15, 60, 300},
		},
		[]string{"method", "route", "outcome"},
	)
)

// Outcome names the kind of result a status code stands for, following
// the status mapping of the handlers.
func Outcome(status int) string {
	switch {
	case status < 400:
		return "ok"
	case status == http.StatusBadRequest:
		return "invalid"
	case status == http.StatusUnauthorized:
		return "unauthorized"
	case status == http.StatusNotFound:
		return "not_found"
	case status == http.StatusConflict:
		return "conflict"
	case status == http.StatusBadGateway:
		return "docker_failed"
	case status == http.StatusServiceUnavailable:
		return "unavailable"
	case status < 500:
		return "client_error"
	}
	return "internal"
}

// Metrics records request counts and latencies keyed by chi route pattern.
// Requests that match no route share the "unmatched" route label so
// scanners cannot blow up the series count.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		outcome := Outcome(ww.status)

		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(ww.status), outcome).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route, outcome).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
