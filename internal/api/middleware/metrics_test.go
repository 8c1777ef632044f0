package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestOutcome(t *testing.T) {
	tests := map[int]string{
		http.StatusOK:                  "ok",
		http.StatusCreated:             "ok",
		http.StatusBadRequest:          "invalid",
		http.StatusUnauthorized:        "unauthorized",
		http.StatusNotFound:            "not_found",
		http.StatusConflict:            "conflict",
		http.StatusBadGateway:          "docker_failed",
		http.StatusServiceUnavailable:  "unavailable",
		http.StatusMethodNotAllowed:    "client_error",
		http.StatusInternalServerError: "internal",
	}
	for status, want := range tests {
		assert.Equal(t, want, Outcome(status), "status %d", status)
	}
}

func TestMetrics_LabelsByRoutePatternAndOutcome(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Post("/projects/{name}/run", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	counter := httpRequestsTotal.WithLabelValues("POST", "/projects/{name}/run", "502", "docker_failed")
	before := testutil.ToFloat64(counter)

	for _, name := range []string{"web", "api"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/projects/"+name+"/run", nil))
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	}

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}

func TestMetrics_UnmatchedRoute(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {})

	counter := httpRequestsTotal.WithLabelValues("GET", "unmatched", "404", "not_found")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wp-admin/login.php", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
