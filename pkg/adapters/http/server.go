// Package http exposes an operational HTTP surface for a running
// preparation host: health, last-run status and prometheus metrics.
package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatusProvider reports the state of the most recent preparation run.
// The returned value is serialized to JSON as-is.
type StatusProvider interface {
	Status() any
}

// NewHandler creates the ops HTTP handler.
// A nil gatherer disables the /metrics endpoint.
func NewHandler(status StatusProvider, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/status", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status.Status()); err != nil {
			http.Error(w, "failed to encode status", http.StatusInternalServerError)
		}
	})

	if gatherer != nil {
		r.Get("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}).ServeHTTP)
	}

	return r
}
