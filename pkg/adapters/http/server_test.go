package http_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	tillerhttp "github.com/aretw0/tiller/pkg/adapters/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticStatus struct {
	value any
}

func (s staticStatus) Status() any { return s.value }

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "tiller_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	handler := tillerhttp.NewHandler(staticStatus{value: map[string]any{
		"run_id": "abc",
		"ok":     true,
	}}, reg)

	srv := httptest.NewServer(handler)
	defer srv.Close()

	t.Run("healthz", func(t *testing.T) {
		resp, err := srv.Client().Get(srv.URL + "/healthz")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("status serves JSON", func(t *testing.T) {
		resp, err := srv.Client().Get(srv.URL + "/status")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, 200, resp.StatusCode)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "abc", body["run_id"])
		assert.Equal(t, true, body["ok"])
	})

	t.Run("metrics exposes registered collectors", func(t *testing.T) {
		resp, err := srv.Client().Get(srv.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, 200, resp.StatusCode)
	})
}

func TestHandler_NoGatherer(t *testing.T) {
	handler := tillerhttp.NewHandler(staticStatus{}, nil)
	srv := httptest.NewServer(handler)
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 404, resp.StatusCode)
}
