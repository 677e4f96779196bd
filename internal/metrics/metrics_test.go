package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vladislav-Dmitriev/well-net/pkg/network"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, req)
	require.Equal(t, 200, w.Code)
	b, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	return string(b)
}

func TestObserveTriple(t *testing.T) {
	m := New(false)
	k := network.Key{Contour: "main", Horizon: "AB1", Coefficient: 1}

	m.ObserveTriple(k, 20*time.Millisecond, 4, nil)
	m.ObserveTriple(k, 10*time.Millisecond, 2, nil)
	m.ObserveTriple(k, 0, 0, errors.New("boom"))

	body := scrape(t, m)
	assert.Contains(t, body, `wellnet_triples_total{status="ok"} 2`)
	assert.Contains(t, body, `wellnet_triples_total{status="failed"} 1`)
	assert.Contains(t, body, `wellnet_selected_wells_sum{horizon="AB1"} 6`)
	assert.Contains(t, body, `wellnet_triple_duration_seconds_count{horizon="AB1"} 2`)
}

func TestObserveRunAndRequest(t *testing.T) {
	m := New(false)
	m.ObserveRun("partial")
	m.ObserveRequest("/api/design", 200, time.Millisecond)
	m.ObserveRequest("/api/design", 400, time.Millisecond)

	body := scrape(t, m)
	assert.Contains(t, body, `wellnet_runs_total{outcome="partial"} 1`)
	assert.Contains(t, body, `wellnet_http_requests_total{code="200",route="/api/design"} 1`)
	assert.Contains(t, body, `wellnet_http_requests_total{code="400",route="/api/design"} 1`)
}

func TestRuntimeCollectors(t *testing.T) {
	m := New(true)
	mfs, err := m.Registry().Gather()
	require.NoError(t, err)

	var found bool
	for _, mf := range mfs {
		if mf.GetName() == "go_goroutines" {
			found = true
		}
	}
	assert.True(t, found, "go collector not registered")
}
