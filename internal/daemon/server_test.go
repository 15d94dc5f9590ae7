package daemon

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pradyumna2905/quill/internal/config"
	"github.com/pradyumna2905/quill/internal/site"
)

func newTestDaemon() *Daemon {
	cfg := &config.Config{}
	return New(cfg, nil, nil, prom.NewRegistry())
}

func TestStatusServer_Healthz(t *testing.T) {
	d := newTestDaemon()
	srv := newStatusServer("127.0.0.1:0", d, d.registry)

	rec := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestStatusServer_StatusBeforeFirstBuild(t *testing.T) {
	d := newTestDaemon()
	srv := newStatusServer("127.0.0.1:0", d, d.registry)

	rec := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "no build yet")
}

func TestStatusServer_StatusReturnsLastReport(t *testing.T) {
	d := newTestDaemon()
	report := &site.BuildReport{
		BuildID:          "build-123",
		DocumentsWritten: 4,
		Outcome:          site.OutcomeSuccess,
	}
	d.mu.Lock()
	d.last = report
	d.mu.Unlock()

	srv := newStatusServer("127.0.0.1:0", d, d.registry)

	rec := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got site.BuildReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "build-123", got.BuildID)
	assert.Equal(t, 4, got.DocumentsWritten)
	assert.Equal(t, site.OutcomeSuccess, got.Outcome)
}

func TestStatusServer_MetricsEndpoint(t *testing.T) {
	d := newTestDaemon()
	srv := newStatusServer("127.0.0.1:0", d, d.registry)

	rec := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestBuild_CoalescesPendingTriggers(t *testing.T) {
	d := newTestDaemon()

	d.requestBuild("schedule")
	d.requestBuild("source-change")
	d.requestBuild("source-change")

	reason := <-d.trigger
	assert.Equal(t, "schedule", reason)

	select {
	case extra := <-d.trigger:
		t.Fatalf("expected coalesced trigger, got extra %q", extra)
	default:
	}
}
