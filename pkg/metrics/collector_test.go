package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestCollector_ServesRecordedMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.ObserveRequest(http.MethodPost, "/auth/login", http.StatusUnauthorized, 12*time.Millisecond)
	c.RecordAuthEvent(AuthLoginFailure)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `projectshelf_http_requests_total{method="POST",route="/auth/login",status="401"} 1`)
	require.Contains(t, string(body), `projectshelf_auth_events_total{event="login_failure"} 1`)
	require.Contains(t, string(body), "projectshelf_http_request_duration_seconds")
}
