package supervisor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-jobsbot-automation/internal/logger"
	"go-jobsbot-automation/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newServer(t *testing.T) (*StatusServer, *Metrics) {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemory()
	require.NoError(t, st.Append(ctx, store.Targets, "https://x.test/1", "https://x.test/2", "https://x.test/3"))
	require.NoError(t, st.Append(ctx, store.Taboo, "https://x.test/1"))
	require.NoError(t, st.Append(ctx, store.Applied, "https://x.test/1"))

	m := NewMetrics()
	return NewStatusServer(st, m, logger.NewNop()), m
}

func TestHealth(t *testing.T) {
	s, _ := newServer(t)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestStats(t *testing.T) {
	s, m := newServer(t)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Lists map[string]int `json:"lists"`
		Queue int            `json:"queue"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, map[string]int{"targets": 3, "taboo": 1, "applied": 1}, body.Lists)
	assert.Equal(t, 2, body.Queue)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.QueueSize))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ListSize.WithLabelValues("targets")))
}

func TestMetricsEndpoint(t *testing.T) {
	s, m := newServer(t)
	m.Runs.Inc()

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "jobsbot_runs_total 1")
}

func TestMetricsReflectListsWithoutStats(t *testing.T) {
	s, _ := newServer(t)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "jobsbot_queue_size 2")
	assert.Contains(t, body, `jobsbot_list_size{collection="targets"} 3`)
	assert.Contains(t, body, `jobsbot_list_size{collection="taboo"} 1`)
}
