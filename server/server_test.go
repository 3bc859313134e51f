package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/ran-rl-opt/ran"
	"github.com/zeu5/ran-rl-opt/types"
)

func testEnvironment() *ran.Environment {
	cfg := ran.DefaultConfig()
	cfg.Seed = 1
	return ran.NewEnvironment(cfg, ran.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestResetAndStep(t *testing.T) {
	env := testEnvironment()
	s := NewServer(":0", env)
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	reset := struct {
		Observation []float64 `json:"observation"`
	}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reset))
	assert.Len(t, reset.Observation, 50)

	rec = do(t, h, http.MethodPost, "/step", `{"action": 13}`)
	require.Equal(t, http.StatusOK, rec.Code)
	step := stepResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &step))
	assert.False(t, step.Done)
	assert.Equal(t, 0, step.Info.CellID)
	assert.True(t, step.Info.Delta.IsZero())
	assert.Equal(t, 1, env.Cursor())

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.steps))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.resets))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.actions.WithLabelValues("client")))
}

func TestStepRejectsMissingAction(t *testing.T) {
	h := NewServer(":0", testEnvironment()).Handler()
	for _, body := range []string{`{}`, `{"action": "x"}`, `not json`} {
		rec := do(t, h, http.MethodPost, "/step", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestStatsAndCells(t *testing.T) {
	env := testEnvironment()
	h := NewServer(":0", env).Handler()

	rec := do(t, h, http.MethodGet, "/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := struct {
		Step  int                `json:"step"`
		Stats types.NetworkStats `json:"stats"`
	}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, env.NetworkStats().AvgThroughput, stats.Stats.AvgThroughput)
	assert.Equal(t, 10, stats.Stats.CellTypes["Macro"])

	rec = do(t, h, http.MethodGet, "/cells", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cells := struct {
		Cursor int        `json:"cursor"`
		Cells  []ran.Cell `json:"cells"`
	}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cells))
	assert.Equal(t, env.Cells(), cells.Cells)

	rec = do(t, h, http.MethodGet, "/info", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"simulated"`)
}

func TestActNeedsAnAgent(t *testing.T) {
	rec := do(t, NewServer(":0", testEnvironment()).Handler(), http.MethodPost, "/act", `{}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestActWithPolicy(t *testing.T) {
	env := testEnvironment()
	policy := types.PolicyFunc(func(_ []float64, training bool) int {
		if training {
			return 0
		}
		return 26
	})
	s := NewServer(":0", env, WithPolicy(policy))
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/act", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := struct {
		Action  int         `json:"action"`
		Changes types.Delta `json:"changes"`
	}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 26, resp.Action)
	assert.Equal(t, types.Delta{Power: 3, Tilt: 2, Handover: 5}, resp.Changes)
	assert.Equal(t, 0, env.StepCount())

	rec = do(t, h, http.MethodPost, "/act", `{"apply": true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, env.StepCount())
	assert.Equal(t, 43.0, env.Cells()[0].TxPower)

	rec = do(t, h, http.MethodPost, "/act", `{"observation": [0.1, 0.2]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 2.0, testutil.ToFloat64(s.metrics.actions.WithLabelValues("agent")))
}

func TestMetricsEndpoint(t *testing.T) {
	s := NewServer(":0", testEnvironment())
	h := s.Handler()
	do(t, h, http.MethodPost, "/step", `{"action": 0}`)

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "ran_optimizer_steps_total 1")
	assert.Contains(t, body, `ran_optimizer_network_stat{stat="avg_throughput"}`)
	assert.Contains(t, body, `ran_optimizer_http_requests_total{code="200",route="/step"} 1`)
}
