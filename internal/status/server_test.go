package status

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stoker/pkg/runner"
	"github.com/aretw0/stoker/pkg/target"
	"github.com/aretw0/stoker/pkg/watch"
)

func TestHandler_Status(t *testing.T) {
	reg := prometheus.NewRegistry()
	_ = NewMetrics(reg)

	snap := watch.Snapshot{
		Target:      "recheck",
		State:       "idle",
		Runs:        3,
		Failures:    1,
		LastOutcome: "success",
	}
	handler := NewHandler(func() watch.Snapshot { return snap }, reg)

	srv := httptest.NewServer(handler)
	defer srv.Close()

	t.Run("Healthz", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/healthz")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("Status JSON", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/status")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got watch.Snapshot
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, snap, got)
	})

	t.Run("Metrics Exposed", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	tgt := &target.Target{Name: "rerun", Watch: []string{"src/**"}}
	hooks := m.Hooks(tgt)

	hooks.OnTrigger(watch.Trigger{Count: 4})
	now := time.Now()
	hooks.OnRunEnd(&runner.Result{
		Target:  "rerun",
		Outcome: runner.Failed,
		Start:   now.Add(-2 * time.Second),
		End:     now,
	})

	families, err := reg.Gather()
	require.NoError(t, err)

	byName := map[string]bool{}
	for _, mf := range families {
		byName[mf.GetName()] = true
	}
	assert.True(t, byName["stoker_runs_total"])
	assert.True(t, byName["stoker_run_duration_seconds"])
	assert.True(t, byName["stoker_watch_events_total"])
}
