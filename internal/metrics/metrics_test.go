package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestObserveRun(t *testing.T) {
	m := New()
	m.ObserveRun("RASTRIGIN", "SA", "n/a", 100, 20*time.Millisecond)
	m.ObserveRun("RASTRIGIN", "SA", "n/a", 40, 10*time.Millisecond)

	body := scrape(t, m)
	assert.Contains(t, body, `hopbench_evaluations_total{benchmark="n/a",optimizer="SA",problem="RASTRIGIN"} 140`)
	assert.Contains(t, body, `hopbench_runs_total{benchmark="n/a",optimizer="SA",problem="RASTRIGIN"} 2`)
	assert.Contains(t, body, `hopbench_run_duration_seconds_count{benchmark="n/a",optimizer="SA",problem="RASTRIGIN"} 2`)
	assert.Contains(t, body, "go_goroutines")
}

func TestGaugesAndFailures(t *testing.T) {
	m := New()
	m.SetGlobalBest("FSSP", "GA", "ta001", 1297)
	m.JobFailed("FSSP", "HH", "ta001")
	m.JobStarted()
	m.JobStarted()
	m.JobFinished()

	body := scrape(t, m)
	assert.Contains(t, body, `hopbench_global_best_fitness{benchmark="ta001",optimizer="GA",problem="FSSP"} 1297`)
	assert.Contains(t, body, `hopbench_job_failures_total{benchmark="ta001",optimizer="HH",problem="FSSP"} 1`)
	assert.Contains(t, body, "hopbench_jobs_in_flight 1")
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRun("p", "o", "b", 1, time.Second)
		m.SetGlobalBest("p", "o", "b", 1)
		m.JobFailed("p", "o", "b")
		m.JobStarted()
		m.JobFinished()
	})
}
