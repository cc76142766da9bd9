package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/hopbench/internal/logging"
	"github.com/copyleftdev/hopbench/internal/metrics"
	"github.com/copyleftdev/hopbench/internal/orchestrator"
)

// testLogger creates a debug logger writing to buf.
func testLogger(buf *bytes.Buffer) *logging.Logger {
	return logging.New(logging.DebugLevel, buf)
}

func testStore() *Store {
	best := 0.5
	s := NewStore()
	s.Publish(orchestrator.JobStatus{Key: "RASTRIGIN/SA/n/a", Problem: "RASTRIGIN", Optimizer: "SA", Benchmark: "n/a", State: orchestrator.StateDone, GlobalBest: &best})
	s.Publish(orchestrator.JobStatus{Key: "FSSP/GA/ta001", Problem: "FSSP", Optimizer: "GA", Benchmark: "ta001", State: orchestrator.StateRunning})
	s.Publish(orchestrator.JobStatus{Key: "RASTRIGIN/HH/n/a", State: orchestrator.StateFailed, Error: "empty pool"})
	return s
}

func TestStore(t *testing.T) {
	s := testStore()

	list := s.List()
	require.Len(t, list, 3)
	assert.Equal(t, "FSSP/GA/ta001", list[0].Key)
	assert.Equal(t, "RASTRIGIN/SA/n/a", list[2].Key)

	s.Publish(orchestrator.JobStatus{Key: "FSSP/GA/ta001", State: orchestrator.StateDone})
	st, ok := s.Get("FSSP/GA/ta001")
	require.True(t, ok)
	assert.Equal(t, orchestrator.StateDone, st.State)

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestStoreConcurrentPublish(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for r := 0; r < 50; r++ {
				s.Publish(orchestrator.JobStatus{Key: "job", RunsCompleted: r})
				s.List()
			}
		}(i)
	}
	wg.Wait()
	assert.Len(t, s.List(), 1)
}

func TestRegisterRoutes(t *testing.T) {
	var buf bytes.Buffer
	srv := NewServer(testLogger(&buf), testStore(), metrics.New())
	r := chi.NewRouter()
	srv.RegisterRoutes(r)

	tests := []struct {
		method string
		path   string
		code   int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/v1/jobs", http.StatusOK},
		{http.MethodGet, "/api/v1/jobs/RASTRIGIN/SA/n/a", http.StatusOK},
		{http.MethodGet, "/api/v1/jobs/FSSP/SA/ta001", http.StatusNotFound},
		{http.MethodPost, "/api/v1/jobs", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nonexistent", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.code, rr.Code)
		})
	}
}

func TestMetricsDisabled(t *testing.T) {
	var buf bytes.Buffer
	h := NewServer(testLogger(&buf), NewStore(), nil).Router()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleJobs(t *testing.T) {
	var buf bytes.Buffer
	h := NewServer(testLogger(&buf), testStore(), nil).Router()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body struct {
		Jobs  []orchestrator.JobStatus `json:"jobs"`
		Count int                      `json:"count"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, 3, body.Count)
	assert.Equal(t, "FSSP/GA/ta001", body.Jobs[0].Key)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/jobs?state=failed", nil))
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "empty pool", body.Jobs[0].Error)

	assert.Contains(t, buf.String(), "request completed")
	assert.Contains(t, buf.String(), `"route":"/api/v1/jobs"`)
}

func TestHandleJob(t *testing.T) {
	var buf bytes.Buffer
	h := NewServer(testLogger(&buf), testStore(), nil).Router()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/RASTRIGIN/SA/n/a", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var st orchestrator.JobStatus
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&st))
	assert.Equal(t, "SA", st.Optimizer)
	require.NotNil(t, st.GlobalBest)
	assert.Equal(t, 0.5, *st.GlobalBest)
	assert.Nil(t, st.RunBest)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/nope", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	var errBody map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&errBody))
	assert.Equal(t, "job not found: nope", errBody["error"])
	assert.Contains(t, buf.String(), "request error")
}

func TestRespondWithError(t *testing.T) {
	var buf bytes.Buffer
	srv := NewServer(testLogger(&buf), NewStore(), nil)

	rr := httptest.NewRecorder()
	srv.respondWithError(rr, http.StatusBadRequest, "missing job key")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "missing job key", body["error"])
}
