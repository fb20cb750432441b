package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-copilot/internal/llm"
	"github.com/jonathan/job-copilot/internal/queue"
	"github.com/jonathan/job-copilot/internal/workflow"
)

const postingJSON = `{
	"title": "Backend Engineer",
	"company": "Acme",
	"description": "Build Go services",
	"requirements": ["Go", "SQL"],
	"nice_to_have": ["Kubernetes"],
	"salary_range": null,
	"location": "Remote"
}`

const analysisJSON = `{
	"matched_skills": ["Go", "SQL"],
	"missing_skills": ["GraphQL"],
	"nice_to_have_matches": [],
	"experience_match": "strong",
	"experience_score": 0.8,
	"skills_score": 0.9,
	"overall_fit_score": 0.85,
	"strengths": ["Go depth"],
	"weaknesses": [],
	"recommendations": ["Mention Kubernetes"]
}`

const letterJSON = `{
	"content": "Dear Hiring Manager, I am excited to apply...",
	"tone": "professional",
	"highlighted_skills": ["Go"],
	"key_achievements": []
}`

var (
	validPosting = strings.Repeat("We are hiring a Backend Engineer. ", 3)
	validResume  = strings.Repeat("Five years of Go experience. ", 3)
)

// loopClient replays the three step responses for every execution.
type loopClient struct {
	calls int
}

func (c *loopClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return c.GenerateJSON(ctx, prompt)
}

func (c *loopClient) GenerateJSON(_ context.Context, _ string) (string, error) {
	responses := []string{postingJSON, analysisJSON, letterJSON}
	resp := responses[c.calls%3]
	c.calls++
	return resp, nil
}

func (c *loopClient) Close() error { return nil }

func newTestServer(t *testing.T) *Server {
	t.Helper()

	gateway := llm.NewGatewayWithClient(&loopClient{})
	graph := workflow.New(gateway)

	qcfg := queue.DefaultConfig()
	qcfg.Concurrency = 1
	qcfg.SoftTimeout = time.Second
	qcfg.HardTimeout = 2 * time.Second
	qcfg.CleanupInterval = 0
	q := queue.New(graph, qcfg)
	q.Start(context.Background())
	t.Cleanup(q.Stop)

	return New(Config{Port: 0}, gateway, graph, q)
}

func doJSON(t *testing.T, s *Server, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleAnalyze_Success(t *testing.T) {
	s := newTestServer(t)

	body, err := json.Marshal(AnalyzeRequest{JobPosting: validPosting, Resume: validResume})
	require.NoError(t, err)

	rec := doJSON(t, s, http.MethodPost, "/analyze", string(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.MatchingScore)
	assert.Equal(t, 0.85, *resp.MatchingScore)
	assert.Equal(t, "Backend Engineer", resp.JobTitle)
	assert.Equal(t, "Acme", resp.Company)
	assert.NotEmpty(t, resp.CoverLetter)
	assert.Equal(t, []string{"parse", "analyze", "generate"}, resp.ExecutionNodes)
	assert.Equal(t, "85.0%", resp.AnalysisSummary.FitAssessment.OverallScore)
}

func TestHandleAnalyze_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{
			name:    "invalid JSON",
			body:    "{not json",
			wantMsg: "Invalid JSON body",
		},
		{
			name:    "missing job posting",
			body:    `{"resume": "` + validResume + `"}`,
			wantMsg: "Job posting is required",
		},
		{
			name:    "short resume",
			body:    `{"job_posting": "` + validPosting + `", "resume": "too short"}`,
			wantMsg: "Resume must be at least 50 characters",
		},
		{
			name:    "malformed job URL",
			body:    `{"job_url": "not a url", "resume": "` + validResume + `"}`,
			wantMsg: "Invalid job URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			rec := doJSON(t, s, http.MethodPost, "/analyze", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantMsg, resp["error"])
		})
	}
}

func TestHandleAnalyzeStream_EmitsEvents(t *testing.T) {
	s := newTestServer(t)

	body, err := json.Marshal(AnalyzeRequest{JobPosting: validPosting, Resume: validResume})
	require.NoError(t, err)

	rec := doJSON(t, s, http.MethodPost, "/analyze/stream", string(body))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	out := rec.Body.String()
	assert.Contains(t, out, "event: step_start")
	assert.Contains(t, out, "event: step_end")
	assert.Contains(t, out, "event: result")
	assert.Contains(t, out, `"parse"`)
	assert.Contains(t, out, `"generate"`)
}

func TestHandleBatchAnalyze(t *testing.T) {
	s := newTestServer(t)

	apps := []AnalyzeRequest{
		{JobPosting: validPosting, Resume: validResume, UserID: "u1"},
		{JobPosting: validPosting, Resume: "too short", UserID: "u2"},
	}
	body, err := json.Marshal(apps)
	require.NoError(t, err)

	rec := doJSON(t, s, http.MethodPost, "/batch-analyze", string(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp BatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 1, resp.Successful)
	assert.Equal(t, 1, resp.Failed)
	require.Len(t, resp.Results, 2)

	assert.Equal(t, "queued", resp.Results[0].Status)
	assert.NotEmpty(t, resp.Results[0].TaskID)
	assert.Equal(t, "failed", resp.Results[1].Status)
	assert.Equal(t, "Resume must be at least 50 characters", resp.Results[1].Error)
}

// blockingRunner occupies a worker until its context is cancelled.
type blockingRunner struct {
	started chan struct{}
}

func (r *blockingRunner) Execute(ctx context.Context, _, _ string) *workflow.State {
	select {
	case r.started <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return workflow.NewState("", "")
}

func TestHandleBatchAnalyze_FullQueueFailsPerItem(t *testing.T) {
	gateway := llm.NewGatewayWithClient(&loopClient{})
	graph := workflow.New(gateway)

	runner := &blockingRunner{started: make(chan struct{}, 1)}
	qcfg := queue.DefaultConfig()
	qcfg.Concurrency = 1
	qcfg.QueueDepth = 1
	qcfg.CleanupInterval = 0
	q := queue.New(runner, qcfg)
	q.Start(context.Background())
	t.Cleanup(q.Stop)

	// Occupy the only worker so the depth-1 channel can hold exactly one
	// more task: the first batch item queues, the second hits a full queue.
	_, err := q.Enqueue(validPosting, validResume, "occupant")
	require.NoError(t, err)
	<-runner.started

	s := New(Config{Port: 0}, gateway, graph, q)

	apps := []AnalyzeRequest{
		{JobPosting: validPosting, Resume: validResume, UserID: "u1"},
		{JobPosting: validPosting, Resume: validResume, UserID: "u2"},
	}
	body, err := json.Marshal(apps)
	require.NoError(t, err)

	rec := doJSON(t, s, http.MethodPost, "/batch-analyze", string(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp BatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 1, resp.Successful)
	assert.Equal(t, 1, resp.Failed)
	require.Len(t, resp.Results, 2)

	assert.Equal(t, "queued", resp.Results[0].Status)
	assert.NotEmpty(t, resp.Results[0].TaskID, "queued items keep their task IDs even when later items fail")
	assert.Equal(t, "failed", resp.Results[1].Status)
	assert.Equal(t, "queue is full", resp.Results[1].Error)
	assert.Empty(t, resp.Results[1].TaskID)
}

func TestHandleBatchAnalyze_SizeLimits(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/batch-analyze", "[]")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No applications provided")

	var apps []AnalyzeRequest
	for i := 0; i < 11; i++ {
		apps = append(apps, AnalyzeRequest{JobPosting: validPosting, Resume: validResume})
	}
	body, err := json.Marshal(apps)
	require.NoError(t, err)

	rec = doJSON(t, s, http.MethodPost, "/batch-analyze", string(body))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Maximum 10 applications per batch")
}

func TestHandleTaskStatus(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/tasks/unknown-id", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	taskID, err := s.queue.Enqueue(validPosting, validResume, "u1")
	require.NoError(t, err)

	rec = doJSON(t, s, http.MethodGet, "/tasks/"+taskID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result queue.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, taskID, result.TaskID)
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, true, resp["llm_initialized"])
	assert.Equal(t, true, resp["graph_initialized"])
}

func TestHandleHealth_UnconfiguredClient(t *testing.T) {
	gateway := llm.NewGateway()
	graph := workflow.New(gateway)

	qcfg := queue.DefaultConfig()
	qcfg.CleanupInterval = 0
	q := queue.New(graph, qcfg)
	q.Start(context.Background())
	t.Cleanup(q.Stop)

	s := New(Config{Port: 0}, gateway, graph, q)

	rec := doJSON(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unhealthy", resp["status"])
	assert.Equal(t, false, resp["llm_initialized"])
	assert.Equal(t, true, resp["graph_initialized"])
}

func TestHandleGraphStructure(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/graph/structure", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var structure workflow.Structure
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &structure))
	assert.Equal(t, []string{"parse", "analyze", "generate"}, structure.Nodes)
	assert.Len(t, structure.Edges, 4)
}

func TestHandleWorkflowDocs(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/docs/workflow", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Job Copilot")
	assert.Contains(t, rec.Body.String(), "minimum 50 characters")
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/analyze", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
