package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/jonathan/job-copilot/internal/ingest"
	"github.com/jonathan/job-copilot/internal/report"
	"github.com/jonathan/job-copilot/internal/workflow"
)

// maxBatchSize caps the number of applications per batch request.
const maxBatchSize = 10

// AnalyzeRequest is the body for /analyze, /analyze/stream, and each item
// of /batch-analyze. JobURL is an alternative to JobPosting: when set and
// the posting text is empty, the posting is ingested from the URL.
type AnalyzeRequest struct {
	JobPosting string `json:"job_posting"`
	Resume     string `json:"resume"`
	UserID     string `json:"user_id,omitempty"`
	JobURL     string `json:"job_url,omitempty" validate:"omitempty,url"`
}

// AnalyzeResponse is the success body for /analyze.
type AnalyzeResponse struct {
	Success         bool           `json:"success"`
	MatchingScore   *float64       `json:"matching_score"`
	JobTitle        string         `json:"job_title"`
	Company         string         `json:"company"`
	CoverLetter     string         `json:"cover_letter"`
	AnalysisSummary report.Summary `json:"analysis_summary"`
	ExecutionNodes  []string       `json:"execution_nodes"`
}

// prepare validates the request and resolves the job posting text,
// ingesting from JobURL when no posting text was supplied. Returns a
// client-facing error message on failure.
func (s *Server) prepare(r *http.Request, req *AnalyzeRequest) (ok bool, msg string) {
	if err := s.validate.Struct(req); err != nil {
		return false, "Invalid job URL"
	}

	if req.JobPosting == "" && req.JobURL != "" {
		text, err := ingest.FromURL(r.Context(), req.JobURL, nil)
		if err != nil {
			log.Printf("URL ingestion failed: %v", err)
			return false, "Failed to fetch job posting from URL"
		}
		req.JobPosting = text
	}

	return report.ValidateInputs(req.JobPosting, req.Resume)
}

// handleAnalyze runs the full workflow synchronously.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if ok, msg := s.prepare(r, &req); !ok {
		s.errorResponse(w, http.StatusBadRequest, msg)
		return
	}

	st := s.graph.Execute(r.Context(), req.JobPosting, req.Resume)
	if st.Failed() {
		log.Printf("Workflow error: %s", st.Error)
		s.errorResponse(w, http.StatusInternalServerError, st.Error)
		return
	}

	s.jsonResponse(w, http.StatusOK, analyzeResponse(st))
}

func analyzeResponse(st *workflow.State) AnalyzeResponse {
	resp := AnalyzeResponse{
		Success:         true,
		MatchingScore:   st.MatchingScore,
		CoverLetter:     report.FormatCoverLetter(st),
		AnalysisSummary: report.Summarize(st),
		ExecutionNodes:  st.StepsCompleted,
	}
	if st.JobPosting != nil {
		resp.JobTitle = st.JobPosting.Title
		resp.Company = st.JobPosting.Company
	}
	return resp
}

// handleAnalyzeStream runs the workflow and streams step boundaries as
// server-sent events, ending with a result or error event.
func (s *Server) handleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if ok, msg := s.prepare(r, &req); !ok {
		s.errorResponse(w, http.StatusBadRequest, msg)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	for ev := range s.graph.Stream(r.Context(), req.JobPosting, req.Resume) {
		switch ev.Type {
		case workflow.EventDone:
			if ev.State != nil && ev.State.Failed() {
				sse.WriteError(ev.State.Error)
				return
			}
			sse.WriteResult(analyzeResponse(ev.State))
		default:
			if werr := sse.WriteEvent(string(ev.Type), ev); werr != nil {
				log.Printf("SSE write failed: %v", werr)
				return
			}
		}
	}
}

// BatchItemResult is the per-application outcome in a batch response.
type BatchItemResult struct {
	ID     string `json:"id,omitempty"`
	TaskID string `json:"task_id,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// BatchResponse summarizes a batch submission.
type BatchResponse struct {
	Total      int               `json:"total"`
	Successful int               `json:"successful"`
	Failed     int               `json:"failed"`
	Results    []BatchItemResult `json:"results"`
}

// handleBatchAnalyze queues up to maxBatchSize applications. Each item is
// validated independently; invalid items fail without sinking the batch.
func (s *Server) handleBatchAnalyze(w http.ResponseWriter, r *http.Request) {
	var applications []AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&applications); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if len(applications) == 0 {
		s.errorResponse(w, http.StatusBadRequest, "No applications provided")
		return
	}
	if len(applications) > maxBatchSize {
		s.errorResponse(w, http.StatusBadRequest, "Maximum 10 applications per batch")
		return
	}

	resp := BatchResponse{Total: len(applications)}
	for i := range applications {
		app := &applications[i]
		item := BatchItemResult{ID: app.UserID}

		if ok, msg := s.prepare(r, app); !ok {
			item.Status = "failed"
			item.Error = msg
			resp.Failed++
			resp.Results = append(resp.Results, item)
			continue
		}

		taskID, err := s.queue.Enqueue(app.JobPosting, app.Resume, app.UserID)
		if err != nil {
			log.Printf("Batch enqueue failed: %v", err)
			item.Status = "failed"
			item.Error = err.Error()
			resp.Failed++
			resp.Results = append(resp.Results, item)
			continue
		}
		item.Status = "queued"
		item.TaskID = taskID
		resp.Successful++
		resp.Results = append(resp.Results, item)
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

// handleTaskStatus returns the stored result for a queued task.
func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	taskID := r.PathValue("id")
	result, ok := s.queue.Result(taskID)
	if !ok {
		s.errorResponse(w, http.StatusNotFound, "Task not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleHealth reports whether the model client and graph are ready.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := "healthy"
	if !s.gateway.Configured() {
		status = "unhealthy"
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":            status,
		"llm_initialized":   s.gateway.Configured(),
		"graph_initialized": s.graph != nil,
	})
}

// handleGraphStructure returns the workflow's node and edge list.
func (s *Server) handleGraphStructure(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, workflow.Describe())
}

// handleWorkflowDocs returns human-oriented workflow documentation.
func (s *Server) handleWorkflowDocs(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"name":        "Job Copilot",
		"description": "Workflow for job application analysis",
		"nodes": []map[string]string{
			{"name": workflow.StepParse, "description": "Extract and structure job posting information"},
			{"name": workflow.StepAnalyze, "description": "Match resume against job requirements"},
			{"name": workflow.StepGenerate, "description": "Create personalized cover letter"},
		},
		"inputs": map[string]string{
			"job_posting": "Raw job posting text (minimum 50 characters)",
			"resume":      "Raw resume text (minimum 50 characters)",
		},
		"outputs": map[string]string{
			"matching_score":   "Overall fit score (0-1)",
			"job_title":        "Extracted job title",
			"company":          "Extracted company name",
			"cover_letter":     "Generated cover letter",
			"analysis_summary": "Detailed analysis with strengths, gaps, recommendations",
		},
		"typical_execution_time": "2-5 seconds (depends on LLM response time)",
	})
}
