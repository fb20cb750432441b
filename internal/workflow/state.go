// Package workflow implements the three-step job application pipeline:
// parse the job posting, analyze the resume against it, generate a cover
// letter. A State is created fresh per execution, threaded through the
// steps, and discarded once the terminal result is returned.
package workflow

import (
	"time"

	"github.com/jonathan/job-copilot/internal/types"
)

// State is the shared record accumulated across the workflow steps. The raw
// inputs are set once at creation and never mutated; each step fills in its
// own output field. StepsCompleted is the append-only execution trace.
type State struct {
	JobPostingRaw string `json:"job_posting_raw"`
	ResumeRaw     string `json:"resume_raw"`

	JobPosting     *types.JobPosting     `json:"job_posting,omitempty"`
	ResumeAnalysis *types.ResumeAnalysis `json:"resume_analysis,omitempty"`
	CoverLetter    *types.CoverLetter    `json:"cover_letter,omitempty"`

	MatchingScore *float64 `json:"matching_score,omitempty"`
	SkillGaps     []string `json:"skill_gaps,omitempty"`

	StepsCompleted []string `json:"steps_completed"`
	Error          string   `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewState builds a fresh state for one execution. States are never shared
// between executions; mutations to one must not be visible to another.
func NewState(jobPostingRaw, resumeRaw string) *State {
	now := time.Now().UTC()
	return &State{
		JobPostingRaw:  jobPostingRaw,
		ResumeRaw:      resumeRaw,
		StepsCompleted: []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// markCompleted records a successful step execution in the trace.
func (s *State) markCompleted(step string) {
	s.StepsCompleted = append(s.StepsCompleted, step)
	s.UpdatedAt = time.Now().UTC()
}

// fail records a step failure. The state stays well-formed: partial results
// from earlier steps are preserved.
func (s *State) fail(msg string) {
	s.Error = msg
	s.UpdatedAt = time.Now().UTC()
}

// Failed reports whether any step has recorded an error.
func (s *State) Failed() bool {
	return s.Error != ""
}
