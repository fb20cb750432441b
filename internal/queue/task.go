package queue

import (
	"time"

	"github.com/jonathan/job-copilot/internal/report"
)

// Status is the lifecycle state of a queued task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusRetrying  Status = "retrying"
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Task is one queued analysis request.
type Task struct {
	ID         string
	UserID     string
	JobPosting string
	Resume     string
}

// Result is the stored outcome of a task, queryable by ID until its TTL
// expires. Status is updated in place as the task moves through the
// lifecycle; Export and Summary are only set on terminal states.
type Result struct {
	TaskID           string               `json:"task_id"`
	UserID           string               `json:"user_id,omitempty"`
	Status           Status               `json:"status"`
	Success          bool                 `json:"success"`
	Export           *report.ExportRecord `json:"export,omitempty"`
	Summary          *report.Summary      `json:"summary,omitempty"`
	Error            string               `json:"error,omitempty"`
	Retries          int                  `json:"retries"`
	RetriesExhausted bool                 `json:"retries_exhausted,omitempty"`
	EnqueuedAt       time.Time            `json:"enqueued_at"`
	CompletedAt      *time.Time           `json:"completed_at,omitempty"`
}
