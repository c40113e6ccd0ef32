package models

import "time"

// ExecutionStatus is the recorded outcome of one workflow execution.
type ExecutionStatus string

const (
	ExecutionStatusSuccess ExecutionStatus = "success"
	ExecutionStatusFailed  ExecutionStatus = "failed"
)

// ExecutionRecord is one entry in the manager's append-only execution
// history.
type ExecutionRecord struct {
	ExecutionID string          `json:"execution_id"`
	WorkflowID  string          `json:"workflow_id"`
	Environment Environment     `json:"environment"`
	StartedAt   time.Time       `json:"started_at"`
	FinishedAt  time.Time       `json:"finished_at"`
	Duration    time.Duration   `json:"duration"`
	Status      ExecutionStatus `json:"status"`
	Error       string          `json:"error,omitempty"`
}
