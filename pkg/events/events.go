// Package events defines event types for workflow execution lifecycle
// notifications.
package events

import (
	"time"

	"github.com/pinkflow/pinkflow/pkg/models"
)

type EventType string

// Topic carries every execution lifecycle event.
const Topic = "pinkflow.executions"

const EventTypeMetadataKey = "event_type"

const (
	ExecutionStartedEvent   EventType = "execution.started"
	ExecutionCompletedEvent EventType = "execution.completed"
	ExecutionFailedEvent    EventType = "execution.failed"
)

// Event is implemented by every published event.
type Event interface {
	GetType() EventType
}

type BaseEvent struct {
	ID          string             `json:"id"`
	Type        EventType          `json:"type"`
	Timestamp   time.Time          `json:"timestamp"`
	WorkflowID  string             `json:"workflow_id"`
	ExecutionID string             `json:"execution_id"`
	Environment models.Environment `json:"environment"`
	Metadata    map[string]any     `json:"metadata,omitempty"`
}

type ExecutionStarted struct {
	BaseEvent
}

func (ExecutionStarted) GetType() EventType {
	return ExecutionStartedEvent
}

type ExecutionCompleted struct {
	BaseEvent

	Duration   time.Duration `json:"duration"`
	Iterations int           `json:"iterations"`
	Path       []string      `json:"path,omitempty"`
}

func (ExecutionCompleted) GetType() EventType {
	return ExecutionCompletedEvent
}

type ExecutionFailed struct {
	BaseEvent

	Duration time.Duration `json:"duration"`
	Error    string        `json:"error"`
	Path     []string      `json:"path,omitempty"`
}

func (ExecutionFailed) GetType() EventType {
	return ExecutionFailedEvent
}
