// Package persistence provides the storage abstraction the engine calls into
// for workflow definitions and execution history. Durable backends live
// behind this interface; the core never owns one.
package persistence

import (
	"context"

	"github.com/pinkflow/pinkflow/pkg/models"
)

type Persistence interface {
	Workflows(ctx context.Context) ([]*models.WorkflowDefinition, error)
	WorkflowByID(ctx context.Context, id string) (*models.WorkflowDefinition, error)
	SaveWorkflow(ctx context.Context, def *models.WorkflowDefinition) error
	DeleteWorkflow(ctx context.Context, id string) error

	AppendExecution(ctx context.Context, record models.ExecutionRecord) error
	Executions(ctx context.Context, workflowID string) ([]models.ExecutionRecord, error)

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
