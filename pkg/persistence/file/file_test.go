package file

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinkflow/pinkflow/pkg/models"
	"github.com/pinkflow/pinkflow/pkg/persistence"
)

func testDefinition(id string) *models.WorkflowDefinition {
	return &models.WorkflowDefinition{
		WorkflowID:  id,
		Name:        "Test Workflow",
		Environment: models.EnvironmentSandbox,
		StartNode:   "start",
		Nodes: []models.NodeDefinition{
			{ID: "start", Name: "Start", Type: models.NodeTypeStart},
			{ID: "done", Name: "Done", Type: models.NodeTypeEnd},
		},
		Edges: []models.EdgeDefinition{
			{ID: "e1", From: "start", To: "done", Condition: models.ConditionDefinition{Type: models.ConditionAlways}},
		},
	}
}

func TestFilePersistenceSaveAndLoad(t *testing.T) {
	p := NewPersistence(t.TempDir())
	ctx := context.Background()

	require.NoError(t, p.SaveWorkflow(ctx, testDefinition("wf-1")))

	def, err := p.WorkflowByID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "wf-1", def.WorkflowID)
	assert.Len(t, def.Nodes, 2)
	assert.Len(t, def.Edges, 1)
}

func TestFilePersistenceFileURLPrefix(t *testing.T) {
	dir := t.TempDir()
	p := NewPersistence("file://" + dir)
	ctx := context.Background()

	require.NoError(t, p.SaveWorkflow(ctx, testDefinition("wf-url")))

	def, err := NewPersistence(dir).WorkflowByID(ctx, "wf-url")
	require.NoError(t, err)
	assert.Equal(t, "wf-url", def.WorkflowID)
}

func TestFilePersistenceWorkflows(t *testing.T) {
	p := NewPersistence(t.TempDir())
	ctx := context.Background()

	defs, err := p.Workflows(ctx)
	require.NoError(t, err)
	assert.Empty(t, defs, "empty root lists no workflows")

	require.NoError(t, p.SaveWorkflow(ctx, testDefinition("wf-a")))
	require.NoError(t, p.SaveWorkflow(ctx, testDefinition("wf-b")))

	defs, err = p.Workflows(ctx)
	require.NoError(t, err)
	assert.Len(t, defs, 2)
}

func TestFilePersistenceWorkflowNotFound(t *testing.T) {
	p := NewPersistence(t.TempDir())

	_, err := p.WorkflowByID(context.Background(), "missing")
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestFilePersistenceDelete(t *testing.T) {
	p := NewPersistence(t.TempDir())
	ctx := context.Background()

	require.NoError(t, p.SaveWorkflow(ctx, testDefinition("wf-del")))
	require.NoError(t, p.DeleteWorkflow(ctx, "wf-del"))

	_, err := p.WorkflowByID(ctx, "wf-del")
	assert.True(t, persistence.IsWorkflowNotFound(err))

	err = p.DeleteWorkflow(ctx, "wf-del")
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestFilePersistenceExecutionHistory(t *testing.T) {
	p := NewPersistence(t.TempDir())
	ctx := context.Background()

	records, err := p.Executions(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, records)

	now := time.Now()
	first := models.ExecutionRecord{
		ExecutionID: "exec-1",
		WorkflowID:  "wf-a",
		Environment: models.EnvironmentSandbox,
		StartedAt:   now,
		FinishedAt:  now.Add(time.Second),
		Duration:    time.Second,
		Status:      models.ExecutionStatusSuccess,
	}
	second := first
	second.ExecutionID = "exec-2"
	second.WorkflowID = "wf-b"
	second.Status = models.ExecutionStatusFailed
	second.Error = "no traversable edge"

	require.NoError(t, p.AppendExecution(ctx, first))
	require.NoError(t, p.AppendExecution(ctx, second))

	records, err = p.Executions(ctx, "")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "exec-1", records[0].ExecutionID, "history stays oldest-first")

	filtered, err := p.Executions(ctx, "wf-b")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, models.ExecutionStatusFailed, filtered[0].Status)
}

func TestFilePersistenceHealthCheck(t *testing.T) {
	dir := t.TempDir()
	p := NewPersistence(dir)

	assert.NoError(t, p.HealthCheck(context.Background()))
	assert.Error(t, NewPersistence(dir+"/missing").HealthCheck(context.Background()))
}
