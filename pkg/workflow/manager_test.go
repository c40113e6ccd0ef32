package workflow

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinkflow/pinkflow/pkg/models"
	"github.com/pinkflow/pinkflow/pkg/persistence/file"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	return NewManager(testLogger(), NewExecutor(testLogger()))
}

func TestManagerRegisterAndGet(t *testing.T) {
	manager := newTestManager(t)
	wf := buildApprovalWorkflow(t)

	require.NoError(t, manager.Register(context.Background(), wf))

	got, err := manager.Get(wf.ID)
	require.NoError(t, err)
	assert.Same(t, wf, got)
}

func TestManagerRegisterDuplicate(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	first := buildApprovalWorkflow(t)
	require.NoError(t, manager.Register(ctx, first))

	second := buildApprovalWorkflow(t)
	second.Name = "Impostor"

	err := manager.Register(ctx, second)
	require.ErrorIs(t, err, models.ErrDuplicateWorkflow)

	got, getErr := manager.Get(first.ID)
	require.NoError(t, getErr)
	assert.Same(t, first, got, "original registration is never displaced")
}

func TestManagerRegisterInvalidWorkflow(t *testing.T) {
	manager := newTestManager(t)

	// Structurally broken: a non-terminal node with no outgoing edges.
	wf := models.NewWorkflow("broken", "Broken Flow", models.EnvironmentSandbox)
	require.NoError(t, wf.AddNode(models.NewNode("start", "Start", models.NodeTypeStart)))

	err := manager.Register(context.Background(), wf)
	require.ErrorIs(t, err, models.ErrValidation)

	_, getErr := manager.Get("broken")
	assert.ErrorIs(t, getErr, models.ErrWorkflowNotFound, "invalid workflow is not retained")
}

func TestManagerUnregisterKeepsHistory(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	wf := buildApprovalWorkflow(t)
	require.NoError(t, manager.Register(ctx, wf))

	_, err := manager.Execute(ctx, wf.ID, models.ExecutionContext{"amount": 1}, "")
	require.NoError(t, err)

	require.NoError(t, manager.Unregister(ctx, wf.ID))

	_, err = manager.Get(wf.ID)
	assert.ErrorIs(t, err, models.ErrWorkflowNotFound)
	assert.Len(t, manager.ExecutionHistory(wf.ID), 1)
}

func TestManagerListFiltersByEnvironment(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	dev := buildApprovalWorkflow(t)
	require.NoError(t, manager.Register(ctx, dev))

	prod, err := NewBuilder("prod-flow", "Production Flow", models.EnvironmentProduction).
		AddStartNode("start", "Start").
		AddEndNode("done", "Done").
		ConnectAlways("start", "done", 0).
		Build()
	require.NoError(t, err)
	require.NoError(t, manager.Register(ctx, prod))

	assert.Len(t, manager.List(""), 2)

	prodOnly := manager.List(models.EnvironmentProduction)
	require.Len(t, prodOnly, 1)
	assert.Equal(t, "prod-flow", prodOnly[0].ID)
}

func TestManagerExecuteRecordsHistory(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	wf := buildApprovalWorkflow(t)
	require.NoError(t, manager.Register(ctx, wf))

	_, err := manager.Execute(ctx, wf.ID, models.ExecutionContext{"amount": 10}, "")
	require.NoError(t, err)

	history := manager.ExecutionHistory(wf.ID)
	require.Len(t, history, 1)
	assert.Equal(t, models.ExecutionStatusSuccess, history[0].Status)
	assert.Equal(t, wf.Environment, history[0].Environment)
	assert.NotEmpty(t, history[0].ExecutionID)
}

func TestManagerExecuteRecordsFailureBeforeReturning(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	// Dead end: the only edge out of the gate never matches.
	wf := models.NewWorkflow("gate-flow", "Gate Flow", models.EnvironmentDevelopment)
	require.NoError(t, wf.AddNode(models.NewNode("start", "Start", models.NodeTypeStart)))
	require.NoError(t, wf.AddNode(models.NewNode("gate", "Gate", models.NodeTypeProcess)))
	require.NoError(t, wf.AddNode(models.NewNode("done", "Done", models.NodeTypeEnd)))

	_, err := wf.Connect("start", "gate", models.Always(), 0)
	require.NoError(t, err)
	_, err = wf.Connect("gate", "done", models.Equals("open", true), 0)
	require.NoError(t, err)

	require.NoError(t, manager.Register(ctx, wf))

	_, err = manager.Execute(ctx, wf.ID, nil, "")
	require.ErrorIs(t, err, models.ErrDeadEnd)

	history := manager.ExecutionHistory(wf.ID)
	require.Len(t, history, 1)
	assert.Equal(t, models.ExecutionStatusFailed, history[0].Status)
	assert.Contains(t, history[0].Error, "gate")
}

func TestManagerExecuteUnknownWorkflow(t *testing.T) {
	manager := newTestManager(t)

	_, err := manager.Execute(context.Background(), "ghost", nil, "")
	assert.ErrorIs(t, err, models.ErrWorkflowNotFound)

	assert.Empty(t, manager.ExecutionHistory(""), "nothing ran, nothing recorded")
}

func TestManagerEnvironmentOverrideAppliesPolicy(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	// A cycle that runs forever; only the policy ceiling stops it.
	wf := models.NewWorkflow("cycle-flow", "Cycle Flow", models.EnvironmentProduction)
	require.NoError(t, wf.AddNode(models.NewNode("start", "Start", models.NodeTypeStart)))
	require.NoError(t, wf.AddNode(models.NewNode("a", "A", models.NodeTypeProcess)))
	require.NoError(t, wf.AddNode(models.NewNode("b", "B", models.NodeTypeProcess)))
	require.NoError(t, wf.AddNode(models.NewNode("done", "Done", models.NodeTypeEnd)))

	_, err := wf.Connect("start", "a", models.Always(), 0)
	require.NoError(t, err)
	_, err = wf.Connect("a", "b", models.Always(), 0)
	require.NoError(t, err)
	_, err = wf.Connect("b", "a", models.Always(), 0)
	require.NoError(t, err)
	_, err = wf.Connect("a", "done", models.Equals("never", true), -1)
	require.NoError(t, err)

	require.NoError(t, manager.Register(ctx, wf))

	// Development policy caps iterations at 50; production would allow 1000.
	_, err = manager.Execute(ctx, wf.ID, nil, models.EnvironmentDevelopment)
	require.ErrorIs(t, err, models.ErrIterationLimit)

	var limitErr *models.IterationLimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, 50, limitErr.Limit)

	history := manager.ExecutionHistory(wf.ID)
	require.Len(t, history, 1)
	assert.Equal(t, models.EnvironmentDevelopment, history[0].Environment)
}

func TestManagerConfigureEnvironment(t *testing.T) {
	manager := newTestManager(t)

	maxIterations := 5
	require.NoError(t, manager.ConfigureEnvironment(models.EnvironmentSandbox, PolicyUpdate{
		MaxIterations: &maxIterations,
		Extra:         map[string]any{"notify": "oncall"},
	}))

	policy := manager.Policy(models.EnvironmentSandbox)
	assert.Equal(t, 5, policy.MaxIterations)
	assert.Equal(t, 60, policy.TimeoutSeconds, "unset fields keep their defaults")
	assert.True(t, policy.AutoRollback)
	assert.Equal(t, "oncall", policy.Extra["notify"])

	assert.Error(t, manager.ConfigureEnvironment("galaxy", PolicyUpdate{}))
}

func TestManagerConfiguredCeilingStopsExecution(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	wf := models.NewWorkflow("loop-flow", "Loop Flow", models.EnvironmentProduction)
	require.NoError(t, wf.AddNode(models.NewNode("start", "Start", models.NodeTypeStart)))
	require.NoError(t, wf.AddNode(models.NewNode("retry", "Retry", models.NodeTypeProcess)))
	require.NoError(t, wf.AddNode(models.NewNode("done", "Done", models.NodeTypeEnd)))

	_, err := wf.Connect("start", "retry", models.Always(), 0)
	require.NoError(t, err)
	_, err = wf.Connect("retry", "done", models.Equals("succeeded", true), 10)
	require.NoError(t, err)
	_, err = wf.Connect("retry", "retry", models.Always(), 0)
	require.NoError(t, err)

	require.NoError(t, manager.Register(ctx, wf))

	maxIterations := 5
	require.NoError(t, manager.ConfigureEnvironment(models.EnvironmentProduction, PolicyUpdate{
		MaxIterations: &maxIterations,
	}))

	_, err = manager.Execute(ctx, wf.ID, nil, "")
	require.ErrorIs(t, err, models.ErrIterationLimit)

	var limitErr *models.IterationLimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, 5, limitErr.Limit)
}

func TestManagerDefaultPolicies(t *testing.T) {
	manager := newTestManager(t)

	tests := []struct {
		environment    models.Environment
		maxIterations  int
		timeoutSeconds int
		autoRollback   bool
	}{
		{models.EnvironmentSandbox, 100, 60, true},
		{models.EnvironmentStaging, 500, 300, true},
		{models.EnvironmentProduction, 1000, 600, false},
		{models.EnvironmentDevelopment, 50, 30, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.environment), func(t *testing.T) {
			policy := manager.Policy(tt.environment)
			assert.Equal(t, tt.maxIterations, policy.MaxIterations)
			assert.Equal(t, tt.timeoutSeconds, policy.TimeoutSeconds)
			assert.Equal(t, tt.autoRollback, policy.AutoRollback)
		})
	}
}

func TestManagerStatistics(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	wf := buildApprovalWorkflow(t)
	require.NoError(t, manager.Register(ctx, wf))

	_, err := manager.Execute(ctx, wf.ID, models.ExecutionContext{"amount": 10}, "")
	require.NoError(t, err)
	_, err = manager.Execute(ctx, wf.ID, models.ExecutionContext{"amount": 20}, "")
	require.NoError(t, err)

	stats := manager.Statistics()
	assert.Equal(t, 1, stats.TotalWorkflows)
	assert.Equal(t, 2, stats.TotalExecutions)
	assert.Equal(t, 2, stats.SuccessfulExecutions)
	assert.Equal(t, 0, stats.FailedExecutions)
	assert.Equal(t, 1, stats.WorkflowsByEnvironment[models.EnvironmentDevelopment])
	assert.Equal(t, 2, stats.ExecutionsByEnvironment[models.EnvironmentDevelopment])
}

func TestManagerExportToFile(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	wf := buildApprovalWorkflow(t)
	require.NoError(t, manager.Register(ctx, wf))

	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, manager.ExportToFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var export Export
	require.NoError(t, json.Unmarshal(data, &export))
	require.Len(t, export.Workflows, 1)
	assert.Equal(t, wf.ID, export.Workflows[0].WorkflowID)
	assert.WithinDuration(t, time.Now(), export.ExportedAt, time.Minute)
}

func TestManagerImportFromFile(t *testing.T) {
	ctx := context.Background()

	source := newTestManager(t)
	wf := buildApprovalWorkflow(t)
	require.NoError(t, source.Register(ctx, wf))

	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, source.ExportToFile(path))

	target := newTestManager(t)
	require.NoError(t, target.ImportFromFile(ctx, path, nil))

	got, err := target.Get(wf.ID)
	require.NoError(t, err)
	assert.Equal(t, wf.Name, got.Name)
	assert.Len(t, got.Nodes(), len(wf.Nodes()))

	// Importing on top of the same registration fails on the duplicate.
	assert.ErrorIs(t, target.ImportFromFile(ctx, path, nil), models.ErrDuplicateWorkflow)
}

func TestManagerPersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first := NewManager(testLogger(), NewExecutor(testLogger())).
		WithPersistence(file.NewPersistence(dir))

	wf := buildApprovalWorkflow(t)
	require.NoError(t, first.Register(ctx, wf))

	_, err := first.Execute(ctx, wf.ID, models.ExecutionContext{"amount": 10}, "")
	require.NoError(t, err)

	// A fresh manager over the same directory sees the stored definition and
	// the recorded execution.
	second := NewManager(testLogger(), NewExecutor(testLogger())).
		WithPersistence(file.NewPersistence(dir))

	require.NoError(t, second.LoadFromPersistence(ctx, nil))

	got, err := second.Get(wf.ID)
	require.NoError(t, err)
	assert.Equal(t, wf.Name, got.Name)

	records, err := file.NewPersistence(dir).Executions(ctx, wf.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
