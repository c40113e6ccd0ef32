package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pinkflow/pinkflow/pkg/models"
	"github.com/pinkflow/pinkflow/pkg/persistence"
)

// Manager is the workflow registry and execution front door. It owns the
// per-environment policy table and the append-only execution history; the
// walk itself is delegated to an Executor.
//
// All methods are safe for concurrent use. Executions run without holding
// the manager lock, so long-running workflows never block registration or
// queries.
type Manager struct {
	logger   *slog.Logger
	executor *Executor
	validate *validator.Validate

	// persistence is optional; when set, registered definitions and history
	// records are written through.
	persistence persistence.Persistence

	mu        sync.RWMutex
	workflows map[string]*models.Workflow
	history   []models.ExecutionRecord
	policies  map[models.Environment]Policy
}

// NewManager creates a manager with default environment policies.
func NewManager(logger *slog.Logger, executor *Executor) *Manager {
	return &Manager{
		logger:    logger,
		executor:  executor,
		validate:  validator.New(),
		workflows: make(map[string]*models.Workflow),
		policies:  DefaultPolicies(),
	}
}

// WithPersistence attaches a storage backend for definitions and history.
func (m *Manager) WithPersistence(p persistence.Persistence) *Manager {
	m.persistence = p

	return m
}

// Register adds a workflow after validating it. Registration is atomic: a
// workflow that fails field or structural validation is not retained in any
// form, and an existing registration under the same ID is never displaced.
func (m *Manager) Register(ctx context.Context, wf *models.Workflow) error {
	if err := m.validate.Struct(wf); err != nil {
		return fmt.Errorf("workflow %s: %w", wf.ID, err)
	}

	if errs := wf.Validate(); len(errs) > 0 {
		return fmt.Errorf("workflow %s: %w", wf.ID, errs)
	}

	m.mu.Lock()
	if _, exists := m.workflows[wf.ID]; exists {
		m.mu.Unlock()

		return fmt.Errorf("%w: %s", models.ErrDuplicateWorkflow, wf.ID)
	}
	m.workflows[wf.ID] = wf
	m.mu.Unlock()

	if m.persistence != nil {
		if err := m.persistence.SaveWorkflow(ctx, wf.ToDefinition()); err != nil {
			m.logger.Warn("Failed to persist workflow definition",
				"workflow_id", wf.ID, "error", err)
		}
	}

	m.logger.Info("Workflow registered",
		"workflow_id", wf.ID,
		"environment", wf.Environment,
		"nodes", len(wf.Nodes()),
		"edges", len(wf.Edges()),
	)

	return nil
}

// Unregister removes a workflow. Its execution history is retained.
func (m *Manager) Unregister(ctx context.Context, id string) error {
	m.mu.Lock()
	_, exists := m.workflows[id]
	delete(m.workflows, id)
	m.mu.Unlock()

	if !exists {
		return fmt.Errorf("%w: %s", models.ErrWorkflowNotFound, id)
	}

	if m.persistence != nil {
		if err := m.persistence.DeleteWorkflow(ctx, id); err != nil && !persistence.IsWorkflowNotFound(err) {
			m.logger.Warn("Failed to delete persisted workflow", "workflow_id", id, "error", err)
		}
	}

	return nil
}

// Get returns a registered workflow by ID.
func (m *Manager) Get(id string) (*models.Workflow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	wf, ok := m.workflows[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrWorkflowNotFound, id)
	}

	return wf, nil
}

// List returns registered workflows sorted by ID, optionally filtered by
// environment.
func (m *Manager) List(environment models.Environment) []*models.Workflow {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.Workflow, 0, len(m.workflows))
	for _, wf := range m.workflows {
		if environment != "" && wf.Environment != environment {
			continue
		}
		out = append(out, wf)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

// Execute runs a registered workflow under the policy of its environment, or
// of envOverride when given. The policy timeout becomes a context deadline;
// its iteration ceiling becomes the executor's limit. Every run, successful
// or not, lands in the execution history before Execute returns.
func (m *Manager) Execute(ctx context.Context, id string, initial models.ExecutionContext, envOverride models.Environment) (models.ExecutionContext, error) {
	wf, err := m.Get(id)
	if err != nil {
		return nil, err
	}

	environment := wf.Environment
	if envOverride != "" {
		if !envOverride.Valid() {
			return nil, fmt.Errorf("unknown environment %q", envOverride)
		}
		environment = envOverride
	}

	policy := m.Policy(environment)

	if policy.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(policy.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	executionID := NewExecutionID()
	startedAt := time.Now()

	final, execErr := m.executor.Execute(ctx, wf, initial, Options{
		ExecutionID:   executionID,
		MaxIterations: policy.MaxIterations,
		Environment:   environment,
	})

	record := models.ExecutionRecord{
		ExecutionID: executionID,
		WorkflowID:  id,
		Environment: environment,
		StartedAt:   startedAt,
		FinishedAt:  time.Now(),
		Duration:    time.Since(startedAt),
		Status:      models.ExecutionStatusSuccess,
	}
	if execErr != nil {
		record.Status = models.ExecutionStatusFailed
		record.Error = execErr.Error()
	}

	m.appendHistory(ctx, record)

	if execErr != nil {
		if policy.AutoRollback {
			m.logger.Info("Auto rollback triggered",
				"workflow_id", id,
				"execution_id", executionID,
				"environment", environment,
			)
		}

		return nil, execErr
	}

	return final, nil
}

// appendHistory records an execution in memory and writes it through to
// persistence. The in-memory record is kept even when the write fails, so
// history queries within the process stay complete.
func (m *Manager) appendHistory(ctx context.Context, record models.ExecutionRecord) {
	m.mu.Lock()
	m.history = append(m.history, record)
	m.mu.Unlock()

	if m.persistence == nil {
		return
	}

	if err := m.persistence.AppendExecution(ctx, record); err != nil {
		m.logger.Warn("Failed to persist execution record",
			"execution_id", record.ExecutionID, "error", err)
	}
}

// ConfigureEnvironment merges a policy update into the environment's policy.
func (m *Manager) ConfigureEnvironment(environment models.Environment, update PolicyUpdate) error {
	if !environment.Valid() {
		return fmt.Errorf("unknown environment %q", environment)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.policies[environment]
	if !ok {
		current = DefaultPolicies()[environment]
	}
	m.policies[environment] = current.apply(update)

	return nil
}

// Policy returns the effective policy for an environment, falling back to
// the built-in defaults for environments never configured.
func (m *Manager) Policy(environment models.Environment) Policy {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if p, ok := m.policies[environment]; ok {
		return p
	}

	return DefaultPolicies()[environment]
}

// ExecutionHistory returns recorded executions oldest-first, filtered by
// workflow ID when one is given. The result is a copy.
func (m *Manager) ExecutionHistory(workflowID string) []models.ExecutionRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.ExecutionRecord, 0, len(m.history))
	for _, r := range m.history {
		if workflowID != "" && r.WorkflowID != workflowID {
			continue
		}
		out = append(out, r)
	}

	return out
}

// Statistics summarizes the manager's registry and history.
type Statistics struct {
	TotalWorkflows          int                        `json:"total_workflows"`
	TotalExecutions         int                        `json:"total_executions"`
	SuccessfulExecutions    int                        `json:"successful_executions"`
	FailedExecutions        int                        `json:"failed_executions"`
	WorkflowsByEnvironment  map[models.Environment]int `json:"workflows_by_environment"`
	ExecutionsByEnvironment map[models.Environment]int `json:"executions_by_environment"`
}

func (m *Manager) Statistics() Statistics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := Statistics{
		TotalWorkflows:          len(m.workflows),
		TotalExecutions:         len(m.history),
		WorkflowsByEnvironment:  make(map[models.Environment]int),
		ExecutionsByEnvironment: make(map[models.Environment]int),
	}

	for _, wf := range m.workflows {
		stats.WorkflowsByEnvironment[wf.Environment]++
	}

	for _, r := range m.history {
		stats.ExecutionsByEnvironment[r.Environment]++

		if r.Status == models.ExecutionStatusSuccess {
			stats.SuccessfulExecutions++
		} else {
			stats.FailedExecutions++
		}
	}

	return stats
}

// Export is the document ExportToFile writes: every registered workflow
// definition plus an export timestamp.
type Export struct {
	Workflows  []*models.WorkflowDefinition `json:"workflows"`
	ExportedAt time.Time                    `json:"exported_at"`
}

// ExportToFile writes all registered workflow definitions to a JSON file.
func (m *Manager) ExportToFile(path string) error {
	export := Export{ExportedAt: time.Now()}
	for _, wf := range m.List("") {
		export.Workflows = append(export.Workflows, wf.ToDefinition())
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal export: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	m.logger.Info("Workflows exported", "path", path, "count", len(export.Workflows))

	return nil
}

// ImportFromFile registers every workflow definition in an export document
// previously written by ExportToFile. Named actions are rebuilt through the
// resolver.
func (m *Manager) ImportFromFile(ctx context.Context, path string, resolver models.ActionResolver) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read export: %w", err)
	}

	var export Export
	if err := json.Unmarshal(data, &export); err != nil {
		return fmt.Errorf("decode export: %w", err)
	}

	for _, def := range export.Workflows {
		wf, err := models.FromDefinition(def, resolver)
		if err != nil {
			return fmt.Errorf("rebuild workflow %s: %w", def.WorkflowID, err)
		}

		if err := m.Register(ctx, wf); err != nil {
			return err
		}
	}

	m.logger.Info("Workflows imported", "path", path, "count", len(export.Workflows))

	return nil
}

// LoadFromPersistence registers every stored workflow definition, rebuilding
// named actions through the resolver. Definitions already registered in
// memory are skipped.
func (m *Manager) LoadFromPersistence(ctx context.Context, resolver models.ActionResolver) error {
	if m.persistence == nil {
		return errors.New("no persistence configured")
	}

	defs, err := m.persistence.Workflows(ctx)
	if err != nil {
		return fmt.Errorf("load workflows: %w", err)
	}

	for _, def := range defs {
		wf, err := models.FromDefinition(def, resolver)
		if err != nil {
			return fmt.Errorf("rebuild workflow %s: %w", def.WorkflowID, err)
		}

		if err := m.Register(ctx, wf); err != nil {
			if errors.Is(err, models.ErrDuplicateWorkflow) {
				continue
			}

			return err
		}
	}

	return nil
}
