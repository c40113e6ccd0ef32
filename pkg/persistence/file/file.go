// Package file provides file-based persistence for workflow definitions and
// execution history. Each definition is one JSON document under
// <root>/workflows/<id>.json; history is a single append-managed
// <root>/history.json.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pinkflow/pinkflow/pkg/models"
	"github.com/pinkflow/pinkflow/pkg/persistence"
)

// Persistence implements persistence.Persistence on the local file system.
type Persistence struct {
	root string

	// historyMu serializes read-modify-write cycles on history.json.
	historyMu sync.Mutex
}

// NewPersistence creates a file persistence rooted at the given directory.
// A "file://" prefix is stripped so database-URL style configuration works.
func NewPersistence(root string) *Persistence {
	return &Persistence{
		root: strings.Replace(root, "file://", "", 1),
	}
}

func (fp *Persistence) workflowsDir() string {
	return filepath.Join(fp.root, "workflows")
}

func (fp *Persistence) workflowPath(id string) string {
	return filepath.Join(fp.workflowsDir(), id+".json")
}

func (fp *Persistence) historyPath() string {
	return filepath.Join(fp.root, "history.json")
}

func (fp *Persistence) Workflows(_ context.Context) ([]*models.WorkflowDefinition, error) {
	entries, err := os.ReadDir(fp.workflowsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return []*models.WorkflowDefinition{}, nil
		}

		return nil, fmt.Errorf("read workflows directory: %w", err)
	}

	defs := make([]*models.WorkflowDefinition, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		def, err := fp.readDefinition(filepath.Join(fp.workflowsDir(), entry.Name()))
		if err != nil {
			return nil, err
		}

		defs = append(defs, def)
	}

	return defs, nil
}

func (fp *Persistence) WorkflowByID(_ context.Context, id string) (*models.WorkflowDefinition, error) {
	def, err := fp.readDefinition(fp.workflowPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, persistence.NewWorkflowError("WorkflowByID", id, persistence.ErrWorkflowNotFound)
		}

		return nil, persistence.NewWorkflowError("WorkflowByID", id, err)
	}

	return def, nil
}

func (fp *Persistence) SaveWorkflow(_ context.Context, def *models.WorkflowDefinition) error {
	if err := os.MkdirAll(fp.workflowsDir(), 0o755); err != nil {
		return persistence.NewWorkflowError("SaveWorkflow", def.WorkflowID, err)
	}

	data, err := json.MarshalIndent(def, "", "  ")
	if err != nil {
		return persistence.NewWorkflowError("SaveWorkflow", def.WorkflowID, err)
	}

	if err := os.WriteFile(fp.workflowPath(def.WorkflowID), data, 0o644); err != nil {
		return persistence.NewWorkflowError("SaveWorkflow", def.WorkflowID, err)
	}

	return nil
}

func (fp *Persistence) DeleteWorkflow(_ context.Context, id string) error {
	if err := os.Remove(fp.workflowPath(id)); err != nil {
		if os.IsNotExist(err) {
			return persistence.NewWorkflowError("DeleteWorkflow", id, persistence.ErrWorkflowNotFound)
		}

		return persistence.NewWorkflowError("DeleteWorkflow", id, err)
	}

	return nil
}

func (fp *Persistence) AppendExecution(_ context.Context, record models.ExecutionRecord) error {
	fp.historyMu.Lock()
	defer fp.historyMu.Unlock()

	records, err := fp.readHistory()
	if err != nil {
		return err
	}

	records = append(records, record)

	if err := os.MkdirAll(fp.root, 0o755); err != nil {
		return fmt.Errorf("create persistence root: %w", err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	return os.WriteFile(fp.historyPath(), data, 0o644)
}

// Executions returns history oldest-first, filtered by workflow ID when one
// is given.
func (fp *Persistence) Executions(_ context.Context, workflowID string) ([]models.ExecutionRecord, error) {
	fp.historyMu.Lock()
	defer fp.historyMu.Unlock()

	records, err := fp.readHistory()
	if err != nil {
		return nil, err
	}

	if workflowID == "" {
		return records, nil
	}

	filtered := make([]models.ExecutionRecord, 0, len(records))
	for _, r := range records {
		if r.WorkflowID == workflowID {
			filtered = append(filtered, r)
		}
	}

	return filtered, nil
}

func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

func (fp *Persistence) readDefinition(path string) (*models.WorkflowDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var def models.WorkflowDefinition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	return &def, nil
}

func (fp *Persistence) readHistory() ([]models.ExecutionRecord, error) {
	data, err := os.ReadFile(fp.historyPath())
	if err != nil {
		if os.IsNotExist(err) {
			return []models.ExecutionRecord{}, nil
		}

		return nil, fmt.Errorf("read history: %w", err)
	}

	var records []models.ExecutionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}

	return records, nil
}

var _ persistence.Persistence = (*Persistence)(nil)
