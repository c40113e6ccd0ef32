package workflow

import (
	"errors"
	"fmt"

	"github.com/pinkflow/pinkflow/pkg/models"
)

// Builder assembles workflows with a fluent API. Construction errors are
// latched and reported by Build, so call sites can chain without checking
// each step; Build never returns a partially valid workflow.
type Builder struct {
	workflow *models.Workflow
	errs     []error
}

// NewBuilder starts a workflow under construction.
func NewBuilder(id, name string, environment models.Environment) *Builder {
	return &Builder{
		workflow: models.NewWorkflow(id, name, environment),
	}
}

// WithDescription sets the workflow description.
func (b *Builder) WithDescription(description string) *Builder {
	b.workflow.Description = description

	return b
}

// WithMetadata sets one metadata entry on the workflow.
func (b *Builder) WithMetadata(key string, value any) *Builder {
	b.workflow.Metadata[key] = value

	return b
}

// AddStartNode adds the workflow entry point.
func (b *Builder) AddStartNode(id, name string) *Builder {
	return b.AddNode(models.NewNode(id, name, models.NodeTypeStart))
}

// AddProcessNode adds a process node with an optional action.
func (b *Builder) AddProcessNode(id, name string, action models.NodeAction, config map[string]any) *Builder {
	node := models.NewNode(id, name, models.NodeTypeProcess)
	node.Action = action
	node.Config = config

	return b.AddNode(node)
}

// AddDecisionNode adds a decision node. Routing lives on the outgoing edges;
// the node itself may carry an action that prepares the fields conditions
// inspect.
func (b *Builder) AddDecisionNode(id, name string, action models.NodeAction) *Builder {
	node := models.NewNode(id, name, models.NodeTypeDecision)
	node.Action = action

	return b.AddNode(node)
}

// AddEndNode adds a terminal node.
func (b *Builder) AddEndNode(id, name string) *Builder {
	return b.AddNode(models.NewNode(id, name, models.NodeTypeEnd))
}

// AddNode adds a prebuilt node.
func (b *Builder) AddNode(node *models.Node) *Builder {
	if err := b.workflow.AddNode(node); err != nil {
		b.errs = append(b.errs, err)
	}

	return b
}

// Connect wires two nodes with a condition and priority.
func (b *Builder) Connect(from, to string, condition models.Condition, priority int) *Builder {
	if _, err := b.workflow.Connect(from, to, condition, priority); err != nil {
		b.errs = append(b.errs, err)
	}

	return b
}

// ConnectAlways wires two nodes with an unconditional edge.
func (b *Builder) ConnectAlways(from, to string, priority int) *Builder {
	return b.Connect(from, to, models.Always(), priority)
}

// Build returns the finished workflow. Any latched construction error or
// structural validation failure makes Build fail as a whole.
func (b *Builder) Build() (*models.Workflow, error) {
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("workflow %s: %w", b.workflow.ID, errors.Join(b.errs...))
	}

	if errs := b.workflow.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("workflow %s: %w", b.workflow.ID, errs)
	}

	return b.workflow, nil
}
