package models

import (
	"context"
	"time"
)

// NodeType represents the role of a node in the workflow graph.
type NodeType string

const (
	NodeTypeStart    NodeType = "start"
	NodeTypeProcess  NodeType = "process"
	NodeTypeDecision NodeType = "decision"
	NodeTypeEnd      NodeType = "end"

	// Parallel and merge are reserved: the engine accepts them but executes
	// them as ordinary sequential steps. True fan-out is a future extension.
	NodeTypeParallel NodeType = "parallel"
	NodeTypeMerge    NodeType = "merge"
)

func (t NodeType) Valid() bool {
	switch t {
	case NodeTypeStart, NodeTypeProcess, NodeTypeDecision, NodeTypeEnd, NodeTypeParallel, NodeTypeMerge:
		return true
	default:
		return false
	}
}

// NodeMetadata carries informational fields that the execution algorithm
// never consults.
type NodeMetadata struct {
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Tags        []string  `json:"tags,omitempty"`
	Description string    `json:"description,omitempty"`
	Owner       string    `json:"owner,omitempty"`
}

// NodeAction is a unit of behavior attached to a node. Actions receive the
// full current context and return a full updated context, not a delta. Side
// effects inside actions are the author's responsibility to make idempotent;
// the engine provides no retry or compensation.
type NodeAction interface {
	Execute(ctx context.Context, ec ExecutionContext) (ExecutionContext, error)
}

// ActionFunc adapts a plain function to the NodeAction interface.
type ActionFunc func(ctx context.Context, ec ExecutionContext) (ExecutionContext, error)

func (f ActionFunc) Execute(ctx context.Context, ec ExecutionContext) (ExecutionContext, error) {
	return f(ctx, ec)
}

// Node is a named unit of work in a workflow.
type Node struct {
	ID   string   `json:"id"   validate:"required"`
	Name string   `json:"name" validate:"required,min=1"`
	Type NodeType `json:"type" validate:"required"`

	// Action is optional; decision, start and end nodes commonly omit it.
	// ActionName identifies a registered action factory so the node can be
	// rebuilt from a serialized definition; ad-hoc actions leave it empty
	// and are excluded from export.
	Action     NodeAction     `json:"-"`
	ActionName string         `json:"action,omitempty"`
	Config     map[string]any `json:"config,omitempty"`
	Metadata   NodeMetadata   `json:"metadata"`
}

// NewNode constructs a node with metadata timestamps set.
func NewNode(id, name string, nodeType NodeType) *Node {
	now := time.Now()

	return &Node{
		ID:   id,
		Name: name,
		Type: nodeType,
		Metadata: NodeMetadata{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

// Execute runs the node's action against the context. A node without an
// action is the identity transform.
func (n *Node) Execute(ctx context.Context, ec ExecutionContext) (ExecutionContext, error) {
	if n.Action == nil {
		return ec, nil
	}

	return n.Action.Execute(ctx, ec)
}

// IsTerminal reports whether reaching this node completes the walk.
func (n *Node) IsTerminal() bool {
	return n.Type == NodeTypeEnd
}
