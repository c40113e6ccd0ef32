// Package models defines the core domain models for the workflow engine:
// nodes, edges, conditions, execution contexts and the workflow graph itself.
package models

import (
	"errors"
	"fmt"
	"strings"
)

// Standard engine error types. Construction-time errors prevent the invalid
// object from being used; execution-time errors propagate to the caller.
var (
	// ErrDuplicateNode indicates a node with the same ID already exists in the workflow.
	ErrDuplicateNode = errors.New("duplicate node")

	// ErrUnknownNode indicates an edge references a node that is not part of the workflow.
	ErrUnknownNode = errors.New("unknown node")

	// ErrNoStartNode indicates execution was requested on a workflow without a start node.
	ErrNoStartNode = errors.New("workflow has no start node")

	// ErrDeadEnd indicates a non-terminal node had no satisfied outgoing edge.
	ErrDeadEnd = errors.New("no traversable edge")

	// ErrIterationLimit indicates execution exceeded the configured iteration ceiling.
	ErrIterationLimit = errors.New("iteration limit exceeded")

	// ErrValidation indicates a workflow failed structural validation.
	ErrValidation = errors.New("workflow validation failed")

	// ErrDuplicateWorkflow indicates a workflow with the same ID is already registered.
	ErrDuplicateWorkflow = errors.New("workflow already registered")

	// ErrWorkflowNotFound indicates no workflow is registered under the given ID.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrKeyNotFound indicates a context key is absent.
	ErrKeyNotFound = errors.New("context key not found")

	// ErrValueType indicates a context value has a different type than requested.
	ErrValueType = errors.New("unexpected context value type")
)

// ValidationError describes a single structural violation found by
// Workflow.Validate.
type ValidationError struct {
	Code    string `json:"code"`
	NodeID  string `json:"node_id,omitempty"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("%s: %s (node %s)", e.Code, e.Message, e.NodeID)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Validation error codes.
const (
	ValidationNoStartNode     = "NO_START_NODE"
	ValidationMultipleStarts  = "MULTIPLE_START_NODES"
	ValidationUnknownEndpoint = "UNKNOWN_EDGE_ENDPOINT"
	ValidationDeadEndNode     = "NO_OUTGOING_EDGES"
	ValidationUnreachable     = "UNREACHABLE_NODE"
)

// ValidationErrors aggregates every violation so callers see the full list,
// not just the first failure.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, v := range e {
		msgs = append(msgs, v.Error())
	}

	return "workflow validation failed: " + strings.Join(msgs, "; ")
}

func (e ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

// DeadEndError reports the node at which execution could not continue and the
// path walked up to that point.
type DeadEndError struct {
	WorkflowID string
	NodeID     string
	Path       []string
}

func (e *DeadEndError) Error() string {
	return fmt.Sprintf("workflow %s: no traversable edge from non-terminal node %s (path: %s)",
		e.WorkflowID, e.NodeID, strings.Join(e.Path, " -> "))
}

func (e *DeadEndError) Unwrap() error {
	return ErrDeadEnd
}

// IterationLimitError reports that the walk exceeded the configured ceiling.
// Path holds the partial execution path for diagnostics.
type IterationLimitError struct {
	WorkflowID string
	Limit      int
	Path       []string
}

func (e *IterationLimitError) Error() string {
	return fmt.Sprintf("workflow %s: exceeded maximum iterations (%d)", e.WorkflowID, e.Limit)
}

func (e *IterationLimitError) Unwrap() error {
	return ErrIterationLimit
}

// NodeActionError wraps a failure raised by a node action. The engine does
// not retry or compensate; the error carries the node and the partial path.
type NodeActionError struct {
	WorkflowID string
	NodeID     string
	Path       []string
	Err        error
}

func (e *NodeActionError) Error() string {
	return fmt.Sprintf("workflow %s: action failed at node %s: %v", e.WorkflowID, e.NodeID, e.Err)
}

func (e *NodeActionError) Unwrap() error {
	return e.Err
}
