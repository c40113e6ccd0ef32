package models

// Edge is a directed, conditionally-guarded connection between two nodes.
// Among edges sharing a source node, higher priority is evaluated first;
// ties break by insertion order.
type Edge struct {
	ID        string         `json:"id"   validate:"required"`
	From      string         `json:"from" validate:"required"`
	To        string         `json:"to"   validate:"required"`
	Condition Condition      `json:"condition"`
	Priority  int            `json:"priority"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// CanTraverse reports whether the edge's condition is satisfied by the
// context.
func (e *Edge) CanTraverse(ec ExecutionContext) bool {
	return e.Condition.Evaluate(ec)
}
