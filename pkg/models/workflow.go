package models

import (
	"fmt"
	"sort"
	"time"
)

// Workflow owns the node map and ordered edge list of a directed graph and
// validates its structural invariants. A workflow holds no execution-session
// state: once built, its structure is treated as read-only and any number of
// executions may run against it concurrently.
type Workflow struct {
	ID          string         `json:"workflow_id" validate:"required"`
	Name        string         `json:"name"        validate:"required,min=3"`
	Description string         `json:"description"`
	Environment Environment    `json:"environment" validate:"required"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`

	// StartNode is the first start-typed node added; EndNodes collects every
	// end-typed node in insertion order.
	StartNode string   `json:"start_node,omitempty"`
	EndNodes  []string `json:"end_nodes,omitempty"`

	nodes map[string]*Node
	edges []*Edge
}

// NewWorkflow constructs an empty workflow for the given environment.
func NewWorkflow(id, name string, environment Environment) *Workflow {
	return &Workflow{
		ID:          id,
		Name:        name,
		Environment: environment,
		Metadata:    make(map[string]any),
		CreatedAt:   time.Now(),
		nodes:       make(map[string]*Node),
	}
}

// AddNode adds a node, failing with ErrDuplicateNode if the ID is taken.
// The first start node becomes the execution entry point; end nodes are
// collected as terminals.
func (w *Workflow) AddNode(node *Node) error {
	if _, exists := w.nodes[node.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, node.ID)
	}

	w.nodes[node.ID] = node

	switch {
	case node.Type == NodeTypeStart && w.StartNode == "":
		w.StartNode = node.ID
	case node.Type == NodeTypeEnd:
		w.EndNodes = append(w.EndNodes, node.ID)
	}

	return nil
}

// AddEdge adds an edge, enforcing referential integrity eagerly: both
// endpoints must already exist.
func (w *Workflow) AddEdge(edge *Edge) error {
	if _, ok := w.nodes[edge.From]; !ok {
		return fmt.Errorf("%w: edge %s references source %s", ErrUnknownNode, edge.ID, edge.From)
	}

	if _, ok := w.nodes[edge.To]; !ok {
		return fmt.Errorf("%w: edge %s references destination %s", ErrUnknownNode, edge.ID, edge.To)
	}

	w.edges = append(w.edges, edge)

	return nil
}

// Connect creates and adds an edge between two existing nodes. The edge ID
// is derived from the endpoints and the current edge count, which keeps IDs
// stable across identical construction sequences.
func (w *Workflow) Connect(from, to string, condition Condition, priority int) (*Edge, error) {
	edge := &Edge{
		ID:        fmt.Sprintf("%s_to_%s_%d", from, to, len(w.edges)),
		From:      from,
		To:        to,
		Condition: condition,
		Priority:  priority,
	}

	if err := w.AddEdge(edge); err != nil {
		return nil, err
	}

	return edge, nil
}

// Node returns the node with the given ID.
func (w *Workflow) Node(id string) (*Node, bool) {
	n, ok := w.nodes[id]

	return n, ok
}

// Nodes returns the node set keyed by ID. Callers must treat the result as
// read-only.
func (w *Workflow) Nodes() map[string]*Node {
	return w.nodes
}

// Edges returns the edge list in insertion order. Callers must treat the
// result as read-only.
func (w *Workflow) Edges() []*Edge {
	return w.edges
}

// OutgoingEdges returns the edges leaving nodeID sorted by priority
// descending. The sort is stable so equal priorities keep insertion order,
// which makes routing deterministic.
func (w *Workflow) OutgoingEdges(nodeID string) []*Edge {
	var outgoing []*Edge
	for _, e := range w.edges {
		if e.From == nodeID {
			outgoing = append(outgoing, e)
		}
	}

	sort.SliceStable(outgoing, func(i, j int) bool {
		return outgoing[i].Priority > outgoing[j].Priority
	})

	return outgoing
}

// NextNodes returns the destination IDs of every satisfied outgoing edge, in
// evaluation order. The execution algorithm follows only the first; the full
// list surfaces alternate matches for diagnostics and tests.
func (w *Workflow) NextNodes(currentID string, ec ExecutionContext) []string {
	var next []string
	for _, edge := range w.OutgoingEdges(currentID) {
		if edge.CanTraverse(ec) {
			next = append(next, edge.To)
		}
	}

	return next
}

// Validate checks the workflow's structural invariants and returns every
// violation found. Reachability is structural: edge conditions are assumed
// satisfiable. Validate never mutates the workflow, so repeated calls on an
// unmodified workflow yield identical results.
func (w *Workflow) Validate() ValidationErrors {
	var errs ValidationErrors

	starts := 0
	for _, n := range w.nodes {
		if n.Type == NodeTypeStart {
			starts++
		}
	}

	switch {
	case starts == 0:
		errs = append(errs, ValidationError{
			Code:    ValidationNoStartNode,
			Message: "workflow has no start node",
		})
	case starts > 1:
		errs = append(errs, ValidationError{
			Code:    ValidationMultipleStarts,
			Message: fmt.Sprintf("workflow has %d start nodes, want exactly one", starts),
		})
	}

	for _, e := range w.edges {
		if _, ok := w.nodes[e.From]; !ok {
			errs = append(errs, ValidationError{
				Code:    ValidationUnknownEndpoint,
				NodeID:  e.From,
				Message: fmt.Sprintf("edge %s references unknown source", e.ID),
			})
		}

		if _, ok := w.nodes[e.To]; !ok {
			errs = append(errs, ValidationError{
				Code:    ValidationUnknownEndpoint,
				NodeID:  e.To,
				Message: fmt.Sprintf("edge %s references unknown destination", e.ID),
			})
		}
	}

	for _, id := range sortedNodeIDs(w.nodes) {
		node := w.nodes[id]
		if node.IsTerminal() {
			continue
		}

		if len(w.OutgoingEdges(id)) == 0 {
			errs = append(errs, ValidationError{
				Code:    ValidationDeadEndNode,
				NodeID:  id,
				Message: "non-terminal node has no outgoing edges",
			})
		}
	}

	if w.StartNode != "" {
		reachable := w.reachableFrom(w.StartNode)
		for _, id := range sortedNodeIDs(w.nodes) {
			if !reachable[id] {
				errs = append(errs, ValidationError{
					Code:    ValidationUnreachable,
					NodeID:  id,
					Message: "node is unreachable from the start node",
				})
			}
		}
	}

	return errs
}

// reachableFrom walks the graph ignoring condition satisfiability.
func (w *Workflow) reachableFrom(startID string) map[string]bool {
	reachable := make(map[string]bool)
	queue := []string{startID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if reachable[current] {
			continue
		}
		reachable[current] = true

		for _, e := range w.edges {
			if e.From == current && !reachable[e.To] {
				queue = append(queue, e.To)
			}
		}
	}

	return reachable
}

func sortedNodeIDs(nodes map[string]*Node) []string {
	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}
