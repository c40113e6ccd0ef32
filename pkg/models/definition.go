package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// WorkflowDefinition is the JSON interchange form of a workflow: the full
// structural definition with conditions as data. Custom conditions carry no
// executable payload and serialize as an opaque {"type":"custom"} marker;
// they cannot round-trip unless the predicate is re-registered as a named
// action-registry entry.
type WorkflowDefinition struct {
	WorkflowID  string           `json:"workflow_id" validate:"required"`
	Name        string           `json:"name"        validate:"required,min=3"`
	Description string           `json:"description"`
	Environment Environment      `json:"environment" validate:"required"`
	Metadata    map[string]any   `json:"metadata,omitempty"`
	StartNode   string           `json:"start_node,omitempty"`
	EndNodes    []string         `json:"end_nodes,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	Nodes       []NodeDefinition `json:"nodes"`
	Edges       []EdgeDefinition `json:"edges"`
}

// NodeDefinition is the serializable form of a node. Ad-hoc actions export
// with an empty action name and are rebuilt as identity nodes.
type NodeDefinition struct {
	ID       string         `json:"id"   validate:"required"`
	Name     string         `json:"name" validate:"required"`
	Type     NodeType       `json:"type" validate:"required"`
	Action   string         `json:"action,omitempty"`
	Config   map[string]any `json:"config,omitempty"`
	Metadata NodeMetadata   `json:"metadata"`
}

// EdgeDefinition is the serializable form of an edge.
type EdgeDefinition struct {
	ID        string              `json:"id"   validate:"required"`
	From      string              `json:"from" validate:"required"`
	To        string              `json:"to"   validate:"required"`
	Priority  int                 `json:"priority"`
	Condition ConditionDefinition `json:"condition"`
	Metadata  map[string]any      `json:"metadata,omitempty"`
}

// ConditionDefinition is the data form of an edge condition.
type ConditionDefinition struct {
	Type  ConditionType `json:"type"`
	Field string        `json:"field,omitempty"`
	Value any           `json:"value,omitempty"`
}

// ActionResolver rebuilds named node actions from a definition. The action
// registry implements it; models stays free of a registry dependency.
type ActionResolver interface {
	Create(name string, config map[string]any) (NodeAction, error)
}

// ToDefinition exports the workflow's full structural definition. Nodes
// appear in sorted-ID order, edges in insertion order, so exports of the
// same workflow are byte-stable.
func (w *Workflow) ToDefinition() *WorkflowDefinition {
	def := &WorkflowDefinition{
		WorkflowID:  w.ID,
		Name:        w.Name,
		Description: w.Description,
		Environment: w.Environment,
		Metadata:    w.Metadata,
		StartNode:   w.StartNode,
		EndNodes:    w.EndNodes,
		CreatedAt:   w.CreatedAt,
		Nodes:       make([]NodeDefinition, 0, len(w.nodes)),
		Edges:       make([]EdgeDefinition, 0, len(w.edges)),
	}

	for _, id := range sortedNodeIDs(w.nodes) {
		n := w.nodes[id]
		def.Nodes = append(def.Nodes, NodeDefinition{
			ID:       n.ID,
			Name:     n.Name,
			Type:     n.Type,
			Action:   n.ActionName,
			Config:   n.Config,
			Metadata: n.Metadata,
		})
	}

	for _, e := range w.edges {
		cond := ConditionDefinition{Type: e.Condition.Type}
		if cond.Type == "" {
			cond.Type = ConditionAlways
		}

		// Custom predicates are closures; only the marker survives export.
		if cond.Type != ConditionCustom {
			cond.Field = e.Condition.Field
			cond.Value = e.Condition.Value
		}

		def.Edges = append(def.Edges, EdgeDefinition{
			ID:        e.ID,
			From:      e.From,
			To:        e.To,
			Priority:  e.Priority,
			Condition: cond,
			Metadata:  e.Metadata,
		})
	}

	return def
}

// ToJSON renders the definition as indented JSON.
func (w *Workflow) ToJSON() ([]byte, error) {
	return json.MarshalIndent(w.ToDefinition(), "", "  ")
}

// FromDefinition reconstructs a workflow from its definition. Named actions
// are rebuilt through the resolver; a nil resolver yields identity nodes. A
// serialized custom condition evaluates false until its predicate is
// re-attached.
func FromDefinition(def *WorkflowDefinition, resolver ActionResolver) (*Workflow, error) {
	w := NewWorkflow(def.WorkflowID, def.Name, def.Environment)
	w.Description = def.Description
	w.CreatedAt = def.CreatedAt

	if def.Metadata != nil {
		w.Metadata = def.Metadata
	}

	for _, nd := range def.Nodes {
		node := &Node{
			ID:         nd.ID,
			Name:       nd.Name,
			Type:       nd.Type,
			ActionName: nd.Action,
			Config:     nd.Config,
			Metadata:   nd.Metadata,
		}

		if nd.Action != "" && resolver != nil {
			action, err := resolver.Create(nd.Action, nd.Config)
			if err != nil {
				return nil, fmt.Errorf("node %s: %w", nd.ID, err)
			}
			node.Action = action
		}

		if err := w.AddNode(node); err != nil {
			return nil, err
		}
	}

	for _, ed := range def.Edges {
		edge := &Edge{
			ID:       ed.ID,
			From:     ed.From,
			To:       ed.To,
			Priority: ed.Priority,
			Metadata: ed.Metadata,
			Condition: Condition{
				Type:  ed.Condition.Type,
				Field: ed.Condition.Field,
				Value: ed.Condition.Value,
			},
		}

		if err := w.AddEdge(edge); err != nil {
			return nil, err
		}
	}

	return w, nil
}

// ParseDefinition decodes a JSON workflow definition.
func ParseDefinition(data []byte) (*WorkflowDefinition, error) {
	var def WorkflowDefinition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("invalid workflow definition: %w", err)
	}

	return &def, nil
}
