package models

import "fmt"

// Well-known context keys maintained by the engine during execution.
const (
	KeyWorkflowID    = "workflow_id"
	KeyEnvironment   = "environment"
	KeyExecutionPath = "execution_path"
	KeyIterations    = "iterations"
	KeyCompleted     = "completed"
)

// ExecutionContext is the mutable key-value state threaded through a workflow
// execution. Node actions receive a context and return an updated one; the
// engine clones before handing it to an action, so actions that fail partway
// through a multi-field update never corrupt the caller's copy.
type ExecutionContext map[string]any

// NewExecutionContext returns an empty context.
func NewExecutionContext() ExecutionContext {
	return make(ExecutionContext)
}

// Clone returns a shallow copy of the context with the engine-owned
// execution_path slice copied as well, so appends on one copy never alias
// another.
func (ec ExecutionContext) Clone() ExecutionContext {
	out := make(ExecutionContext, len(ec))
	for k, v := range ec {
		out[k] = v
	}

	if path, ok := ec[KeyExecutionPath].([]string); ok {
		cp := make([]string, len(path))
		copy(cp, path)
		out[KeyExecutionPath] = cp
	}

	return out
}

func (ec ExecutionContext) Set(key string, value any) {
	ec[key] = value
}

func (ec ExecutionContext) Get(key string) (any, bool) {
	v, ok := ec[key]

	return v, ok
}

// String returns the value under key as a string. ErrKeyNotFound and
// ErrValueType are distinguishable via errors.Is.
func (ec ExecutionContext) String(key string) (string, error) {
	v, ok := ec[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}

	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is %T, want string", ErrValueType, key, v)
	}

	return s, nil
}

// Int returns the value under key as an int. Whole float64 values are
// accepted because JSON round-trips numbers as float64.
func (ec ExecutionContext) Int(key string) (int, error) {
	v, ok := ec[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}

	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n == float64(int(n)) {
			return int(n), nil
		}
	}

	return 0, fmt.Errorf("%w: %s is %T, want int", ErrValueType, key, v)
}

// Float returns the value under key as a float64, accepting any numeric type.
func (ec ExecutionContext) Float(key string) (float64, error) {
	v, ok := ec[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}

	f, ok := toFloat(v)
	if !ok {
		return 0, fmt.Errorf("%w: %s is %T, want number", ErrValueType, key, v)
	}

	return f, nil
}

func (ec ExecutionContext) Bool(key string) (bool, error) {
	v, ok := ec[key]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}

	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s is %T, want bool", ErrValueType, key, v)
	}

	return b, nil
}

// StringSlice returns the value under key as []string, converting []any
// elements when every element is a string.
func (ec ExecutionContext) StringSlice(key string) ([]string, error) {
	v, ok := ec[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}

	switch s := v.(type) {
	case []string:
		return s, nil
	case []any:
		out := make([]string, 0, len(s))
		for _, el := range s {
			str, ok := el.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s element is %T, want string", ErrValueType, key, el)
			}
			out = append(out, str)
		}

		return out, nil
	}

	return nil, fmt.Errorf("%w: %s is %T, want []string", ErrValueType, key, v)
}

// ExecutionPath returns the ordered node IDs visited so far.
func (ec ExecutionContext) ExecutionPath() []string {
	path, _ := ec[KeyExecutionPath].([]string)

	return path
}

// Iterations returns the node-visit count recorded by the engine.
func (ec ExecutionContext) Iterations() int {
	n, err := ec.Int(KeyIterations)
	if err != nil {
		return 0
	}

	return n
}

// Completed reports whether a terminal node was reached.
func (ec ExecutionContext) Completed() bool {
	b, err := ec.Bool(KeyCompleted)
	if err != nil {
		return false
	}

	return b
}
