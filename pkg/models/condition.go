package models

import (
	"reflect"
	"strings"
)

// ConditionType enumerates the supported edge condition operators.
type ConditionType string

const (
	ConditionAlways      ConditionType = "always"
	ConditionEquals      ConditionType = "equals"
	ConditionNotEquals   ConditionType = "not_equals"
	ConditionGreaterThan ConditionType = "greater_than"
	ConditionLessThan    ConditionType = "less_than"
	ConditionContains    ConditionType = "contains"
	ConditionCustom      ConditionType = "custom"
)

// Predicate is an arbitrary condition over the full execution context.
// Predicates must be pure: no mutation, no side effects.
type Predicate func(ec ExecutionContext) bool

// Condition guards edge traversal. Data conditions carry a field/value pair
// and serialize with the workflow definition; custom conditions carry a
// predicate and serialize as an opaque marker only.
type Condition struct {
	Type      ConditionType `json:"type"`
	Field     string        `json:"field,omitempty"`
	Value     any           `json:"value,omitempty"`
	Predicate Predicate     `json:"-"`
}

// Always returns the default, unconditionally traversable condition.
func Always() Condition {
	return Condition{Type: ConditionAlways}
}

// Equals matches when the context field is structurally equal to value.
func Equals(field string, value any) Condition {
	return Condition{Type: ConditionEquals, Field: field, Value: value}
}

// NotEquals matches when the context field differs from value. A missing
// field is never equal, so NotEquals matches absent fields as well.
func NotEquals(field string, value any) Condition {
	return Condition{Type: ConditionNotEquals, Field: field, Value: value}
}

// GreaterThan matches when the context field is numerically greater than
// value. Non-numeric operands never match.
func GreaterThan(field string, value any) Condition {
	return Condition{Type: ConditionGreaterThan, Field: field, Value: value}
}

// LessThan matches when the context field is numerically less than value.
func LessThan(field string, value any) Condition {
	return Condition{Type: ConditionLessThan, Field: field, Value: value}
}

// Contains matches substring for string fields, membership for slice fields
// and key presence for map fields. Other field types never match.
func Contains(field string, value any) Condition {
	return Condition{Type: ConditionContains, Field: field, Value: value}
}

// Custom wraps a predicate evaluated against the full context.
func Custom(predicate Predicate) Condition {
	return Condition{Type: ConditionCustom, Predicate: predicate}
}

// Evaluate reports whether the condition is satisfied by the context.
// Evaluation is pure and total: it never mutates the context and never
// panics on missing fields or mismatched types.
func (c Condition) Evaluate(ec ExecutionContext) bool {
	switch c.Type {
	case ConditionAlways, "":
		return true
	case ConditionCustom:
		if c.Predicate == nil {
			return false
		}

		return c.Predicate(ec)
	}

	fieldValue, present := ec[c.Field]

	switch c.Type {
	case ConditionEquals:
		return present && looseEqual(fieldValue, c.Value)
	case ConditionNotEquals:
		// A missing field is never equal to the expected value.
		return !present || !looseEqual(fieldValue, c.Value)
	case ConditionGreaterThan:
		a, aok := toFloat(fieldValue)
		b, bok := toFloat(c.Value)

		return present && aok && bok && a > b
	case ConditionLessThan:
		a, aok := toFloat(fieldValue)
		b, bok := toFloat(c.Value)

		return present && aok && bok && a < b
	case ConditionContains:
		return present && contains(fieldValue, c.Value)
	default:
		return false
	}
}

// looseEqual compares structurally, treating numeric values of different Go
// types as equal when their values match. JSON decoding turns every number
// into float64, so strict type equality would break round-tripped workflows.
func looseEqual(a, b any) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}

		return false
	}

	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func contains(container, needle any) bool {
	switch c := container.(type) {
	case string:
		s, ok := needle.(string)

		return ok && strings.Contains(c, s)
	case []string:
		s, ok := needle.(string)
		if !ok {
			return false
		}
		for _, el := range c {
			if el == s {
				return true
			}
		}

		return false
	case []any:
		for _, el := range c {
			if looseEqual(el, needle) {
				return true
			}
		}

		return false
	case map[string]any:
		key, ok := needle.(string)
		if !ok {
			return false
		}
		_, found := c[key]

		return found
	default:
		return false
	}
}
