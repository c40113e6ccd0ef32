// Package transform provides a built-in action that writes configured
// values into the execution context.
package transform

import (
	"context"
	"strings"

	"github.com/pinkflow/pinkflow/pkg/models"
)

func NewActionFactory() *ActionFactory {
	return &ActionFactory{}
}

type ActionFactory struct{}

func (*ActionFactory) ID() string {
	return "transform"
}

// Create reads the "set" map from config. Values of the form "{key}" copy
// the current context value under key; everything else is assigned as-is.
func (*ActionFactory) Create(config map[string]any) (models.NodeAction, error) {
	set, _ := config["set"].(map[string]any)

	return &Action{set: set}, nil
}

// Action assigns configured key/value pairs into a clone of the context.
type Action struct {
	set map[string]any
}

func (a *Action) Execute(_ context.Context, ec models.ExecutionContext) (models.ExecutionContext, error) {
	out := ec.Clone()

	for key, value := range a.set {
		if ref, ok := refKey(value); ok {
			if existing, found := out[ref]; found {
				out[key] = existing
			}

			continue
		}

		out[key] = value
	}

	return out, nil
}

func refKey(value any) (string, bool) {
	s, ok := value.(string)
	if !ok || len(s) < 3 || !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return "", false
	}

	return s[1 : len(s)-1], true
}
