// Package log provides a built-in action that logs selected context fields.
package log

import (
	"context"
	"log/slog"

	"github.com/pinkflow/pinkflow/pkg/models"
)

func NewActionFactory(logger *slog.Logger) *ActionFactory {
	return &ActionFactory{logger: logger}
}

type ActionFactory struct {
	logger *slog.Logger
}

func (*ActionFactory) ID() string {
	return "log"
}

func (f *ActionFactory) Create(config map[string]any) (models.NodeAction, error) {
	message, _ := config["message"].(string)

	fields, _ := config["fields"].([]any)
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		if s, ok := f.(string); ok {
			keys = append(keys, s)
		}
	}

	return &Action{logger: f.logger, message: message, fields: keys}, nil
}

// Action logs a configured message plus chosen context fields. It never
// mutates the context.
type Action struct {
	logger  *slog.Logger
	message string
	fields  []string
}

func (a *Action) Execute(_ context.Context, ec models.ExecutionContext) (models.ExecutionContext, error) {
	attrs := []any{"workflow_id", ec[models.KeyWorkflowID]}
	for _, key := range a.fields {
		if v, ok := ec[key]; ok {
			attrs = append(attrs, key, v)
		}
	}

	msg := a.message
	if msg == "" {
		msg = "workflow log action"
	}

	a.logger.Info(msg, attrs...)

	return ec, nil
}
