// Package registry maps action names to factories so workflows rebuilt from
// serialized definitions can resolve their node actions by name. Ad-hoc
// closures skip the registry entirely; they are construction-time only.
package registry

import (
	"fmt"
	"log/slog"

	"github.com/pinkflow/pinkflow/pkg/models"
)

// ActionFactory builds a node action from its per-node configuration.
type ActionFactory interface {
	ID() string
	Create(config map[string]any) (models.NodeAction, error)
}

// Registry holds the named action factories available to a process.
// Construct one explicitly and inject it wherever definitions are imported;
// there is no package-level instance.
type Registry struct {
	logger    *slog.Logger
	factories map[string]ActionFactory
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:    logger,
		factories: make(map[string]ActionFactory),
	}
}

// RegisterAction adds a factory, replacing any previous factory with the
// same ID.
func (r *Registry) RegisterAction(factory ActionFactory) {
	if _, exists := r.factories[factory.ID()]; exists {
		r.logger.Warn("replacing registered action factory", "action", factory.ID())
	}

	r.factories[factory.ID()] = factory
}

// Create builds the named action with the given configuration.
func (r *Registry) Create(name string, config map[string]any) (models.NodeAction, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("action %q not registered", name)
	}

	return factory.Create(config)
}

// Actions returns the registered action names.
func (r *Registry) Actions() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}

	return names
}

var _ models.ActionResolver = (*Registry)(nil)
