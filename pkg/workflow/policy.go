package workflow

import "github.com/pinkflow/pinkflow/pkg/models"

// Policy holds the per-environment execution limits the manager applies to
// every run in that environment.
type Policy struct {
	MaxIterations  int            `json:"max_iterations"`
	TimeoutSeconds int            `json:"timeout_seconds"`
	AutoRollback   bool           `json:"auto_rollback"`
	Extra          map[string]any `json:"extra,omitempty"`
}

// PolicyUpdate is a partial policy: nil fields leave the current value
// untouched, Extra entries merge over existing ones.
type PolicyUpdate struct {
	MaxIterations  *int
	TimeoutSeconds *int
	AutoRollback   *bool
	Extra          map[string]any
}

// DefaultPolicies returns the built-in policy table. Production deliberately
// disables auto rollback; failed production runs need operator review.
func DefaultPolicies() map[models.Environment]Policy {
	return map[models.Environment]Policy{
		models.EnvironmentSandbox: {
			MaxIterations:  100,
			TimeoutSeconds: 60,
			AutoRollback:   true,
		},
		models.EnvironmentStaging: {
			MaxIterations:  500,
			TimeoutSeconds: 300,
			AutoRollback:   true,
		},
		models.EnvironmentProduction: {
			MaxIterations:  1000,
			TimeoutSeconds: 600,
			AutoRollback:   false,
		},
		models.EnvironmentDevelopment: {
			MaxIterations:  50,
			TimeoutSeconds: 30,
			AutoRollback:   true,
		},
	}
}

// apply merges an update into the policy and returns the result.
func (p Policy) apply(update PolicyUpdate) Policy {
	if update.MaxIterations != nil {
		p.MaxIterations = *update.MaxIterations
	}

	if update.TimeoutSeconds != nil {
		p.TimeoutSeconds = *update.TimeoutSeconds
	}

	if update.AutoRollback != nil {
		p.AutoRollback = *update.AutoRollback
	}

	if len(update.Extra) > 0 {
		merged := make(map[string]any, len(p.Extra)+len(update.Extra))
		for k, v := range p.Extra {
			merged[k] = v
		}
		for k, v := range update.Extra {
			merged[k] = v
		}
		p.Extra = merged
	}

	return p
}
