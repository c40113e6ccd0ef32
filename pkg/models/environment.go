package models

import "fmt"

// Environment identifies the execution-policy profile a workflow targets.
// It is distinct from the graph structure: the same workflow can be executed
// under a different environment via the manager's override.
type Environment string

const (
	EnvironmentSandbox     Environment = "sandbox"
	EnvironmentStaging     Environment = "staging"
	EnvironmentProduction  Environment = "production"
	EnvironmentDevelopment Environment = "development"
)

// Environments lists all known environments in a stable order.
func Environments() []Environment {
	return []Environment{
		EnvironmentSandbox,
		EnvironmentStaging,
		EnvironmentProduction,
		EnvironmentDevelopment,
	}
}

func (e Environment) Valid() bool {
	switch e {
	case EnvironmentSandbox, EnvironmentStaging, EnvironmentProduction, EnvironmentDevelopment:
		return true
	default:
		return false
	}
}

// ParseEnvironment converts a string into an Environment.
func ParseEnvironment(s string) (Environment, error) {
	env := Environment(s)
	if !env.Valid() {
		return "", fmt.Errorf("unknown environment %q", s)
	}

	return env, nil
}
