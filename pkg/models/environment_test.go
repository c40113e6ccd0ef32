package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvironment(t *testing.T) {
	for _, env := range Environments() {
		parsed, err := ParseEnvironment(string(env))
		require.NoError(t, err)
		assert.Equal(t, env, parsed)
	}

	_, err := ParseEnvironment("galaxy")
	assert.Error(t, err)

	_, err = ParseEnvironment("")
	assert.Error(t, err)
}

func TestEnvironmentValid(t *testing.T) {
	assert.True(t, EnvironmentProduction.Valid())
	assert.False(t, Environment("Production").Valid(), "environments are case sensitive")
}
