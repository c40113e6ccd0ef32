package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutionContextAccessors(t *testing.T) {
	ec := ExecutionContext{
		"name":   "deploy",
		"count":  float64(3),
		"ratio":  0.5,
		"active": true,
		"tags":   []any{"a", "b"},
	}

	name, err := ec.String("name")
	require.NoError(t, err)
	assert.Equal(t, "deploy", name)

	count, err := ec.Int("count")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	ratio, err := ec.Float("ratio")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, ratio, 1e-9)

	active, err := ec.Bool("active")
	require.NoError(t, err)
	assert.True(t, active)

	tags, err := ec.StringSlice("tags")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tags)
}

func TestExecutionContextAccessorErrors(t *testing.T) {
	ec := ExecutionContext{"count": "three", "ratio": 0.25}

	_, err := ec.String("missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	_, err = ec.Int("count")
	assert.ErrorIs(t, err, ErrValueType)

	_, err = ec.Int("ratio")
	assert.ErrorIs(t, err, ErrValueType, "fractional float is not an int")

	_, err = ec.Bool("count")
	assert.ErrorIs(t, err, ErrValueType)
}

func TestExecutionContextClone(t *testing.T) {
	ec := ExecutionContext{
		"status":         "pending",
		KeyExecutionPath: []string{"start", "review"},
		KeyIterations:    1,
	}

	clone := ec.Clone()
	clone.Set("status", "approved")
	clone.Set(KeyExecutionPath, append(clone.ExecutionPath(), "finish"))

	status, err := ec.String("status")
	require.NoError(t, err)
	assert.Equal(t, "pending", status)
	assert.Equal(t, []string{"start", "review"}, ec.ExecutionPath())
	assert.Equal(t, []string{"start", "review", "finish"}, clone.ExecutionPath())
}

func TestExecutionContextEngineHelpers(t *testing.T) {
	ec := NewExecutionContext()

	assert.Empty(t, ec.ExecutionPath())
	assert.Zero(t, ec.Iterations())
	assert.False(t, ec.Completed())

	ec.Set(KeyExecutionPath, []string{"start"})
	ec.Set(KeyIterations, 4)
	ec.Set(KeyCompleted, true)

	assert.Equal(t, []string{"start"}, ec.ExecutionPath())
	assert.Equal(t, 4, ec.Iterations())
	assert.True(t, ec.Completed())
}
