package transform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinkflow/pinkflow/pkg/models"
)

func TestTransformSetsLiteralValues(t *testing.T) {
	action, err := NewActionFactory().Create(map[string]any{
		"set": map[string]any{
			"status": "processed",
			"score":  float64(7),
		},
	})
	require.NoError(t, err)

	out, err := action.Execute(context.Background(), models.ExecutionContext{"order": "o-1"})
	require.NoError(t, err)

	assert.Equal(t, "processed", out["status"])
	assert.Equal(t, float64(7), out["score"])
	assert.Equal(t, "o-1", out["order"])
}

func TestTransformCopiesReferencedValues(t *testing.T) {
	action, err := NewActionFactory().Create(map[string]any{
		"set": map[string]any{
			"customer": "{user_id}",
			"missing":  "{not_there}",
		},
	})
	require.NoError(t, err)

	out, err := action.Execute(context.Background(), models.ExecutionContext{"user_id": "u-9"})
	require.NoError(t, err)

	assert.Equal(t, "u-9", out["customer"])

	_, found := out["missing"]
	assert.False(t, found, "unresolvable references assign nothing")
}

func TestTransformDoesNotMutateInput(t *testing.T) {
	action, err := NewActionFactory().Create(map[string]any{
		"set": map[string]any{"added": true},
	})
	require.NoError(t, err)

	in := models.ExecutionContext{"keep": 1}

	_, err = action.Execute(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionContext{"keep": 1}, in)
}

func TestTransformEmptyConfig(t *testing.T) {
	action, err := NewActionFactory().Create(nil)
	require.NoError(t, err)

	out, err := action.Execute(context.Background(), models.ExecutionContext{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionContext{"a": 1}, out)
}
