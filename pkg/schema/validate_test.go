package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSnapshotDocument(t *testing.T) {
	t.Run("valid combat snapshot", func(t *testing.T) {
		assert.NoError(t, ValidateSnapshotDocument([]byte(combatSnapshotJSON)))
	})

	t.Run("missing tick is rejected", func(t *testing.T) {
		err := ValidateSnapshotDocument([]byte(`{"context": "gameplay"}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tick")
	})

	t.Run("wrong type is rejected", func(t *testing.T) {
		err := ValidateSnapshotDocument([]byte(`{"tick": "soon", "context": "gameplay"}`))
		assert.Error(t, err)
	})

	t.Run("not JSON at all", func(t *testing.T) {
		err := ValidateSnapshotDocument([]byte("tick: 1"))
		assert.Error(t, err)
	})
}
