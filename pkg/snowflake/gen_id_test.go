package snowflake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator(t *testing.T) {
	g, err := NewGenerator(7)
	require.NoError(t, err)

	seen := make(map[string]struct{})
	var last uint64
	for i := 0; i < 1000; i++ {
		id, err := g.NextID()
		require.NoError(t, err)
		assert.Greater(t, id, last)
		last = id

		s, err := g.NextString()
		require.NoError(t, err)
		_, dup := seen[s]
		assert.False(t, dup)
		seen[s] = struct{}{}
	}
}
