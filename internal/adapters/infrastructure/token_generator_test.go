package infrastructure

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDTokenGenerator_Generate(t *testing.T) {
	gen := NewUUIDTokenGenerator()
	seen := make(map[string]struct{})

	for i := 0; i < 100; i++ {
		token, err := gen.Generate()
		require.NoError(t, err)

		parsed, err := uuid.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(4), parsed.Version())

		_, dup := seen[token]
		assert.False(t, dup)
		seen[token] = struct{}{}
	}
}
