package resettoken

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandom(t *testing.T) {
	first, err := Random()
	require.NoError(t, err)
	second, err := Random()
	require.NoError(t, err)

	assert.Len(t, first, 2*Size)
	assert.NotEqual(t, first, second)

	_, err = hex.DecodeString(first)
	assert.NoError(t, err)
}

func TestHash_DeterministicAndOneWay(t *testing.T) {
	raw, err := Random()
	require.NoError(t, err)

	inputs := []string{raw, "", "short", "a3f1"}
	for _, in := range inputs {
		h1 := Hash(in)
		h2 := Hash(in)

		assert.Equal(t, h1, h2)
		assert.NotEqual(t, in, h1)
		assert.Len(t, h1, 64)
	}
	assert.NotEqual(t, Hash("a"), Hash("b"))
}
