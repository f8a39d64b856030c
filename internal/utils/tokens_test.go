package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomHex(t *testing.T) {
	a, err := RandomHex(16)
	require.NoError(t, err)
	assert.Len(t, a, 32)

	b, err := RandomHex(0)
	require.NoError(t, err)
	assert.Len(t, b, 64)
	assert.NotEqual(t, a, b)
}
