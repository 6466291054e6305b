package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheck(t *testing.T) {
	h, err := HashPassword("pw")
	require.NoError(t, err)
	assert.NotEqual(t, "pw", h)
	assert.True(t, CheckPassword("pw", h))
	assert.False(t, CheckPassword("pw2", h))
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("x", 73))
	assert.Error(t, err)
}
