package idgen

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "S001", Format("S", 1))
	assert.Equal(t, "T042", Format("T", 42))
	assert.Equal(t, "U999", Format("U", 999))
	assert.Equal(t, "A1000", Format("A", 1000))
}

func TestRandomCode(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z0-9]{8}$`)
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		code, err := RandomCode(8)
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
		seen[code] = struct{}{}
	}
	assert.Greater(t, len(seen), 45)
}

func TestRandomCodeRejectsNonPositiveLength(t *testing.T) {
	_, err := RandomCode(0)
	require.Error(t, err)
}
