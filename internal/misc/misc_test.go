package misc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaxMin(t *testing.T) {
	assert.Equal(t, 5, Max(3, 5))
	assert.Equal(t, 3, Min(3, 5))
	assert.Equal(t, "b", Max("a", "b"))
}

func TestStringLimit(t *testing.T) {
	assert.Equal(t, "", StringLimit("abcdef", -1))
	assert.Equal(t, "ab", StringLimit("abcdef", 2))
	assert.Equal(t, "abc", StringLimit("abc", 10))
	assert.Equal(t, "abc...", StringLimit("abcdefgh", 6))
	assert.Equal(t, "abcdef", StringLimit("abcdef", 6))
}
