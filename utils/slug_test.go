package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidSlug(t *testing.T) {
	valid := []string{"hello", "first-post", "a1b2c", "2024-review", "abcde-fghij-12345"}
	for _, s := range valid {
		assert.True(t, ValidSlug(s), "expected %q to be valid", s)
	}

	invalid := []string{
		"",
		"abc",           // too short
		"abcd",          // still too short
		"-hello",        // leading hyphen
		"hello-",        // trailing hyphen
		"Hello-World",   // uppercase
		"hello world",   // whitespace
		"héllo-wörld",   // non-ascii
		"under_score-x", // underscore
	}
	for _, s := range invalid {
		assert.False(t, ValidSlug(s), "expected %q to be invalid", s)
	}
}
