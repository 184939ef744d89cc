package repository

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateProp(t *testing.T) {
	assert.Equal(t, "short", truncateProp("short", 1950))
	assert.Equal(t, "abc", truncateProp("abcdef", 3))

	// The cap counts characters: 2000 two-byte runes shrink to exactly the
	// limit without splitting a rune.
	long := strings.Repeat("я", 2000)
	got := truncateProp(long, 1950)
	assert.Equal(t, 1950, utf8.RuneCountInString(got))
	assert.True(t, utf8.ValidString(got))

	// At or under the limit the text passes through untouched.
	assert.Equal(t, strings.Repeat("я", 1950), truncateProp(strings.Repeat("я", 1950), 1950))
}
