package telegram

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitMessage_ShortTextPassesThrough(t *testing.T) {
	parts := SplitMessage("hello", 100)
	assert.Equal(t, []string{"hello"}, parts)
}

func TestSplitMessage_PrefersLineBoundaries(t *testing.T) {
	text := strings.Repeat("aaaa\n", 10) + strings.Repeat("bbbb\n", 10)
	parts := SplitMessage(strings.TrimRight(text, "\n"), 30)

	require.Greater(t, len(parts), 1)
	for _, part := range parts {
		assert.LessOrEqual(t, len(part), 30)
		// Line-boundary splitting never cuts inside a word here.
		for _, line := range strings.Split(part, "\n") {
			assert.Contains(t, []string{"aaaa", "bbbb"}, line)
		}
	}
}

func TestSplitMessage_HardCutsOversizedLine(t *testing.T) {
	text := strings.Repeat("x", 95)
	parts := SplitMessage(text, 30)

	require.Len(t, parts, 4)
	for _, part := range parts[:3] {
		assert.Len(t, part, 30)
	}
	assert.Len(t, parts[3], 5)
	assert.Equal(t, text, strings.Join(parts, ""))
}

func TestSplitMessage_HardCutKeepsRunesIntact(t *testing.T) {
	text := strings.Repeat("я", 95)
	parts := SplitMessage(text, 30)

	require.Len(t, parts, 4)
	for _, part := range parts {
		assert.True(t, utf8.ValidString(part))
		assert.LessOrEqual(t, utf8.RuneCountInString(part), 30)
	}
	assert.Equal(t, text, strings.Join(parts, ""))
}

func TestSplitMessage_NothingLost(t *testing.T) {
	text := "line one\nline two\nline three\nline four"
	parts := SplitMessage(text, 20)

	joined := strings.Join(parts, "\n")
	assert.Equal(t, text, joined)
}
