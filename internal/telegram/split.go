package telegram

import (
	"strings"
	"unicode/utf8"
)

// SplitMessage breaks text into parts of at most maxLength, preferring line
// boundaries to keep structure, falling back to hard character cuts for
// single oversized lines.
func SplitMessage(text string, maxLength int) []string {
	if maxLength <= 0 || len(text) <= maxLength {
		return []string{text}
	}

	var parts []string
	var current string

	for _, line := range strings.Split(text, "\n") {
		if len(current)+len(line)+1 > maxLength && current != "" {
			parts = append(parts, strings.TrimRight(current, "\n"))
			current = line
		} else if current == "" {
			current = line
		} else {
			current += "\n" + line
		}
	}
	if current != "" {
		parts = append(parts, current)
	}

	// Hard-cut any part still over the limit, counting characters so the
	// cut never splits a rune.
	var final []string
	for _, part := range parts {
		if utf8.RuneCountInString(part) <= maxLength {
			final = append(final, part)
			continue
		}
		runes := []rune(part)
		for i := 0; i < len(runes); i += maxLength {
			end := i + maxLength
			if end > len(runes) {
				end = len(runes)
			}
			final = append(final, string(runes[i:end]))
		}
	}
	return final
}
