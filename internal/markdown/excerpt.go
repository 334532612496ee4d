// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package markdown

import "strings"

const (
	// DefaultExcerptLength is the excerpt truncation point in characters.
	DefaultExcerptLength = 160

	// WordsPerMinute is the reading speed used for reading-time estimates.
	WordsPerMinute = 200
)

// Excerpt derives a short plain-text excerpt from markdown content,
// truncated near maxLength characters. Truncation prefers the last word
// boundary, but only if that boundary lies past 80% of maxLength;
// otherwise it cuts hard at maxLength. An ellipsis marks any truncation.
// maxLength <= 0 selects DefaultExcerptLength.
func Excerpt(content string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultExcerptLength
	}

	plain := []rune(plainText(content))
	if len(plain) <= maxLength {
		return string(plain)
	}

	// Boundary math stays in runes; byte offsets drift on multibyte text.
	truncated := plain[:maxLength]
	lastSpace := -1
	for i, r := range truncated {
		if r == ' ' {
			lastSpace = i
		}
	}
	if float64(lastSpace) > float64(maxLength)*0.8 {
		return string(truncated[:lastSpace]) + "..."
	}
	return string(truncated) + "..."
}

// WordCount counts whitespace-delimited tokens in content.
func WordCount(content string) int {
	return len(strings.Fields(content))
}

// ReadingTime estimates reading minutes for a word count, rounding up.
func ReadingTime(wordCount int) int {
	if wordCount <= 0 {
		return 0
	}
	return (wordCount + WordsPerMinute - 1) / WordsPerMinute
}
