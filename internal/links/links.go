// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package links extracts internal post links from free text. Two syntaxes
// are recognized: wiki-style [[slug]] / [[slug|display text]] and
// markdown-style [display text](/posts/slug). Extraction is pure text
// processing with no knowledge of which slugs exist.
package links

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// contextRadius is how many bytes of surrounding content are captured on
// each side of a match.
const contextRadius = 50

var (
	wikiPattern     = regexp.MustCompile(`\[\[([a-z0-9-]+)(?:\|([^\]]+))?\]\]`)
	markdownPattern = regexp.MustCompile(`\[([^\]]+)\]\(/posts/([a-z0-9-]+)\)`)
	spaceRuns       = regexp.MustCompile(`\s+`)
)

// InternalLink is one candidate link found in content.
type InternalLink struct {
	Slug        string `json:"slug"`
	DisplayText string `json:"displayText,omitempty"`
	Context     string `json:"context,omitempty"`
}

// ExtractInternal returns the internal links in content, deduplicated by
// slug in first-occurrence order. Wiki-style links are scanned before
// markdown-style links; a slug seen in both keeps its wiki occurrence.
func ExtractInternal(content string) []InternalLink {
	var found []InternalLink
	seen := make(map[string]struct{})

	for _, m := range wikiPattern.FindAllStringSubmatchIndex(content, -1) {
		link := InternalLink{
			Slug:    content[m[2]:m[3]],
			Context: extractContext(content, m[0], m[1]),
		}
		if m[4] >= 0 {
			link.DisplayText = content[m[4]:m[5]]
		}
		if _, ok := seen[link.Slug]; ok {
			continue
		}
		seen[link.Slug] = struct{}{}
		found = append(found, link)
	}

	for _, m := range markdownPattern.FindAllStringSubmatchIndex(content, -1) {
		link := InternalLink{
			Slug:        content[m[4]:m[5]],
			DisplayText: content[m[2]:m[3]],
			Context:     extractContext(content, m[0], m[1]),
		}
		if _, ok := seen[link.Slug]; ok {
			continue
		}
		seen[link.Slug] = struct{}{}
		found = append(found, link)
	}

	return found
}

// extractContext returns the text surrounding a match, newlines collapsed,
// with ellipses marking trimmed ends.
func extractContext(content string, matchStart, matchEnd int) string {
	start := matchStart - contextRadius
	if start < 0 {
		start = 0
	}
	end := matchEnd + contextRadius
	if end > len(content) {
		end = len(content)
	}

	// Don't cut multi-byte runes in half.
	for start > 0 && !utf8.RuneStart(content[start]) {
		start--
	}
	for end < len(content) && !utf8.RuneStart(content[end]) {
		end++
	}

	ctx := strings.TrimSpace(spaceRuns.ReplaceAllString(content[start:end], " "))

	if start > 0 {
		ctx = "..." + ctx
	}
	if end < len(content) {
		ctx = ctx + "..."
	}
	return ctx
}
