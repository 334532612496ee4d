// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown provides plain-text derivation from markdown source:
// stripping, excerpt generation, word counts, reading time, and heading
// extraction for tables of contents. Rendering to HTML is a frontend
// concern and is deliberately absent.
package markdown

import (
	"regexp"
	"strings"
)

var (
	codeBlocks  = regexp.MustCompile("(?s)```.*?```")
	inlineCode  = regexp.MustCompile("`[^`]+`")
	headers     = regexp.MustCompile(`(?m)^#+\s+`)
	emphasis    = regexp.MustCompile(`[*_]{1,2}([^*_]+)[*_]{1,2}`)
	images      = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	mdLinks     = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	wikiLinks   = regexp.MustCompile(`\[\[([^\]|]+)(?:\|([^\]]+))?\]\]`)
	blockquotes = regexp.MustCompile(`(?m)^>\s+`)
	bulletItems = regexp.MustCompile(`(?m)^[-*+]\s+`)
	orderedItem = regexp.MustCompile(`(?m)^\d+\.\s+`)
	horizRules  = regexp.MustCompile(`(?m)^[-*_]{3,}$`)
	newlineRuns = regexp.MustCompile(`\n+`)
	spaceRuns   = regexp.MustCompile(`\s+`)
)

// Strip removes all markdown formatting, keeping plain text. Links keep
// their anchor text, wiki links keep their display text (or the slug when
// none is given), images are dropped entirely. Paragraph breaks collapse
// to single newlines.
func Strip(content string) string {
	out := codeBlocks.ReplaceAllString(content, "")
	out = inlineCode.ReplaceAllString(out, "")
	out = headers.ReplaceAllString(out, "")
	out = emphasis.ReplaceAllString(out, "$1")
	out = images.ReplaceAllString(out, "")
	out = mdLinks.ReplaceAllString(out, "$1")
	out = wikiLinks.ReplaceAllStringFunc(out, func(m string) string {
		parts := wikiLinks.FindStringSubmatch(m)
		if parts[2] != "" {
			return parts[2]
		}
		return parts[1]
	})
	out = blockquotes.ReplaceAllString(out, "")
	out = horizRules.ReplaceAllString(out, "")
	out = newlineRuns.ReplaceAllString(out, "\n")
	return strings.TrimSpace(out)
}

// plainText flattens markdown to a single line of plain text for excerpts:
// like Strip, but list markers go too and all whitespace collapses to
// single spaces.
func plainText(content string) string {
	out := codeBlocks.ReplaceAllString(content, "")
	out = inlineCode.ReplaceAllString(out, "")
	out = headers.ReplaceAllString(out, "")
	out = emphasis.ReplaceAllString(out, "$1")
	out = images.ReplaceAllString(out, "")
	out = mdLinks.ReplaceAllString(out, "$1")
	out = blockquotes.ReplaceAllString(out, "")
	out = bulletItems.ReplaceAllString(out, "")
	out = orderedItem.ReplaceAllString(out, "")
	out = horizRules.ReplaceAllString(out, "")
	out = newlineRuns.ReplaceAllString(out, " ")
	out = spaceRuns.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}
