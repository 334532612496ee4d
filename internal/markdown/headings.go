// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"loom/internal/slug"
)

// md is the configured goldmark instance, reused across calls. Only the
// parser is used; headings are read off the AST.
var md = goldmark.New()

// Heading is one entry of a post's table of contents.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	Slug  string `json:"slug"`
}

// Headings parses markdown content and returns its headings in document
// order. The slug of each heading matches the anchor a renderer would
// generate from its text.
func Headings(content string) []Heading {
	src := []byte(content)
	doc := md.Parser().Parse(text.NewReader(src))

	var headings []Heading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		txt := strings.TrimSpace(nodeText(h, src))
		headings = append(headings, Heading{
			Level: h.Level,
			Text:  txt,
			Slug:  slug.Generate(txt),
		})
		return ast.WalkSkipChildren, nil
	})
	return headings
}

// nodeText concatenates the literal text of a node's inline children.
func nodeText(node ast.Node, src []byte) string {
	var sb strings.Builder
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(src))
		case *ast.String:
			sb.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}
