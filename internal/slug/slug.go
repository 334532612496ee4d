// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings.
package slug

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxLength is the longest slug ever generated or accepted.
const MaxLength = 100

var (
	// nonSlugChars matches anything that isn't a word character, whitespace,
	// or hyphen.
	nonSlugChars = regexp.MustCompile(`[^\w\s-]`)
	// whitespace collapses runs of whitespace into one hyphen.
	whitespace = regexp.MustCompile(`\s+`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
	// validSlug is the charset accepted for stored slugs.
	validSlug = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Hello, World! 2026" → "hello-world-2026"
//
// Generate is deterministic and makes no uniqueness guarantee; callers
// enforce uniqueness by checking for collisions, or use MakeUnique.
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonSlugChars.ReplaceAllString(result, "")
	result = whitespace.ReplaceAllString(result, "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	if len(result) > MaxLength {
		result = result[:MaxLength]
	}
	return result
}

// IsValid reports whether s is an acceptable stored slug: lowercase
// alphanumerics and hyphens, at most MaxLength characters.
func IsValid(s string) bool {
	return len(s) <= MaxLength && validSlug.MatchString(s)
}

// MakeUnique returns base if it does not collide with any existing slug,
// otherwise the first of base-2, base-3, … that is free.
func MakeUnique(base string, existing []string) string {
	taken := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		taken[s] = struct{}{}
	}

	if _, ok := taken[base]; !ok {
		return base
	}

	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", base, n)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}
