package handlers

import (
	"strings"
	"unicode/utf8"
)

// Validation limits for request fields.
const (
	maxTitleLen      = 300
	maxContentLen    = 200_000
	maxExcerptLen    = 1_000
	maxAnnotationLen = 2_000
	maxIdeaNameLen   = 100
	maxDescLen       = 2_000
)

// validatePostFields checks post inputs and returns the first error found.
func validatePostFields(title *string, content *string, excerpt *string) string {
	if title != nil {
		if strings.TrimSpace(*title) == "" {
			return "Title is required."
		}
		if utf8.RuneCountInString(*title) > maxTitleLen {
			return "Title is too long (max 300 characters)."
		}
	}
	if content != nil && utf8.RuneCountInString(*content) > maxContentLen {
		return "Content is too long (max 200,000 characters)."
	}
	if excerpt != nil && utf8.RuneCountInString(*excerpt) > maxExcerptLen {
		return "Excerpt is too long (max 1,000 characters)."
	}
	return ""
}

// validateIdeaFields checks idea inputs and returns the first error found.
func validateIdeaFields(name *string, description *string) string {
	if name != nil {
		if strings.TrimSpace(*name) == "" {
			return "Name is required."
		}
		if utf8.RuneCountInString(*name) > maxIdeaNameLen {
			return "Name is too long (max 100 characters)."
		}
	}
	if description != nil && utf8.RuneCountInString(*description) > maxDescLen {
		return "Description is too long (max 2,000 characters)."
	}
	return ""
}

// validateThreadFields checks thread inputs and returns the first error found.
func validateThreadFields(title *string, description *string) string {
	if title != nil {
		if strings.TrimSpace(*title) == "" {
			return "Title is required."
		}
		if utf8.RuneCountInString(*title) > maxTitleLen {
			return "Title is too long (max 300 characters)."
		}
	}
	if description != nil && utf8.RuneCountInString(*description) > maxDescLen {
		return "Description is too long (max 2,000 characters)."
	}
	return ""
}

// validateAnnotation checks a node annotation. Annotations carry the
// thread's narrative, so a blank one is rejected.
func validateAnnotation(annotation string) string {
	if strings.TrimSpace(annotation) == "" {
		return "Annotation is required."
	}
	if utf8.RuneCountInString(annotation) > maxAnnotationLen {
		return "Annotation is too long (max 2,000 characters)."
	}
	return ""
}
