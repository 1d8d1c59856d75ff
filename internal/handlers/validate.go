package handlers

import (
	"strings"
	"unicode/utf8"
)

// Input limits for query parameters.
const (
	maxQueryLen = 100
	maxNameLen  = 200
)

// validateQuery checks a search term. Empty terms are allowed.
func validateQuery(q string) string {
	if utf8.RuneCountInString(q) > maxQueryLen {
		return "Search query is too long (max 100 characters)."
	}
	if !utf8.ValidString(q) {
		return "Search query is not valid UTF-8."
	}
	return ""
}

// validateName checks a subcategory name used for exact lookup.
func validateName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "Name is too long (max 200 characters)."
	}
	return ""
}
