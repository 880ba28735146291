package utils

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const maxSlugLen = 60

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	slugCharRegex   = regexp.MustCompile(`[^a-z0-9-]`)
	multiDashRegex  = regexp.MustCompile(`-+`)
	uuidRegex       = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

// Slugify lowercases input, turns whitespace runs into dashes, drops anything
// outside [a-z0-9-] and collapses repeated dashes. The result is at most 60 bytes.
func Slugify(input string) string {
	slug := strings.ToLower(strings.TrimSpace(input))
	slug = whitespaceRegex.ReplaceAllString(slug, "-")
	slug = slugCharRegex.ReplaceAllString(slug, "")
	slug = multiDashRegex.ReplaceAllString(slug, "-")

	if len(slug) > maxSlugLen {
		slug = slug[:maxSlugLen]
	}
	return strings.Trim(slug, "-")
}

// IsUUID reports whether s has the canonical 8-4-4-4-12 hex shape.
func IsUUID(s string) bool {
	if !uuidRegex.MatchString(s) {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

func PtrString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// NilIfEmpty maps "" to nil so optional text columns store NULL.
func NilIfEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
