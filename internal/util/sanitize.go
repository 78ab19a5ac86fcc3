package util

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict strips every HTML element and attribute, leaving plain text.
var strict = bluemonday.StrictPolicy()

// SanitizeInput strips HTML/script content from free-text input.
func SanitizeInput(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}
