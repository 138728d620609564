// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize strips markup from user-supplied free text before it
// is stored. Descriptions and leave reasons are plain text in this app, so
// the strict policy (no tags at all) is used.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Strip removes all HTML tags from s and trims surrounding whitespace.
func Strip(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}
