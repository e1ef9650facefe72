// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict removes every element and attribute.
var strict = bluemonday.StrictPolicy()

// Text strips all markup from user-supplied free text (complaint titles,
// descriptions, comments) and trims surrounding whitespace. Entities that
// the policy escapes are decoded again, since values are stored and served
// as plain text, not HTML.
func Text(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
