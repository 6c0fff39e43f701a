package sanitize

import (
	"html"
	"strings"
)

// Clean normalizes a free-text form value for storage and templating:
// whitespace is trimmed, one level of backslash escaping left over from
// upstream processing is removed, and the result is HTML-entity encoded
// with quotes included. Encoding happens after a decode pass, so Clean is
// idempotent: Clean(Clean(s)) == Clean(s).
//
// This is the sole XSS defense for values later interpolated into HTML
// email bodies.
func Clean(s string) string {
	s = strings.TrimSpace(s)
	s = StripSlashes(s)
	s = html.UnescapeString(s)
	return html.EscapeString(s)
}

// StripSlashes removes one level of backslash escaping: `\"` becomes `"`,
// `\\` becomes `\`, and so on. A trailing lone backslash is dropped.
func StripSlashes(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	escaped := false
	for _, r := range s {
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
