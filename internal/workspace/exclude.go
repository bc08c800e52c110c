package workspace

import "strings"

// Schemes that cannot be reopened programmatically, or that point at
// browser-internal surfaces. Lowercase, including the separator.
var excludedPrefixes = []string{
	"chrome://",
	"chrome-extension://",
	"chrome-untrusted://",
	"chrome-search://",
	"edge://",
	"brave://",
	"opera://",
	"vivaldi://",
	"moz-extension://",
	"devtools://",
	"view-source:",
	"javascript:",
	"about:",
	"data:",
	"blob:",
}

// IsExcluded reports whether a URL is ineligible for persistence. Pure
// predicate: internal/privileged schemes and blank placeholders are never
// captured, and an empty URL is always excluded.
func IsExcluded(rawURL string) bool {
	u := strings.TrimSpace(rawURL)
	if u == "" {
		return true
	}
	lower := strings.ToLower(u)
	for _, prefix := range excludedPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
