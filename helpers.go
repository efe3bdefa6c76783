package adminpanel

import (
	"strings"

	"github.com/eringen/adminpanel/views"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	return views.BuildURL(base, pathSegments...)
}

// FilterEmpty trims every value and drops the empty ones.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}
