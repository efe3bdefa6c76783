package views

import (
	"net/url"
	"path"
	"strings"
)

// BuildURL joins path segments onto a base URL, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// PathEscape wraps url.PathEscape for use in templates.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// JoinTags formats a tag slice for display.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// StatusOptions is the active/inactive select of an edit dialog.
func StatusOptions(active bool) []Option {
	return []Option{
		{Value: "active", Label: "Active", Selected: active},
		{Value: "inactive", Label: "Inactive", Selected: !active},
	}
}

// Truncate shortens s to n runes, adding an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}
