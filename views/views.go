// Package views renders the admin panel's pages and htmx partials as templ
// components backed by embedded html/template files.
package views

import (
	"context"
	"embed"
	"html/template"
	"io"
	"strings"

	"github.com/a-h/templ"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.New("").Funcs(template.FuncMap{
	"pathEscape": PathEscape,
	"joinTags":   JoinTags,
	"safeURL":    safeURL,
	"sub":        func(a, b int) int { return a - b },
	"add":        func(a, b int) int { return a + b },
	"lower":      strings.ToLower,
	"dict":       dict,
}).ParseFS(templateFS, "templates/*.html"))

// safeURL marks data: URLs produced by the media package as safe for src
// attributes.
func safeURL(s string) template.URL {
	if strings.HasPrefix(s, "data:image/") || strings.HasPrefix(s, "/") ||
		strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return template.URL(s)
	}
	return ""
}

// dict builds the argument map for nested templates.
func dict(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			m[k] = kv[i+1]
		}
	}
	return m
}

func component(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return pages.ExecuteTemplate(w, name, data)
	})
}

// Login is the admin login page.
func Login(site Site, showError bool, csrf string) templ.Component {
	return component("login", struct {
		Site      Site
		ShowError bool
		CSRF      string
	}{site, showError, csrf})
}

// Dashboard is the admin landing page.
func Dashboard(v DashboardView) templ.Component {
	return component("dashboard", v)
}

// EntityList is a full list page.
func EntityList(v ListView) templ.Component {
	return component("list", v)
}

// EntityTable is the table partial swapped in by htmx on search, paging,
// toggles and deletes.
func EntityTable(v ListView) templ.Component {
	return component("table", v)
}

// Dialog is the edit dialog partial.
func Dialog(v DialogView) templ.Component {
	return component("dialog", v)
}

// Categories is the category management page.
func Categories(v CategoriesView) templ.Component {
	return component("categories", v)
}

// CategoryList is the category table partial.
func CategoryList(v CategoriesView) templ.Component {
	return component("category-list", v)
}

// CategoryOptions renders <option> elements for the blog dialog's category
// select.
func CategoryOptions(opts []Option) templ.Component {
	return component("category-options", opts)
}

// ActivityFragment is the activity summary swapped into the dashboard.
func ActivityFragment(v ActivityView) templ.Component {
	return component("activity", v)
}

// CategoryBlogs is the public list of a category's active blogs.
func CategoryBlogs(v CategoryPage) templ.Component {
	return component("category-blogs", v)
}

// NotFound is the 404 page.
func NotFound() templ.Component {
	return component("not-found", nil)
}

// ServerError is the 5xx page.
func ServerError() templ.Component {
	return component("server-error", nil)
}
