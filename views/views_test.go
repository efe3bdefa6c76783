package views

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/eringen/adminpanel/model"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

var site = Site{Name: "Admin", URL: "http://localhost:8080", HtmxURL: "https://unpkg.com/htmx.org@2.0.4"}

func TestEntityTableRendersRowsAndPager(t *testing.T) {
	v := ListView{
		Site:      site,
		Kind:      "blogs",
		Title:     "Blogs",
		Columns:   []string{"Category", "Order"},
		Rows:      []Row{{ID: "b1", Name: "Intro to <Go>", ImageURL: "/public/placeholder.svg", Cells: []string{"Tech", "1"}, Active: true}},
		Query:     "go & more",
		Pager:     Pager{PageNo: 1, PageCount: 2, TotalItems: 6, HasNext: true},
		CanToggle: true,
		CanDelete: true,
		Flash:     Flash{Text: "saved"},
		CSRF:      "tok",
	}
	out := render(t, EntityTable(v))
	for _, want := range []string{
		"Intro to &lt;Go&gt;",
		`/admin/blogs/b1/toggle/`,
		`hx-confirm="Delete Intro to &lt;Go&gt;?"`,
		"Page 1 of 2",
		"go&#43;%26&#43;more",
		"saved",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q", want)
		}
	}
	if strings.Contains(out, "Previous") {
		t.Error("first page shows a Previous button")
	}

	page := render(t, EntityList(v))
	if !strings.Contains(page, `<div id="dialog">`) || !strings.Contains(page, "unpkg.com/htmx.org") {
		t.Error("list page lacks dialog slot or htmx script")
	}
}

func TestEmptyTableMessage(t *testing.T) {
	out := render(t, EntityTable(ListView{Kind: "types", Query: "zzz"}))
	if !strings.Contains(out, "No matches for") {
		t.Errorf("empty table = %s", out)
	}
}

func TestDialogRendersFieldsTagsAndPreview(t *testing.T) {
	v := DialogView{
		Kind:  "blogs",
		Title: "Edit Blog",
		ID:    "b1",
		Fields: []Field{
			{Name: "name", Label: "Name", Type: "text", Value: "Go", Required: true},
			{Name: "category", Label: "Category", Type: "select", Options: []Option{{Value: "c1", Label: "Tech", Selected: true}}},
			{Name: "description", Label: "Description", Type: "textarea", Value: "<p>x</p>"},
		},
		ShowTags:   true,
		Tags:       []string{"go", "web"},
		TagsJSON:   `["go","web"]`,
		ImageField: "image",
		ImageURL:   "http://localhost:3000/v1/api/uploads/go.png",
		ImageName:  "go.png",
		Preview:    "data:image/jpeg;base64,AAAA",
		Error:      "Name is required",
		CSRF:       "tok",
	}
	out := render(t, Dialog(v))
	for _, want := range []string{
		`value="c1" selected`,
		"&lt;p&gt;x&lt;/p&gt;",
		"op=remove_tag&tag=web",
		`src="data:image/jpeg;base64,AAAA"`,
		"Name is required",
		"Remove image",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dialog missing %q", want)
		}
	}
}

func TestSafeURLRejectsScripts(t *testing.T) {
	if got := safeURL("javascript:alert(1)"); got != "" {
		t.Errorf("safeURL = %q", got)
	}
	if got := safeURL("data:image/png;base64,AA"); got == "" {
		t.Error("data image URL rejected")
	}
}

func TestPagesRender(t *testing.T) {
	cats := []model.Category{{ID: "c1", Name: "Tech"}}
	comps := map[string]templ.Component{
		"login":      Login(site, true, "tok"),
		"dashboard":  Dashboard(DashboardView{Site: site, Counts: []Count{{Label: "Blogs", Href: "/admin/blogs/", Value: 3}}, Activity: &ActivityView{Period: "week", Periods: []string{"today", "week"}}}),
		"categories": Categories(CategoriesView{Site: site, Categories: cats, CSRF: "tok"}),
		"options":    CategoryOptions([]Option{{Value: "c1", Label: "Tech"}}),
		"public":     CategoryBlogs(CategoryPage{Site: site, Category: "Tech", Blogs: []PublicBlog{{Name: "Hello", Tags: []string{"a", "b"}}}}),
		"404":        NotFound(),
		"500":        ServerError(),
	}
	for name, c := range comps {
		if out := render(t, c); out == "" {
			t.Errorf("%s rendered nothing", name)
		}
	}
}

func TestBuildURL(t *testing.T) {
	if got := BuildURL("https://example.com", "blogs", "category", "c1"); got != "https://example.com/blogs/category/c1/" {
		t.Errorf("BuildURL = %q", got)
	}
}
