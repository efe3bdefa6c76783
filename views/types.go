package views

import "github.com/eringen/adminpanel/model"

// Site holds panel-wide settings every page needs.
type Site struct {
	Name    string // SITE_NAME  (default "Admin")
	URL     string // SITE_URL   (default "http://localhost:8080")
	HtmxURL string // script src for htmx
}

// PageMeta carries per-page metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical
}

// Flash is a one-shot status line shown above a list.
type Flash struct {
	Error bool
	Text  string
}

// Pager is the pagination bar under a table.
type Pager struct {
	PageNo     int
	PageCount  int
	TotalItems int
	HasPrev    bool
	HasNext    bool
}

// Row is one table row. Cells follow the list's Columns.
type Row struct {
	ID       string
	Name     string
	ImageURL string
	Cells    []string
	Active   bool
}

// ListView is an entity list page or its table partial.
type ListView struct {
	Site      Site
	Kind      string // URL segment: blogs, key-features, types
	Title     string
	Columns   []string
	Rows      []Row
	Query     string
	Pager     Pager
	CanToggle bool
	CanDelete bool
	Flash     Flash
	CSRF      string
}

// Option is one <option> of a select field.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// Field is one input of an edit dialog.
type Field struct {
	Name     string
	Label    string
	Type     string // text, textarea, number, select, checkbox
	Value    string
	Checked  bool
	Required bool
	Options  []Option
}

// DialogView is the edit dialog of one entity.
type DialogView struct {
	Kind       string
	Title      string
	ID         string
	Fields     []Field
	ShowTags   bool
	Tags       []string
	TagsJSON   string
	ImageField string
	ImageURL   string // stored image, or the placeholder
	ImageName  string
	Preview    string // thumbnail of a newly selected file
	Upload     string // the selected file itself, as a data URL
	UploadName string
	Error      string
	CSRF       string
}

// ShownImage is the selected file's preview, else the stored image.
func (v DialogView) ShownImage() string {
	if v.Preview != "" {
		return v.Preview
	}
	return v.ImageURL
}

// CategoriesView is the category management page.
type CategoriesView struct {
	Site       Site
	Categories []model.Category
	Flash      Flash
	CSRF       string
}

// Count is a labelled number on the dashboard.
type Count struct {
	Label string
	Href  string
	Value int
	Err   bool
}

// ActivityEntry is one line of the activity feed.
type ActivityEntry struct {
	Kind   string
	Action string
	Name   string
	At     string
}

// ActivityView is the activity fragment.
type ActivityView struct {
	Period   string
	Periods  []string
	Total    int
	ByKind   []Count
	ByAction []Count
	Daily    []Count
	Latest   []ActivityEntry
	Error    string
}

// DashboardView is the admin landing page.
type DashboardView struct {
	Site     Site
	Counts   []Count
	Activity *ActivityView
	CSRF     string
}

// PublicBlog is a blog as shown on the public category page.
type PublicBlog struct {
	Name     string
	Intro    string
	ImageURL string
	Tags     []string
}

// CategoryPage is the public list of a category's active blogs.
type CategoryPage struct {
	Site     Site
	Meta     PageMeta
	Category string
	FeedURL  string
	Blogs    []PublicBlog
}
