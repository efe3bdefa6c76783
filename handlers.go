package adminpanel

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/adminpanel/api"
	"github.com/eringen/adminpanel/model"
	"github.com/eringen/adminpanel/views"
)

// categoryBlogs loads the active blogs of the :id category and resolves
// the category's display name.
func (a *App) categoryBlogs(c echo.Context) (string, string, []model.Blog, error) {
	ctx := c.Request().Context()
	id := c.Param("id")
	blogs, err := a.Cache.ActiveBlogs(ctx, id)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return id, "", nil, echo.NewHTTPError(http.StatusNotFound)
		}
		return id, "", nil, err
	}
	name := ""
	for _, b := range blogs {
		if b.Category.Name != "" {
			name = b.Category.Name
			break
		}
	}
	if name == "" {
		name = a.Cache.CategoryName(ctx, id)
	}
	if name == "" {
		name = id
	}
	return id, name, blogs, nil
}

func (a *App) handleCategoryBlogs(c echo.Context) error {
	id, name, blogs, err := a.categoryBlogs(c)
	if err != nil {
		return err
	}
	base := a.Client.BaseURL()
	items := make([]views.PublicBlog, len(blogs))
	for i, b := range blogs {
		items[i] = views.PublicBlog{
			Name:     b.Name,
			Intro:    b.Intro,
			ImageURL: model.ImageURL(base, b.Image),
			Tags:     FilterEmpty(b.Tags),
		}
	}
	pageURL := BuildURL(a.Config.URL, "blogs", "category", id)
	return Render(c, views.CategoryBlogs(views.CategoryPage{
		Site: a.site(),
		Meta: views.PageMeta{
			Title:       name + " | " + a.Config.Name,
			Description: fmt.Sprintf("%d posts in %s", len(blogs), name),
			URL:         pageURL,
		},
		Category: name,
		FeedURL:  strings.TrimSuffix(pageURL, "/") + "/feed.xml",
		Blogs:    items,
	}))
}

func (a *App) handleCategoryFeed(c echo.Context) error {
	id, name, blogs, err := a.categoryBlogs(c)
	if err != nil {
		return err
	}
	return a.renderRSS(c, id, name, blogs)
}

func (a *App) handleSitemap(c echo.Context) error {
	cats, err := a.Cache.Categories(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderSitemap(c, cats)
}

// handleRobots generates robots.txt using the configured URL.
func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nAllow: /blogs/\nDisallow: /admin/\n\nSitemap: %s/sitemap.xml\n", strings.TrimSuffix(a.Config.URL, "/"))
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
