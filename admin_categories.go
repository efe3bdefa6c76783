package adminpanel

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/adminpanel/activity"
	"github.com/eringen/adminpanel/categories"
	"github.com/eringen/adminpanel/views"
)

type categoryForm struct {
	Name string `form:"name" validate:"required"`
}

type bulkDeleteForm struct {
	IDs []string `form:"ids" validate:"required,min=1"`
}

func (a *App) categoryStore(c echo.Context) *categories.Store {
	return categories.NewStore(a.Client.Categories(a.requestAuth(c)))
}

func (a *App) handleCategories(c echo.Context) error {
	s := a.categoryStore(c)
	var flash views.Flash
	if err := s.List(c.Request().Context()); err != nil {
		flash = views.Flash{Error: true, Text: s.Err()}
	}
	v := views.CategoriesView{
		Site:       a.site(),
		Categories: s.Categories(),
		Flash:      flash,
		CSRF:       CsrfToken(c),
	}
	if c.Request().Header.Get("HX-Request") == "true" {
		return Render(c, views.CategoryList(v))
	}
	return Render(c, views.Categories(v))
}

// withCategories loads the list, runs op against it and renders the list
// partial with op's outcome.
func (a *App) withCategories(c echo.Context, op func(s *categories.Store) (string, error)) error {
	s := a.categoryStore(c)
	flash := views.Flash{}
	if err := s.List(c.Request().Context()); err != nil {
		flash = views.Flash{Error: true, Text: s.Err()}
	} else if msg, err := op(s); err != nil {
		text := s.Err()
		if text == "" {
			text = validationMessage(err)
		}
		flash = views.Flash{Error: true, Text: text}
	} else {
		flash = views.Flash{Text: msg}
	}
	return Render(c, views.CategoryList(views.CategoriesView{
		Site:       a.site(),
		Categories: s.Categories(),
		Flash:      flash,
		CSRF:       CsrfToken(c),
	}))
}

func (a *App) handleCategoryCreate(c echo.Context) error {
	return a.withCategories(c, func(s *categories.Store) (string, error) {
		var form categoryForm
		if err := c.Bind(&form); err != nil {
			return "", err
		}
		form.Name = strings.TrimSpace(form.Name)
		if err := c.Validate(&form); err != nil {
			return "", err
		}
		cat, err := s.Create(c.Request().Context(), form.Name)
		if err != nil {
			return "", err
		}
		a.recordActivity(c, activity.Entry{Kind: activity.KindCategory, EntityID: cat.ID, Action: activity.ActionCreate, Name: cat.Name})
		return "created", nil
	})
}

func (a *App) handleCategoryUpdate(c echo.Context) error {
	return a.withCategories(c, func(s *categories.Store) (string, error) {
		var form categoryForm
		if err := c.Bind(&form); err != nil {
			return "", err
		}
		form.Name = strings.TrimSpace(form.Name)
		if err := c.Validate(&form); err != nil {
			return "", err
		}
		cat, err := s.Update(c.Request().Context(), c.Param("id"), form.Name)
		if err != nil {
			return "", err
		}
		a.recordActivity(c, activity.Entry{Kind: activity.KindCategory, EntityID: cat.ID, Action: activity.ActionUpdate, Name: cat.Name})
		return "saved", nil
	})
}

func (a *App) handleCategoryDelete(c echo.Context) error {
	return a.withCategories(c, func(s *categories.Store) (string, error) {
		id := c.Param("id")
		name := s.Name(id)
		if err := s.Delete(c.Request().Context(), id); err != nil {
			return "", err
		}
		a.recordActivity(c, activity.Entry{Kind: activity.KindCategory, EntityID: id, Action: activity.ActionDelete, Name: name})
		return "deleted", nil
	})
}

func (a *App) handleCategoryBulkDelete(c echo.Context) error {
	return a.withCategories(c, func(s *categories.Store) (string, error) {
		var form bulkDeleteForm
		if err := c.Bind(&form); err != nil {
			return "", err
		}
		if err := c.Validate(&form); err != nil {
			return "", echo.NewHTTPError(http.StatusBadRequest, "Select at least one category")
		}
		names := make(map[string]string, len(form.IDs))
		for _, id := range form.IDs {
			names[id] = s.Name(id)
		}
		if err := s.BulkDelete(c.Request().Context(), form.IDs); err != nil {
			return "", err
		}
		for _, id := range form.IDs {
			a.recordActivity(c, activity.Entry{Kind: activity.KindCategory, EntityID: id, Action: activity.ActionDelete, Name: names[id]})
		}
		return "deleted", nil
	})
}

// handleCategoryOptions renders the <option> list of the blog category
// select, marking ?selected= as chosen.
func (a *App) handleCategoryOptions(c echo.Context) error {
	s := a.categoryStore(c)
	if err := s.List(c.Request().Context()); err != nil {
		c.Logger().Errorf("category options: %v", err)
	}
	selected := c.QueryParam("selected")
	cats := s.Categories()
	opts := make([]views.Option, len(cats))
	for i, cat := range cats {
		opts[i] = views.Option{Value: cat.ID, Label: cat.Name, Selected: cat.ID == selected}
	}
	return Render(c, views.CategoryOptions(opts))
}
