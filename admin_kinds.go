package adminpanel

import (
	"context"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/eringen/adminpanel/activity"
	"github.com/eringen/adminpanel/api"
	"github.com/eringen/adminpanel/categories"
	"github.com/eringen/adminpanel/model"
	"github.com/eringen/adminpanel/resource"
	"github.com/eringen/adminpanel/views"
)

// createdID keeps only the id of the entity a create endpoint returns.
func createdID[T model.Entity](fn func(ctx context.Context, p *api.Payload) (T, error)) func(context.Context, *api.Payload) (string, error) {
	return func(ctx context.Context, p *api.Payload) (string, error) {
		e, err := fn(ctx, p)
		if err != nil {
			return "", err
		}
		return e.EntityID(), nil
	}
}

func discardID[T any](fn func(ctx context.Context, id string, p *api.Payload) (T, error)) func(context.Context, string, *api.Payload) error {
	return func(ctx context.Context, id string, p *api.Payload) error {
		_, err := fn(ctx, id, p)
		return err
	}
}

func statusField(s model.Status) views.Field {
	return views.Field{Name: "status", Label: "Status", Type: "select", Options: views.StatusOptions(s.Bool())}
}

func orderField(n int) views.Field {
	return views.Field{Name: "sortOrder", Label: "Sort order", Type: "number", Value: strconv.Itoa(n)}
}

func (a *App) blogKind() *entityKind[model.Blog, *resource.BlogDraft] {
	svc := a.Client.Blogs()
	base := a.Client.BaseURL()
	saver := resource.SaveFuncs{
		Create: createdID(svc.Create),
		Update: discardID(svc.Update),
	}
	return &entityKind[model.Blog, *resource.BlogDraft]{
		app:      a,
		slug:     "blogs",
		title:    "Blogs",
		singular: "Blog",
		activity: activity.KindBlog,
		columns:  []string{"Category", "Order", "Tags"},
		formNames: []string{
			"name", "intro", "category", "sortOrder", "status", "tags",
			"description", "metaTitle", "metaDescription", "image",
		},
		canToggle: true,
		canDelete: true,
		newTable: func(c echo.Context) *resource.Table[model.Blog] {
			return resource.NewTable(svc.List,
				resource.WithPageSize[model.Blog](a.Config.PageSize),
				resource.WithRemove[model.Blog](svc.Delete),
				resource.WithToggle[model.Blog](svc.ToggleStatus, resource.ToggleRefetch, nil),
				resource.WithSaver[model.Blog](saver),
				resource.WithLogger[model.Blog](c.Logger()),
			)
		},
		openDialog: func(c echo.Context, t *resource.Table[model.Blog], cfg resource.DialogConfig) dialogSetup[model.Blog, *resource.BlogDraft] {
			cats := categories.NewStore(a.Client.Categories(a.requestAuth(c)))
			cfg.Saver = t
			cfg.Refresh = cats.List
			return dialogSetup[model.Blog, *resource.BlogDraft]{
				dialog: resource.NewBlogDialog(cfg),
				fields: func(d *resource.BlogDraft) []views.Field {
					return blogFields(d, cats.Categories())
				},
				err: func() string {
					if msg := cats.Err(); msg != "" {
						return "Could not load categories: " + msg
					}
					return ""
				},
			}
		},
		stub: func(id string) model.Blog { return model.Blog{ID: id} },
		row: func(b model.Blog) views.Row {
			category := b.Category.Name
			if category == "" {
				category = b.Category.ID
			}
			return views.Row{
				ID:       b.ID,
				Name:     b.Name,
				ImageURL: model.ImageURL(base, b.Image),
				Cells:    []string{category, b.SortOrder.String(), views.JoinTags(b.Tags)},
				Active:   b.Status.Bool(),
			}
		},
		image:      func(d *resource.BlogDraft) string { return d.Image },
		tags:       func(d *resource.BlogDraft) []string { return d.Tags },
		afterWrite: a.Cache.Invalidate,
	}
}

func blogFields(d *resource.BlogDraft, cats []model.Category) []views.Field {
	opts := []views.Option{{Value: "", Label: "Select a category"}}
	for _, cat := range cats {
		opts = append(opts, views.Option{Value: cat.ID, Label: cat.Name, Selected: cat.ID == d.Category})
	}
	return []views.Field{
		{Name: "name", Label: "Name", Type: "text", Value: d.Name, Required: true},
		{Name: "category", Label: "Category", Type: "select", Required: true, Options: opts},
		{Name: "intro", Label: "Intro", Type: "textarea", Value: d.Intro},
		{Name: "description", Label: "Description", Type: "textarea", Value: d.Description},
		orderField(d.SortOrder),
		statusField(d.Status),
		{Name: "metaTitle", Label: "Meta title", Type: "text", Value: d.MetaTitle},
		{Name: "metaDescription", Label: "Meta description", Type: "textarea", Value: d.MetaDescription},
	}
}

func (a *App) keyFeatureKind() *entityKind[model.KeyFeature, *resource.KeyFeatureDraft] {
	svc := a.Client.KeyFeatures()
	base := a.Client.BaseURL()
	return &entityKind[model.KeyFeature, *resource.KeyFeatureDraft]{
		app:       a,
		slug:      "key-features",
		title:     "Key Features",
		singular:  "Key Feature",
		activity:  activity.KindKeyFeature,
		columns:   []string{"Info", "Order"},
		formNames: []string{"name", "info", "sortOrder", "status", "keyimg"},
		canToggle: true,
		canDelete: true,
		newTable: func(c echo.Context) *resource.Table[model.KeyFeature] {
			return resource.NewTable(svc.List,
				resource.WithPageSize[model.KeyFeature](a.Config.PageSize),
				resource.WithRemove[model.KeyFeature](svc.Delete),
				resource.WithToggle[model.KeyFeature](svc.Toggle, resource.TogglePatch, func(row, updated model.KeyFeature) model.KeyFeature {
					row.Status = updated.Status
					return row
				}),
				resource.WithLogger[model.KeyFeature](c.Logger()),
			)
		},
		openDialog: func(c echo.Context, _ *resource.Table[model.KeyFeature], cfg resource.DialogConfig) dialogSetup[model.KeyFeature, *resource.KeyFeatureDraft] {
			cfg.Saver = resource.SaveFuncs{
				Create: createdID(svc.Create),
				Update: discardID(svc.Update),
			}
			return dialogSetup[model.KeyFeature, *resource.KeyFeatureDraft]{
				dialog: resource.NewKeyFeatureDialog(cfg),
				fields: func(d *resource.KeyFeatureDraft) []views.Field {
					return []views.Field{
						{Name: "name", Label: "Name", Type: "text", Value: d.Name, Required: true},
						{Name: "info", Label: "Info", Type: "textarea", Value: d.Info},
						orderField(d.SortOrder),
						statusField(d.Status),
					}
				},
			}
		},
		stub: func(id string) model.KeyFeature { return model.KeyFeature{ID: id} },
		row: func(k model.KeyFeature) views.Row {
			return views.Row{
				ID:       k.ID,
				Name:     k.Name,
				ImageURL: model.ImageURL(base, k.KeyImg),
				Cells:    []string{views.Truncate(k.Info, 80), k.SortOrder.String()},
				Active:   k.Status.Bool(),
			}
		},
		image: func(d *resource.KeyFeatureDraft) string { return d.KeyImg },
	}
}

func (a *App) typeKind() *entityKind[model.Type, *resource.TypeDraft] {
	svc := a.Client.Types()
	base := a.Client.BaseURL()
	return &entityKind[model.Type, *resource.TypeDraft]{
		app:       a,
		slug:      "types",
		title:     "Types",
		singular:  "Type",
		activity:  activity.KindType,
		columns:   []string{"Department", "Order", "Home"},
		formNames: []string{"name", "department", "sortOrder", "status", "showHome", "iconimg"},
		newTable: func(c echo.Context) *resource.Table[model.Type] {
			return resource.NewTable(svc.List,
				resource.WithPageSize[model.Type](a.Config.PageSize),
				resource.WithLogger[model.Type](c.Logger()),
			)
		},
		openDialog: func(c echo.Context, _ *resource.Table[model.Type], cfg resource.DialogConfig) dialogSetup[model.Type, *resource.TypeDraft] {
			cfg.Saver = resource.SaveFuncs{
				Create: createdID(svc.Create),
				Update: discardID(svc.Update),
			}
			return dialogSetup[model.Type, *resource.TypeDraft]{
				dialog: resource.NewTypeDialog(cfg),
				fields: func(d *resource.TypeDraft) []views.Field {
					return []views.Field{
						{Name: "name", Label: "Name", Type: "text", Value: d.Name, Required: true},
						{Name: "department", Label: "Department", Type: "text", Value: d.Department},
						orderField(d.SortOrder),
						statusField(d.Status),
						{Name: "showHome", Label: "Show on home page", Type: "checkbox", Checked: d.ShowHome},
					}
				},
			}
		},
		stub: func(id string) model.Type { return model.Type{ID: id} },
		row: func(t model.Type) views.Row {
			home := "no"
			if t.ShowHome {
				home = "yes"
			}
			return views.Row{
				ID:       t.ID,
				Name:     t.Name,
				ImageURL: model.ImageURL(base, t.IconImg),
				Cells:    []string{t.Department, t.SortOrder.String(), home},
				Active:   t.Status.Bool(),
			}
		},
		image: func(d *resource.TypeDraft) string { return d.IconImg },
	}
}
