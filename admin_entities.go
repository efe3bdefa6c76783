package adminpanel

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/eringen/adminpanel/activity"
	"github.com/eringen/adminpanel/api"
	"github.com/eringen/adminpanel/media"
	"github.com/eringen/adminpanel/model"
	"github.com/eringen/adminpanel/resource"
	"github.com/eringen/adminpanel/views"
)

// entityKind describes one list page: how to fetch and mutate its
// collection, how its rows look and which form fields its dialog posts.
type entityKind[E model.Entity, D resource.Draft] struct {
	app       *App
	slug      string // URL segment
	title     string
	singular  string
	activity  activity.Kind
	columns   []string
	formNames []string
	canToggle bool
	canDelete bool

	newTable   func(c echo.Context) *resource.Table[E]
	openDialog func(c echo.Context, t *resource.Table[E], cfg resource.DialogConfig) dialogSetup[E, D]
	stub       func(id string) E
	row        func(e E) views.Row
	image      func(d D) string
	tags       func(d D) []string
	// afterWrite runs after every confirmed create, update, toggle or delete.
	afterWrite func()
}

// dialogSetup is a dialog plus the form fields that render its draft.
type dialogSetup[E model.Entity, D resource.Draft] struct {
	dialog *resource.Dialog[E, D]
	fields func(d D) []views.Field
	// err is shown above the form when the dialog's own data failed to load.
	err func() string
}

type tagEditor interface {
	AddTag(tag string) bool
	RemoveTag(tag string) bool
}

func registerKind[E model.Entity, D resource.Draft](g *echo.Group, k *entityKind[E, D]) {
	base := "/" + k.slug
	g.GET(base+"/", k.handleList)
	g.GET(base+"/new/", k.handleNew)
	g.POST(base+"/dialog/", k.handleDialogOp)
	g.POST(base+"/save/", k.handleSave)
	g.GET(base+"/:id/edit/", k.handleEdit)
	if k.canToggle {
		g.POST(base+"/:id/toggle/", k.handleToggle)
	}
	if k.canDelete {
		g.DELETE(base+"/:id/", k.handleDelete)
	}
}

func (k *entityKind[E, D]) handleList(c echo.Context) error {
	t := k.newTable(c)
	var flash views.Flash
	if err := t.Load(c.Request().Context()); err != nil {
		flash = errorFlash(err)
	} else if msg := c.QueryParam("msg"); msg != "" {
		flash = views.Flash{Text: msg}
	}
	return k.renderTable(c, t, flash)
}

func (k *entityKind[E, D]) handleToggle(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	t := k.newTable(c)
	if err := t.Load(ctx); err != nil {
		return k.renderTable(c, t, errorFlash(err))
	}
	item, _ := t.Find(id)
	if err := t.Toggle(ctx, id); err != nil {
		return k.renderTable(c, t, errorFlash(err))
	}
	k.recordWrite(c, activity.ActionToggle, id, item.DisplayName())
	return k.renderTable(c, t, views.Flash{})
}

func (k *entityKind[E, D]) handleDelete(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	t := k.newTable(c)
	if err := t.Load(ctx); err != nil {
		return k.renderTable(c, t, errorFlash(err))
	}
	item, _ := t.Find(id)
	if err := t.Delete(ctx, id); err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			return k.renderTable(c, t, views.Flash{Error: true, Text: k.singular + " not found"})
		}
		return k.renderTable(c, t, errorFlash(err))
	}
	k.recordWrite(c, activity.ActionDelete, id, item.DisplayName())
	return k.renderTable(c, t, views.Flash{Text: "deleted"})
}

func (k *entityKind[E, D]) handleNew(c echo.Context) error {
	s := k.dialogFor(c, k.newTable(c))
	s.dialog.Open(nil)
	return k.renderDialog(c, s, "")
}

func (k *entityKind[E, D]) handleEdit(c echo.Context) error {
	t := k.newTable(c)
	if err := t.Load(c.Request().Context()); err != nil {
		return err
	}
	item, ok := t.Find(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	s := k.dialogFor(c, t)
	s.dialog.Open(&item)
	return k.renderDialog(c, s, "")
}

// handleDialogOp applies one in-dialog edit (tags, image) to the posted
// form and re-renders the dialog.
func (k *entityKind[E, D]) handleDialogOp(c echo.Context) error {
	s, err := k.restore(c, k.newTable(c))
	if err != nil {
		return k.renderDialog(c, s, err.Error())
	}
	d := s.dialog
	switch c.QueryParam("op") {
	case "add_tag":
		if te, ok := any(d.Draft()).(tagEditor); ok {
			te.AddTag(c.FormValue("new_tag"))
		}
	case "remove_tag":
		if te, ok := any(d.Draft()).(tagEditor); ok {
			te.RemoveTag(c.QueryParam("tag"))
		}
	case "remove_image":
		d.RemoveImage()
	case "select_image":
		u, err := readUpload(c, "file")
		if err != nil {
			return k.renderDialog(c, s, err.Error())
		}
		if err := d.SelectImage(u); err != nil {
			return k.renderDialog(c, s, err.Error())
		}
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown dialog operation")
	}
	return k.renderDialog(c, s, "")
}

func (k *entityKind[E, D]) handleSave(c echo.Context) error {
	s, err := k.restore(c, k.newTable(c))
	if err != nil {
		return k.renderDialog(c, s, err.Error())
	}
	draft := s.dialog.Draft()
	id, name := draft.EntityID(), draft.DisplayName()
	if err := s.dialog.Submit(c.Request().Context()); err != nil {
		var verr *resource.ValidationError
		if errors.As(err, &verr) {
			return k.renderDialog(c, s, verr.Message)
		}
		return k.renderDialog(c, s, api.Message(err))
	}

	action := activity.ActionUpdate
	if id == "" {
		action = activity.ActionCreate
	}
	k.recordWrite(c, action, s.dialog.SavedID(), name)

	c.Response().Header().Set("HX-Trigger", "saved")
	return c.HTML(http.StatusOK, "")
}

// dialogFor builds the kind's dialog for one request. A successful save
// closes it; the page reloads its table on the "saved" event.
func (k *entityKind[E, D]) dialogFor(c echo.Context, t *resource.Table[E]) dialogSetup[E, D] {
	var d *resource.Dialog[E, D]
	cfg := resource.DialogConfig{
		OnSaved:      func(context.Context) { d.Close() },
		RefreshDelay: k.app.Config.CategoryRefreshDelay,
		Log:          c.Logger(),
	}
	s := k.openDialog(c, t, cfg)
	d = s.dialog
	return s
}

// restore rebuilds the dialog from the posted form: the draft fields, the
// tag list and any file already selected in an earlier step.
func (k *entityKind[E, D]) restore(c echo.Context, t *resource.Table[E]) (dialogSetup[E, D], error) {
	s := k.dialogFor(c, t)
	if id := c.FormValue("id"); id != "" {
		stub := k.stub(id)
		s.dialog.Open(&stub)
	} else {
		s.dialog.Open(nil)
	}
	for _, name := range k.formNames {
		if err := s.dialog.Set(name, c.FormValue(name)); err != nil {
			return s, err
		}
	}
	if data := c.FormValue("upload"); data != "" {
		u, err := media.FromDataURL(c.FormValue("upload_name"), data)
		if err != nil {
			return s, err
		}
		if err := s.dialog.SelectImage(u); err != nil {
			return s, err
		}
	}
	return s, nil
}

func (k *entityKind[E, D]) renderDialog(c echo.Context, s dialogSetup[E, D], errMsg string) error {
	ctx := c.Request().Context()
	d := s.dialog
	select {
	case <-d.Refreshed():
	case <-ctx.Done():
		d.Close()
		return ctx.Err()
	}
	defer d.Close()

	draft := d.Draft()
	title := "Add " + k.singular
	if d.State() == resource.OpenEdit {
		title = "Edit " + k.singular
	}
	if errMsg == "" && s.err != nil {
		errMsg = s.err()
	}
	img := k.image(draft)
	v := views.DialogView{
		Kind:       k.slug,
		Title:      title,
		ID:         draft.EntityID(),
		Fields:     s.fields(draft),
		ImageField: draft.ImageField(),
		ImageURL:   model.ImageURL(k.app.Client.BaseURL(), img),
		ImageName:  img,
		Preview:    d.Preview(),
		Error:      errMsg,
		CSRF:       CsrfToken(c),
	}
	if u := d.Upload(); u != nil {
		v.Upload = media.DataURL(*u)
		v.UploadName = u.Filename
	}
	if k.tags != nil {
		tags := k.tags(draft)
		v.ShowTags = true
		v.Tags = tags
		v.TagsJSON = model.Tags(tags).Encode()
	}
	return Render(c, views.Dialog(v))
}

func (k *entityKind[E, D]) renderTable(c echo.Context, t *resource.Table[E], flash views.Flash) error {
	q := c.QueryParam("q")
	t.SetFilter(q)
	if page, err := strconv.Atoi(c.QueryParam("page")); err == nil {
		t.SetPage(page)
	}
	p := t.Pagination()
	if p.PageCount > 0 && p.PageNo > p.PageCount {
		t.SetPage(p.PageCount)
		p = t.Pagination()
	}

	rows := make([]views.Row, 0, p.PageSize)
	for _, e := range t.Current() {
		rows = append(rows, k.row(e))
	}
	v := views.ListView{
		Site:    k.app.site(),
		Kind:    k.slug,
		Title:   k.title,
		Columns: k.columns,
		Rows:    rows,
		Query:   q,
		Pager: views.Pager{
			PageNo:     p.PageNo,
			PageCount:  p.PageCount,
			TotalItems: p.TotalItems,
			HasPrev:    p.HasPrev(),
			HasNext:    p.HasNext(),
		},
		CanToggle: k.canToggle,
		CanDelete: k.canDelete,
		Flash:     flash,
		CSRF:      CsrfToken(c),
	}
	if c.Request().Header.Get("HX-Request") == "true" {
		return Render(c, views.EntityTable(v))
	}
	return Render(c, views.EntityList(v))
}

func (k *entityKind[E, D]) recordWrite(c echo.Context, action activity.Action, id, name string) {
	if k.afterWrite != nil {
		k.afterWrite()
	}
	k.app.recordActivity(c, activity.Entry{
		Kind:     k.activity,
		EntityID: id,
		Action:   action,
		Name:     name,
	})
}

func errorFlash(err error) views.Flash {
	return views.Flash{Error: true, Text: api.Message(err)}
}

// recordActivity appends e to the audit log. Failures are logged and
// otherwise ignored; the backend write already happened.
func (a *App) recordActivity(c echo.Context, e activity.Entry) {
	if a.Activity == nil {
		return
	}
	e.ActorHash = activity.HashActor(c.RealIP())
	if err := a.Activity.Record(c.Request().Context(), e); err != nil {
		c.Logger().Errorf("record activity: %v", err)
	}
}
