package resource

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/eringen/adminpanel/api"
	"github.com/eringen/adminpanel/media"
	"github.com/eringen/adminpanel/model"
)

type recordingSaver struct {
	calls int
	id    string
	p     *api.Payload
	err   error
}

func (s *recordingSaver) Save(_ context.Context, id string, p *api.Payload) (string, error) {
	s.calls++
	s.id = id
	s.p = p
	if s.err != nil {
		return "", s.err
	}
	if id == "" {
		return "new-1", nil
	}
	return id, nil
}

func TestOpenEditSeedsEveryField(t *testing.T) {
	d := NewBlogDialog(DialogConfig{Log: quietLog{}})
	b := model.Blog{
		ID: "b1", Name: "Go", Intro: "hi", Category: model.CategoryRef{ID: "c1", Name: "Tech"},
		SortOrder: 3, Status: model.Inactive, Tags: model.Tags{"go", "web"},
		Description: "<p>x</p>", MetaTitle: "mt", MetaDescription: "md", Image: "go.png",
	}
	d.Open(&b)
	if d.State() != OpenEdit {
		t.Fatalf("state = %v", d.State())
	}
	got := d.Draft()
	if got.ID != "b1" || got.Name != "Go" || got.Intro != "hi" || got.Category != "c1" ||
		got.SortOrder != 3 || got.Status != model.Inactive || len(got.Tags) != 2 ||
		got.Description != "<p>x</p>" || got.MetaTitle != "mt" || got.MetaDescription != "md" ||
		got.Image != "go.png" {
		t.Errorf("draft = %+v", got)
	}

	got.AddTag("extra")
	if len(b.Tags) != 2 {
		t.Error("draft tags alias the entity's tags")
	}
}

func TestOpenCreateUsesDefaults(t *testing.T) {
	d := NewKeyFeatureDialog(DialogConfig{Log: quietLog{}})
	d.Open(&model.KeyFeature{ID: "k1", Name: "old"})
	d.Open(nil)
	if d.State() != OpenCreate {
		t.Fatalf("state = %v", d.State())
	}
	got := d.Draft()
	if got.ID != "" || got.Name != "" || got.Status != model.Active {
		t.Errorf("blank draft = %+v", got)
	}
}

func TestSubmitRejectsEmptyNameWithoutRequest(t *testing.T) {
	saver := &recordingSaver{}
	d := NewTypeDialog(DialogConfig{Saver: saver, Log: quietLog{}})
	d.Open(nil)
	err := d.Submit(context.Background())
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "Name" {
		t.Fatalf("err = %v, want a Name validation error", err)
	}
	if saver.calls != 0 {
		t.Errorf("saver called %d times", saver.calls)
	}
}

func TestBlogSubmitRequiresCategory(t *testing.T) {
	saver := &recordingSaver{}
	d := NewBlogDialog(DialogConfig{Saver: saver, Log: quietLog{}})
	d.Open(nil)
	if err := d.Set("name", "Hello"); err != nil {
		t.Fatal(err)
	}
	var verr *ValidationError
	if err := d.Submit(context.Background()); !errors.As(err, &verr) || verr.Field != "Category" {
		t.Fatalf("err = %v", err)
	}
	if saver.calls != 0 {
		t.Error("saver called")
	}
}

func TestSubmitCreatesThenNotifies(t *testing.T) {
	saver := &recordingSaver{}
	saved := false
	d := NewBlogDialog(DialogConfig{Saver: saver, OnSaved: func(context.Context) { saved = true }, Log: quietLog{}})
	d.Open(nil)
	for field, v := range map[string]string{"name": "Hello", "category": "c1", "sortOrder": "4"} {
		if err := d.Set(field, v); err != nil {
			t.Fatal(err)
		}
	}
	d.Draft().AddTag("  go ")
	d.Draft().AddTag("   ")
	d.Draft().AddTag("web")
	d.Draft().RemoveTag("web")

	if err := d.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if saver.calls != 1 || saver.id != "" {
		t.Fatalf("saver calls=%d id=%q", saver.calls, saver.id)
	}
	want := map[string]string{
		"name":      "Hello",
		"category":  "c1",
		"sortOrder": "4",
		"status":    "active",
		"tags":      `["go"]`,
	}
	for k, v := range want {
		if got, _ := saver.p.Value(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
	if !saved {
		t.Error("OnSaved not called")
	}
	if got := d.SavedID(); got != "new-1" {
		t.Errorf("SavedID = %q, want new-1", got)
	}
}

func TestSubmitSucceedsWhenReloadFails(t *testing.T) {
	creates := 0
	tbl := NewTable(
		func(context.Context) ([]model.Blog, error) {
			return nil, &api.Error{Status: 500, Message: "backend 500"}
		},
		WithSaver[model.Blog](SaveFuncs{
			Create: func(context.Context, *api.Payload) (string, error) {
				creates++
				return "b42", nil
			},
		}),
		WithLogger[model.Blog](quietLog{}),
	)

	var d *Dialog[model.Blog, *BlogDraft]
	saved := false
	d = NewBlogDialog(DialogConfig{
		Saver:   tbl,
		OnSaved: func(context.Context) { saved = true; d.Close() },
		Log:     quietLog{},
	})
	d.Open(nil)
	d.Set("name", "Hello")
	d.Set("category", "c1")

	if err := d.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if creates != 1 || !saved || d.State() != Closed {
		t.Errorf("creates=%d saved=%v state=%v", creates, saved, d.State())
	}
	if got := d.SavedID(); got != "b42" {
		t.Errorf("SavedID = %q, want b42", got)
	}
}

func TestRemoveTagDropsOneOccurrence(t *testing.T) {
	d := NewBlogDialog(DialogConfig{Log: quietLog{}})
	d.Open(nil)
	for _, tag := range []string{"go", "go", "web"} {
		if !d.Draft().AddTag(tag) {
			t.Fatalf("AddTag(%q) rejected", tag)
		}
	}
	if !d.Draft().RemoveTag("go") {
		t.Fatal("RemoveTag(go) reported nothing removed")
	}
	if got := d.Draft().Tags; len(got) != 2 || got[0] != "go" || got[1] != "web" {
		t.Errorf("tags = %v, want [go web]", got)
	}
}

func TestSubmitFailureKeepsDialogOpen(t *testing.T) {
	saver := &recordingSaver{err: &api.Error{Status: 500, Message: "nope"}}
	saved := false
	d := NewKeyFeatureDialog(DialogConfig{Saver: saver, OnSaved: func(context.Context) { saved = true }, Log: quietLog{}})
	d.Open(&model.KeyFeature{ID: "k1", Name: "Fast", Status: model.Inactive})
	err := d.Submit(context.Background())
	if err == nil || api.Message(err) != "nope" {
		t.Fatalf("err = %v", err)
	}
	if saved || d.State() != OpenEdit || d.Draft().Name != "Fast" {
		t.Errorf("dialog changed after failed submit: saved=%v state=%v", saved, d.State())
	}
	if saver.id != "k1" {
		t.Errorf("id = %q", saver.id)
	}
	if v, _ := saver.p.Value("status"); v != "false" {
		t.Errorf("key feature status = %q, want false", v)
	}
}

func TestSelectAndRemoveImage(t *testing.T) {
	d := NewTypeDialog(DialogConfig{Log: quietLog{}})
	d.Open(&model.Type{ID: "t1", Name: "Cars", IconImg: "car.svg"})
	svg := media.Upload{Filename: "new.svg", ContentType: "image/svg+xml", Data: []byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`)}
	if err := d.SelectImage(svg); err != nil {
		t.Fatal(err)
	}
	if d.Preview() == "" || d.Upload() == nil {
		t.Fatal("selection not kept")
	}
	p, err := d.Payload()
	if err != nil {
		t.Fatal(err)
	}
	if !p.HasFile("iconimg") {
		t.Error("payload missing iconimg file")
	}

	d.RemoveImage()
	if d.Preview() != "" || d.Upload() != nil || d.Draft().IconImg != "" {
		t.Errorf("image not cleared: %+v", d.Draft())
	}
	p, _ = d.Payload()
	if v, _ := p.Value("iconimg"); v != "" || p.HasFile("iconimg") {
		t.Errorf("iconimg = %q file=%v", v, p.HasFile("iconimg"))
	}
}

func TestReopenDropsSelectedFile(t *testing.T) {
	d := NewTypeDialog(DialogConfig{Log: quietLog{}})
	d.Open(nil)
	_ = d.SelectImage(media.Upload{Filename: "a.svg", ContentType: "image/svg+xml", Data: []byte("<svg/>")})
	d.Open(&model.Type{ID: "t2", Name: "Bikes"})
	if d.Upload() != nil || d.Preview() != "" {
		t.Error("selection survived reopen")
	}
}

func TestClosedDialogRejectsEdits(t *testing.T) {
	d := NewBlogDialog(DialogConfig{Log: quietLog{}})
	if err := d.Set("name", "x"); !errors.Is(err, ErrClosed) {
		t.Errorf("Set err = %v", err)
	}
	if err := d.Submit(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Submit err = %v", err)
	}
	d.Open(nil)
	d.Close()
	if d.IsOpen() {
		t.Error("dialog still open")
	}
}

func TestRefreshRunsAfterDelay(t *testing.T) {
	var runs atomic.Int32
	d := NewBlogDialog(DialogConfig{
		Refresh:      func(context.Context) error { runs.Add(1); return nil },
		RefreshDelay: 10 * time.Millisecond,
		Log:          quietLog{},
	})
	d.Open(nil)
	if runs.Load() != 0 {
		t.Error("refresh ran before the delay")
	}
	select {
	case <-d.Refreshed():
	case <-time.After(time.Second):
		t.Fatal("refresh never ran")
	}
	if runs.Load() != 1 {
		t.Errorf("runs = %d", runs.Load())
	}
}

func TestCloseCancelsPendingRefresh(t *testing.T) {
	var runs atomic.Int32
	d := NewBlogDialog(DialogConfig{
		Refresh:      func(context.Context) error { runs.Add(1); return nil },
		RefreshDelay: 50 * time.Millisecond,
		Log:          quietLog{},
	})
	d.Open(nil)
	done := d.Refreshed()
	d.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Refreshed not released by Close")
	}
	time.Sleep(80 * time.Millisecond)
	if runs.Load() != 0 {
		t.Errorf("refresh ran %d times after Close", runs.Load())
	}
}
