package resource

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/eringen/adminpanel/api"
	"github.com/eringen/adminpanel/media"
	"github.com/eringen/adminpanel/model"
)

// DefaultRefreshDelay is how long after opening a blog dialog its category
// list is refetched.
const DefaultRefreshDelay = 100 * time.Millisecond

// ErrClosed is returned when a closed dialog is edited or submitted.
var ErrClosed = errors.New("resource: dialog is closed")

// State is the dialog's lifecycle position.
type State int

const (
	Closed State = iota
	OpenCreate
	OpenEdit
)

func (s State) String() string {
	switch s {
	case OpenCreate:
		return "open-create"
	case OpenEdit:
		return "open-edit"
	default:
		return "closed"
	}
}

// DialogConfig wires a dialog to its persistence and its parent view.
type DialogConfig struct {
	// Saver performs the write. Key feature and type dialogs save through
	// their own endpoints; the blog dialog hands the draft to its Table.
	Saver Saver
	// OnSaved runs after a successful write. The parent closes the dialog
	// and refreshes its list here.
	OnSaved func(ctx context.Context)
	// Refresh, when set, runs RefreshDelay after each Open.
	Refresh      func(ctx context.Context) error
	RefreshDelay time.Duration
	Log          Logger
}

// Dialog holds the draft of one entity being created or edited. A closed
// dialog renders nothing and accepts no edits.
type Dialog[E any, D Draft] struct {
	blank func() D
	seed  func(E) D
	cfg   DialogConfig

	mu      sync.Mutex
	state   State
	draft   D
	upload  *media.Upload
	preview string
	saved   string
	run     *refreshRun
}

type refreshRun struct {
	timer *time.Timer
	once  sync.Once
	done  chan struct{}
}

func (r *refreshRun) finish() {
	r.once.Do(func() { close(r.done) })
}

// NewDialog creates a closed dialog. blank builds the create-mode draft and
// seed copies an existing entity into an edit-mode draft.
func NewDialog[E any, D Draft](blank func() D, seed func(E) D, cfg DialogConfig) *Dialog[E, D] {
	if cfg.Log == nil {
		cfg.Log = log.New("resource")
	}
	if cfg.Refresh != nil && cfg.RefreshDelay <= 0 {
		cfg.RefreshDelay = DefaultRefreshDelay
	}
	return &Dialog[E, D]{blank: blank, seed: seed, cfg: cfg}
}

// NewBlogDialog creates the blog edit dialog.
func NewBlogDialog(cfg DialogConfig) *Dialog[model.Blog, *BlogDraft] {
	return NewDialog(BlankBlog, SeedBlog, cfg)
}

// NewKeyFeatureDialog creates the key feature edit dialog.
func NewKeyFeatureDialog(cfg DialogConfig) *Dialog[model.KeyFeature, *KeyFeatureDraft] {
	return NewDialog(BlankKeyFeature, SeedKeyFeature, cfg)
}

// NewTypeDialog creates the type edit dialog.
func NewTypeDialog(cfg DialogConfig) *Dialog[model.Type, *TypeDraft] {
	return NewDialog(BlankType, SeedType, cfg)
}

// Open shows the dialog. With an entity every field is copied into the
// draft; with nil the draft is reset to its blank defaults. Either way any
// previously selected file is dropped.
func (d *Dialog[E, D]) Open(entity *E) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopRefresh()
	d.upload = nil
	d.preview = ""
	d.saved = ""
	if entity == nil {
		d.draft = d.blank()
		d.state = OpenCreate
	} else {
		d.draft = d.seed(*entity)
		d.state = OpenEdit
	}
	if d.cfg.Refresh != nil {
		d.startRefresh()
	}
}

func (d *Dialog[E, D]) startRefresh() {
	run := &refreshRun{done: make(chan struct{})}
	refresh := d.cfg.Refresh
	logger := d.cfg.Log
	run.timer = time.AfterFunc(d.cfg.RefreshDelay, func() {
		defer run.finish()
		if err := refresh(context.Background()); err != nil {
			logger.Errorf("dialog refresh failed: %v", err)
		}
	})
	d.run = run
}

func (d *Dialog[E, D]) stopRefresh() {
	if d.run == nil {
		return
	}
	if d.run.timer.Stop() {
		d.run.finish()
	}
	d.run = nil
}

// Refreshed is closed once the refresh scheduled by the last Open has run
// or was cancelled. Without a pending refresh it is already closed.
func (d *Dialog[E, D]) Refreshed() <-chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.run == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return d.run.done
}

// Close hides the dialog and cancels a pending refresh.
func (d *Dialog[E, D]) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopRefresh()
	d.state = Closed
	d.upload = nil
	d.preview = ""
	var zero D
	d.draft = zero
}

// SavedID returns the id of the entity written by the last successful
// Submit since Open. It survives Close.
func (d *Dialog[E, D]) SavedID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.saved
}

// State returns the dialog state.
func (d *Dialog[E, D]) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// IsOpen reports whether the dialog is showing.
func (d *Dialog[E, D]) IsOpen() bool {
	return d.State() != Closed
}

// Draft returns the live draft. It is the zero value while closed.
func (d *Dialog[E, D]) Draft() D {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.draft
}

// Set merges one field into the draft.
func (d *Dialog[E, D]) Set(field, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == Closed {
		return ErrClosed
	}
	return d.draft.Set(field, value)
}

// SelectImage replaces the selected file and regenerates its preview.
func (d *Dialog[E, D]) SelectImage(u media.Upload) error {
	preview, err := media.Preview(u)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == Closed {
		return ErrClosed
	}
	d.upload = &u
	d.preview = preview
	return nil
}

// RemoveImage clears the selected file, its preview and the stored image.
func (d *Dialog[E, D]) RemoveImage() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == Closed {
		return
	}
	d.upload = nil
	d.preview = ""
	d.draft.ClearImage()
}

// Upload returns the selected file, if any.
func (d *Dialog[E, D]) Upload() *media.Upload {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.upload
}

// Preview returns the data URL of the selected file, or "".
func (d *Dialog[E, D]) Preview() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.preview
}

// Payload builds the multipart body for the current draft.
func (d *Dialog[E, D]) Payload() (*api.Payload, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == Closed {
		return nil, ErrClosed
	}
	return d.payload()
}

func (d *Dialog[E, D]) payload() (*api.Payload, error) {
	p := api.NewPayload()
	if err := d.draft.Fill(p); err != nil {
		return nil, err
	}
	if d.upload != nil {
		p.File(d.draft.ImageField(), d.upload.Filename, d.upload.ContentType, d.upload.Data)
	}
	return p, nil
}

// Submit validates the draft and, if it passes, writes it: create when the
// draft has no id, update otherwise. Validation failures return a
// *ValidationError without touching the network. On success OnSaved runs.
func (d *Dialog[E, D]) Submit(ctx context.Context) error {
	d.mu.Lock()
	if d.state == Closed {
		d.mu.Unlock()
		return ErrClosed
	}
	draft := d.draft
	if err := Validate(draft); err != nil {
		d.mu.Unlock()
		return err
	}
	p, err := d.payload()
	d.mu.Unlock()
	if err != nil {
		return err
	}

	if d.cfg.Saver == nil {
		return ErrUnsupported
	}
	id, err := d.cfg.Saver.Save(ctx, draft.EntityID(), p)
	if err != nil {
		d.cfg.Log.Errorf("submit failed: %v", err)
		return fmt.Errorf("resource: submit: %w", err)
	}
	d.mu.Lock()
	d.saved = id
	d.mu.Unlock()
	if d.cfg.OnSaved != nil {
		d.cfg.OnSaved(ctx)
	}
	return nil
}
