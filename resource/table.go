// Package resource implements the list-view and edit-dialog pattern shared
// by every entity page: a Table holds the last fetched collection with a
// name filter and pagination, and a Dialog holds one entity's draft until
// the backend acknowledges the write.
package resource

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/labstack/gommon/log"

	"github.com/eringen/adminpanel/api"
	"github.com/eringen/adminpanel/model"
)

// DefaultPageSize is the number of rows per page when none is configured.
const DefaultPageSize = 10

var (
	// ErrSuperseded is returned by a Load whose result was discarded because
	// a newer Load was issued while it was in flight.
	ErrSuperseded = errors.New("resource: load superseded by a newer request")
	// ErrNotConfirmed is returned when a delete is declined.
	ErrNotConfirmed = errors.New("resource: delete not confirmed")
	// ErrNotFound is returned when an id is not in the loaded collection.
	ErrNotFound = errors.New("resource: not found")
	// ErrUnsupported is returned for actions the entity kind does not offer.
	ErrUnsupported = errors.New("resource: action not supported")
)

// Logger receives request failures. echo.Logger and gommon's *log.Logger
// both satisfy it.
type Logger interface {
	Errorf(format string, args ...interface{})
}

// ToggleMode selects how a table reflects a status toggle.
type ToggleMode int

const (
	// ToggleRefetch reloads the whole collection after a toggle.
	ToggleRefetch ToggleMode = iota
	// TogglePatch replaces only the toggled row's status with the one in
	// the toggle response.
	TogglePatch
)

// Pagination describes the current page of a table.
type Pagination struct {
	PageNo     int `json:"page_no"`
	PageSize   int `json:"page_size"`
	PageCount  int `json:"page_count"`
	TotalItems int `json:"total_items"`
}

// HasPrev reports whether a page before PageNo exists.
func (p Pagination) HasPrev() bool { return p.PageNo > 1 }

// HasNext reports whether a page after PageNo exists.
func (p Pagination) HasNext() bool { return p.PageNo < p.PageCount }

// Saver persists a draft: create when id is empty, update otherwise. It
// returns the id of the written entity.
type Saver interface {
	Save(ctx context.Context, id string, p *api.Payload) (string, error)
}

// SaveFuncs adapts a pair of endpoint calls to Saver. Create returns the
// id the backend assigned.
type SaveFuncs struct {
	Create func(ctx context.Context, p *api.Payload) (string, error)
	Update func(ctx context.Context, id string, p *api.Payload) error
}

// Save dispatches to Create or Update.
func (s SaveFuncs) Save(ctx context.Context, id string, p *api.Payload) (string, error) {
	if id == "" {
		if s.Create == nil {
			return "", ErrUnsupported
		}
		return s.Create(ctx, p)
	}
	if s.Update == nil {
		return "", ErrUnsupported
	}
	return id, s.Update(ctx, id, p)
}

// Table is the in-memory state of one entity list view. It is safe for
// concurrent use.
type Table[T model.Entity] struct {
	fetch   func(ctx context.Context) ([]T, error)
	remove  func(ctx context.Context, id string) error
	toggle  func(ctx context.Context, id string) (T, error)
	patch   func(row, updated T) T
	mode    ToggleMode
	saver   Saver
	confirm func(ctx context.Context, item T) bool
	log     Logger

	mu       sync.Mutex
	items    []T
	filter   string
	page     int
	pageSize int
	seq      uint64
	cancel   context.CancelFunc
	loaded   bool
}

// TableOption configures a Table.
type TableOption[T model.Entity] func(*Table[T])

// WithPageSize sets the fixed page size.
func WithPageSize[T model.Entity](n int) TableOption[T] {
	return func(t *Table[T]) {
		if n > 0 {
			t.pageSize = n
		}
	}
}

// WithRemove enables Delete.
func WithRemove[T model.Entity](fn func(ctx context.Context, id string) error) TableOption[T] {
	return func(t *Table[T]) {
		t.remove = fn
	}
}

// WithToggle enables Toggle. In TogglePatch mode patch merges the toggle
// response into the existing row.
func WithToggle[T model.Entity](fn func(ctx context.Context, id string) (T, error), mode ToggleMode, patch func(row, updated T) T) TableOption[T] {
	return func(t *Table[T]) {
		t.toggle = fn
		t.mode = mode
		t.patch = patch
	}
}

// WithSaver enables Save, letting the table persist drafts for its dialog.
func WithSaver[T model.Entity](s Saver) TableOption[T] {
	return func(t *Table[T]) {
		t.saver = s
	}
}

// WithConfirm sets the interactive confirmation asked before a delete.
// Without one, deletes proceed.
func WithConfirm[T model.Entity](fn func(ctx context.Context, item T) bool) TableOption[T] {
	return func(t *Table[T]) {
		t.confirm = fn
	}
}

// WithLogger sets where request failures are logged.
func WithLogger[T model.Entity](l Logger) TableOption[T] {
	return func(t *Table[T]) {
		if l != nil {
			t.log = l
		}
	}
}

// NewTable creates a table that loads its collection with fetch.
func NewTable[T model.Entity](fetch func(ctx context.Context) ([]T, error), opts ...TableOption[T]) *Table[T] {
	t := &Table[T]{
		fetch:    fetch,
		page:     1,
		pageSize: DefaultPageSize,
		log:      log.New("resource"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Load requests the full collection. A Load cancels any earlier one still
// in flight, and a response that is not from the latest Load is dropped
// with ErrSuperseded. On success the page resets to 1; on failure the
// previous collection is kept.
func (t *Table[T]) Load(ctx context.Context) error {
	t.mu.Lock()
	t.seq++
	seq := t.seq
	if t.cancel != nil {
		t.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.mu.Unlock()

	items, err := t.fetch(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()
	if seq != t.seq {
		cancel()
		return ErrSuperseded
	}
	t.cancel = nil
	cancel()
	if err != nil {
		t.log.Errorf("load failed: %v", err)
		return fmt.Errorf("resource: load: %w", err)
	}
	t.items = items
	t.loaded = true
	t.page = 1
	return nil
}

// Loaded reports whether a Load has succeeded.
func (t *Table[T]) Loaded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loaded
}

// Items returns the full loaded collection.
func (t *Table[T]) Items() []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]T(nil), t.items...)
}

// SetFilter sets the name filter and resets to page 1.
func (t *Table[T]) SetFilter(q string) {
	t.mu.Lock()
	t.filter = q
	t.page = 1
	t.mu.Unlock()
}

// Filtered returns the rows whose name contains the filter,
// case-insensitively.
func (t *Table[T]) Filtered() []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.filtered()
}

func (t *Table[T]) filtered() []T {
	return FilterByName(t.items, t.filter)
}

// FilterByName keeps the items whose DisplayName contains q,
// case-insensitively. An empty q keeps everything.
func FilterByName[T model.Entity](items []T, q string) []T {
	q = strings.ToLower(q)
	out := make([]T, 0, len(items))
	for _, it := range items {
		if q == "" || strings.Contains(strings.ToLower(it.DisplayName()), q) {
			out = append(out, it)
		}
	}
	return out
}

// Paginate returns items [(page-1)*size, page*size). Out-of-range pages
// are empty.
func Paginate[T any](items []T, page, size int) []T {
	if page < 1 || size < 1 {
		return []T{}
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// SetPage moves to page p. Values below 1 clamp to 1.
func (t *Table[T]) SetPage(p int) {
	if p < 1 {
		p = 1
	}
	t.mu.Lock()
	t.page = p
	t.mu.Unlock()
}

// Page returns page p of the filtered rows.
func (t *Table[T]) Page(p int) []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Paginate(t.filtered(), p, t.pageSize)
}

// Current returns the current page of the filtered rows.
func (t *Table[T]) Current() []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Paginate(t.filtered(), t.page, t.pageSize)
}

// Pagination describes the current page.
func (t *Table[T]) Pagination() Pagination {
	t.mu.Lock()
	defer t.mu.Unlock()
	total := len(t.filtered())
	count := (total + t.pageSize - 1) / t.pageSize
	return Pagination{
		PageNo:     t.page,
		PageSize:   t.pageSize,
		PageCount:  count,
		TotalItems: total,
	}
}

// Find returns the full row with id, used to seed the edit dialog.
func (t *Table[T]) Find(id string) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, it := range t.items {
		if it.EntityID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Delete asks for confirmation, deletes id and reloads.
func (t *Table[T]) Delete(ctx context.Context, id string) error {
	if t.remove == nil {
		return ErrUnsupported
	}
	item, ok := t.Find(id)
	if !ok {
		return ErrNotFound
	}
	if t.confirm != nil && !t.confirm(ctx, item) {
		return ErrNotConfirmed
	}
	if err := t.remove(ctx, id); err != nil {
		t.log.Errorf("delete %s failed: %v", id, err)
		return fmt.Errorf("resource: delete %s: %w", id, err)
	}
	return t.Load(ctx)
}

// Toggle flips id's status through the dedicated endpoint and reflects it
// according to the table's ToggleMode. A table that has never loaded
// reflects the toggle by loading.
func (t *Table[T]) Toggle(ctx context.Context, id string) error {
	if t.toggle == nil {
		return ErrUnsupported
	}
	updated, err := t.toggle(ctx, id)
	if err != nil {
		t.log.Errorf("toggle %s failed: %v", id, err)
		return fmt.Errorf("resource: toggle %s: %w", id, err)
	}
	if t.mode == ToggleRefetch || t.patch == nil || !t.Loaded() {
		return t.Load(ctx)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.items {
		if t.items[i].EntityID() == id {
			t.items[i] = t.patch(t.items[i], updated)
			return nil
		}
	}
	return ErrNotFound
}

// Save persists a draft on behalf of a dialog and reloads. Once the
// backend has accepted the write a failed reload is only logged.
func (t *Table[T]) Save(ctx context.Context, id string, p *api.Payload) (string, error) {
	if t.saver == nil {
		return "", ErrUnsupported
	}
	saved, err := t.saver.Save(ctx, id, p)
	if err != nil {
		t.log.Errorf("save %q failed: %v", id, err)
		return "", fmt.Errorf("resource: save: %w", err)
	}
	if err := t.Load(ctx); err != nil {
		t.log.Errorf("reload after save %q: %v", saved, err)
	}
	return saved, nil
}
