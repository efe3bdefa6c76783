package adminpanel

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/eringen/adminpanel/activity"
)

// fakeBackend serves canned responses for the content API and records
// every call as "METHOD /path".
type fakeBackend struct {
	mu    sync.Mutex
	calls []string
	auth  map[string]string

	blogs string
	kfs   string
	types string
	cats  string
	// blogListDown makes GET /blogget fail with a 500.
	blogListDown bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		auth:  make(map[string]string),
		blogs: `[{"_id":"b1","name":"Hello Go","intro":"First post","category":{"_id":"c1","name":"Tech"},"status":"active","tags":["go"]}]`,
		kfs:   `[{"_id":"k1","name":"Fast","status":false},{"_id":"k2","name":"Safe","status":true}]`,
		types: `[{"_id":"t1","name":"Sedan","department":"Cars","status":"active","showHome":true}]`,
		cats:  `[{"_id":"c1","name":"Tech"},{"_id":"c2","name":"Life"}]`,
	}
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p := strings.TrimPrefix(r.URL.Path, "/v1/api")
	f.mu.Lock()
	f.calls = append(f.calls, r.Method+" "+p)
	f.auth[p] = r.Header.Get("Authorization")
	listDown := f.blogListDown
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && p == "/blogget" && listDown:
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"success":false,"message":"backend 500"}`)
	case r.Method == http.MethodGet && p == "/blogget":
		io.WriteString(w, f.blogs)
	case r.Method == http.MethodGet && strings.HasPrefix(p, "/blogget-active/"):
		io.WriteString(w, f.blogs)
	case r.Method == http.MethodPost && p == "/blogpost":
		io.WriteString(w, `{"success":true,"data":{"_id":"b9","name":"Created"}}`)
	case r.Method == http.MethodGet && p == "/key_feature_get":
		io.WriteString(w, f.kfs)
	case r.Method == http.MethodPatch && p == "/key_feature_toggle/k1":
		io.WriteString(w, `{"success":true,"data":{"_id":"k1","name":"Fast","status":true}}`)
	case r.Method == http.MethodGet && p == "/types":
		io.WriteString(w, f.types)
	case r.Method == http.MethodGet && p == "/categorybloget":
		io.WriteString(w, f.cats)
	case r.Method == http.MethodPost && p == "/categoryblog/post":
		io.WriteString(w, `{"success":true,"data":{"_id":"c9","name":"News"}}`)
	case r.Method == http.MethodDelete && p == "/catogryblog/delete":
		io.WriteString(w, `{"success":true}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"success":false,"message":"not found"}`)
	}
}

func (f *fakeBackend) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeBackend) authOf(path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.auth[path]
}

type testPanel struct {
	t       *testing.T
	app     *App
	srv     *httptest.Server
	client  *http.Client
	backend *fakeBackend
}

func newTestPanel(t *testing.T) *testPanel {
	t.Helper()
	fb := newFakeBackend()
	backend := httptest.NewServer(fb)
	t.Cleanup(backend.Close)

	cfg := Config{
		Name:                 "Admin",
		URL:                  "http://example.test",
		BackendURL:           backend.URL + "/v1/api",
		BackendToken:         "cfg-token",
		AdminPassword:        "secret",
		SessionSecret:        "0123456789abcdef0123456789abcdef",
		ActivityEnabled:      true,
		ActivityDatabasePath: filepath.Join(t.TempDir(), "activity.db"),
		PageSize:             5,
		CategoryRefreshDelay: time.Millisecond,
	}
	app := New(cfg)
	if err := app.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { app.Close() })

	srv := httptest.NewServer(app.Echo)
	t.Cleanup(srv.Close)

	jar, _ := cookiejar.New(nil)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &testPanel{t: t, app: app, srv: srv, client: client, backend: fb}
}

func (p *testPanel) csrf() string {
	u, _ := url.Parse(p.srv.URL)
	for _, c := range p.client.Jar.Cookies(u) {
		if c.Name == "_csrf" {
			return c.Value
		}
	}
	return ""
}

func (p *testPanel) do(method, path string, form url.Values, hx bool) (*http.Response, string) {
	p.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, p.srv.URL+path, body)
	if err != nil {
		p.t.Fatal(err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if hx {
		req.Header.Set("HX-Request", "true")
	}
	if method != http.MethodGet {
		req.Header.Set("X-CSRF-Token", p.csrf())
	}
	resp, err := p.client.Do(req)
	if err != nil {
		p.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, string(data)
}

func (p *testPanel) login(token string) {
	p.t.Helper()
	p.do(http.MethodGet, "/admin/", nil, false)
	resp, body := p.do(http.MethodPost, "/admin/login/", url.Values{"password": {"secret"}, "token": {token}}, false)
	if resp.StatusCode != http.StatusSeeOther {
		p.t.Fatalf("login status = %d: %s", resp.StatusCode, body)
	}
}

func (p *testPanel) latestActivity() []activity.Entry {
	p.t.Helper()
	entries, err := p.app.Activity.Latest(context.Background(), 10)
	if err != nil {
		p.t.Fatal(err)
	}
	return entries
}

func TestAdminRequiresLogin(t *testing.T) {
	p := newTestPanel(t)

	resp, _ := p.do(http.MethodGet, "/admin/blogs/", nil, false)
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/admin/" {
		t.Fatalf("unauthenticated list = %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}

	resp, _ = p.do(http.MethodGet, "/admin/blogs/", nil, true)
	if resp.Header.Get("HX-Redirect") != "/admin/" {
		t.Errorf("htmx request got HX-Redirect %q", resp.Header.Get("HX-Redirect"))
	}

	p.do(http.MethodGet, "/admin/", nil, false)
	_, body := p.do(http.MethodPost, "/admin/login/", url.Values{"password": {"wrong"}}, false)
	if !strings.Contains(body, "Invalid password") {
		t.Errorf("wrong password page = %s", body)
	}

	p.login("")
	resp, body = p.do(http.MethodGet, "/admin/", nil, false)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Dashboard") {
		t.Fatalf("dashboard = %d", resp.StatusCode)
	}
	if !strings.Contains(body, "/admin/key-features/") {
		t.Error("dashboard lacks entity counts")
	}
}

func TestLoginIsRateLimited(t *testing.T) {
	p := newTestPanel(t)
	p.do(http.MethodGet, "/admin/", nil, false)
	for i := 0; i < 5; i++ {
		p.do(http.MethodPost, "/admin/login/", url.Values{"password": {"wrong"}}, false)
	}
	resp, _ := p.do(http.MethodPost, "/admin/login/", url.Values{"password": {"secret"}}, false)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", resp.StatusCode)
	}
}

func TestBlogListFiltersAndPages(t *testing.T) {
	p := newTestPanel(t)
	p.backend.blogs = `[
		{"_id":"b1","name":"Go 1","status":"active"},
		{"_id":"b2","name":"Go 2","status":"active"},
		{"_id":"b3","name":"Go 3","status":"active"},
		{"_id":"b4","name":"Go 4","status":"active"},
		{"_id":"b5","name":"Go 5","status":"active"},
		{"_id":"b6","name":"Go 6","status":"inactive"},
		{"_id":"b7","name":"Rust","status":"active"}]`
	p.login("")

	resp, body := p.do(http.MethodGet, "/admin/blogs/?q=go&page=2", nil, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if strings.Contains(body, "<html") {
		t.Error("htmx request got the full page")
	}
	if !strings.Contains(body, "Go 6") || strings.Contains(body, "Go 5") || strings.Contains(body, "Rust") {
		t.Errorf("page 2 rows wrong: %s", body)
	}
	if !strings.Contains(body, "Page 2 of 2") {
		t.Error("pager missing")
	}
}

func TestKeyFeatureTogglePatchesRow(t *testing.T) {
	p := newTestPanel(t)
	p.login("")

	resp, body := p.do(http.MethodPost, "/admin/key-features/k1/toggle/?q=&page=1", url.Values{}, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	if got := p.backend.count("PATCH /key_feature_toggle/k1"); got != 1 {
		t.Errorf("toggle calls = %d", got)
	}
	if got := p.backend.count("GET /key_feature_get"); got != 1 {
		t.Errorf("list fetched %d times, want 1", got)
	}
	entries := p.latestActivity()
	if len(entries) != 1 || entries[0].Action != activity.ActionToggle || entries[0].Name != "Fast" {
		t.Errorf("activity = %+v", entries)
	}
}

func TestBlogSaveValidatesThenCreates(t *testing.T) {
	p := newTestPanel(t)
	p.login("")

	form := url.Values{
		"id":        {""},
		"name":      {""},
		"category":  {"c1"},
		"status":    {"active"},
		"sortOrder": {"2"},
		"tags":      {`["go"]`},
	}
	resp, body := p.do(http.MethodPost, "/admin/blogs/save/", form, true)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Name is required") {
		t.Fatalf("invalid save = %d: %s", resp.StatusCode, body)
	}
	if !strings.Contains(body, `value="c1" selected`) {
		t.Error("category select lost the chosen category")
	}
	if got := p.backend.count("POST /blogpost"); got != 0 {
		t.Fatalf("invalid draft reached the backend %d times", got)
	}

	// Populate the public cache so the save has something to invalidate.
	p.do(http.MethodGet, "/blogs/category/c1/", nil, false)

	form.Set("name", "Hello")
	resp, body = p.do(http.MethodPost, "/admin/blogs/save/", form, true)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("HX-Trigger") != "saved" {
		t.Fatalf("save = %d %q: %s", resp.StatusCode, resp.Header.Get("HX-Trigger"), body)
	}
	if got := p.backend.count("POST /blogpost"); got != 1 {
		t.Errorf("create calls = %d", got)
	}
	entries := p.latestActivity()
	if len(entries) != 1 || entries[0].Action != activity.ActionCreate || entries[0].Name != "Hello" {
		t.Errorf("activity = %+v", entries)
	}
	if len(entries) == 1 && entries[0].EntityID != "b9" {
		t.Errorf("created entity id = %q, want b9", entries[0].EntityID)
	}

	p.do(http.MethodGet, "/blogs/category/c1/", nil, false)
	if got := p.backend.count("GET /blogget-active/c1"); got != 2 {
		t.Errorf("public list fetched %d times, want 2 after invalidation", got)
	}
}

func TestBlogSaveSurvivesFailedReload(t *testing.T) {
	p := newTestPanel(t)
	p.login("")
	p.backend.mu.Lock()
	p.backend.blogListDown = true
	p.backend.mu.Unlock()

	form := url.Values{"id": {""}, "name": {"Hello"}, "category": {"c1"}, "status": {"active"}}
	resp, body := p.do(http.MethodPost, "/admin/blogs/save/", form, true)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("HX-Trigger") != "saved" {
		t.Fatalf("save = %d %q: %s", resp.StatusCode, resp.Header.Get("HX-Trigger"), body)
	}
	if got := p.backend.count("POST /blogpost"); got != 1 {
		t.Errorf("create calls = %d", got)
	}
	entries := p.latestActivity()
	if len(entries) != 1 || entries[0].EntityID != "b9" {
		t.Errorf("activity = %+v", entries)
	}
}

func TestDialogTagOps(t *testing.T) {
	p := newTestPanel(t)
	p.login("")

	form := url.Values{"id": {"b1"}, "name": {"Hello Go"}, "tags": {`["go"]`}, "new_tag": {"  web "}}
	_, body := p.do(http.MethodPost, "/admin/blogs/dialog/?op=add_tag", form, true)
	if !strings.Contains(body, "op=remove_tag&tag=web") || !strings.Contains(body, "Edit Blog") {
		t.Errorf("add_tag dialog = %s", body)
	}

	form = url.Values{"tags": {`["go","web"]`}}
	_, body = p.do(http.MethodPost, "/admin/blogs/dialog/?op=remove_tag&tag=go", form, true)
	if strings.Contains(body, "tag=go") || !strings.Contains(body, "Add Blog") {
		t.Errorf("remove_tag dialog = %s", body)
	}
}

func TestCategoryHandlers(t *testing.T) {
	p := newTestPanel(t)
	p.login("")

	_, body := p.do(http.MethodPost, "/admin/categories/", url.Values{"name": {"  "}}, true)
	if !strings.Contains(body, "Name is required") {
		t.Errorf("blank create = %s", body)
	}
	if got := p.backend.count("POST /categoryblog/post"); got != 0 {
		t.Fatalf("blank name reached the backend")
	}

	_, body = p.do(http.MethodPost, "/admin/categories/", url.Values{"name": {"News"}}, true)
	if !strings.Contains(body, "News") || !strings.Contains(body, "created") {
		t.Errorf("create = %s", body)
	}
	if got := p.backend.authOf("/categoryblog/post"); got != "Bearer cfg-token" {
		t.Errorf("Authorization = %q", got)
	}

	_, body = p.do(http.MethodPost, "/admin/categories/bulk-delete/", url.Values{"ids": {"c1", "c2"}}, true)
	if strings.Contains(body, "Tech") || !strings.Contains(body, "deleted") {
		t.Errorf("bulk delete = %s", body)
	}
	if n := len(p.latestActivity()); n != 3 {
		t.Errorf("activity entries = %d, want 3", n)
	}
}

func TestSessionTokenOverridesConfig(t *testing.T) {
	p := newTestPanel(t)
	p.login("session-token")

	p.do(http.MethodGet, "/admin/categories/", nil, false)
	if got := p.backend.authOf("/categorybloget"); got != "Bearer session-token" {
		t.Errorf("Authorization = %q", got)
	}
}

func TestPublicCategoryPages(t *testing.T) {
	p := newTestPanel(t)

	resp, body := p.do(http.MethodGet, "/blogs/category/c1/", nil, false)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Hello Go") || !strings.Contains(body, "<h1>Tech</h1>") {
		t.Fatalf("category page = %d: %s", resp.StatusCode, body)
	}

	resp, body = p.do(http.MethodGet, "/blogs/category/c1/feed.xml", nil, false)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `<rss version="2.0">`) || !strings.Contains(body, "<title>Tech | Admin</title>") {
		t.Errorf("feed = %d: %s", resp.StatusCode, body)
	}
	if got := p.backend.count("GET /blogget-active/c1"); got != 1 {
		t.Errorf("active list fetched %d times, want 1", got)
	}

	_, body = p.do(http.MethodGet, "/sitemap.xml", nil, false)
	if !strings.Contains(body, "http://example.test/blogs/category/c2/") {
		t.Errorf("sitemap = %s", body)
	}
}
