package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

func listBackend(t *testing.T) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/blogget":
			io.WriteString(w, `[
				{"_id":"b1","name":"Go tips","category":{"_id":"c1","name":"Tech"},"status":"active"},
				{"_id":"b2","name":"Rust","category":{"_id":"c1","name":"Tech"},"status":"active"},
				{"_id":"b3","name":"Gophers","category":{"_id":"c2","name":"Life"},"status":"inactive"}
			]`)
		case "/categorybloget":
			io.WriteString(w, `[{"_id":"c1","name":"Tech"},{"_id":"c2","name":"Life"}]`)
		default:
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"success":false,"message":"not found"}`)
		}
	}))
	t.Cleanup(srv.Close)

	t.Setenv("ADMINPANEL_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("BACKEND_URL", srv.URL)
}

func TestRunListFiltersAndPagesBlogs(t *testing.T) {
	listBackend(t)

	var out bytes.Buffer
	if err := runList([]string{"blogs", "-q", "go", "-size", "1", "-page", "2"}, &out); err != nil {
		t.Fatalf("runList: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "b3") || !strings.Contains(got, "Gophers") || !strings.Contains(got, "Life") {
		t.Errorf("output missing second match:\n%s", got)
	}
	if strings.Contains(got, "Go tips") || strings.Contains(got, "Rust") {
		t.Errorf("output has rows from other pages:\n%s", got)
	}
	if !strings.Contains(got, "page 2 of 2, 2 items") {
		t.Errorf("output missing pager line:\n%s", got)
	}
}

func TestRunListCategories(t *testing.T) {
	listBackend(t)

	var out bytes.Buffer
	if err := runList([]string{"categories", "-q", "TE"}, &out); err != nil {
		t.Fatalf("runList: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "c1") || !strings.Contains(got, "Tech") || strings.Contains(got, "Life") {
		t.Errorf("categories output:\n%s", got)
	}
}

func TestRunListRejectsBadArguments(t *testing.T) {
	listBackend(t)

	if err := runList(nil, io.Discard); err == nil || !strings.Contains(err.Error(), "usage") {
		t.Errorf("no args err = %v", err)
	}
	if err := runList([]string{"posts"}, io.Discard); err == nil || !strings.Contains(err.Error(), "unknown kind") {
		t.Errorf("unknown kind err = %v", err)
	}
}
