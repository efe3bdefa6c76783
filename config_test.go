package adminpanel

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigLayersFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "adminpanel.yaml")
	yaml := `name: "Shop Admin"
backend_url: "${TEST_BACKEND}"
page_size: 25
cache_ttl: 2m
admin_password: from-file
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TEST_BACKEND", "http://backend.test/v1/api")
	t.Setenv("ADMIN_PASSWORD", "from-env")
	t.Setenv("ACTIVITY_ENABLED", "false")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Name != "Shop Admin" || cfg.BackendURL != "http://backend.test/v1/api" {
		t.Errorf("file values = %q %q", cfg.Name, cfg.BackendURL)
	}
	if cfg.PageSize != 25 || cfg.CacheTTL != 2*time.Minute {
		t.Errorf("page size %d, ttl %s", cfg.PageSize, cfg.CacheTTL)
	}
	if cfg.AdminPassword != "from-env" {
		t.Errorf("env did not override the file: %q", cfg.AdminPassword)
	}
	if cfg.ActivityEnabled {
		t.Error("ACTIVITY_ENABLED=false ignored")
	}
	if cfg.RequestTimeout != 15*time.Second || cfg.CategoryRefreshDelay != 100*time.Millisecond {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	def := DefaultConfig()
	if cfg.Addr != def.Addr || cfg.PageSize != def.PageSize || !cfg.ActivityEnabled {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadConfigRejectsBadEnv(t *testing.T) {
	t.Setenv("PAGE_SIZE", "many")
	if _, err := LoadConfig(""); err == nil {
		t.Fatal("expected an error for PAGE_SIZE=many")
	}
}

func TestInitRequiresSecrets(t *testing.T) {
	a := New(Config{AdminPassword: "x"})
	if err := a.Init(); err == nil {
		t.Fatal("Init accepted a config without SessionSecret")
	}
}
