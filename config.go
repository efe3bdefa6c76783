package adminpanel

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/eringen/adminpanel/api"
)

// Config holds all configuration for the admin panel.
type Config struct {
	Name    string `yaml:"name"`     // Panel name (default "Admin")
	URL     string `yaml:"url"`      // Canonical URL (default "http://localhost:8080")
	Addr    string `yaml:"addr"`     // Listen address (default ":8080")
	HtmxURL string `yaml:"htmx_url"` // htmx script URL

	BackendURL     string        `yaml:"backend_url"`     // REST API base (default api.DefaultBaseURL)
	BackendToken   string        `yaml:"backend_token"`   // Fallback bearer token for category endpoints
	RequestTimeout time.Duration `yaml:"request_timeout"` // Backend call timeout (default 15s)

	AdminPassword string `yaml:"admin_password"` // Required: admin login password
	SessionSecret string `yaml:"session_secret"` // Required: session encryption secret
	CookieSecure  bool   `yaml:"cookie_secure"`  // Set true for HTTPS

	ActivityEnabled       bool   `yaml:"activity_enabled"`        // Keep the local audit log (default true)
	ActivityDatabasePath  string `yaml:"activity_database_path"`  // SQLite path (default "data/activity.db")
	ActivityRetentionDays int    `yaml:"activity_retention_days"` // default 90

	PageSize             int           `yaml:"page_size"`              // Rows per list page (default 10)
	CacheTTL             time.Duration `yaml:"cache_ttl"`              // Public blog list TTL (default 5min)
	CategoryRefreshDelay time.Duration `yaml:"category_refresh_delay"` // default 100ms
}

// DefaultConfig is the configuration before any file or environment is
// applied.
func DefaultConfig() Config {
	c := Config{ActivityEnabled: true}
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	if c.Name == "" {
		c.Name = "Admin"
	}
	if c.URL == "" {
		c.URL = "http://localhost:8080"
	}
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.HtmxURL == "" {
		c.HtmxURL = "https://unpkg.com/htmx.org@2.0.4"
	}
	if c.BackendURL == "" {
		c.BackendURL = api.DefaultBaseURL
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 15 * time.Second
	}
	if c.ActivityDatabasePath == "" {
		c.ActivityDatabasePath = "data/activity.db"
	}
	if c.ActivityRetentionDays == 0 {
		c.ActivityRetentionDays = 90
	}
	if c.PageSize == 0 {
		c.PageSize = 10
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 5 * time.Minute
	}
	if c.CategoryRefreshDelay == 0 {
		c.CategoryRefreshDelay = 100 * time.Millisecond
	}
}

// LoadConfig builds the configuration from, in increasing precedence:
// defaults, the YAML file at path (if it exists; ${VAR} references are
// expanded), and environment variables. A .env file in the working
// directory is loaded into the environment first.
func LoadConfig(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Config{ActivityEnabled: true}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("adminpanel: read config: %w", err)
		default:
			if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
				return Config{}, fmt.Errorf("adminpanel: parse config %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"SITE_NAME":              &c.Name,
		"SITE_URL":               &c.URL,
		"ADDR":                   &c.Addr,
		"HTMX_URL":               &c.HtmxURL,
		"BACKEND_URL":            &c.BackendURL,
		"BACKEND_TOKEN":          &c.BackendToken,
		"ADMIN_PASSWORD":         &c.AdminPassword,
		"ADMIN_SESSION_SECRET":   &c.SessionSecret,
		"ACTIVITY_DATABASE_PATH": &c.ActivityDatabasePath,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"COOKIE_SECURE":    &c.CookieSecure,
		"ACTIVITY_ENABLED": &c.ActivityEnabled,
	}
	for key, dst := range bools {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("adminpanel: %s: %w", key, err)
			}
			*dst = b
		}
	}

	ints := map[string]*int{
		"PAGE_SIZE":               &c.PageSize,
		"ACTIVITY_RETENTION_DAYS": &c.ActivityRetentionDays,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("adminpanel: %s: %w", key, err)
			}
			*dst = n
		}
	}

	durations := map[string]*time.Duration{
		"REQUEST_TIMEOUT":        &c.RequestTimeout,
		"CACHE_TTL":              &c.CacheTTL,
		"CATEGORY_REFRESH_DELAY": &c.CategoryRefreshDelay,
	}
	for key, dst := range durations {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("adminpanel: %s: %w", key, err)
			}
			*dst = d
		}
	}
	return nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithClient replaces the backend client built from the config.
func WithClient(c *api.Client) Option {
	return func(a *App) {
		a.Client = c
	}
}
