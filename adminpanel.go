// Package adminpanel is a server-rendered admin panel for a content REST
// backend. It lists, filters, pages, creates, edits, toggles and deletes
// blogs, key features, types and blog categories, and serves a small public
// blog-by-category view with RSS and a sitemap.
package adminpanel

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/adminpanel/activity"
	"github.com/eringen/adminpanel/api"
	"github.com/eringen/adminpanel/views"
)

// App is the central admin panel application. It wires together the
// backend client, caches, handlers and middleware.
type App struct {
	Config   Config
	Echo     *echo.Echo
	Client   *api.Client
	Cache    *BlogCache
	Activity *activity.Store

	loginLimiter *RateLimiter
	customRoutes []func(*App)
	stopCleanup  func()
}

// New creates an App with the given configuration.
func New(cfg Config, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.Client == nil {
		a.Client = api.New(cfg.BackendURL, api.WithTimeout(cfg.RequestTimeout))
	}
	return a
}

// Init validates the configuration and sets up storage, middleware and
// routes. Start calls it; tests call it directly.
func (a *App) Init() error {
	if a.Config.AdminPassword == "" {
		return fmt.Errorf("adminpanel: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("adminpanel: SessionSecret is required")
	}

	a.Cache = NewBlogCache(a.Client.Blogs(), a.Client.Categories(api.Auth{Token: a.Config.BackendToken}), a.Config.CacheTTL)
	a.loginLimiter = NewRateLimiter(5, time.Minute)

	if a.Config.ActivityEnabled {
		store, err := activity.NewStore(a.Config.ActivityDatabasePath)
		if err != nil {
			return fmt.Errorf("adminpanel: init activity: %w", err)
		}
		a.Activity = store
		if err := activity.InitSalt(store); err != nil {
			return fmt.Errorf("adminpanel: init activity salt: %w", err)
		}
		a.stopCleanup = store.StartCleanupScheduler(a.Config.ActivityRetentionDays, 24*time.Hour)
	}

	a.Echo.Validator = newValidator()
	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start initializes the app and serves until the server stops.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	defer a.Close()

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	assets, _ := fs.Sub(EmbeddedAssets, "embedded")
	e.StaticFS("/public", assets)
	e.GET("/robots.txt", a.handleRobots)

	// Public routes
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/blogs/category/:id/", a.handleCategoryBlogs)
	e.GET("/blogs/category/:id/feed.xml", a.handleCategoryFeed)
	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	})

	// Admin routes
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)

	admin := e.Group("/admin", a.requireAdmin)
	registerKind(admin, a.blogKind())
	registerKind(admin, a.keyFeatureKind())
	registerKind(admin, a.typeKind())

	admin.GET("/categories/", a.handleCategories)
	admin.POST("/categories/", a.handleCategoryCreate)
	admin.GET("/categories/options/", a.handleCategoryOptions)
	admin.POST("/categories/bulk-delete/", a.handleCategoryBulkDelete)
	admin.POST("/categories/:id/", a.handleCategoryUpdate)
	admin.DELETE("/categories/:id/", a.handleCategoryDelete)

	if a.Activity != nil {
		activity.NewHandler(a.Activity).RegisterRoutes(e, a.requireAdmin)
	}
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.stopCleanup != nil {
		a.stopCleanup()
		a.stopCleanup = nil
	}
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.Activity != nil {
		a.Activity.Close()
	}
	return nil
}

func (a *App) site() views.Site {
	return views.Site{Name: a.Config.Name, URL: a.Config.URL, HtmxURL: a.Config.HtmxURL}
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("adminpanel: required environment variable %s is not set", key)
	}
	return v
}
