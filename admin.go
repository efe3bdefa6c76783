package adminpanel

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/adminpanel/activity"
	"github.com/eringen/adminpanel/views"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, views.Login(a.site(), false, CsrfToken(c)))
	}
	return a.renderDashboard(c)
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	token := strings.TrimSpace(c.FormValue("token"))
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) != 1 ||
		checkBackendToken(token, time.Now()) != nil {
		a.loginLimiter.Record(ip)
		return Render(c, views.Login(a.site(), true, CsrfToken(c)))
	}
	if err := setAdminSession(c, token); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) renderDashboard(c echo.Context) error {
	ctx := c.Request().Context()
	v := views.DashboardView{
		Site:   a.site(),
		Counts: a.entityCounts(c),
		CSRF:   CsrfToken(c),
	}
	if a.Activity != nil {
		vm, err := activity.NewHandler(a.Activity).View(ctx, c.QueryParam("period"))
		if err != nil {
			c.Logger().Errorf("dashboard activity: %v", err)
		}
		v.Activity = &vm
	}
	return Render(c, views.Dashboard(v))
}

// entityCounts fetches every collection concurrently. A failed fetch shows
// as n/a and does not fail the page.
func (a *App) entityCounts(c echo.Context) []views.Count {
	ctx := c.Request().Context()
	cats := a.Client.Categories(a.requestAuth(c))
	fetchers := []struct {
		label, href string
		count       func(ctx context.Context) (int, error)
	}{
		{"Blogs", "/admin/blogs/", countOf(a.Client.Blogs().List)},
		{"Key Features", "/admin/key-features/", countOf(a.Client.KeyFeatures().List)},
		{"Types", "/admin/types/", countOf(a.Client.Types().List)},
		{"Categories", "/admin/categories/", countOf(cats.List)},
	}

	counts := make([]views.Count, len(fetchers))
	var wg sync.WaitGroup
	for i, f := range fetchers {
		counts[i] = views.Count{Label: f.label, Href: f.href}
		wg.Add(1)
		go func(i int, count func(context.Context) (int, error)) {
			defer wg.Done()
			n, err := count(ctx)
			if err != nil {
				c.Logger().Errorf("count %s: %v", counts[i].Label, err)
				counts[i].Err = true
				return
			}
			counts[i].Value = n
		}(i, f.count)
	}
	wg.Wait()
	return counts
}

func countOf[T any](list func(ctx context.Context) ([]T, error)) func(context.Context) (int, error) {
	return func(ctx context.Context) (int, error) {
		items, err := list(ctx)
		return len(items), err
	}
}
