package activity

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/adminpanel/views"
)

// Periods lists the accepted values of the period query parameter.
var Periods = []string{"today", "week", "month", "year"}

// Handler serves the activity summary.
type Handler struct {
	store *Store
	now   func() time.Time
}

// NewHandler creates a handler reading from store.
func NewHandler(store *Store) *Handler {
	return &Handler{store: store, now: time.Now}
}

// SummaryResponse is the JSON response of the summary endpoint.
type SummaryResponse struct {
	Summary    *Summary `json:"summary"`
	PeriodDays int      `json:"period_days"`
}

func (h *Handler) summary(ctx context.Context, p string) (*Summary, string, int, error) {
	period, days := parsePeriod(p)
	from, to := calcTimeRange(h.now().UTC(), days)
	sum, err := h.store.Summary(ctx, from, to)
	return sum, period, days, err
}

// View summarizes period for the activity fragment.
func (h *Handler) View(ctx context.Context, period string) (views.ActivityView, error) {
	sum, period, _, err := h.summary(ctx, period)
	if err != nil {
		return views.ActivityView{Period: period, Periods: Periods, Error: "Error loading activity"}, err
	}
	return ViewModel(sum, period), nil
}

// GetSummary returns the activity summary as JSON.
func (h *Handler) GetSummary(c echo.Context) error {
	sum, _, days, err := h.summary(c.Request().Context(), c.QueryParam("period"))
	if err != nil {
		c.Logger().Errorf("Failed to get activity summary: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	return c.JSON(http.StatusOK, SummaryResponse{Summary: sum, PeriodDays: days})
}

// GetFragment returns the activity summary as an HTML fragment for htmx.
func (h *Handler) GetFragment(c echo.Context) error {
	vm, err := h.View(c.Request().Context(), c.QueryParam("period"))
	if err != nil {
		c.Logger().Errorf("Failed to get activity fragment: %v", err)
		c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
		c.Response().WriteHeader(http.StatusInternalServerError)
		return views.ActivityFragment(vm).Render(c.Request().Context(), c.Response())
	}
	return views.ActivityFragment(vm).Render(c.Request().Context(), c.Response())
}

// ViewModel converts a Summary for the activity fragment.
func ViewModel(sum *Summary, period string) views.ActivityView {
	vm := views.ActivityView{
		Period:  period,
		Periods: Periods,
		Total:   sum.Total,
	}
	vm.ByKind = toCounts(sum.ByKind)
	vm.ByAction = toCounts(sum.ByAction)
	vm.Daily = toCounts(sum.Daily)
	vm.Latest = make([]views.ActivityEntry, len(sum.Latest))
	for i, e := range sum.Latest {
		vm.Latest[i] = views.ActivityEntry{
			Kind:   string(e.Kind),
			Action: string(e.Action),
			Name:   e.Name,
			At:     e.At.Format("2006-01-02 15:04"),
		}
	}
	return vm
}

func toCounts(stats []CountStat) []views.Count {
	out := make([]views.Count, len(stats))
	for i, s := range stats {
		out[i] = views.Count{Label: s.Name, Value: s.Count}
	}
	return out
}

// RegisterRoutes registers the activity routes behind authMiddleware.
func (h *Handler) RegisterRoutes(e *echo.Echo, authMiddleware echo.MiddlewareFunc) {
	g := e.Group("/admin/activity")
	g.Use(authMiddleware)
	g.GET("/", h.GetFragment)
	g.GET("/api/summary", h.GetSummary)
}
