// Package dashboard renders the landing overview. It aggregates summary
// figures from several remote endpoints in parallel; a partial outage
// degrades the page rather than failing it.
package dashboard

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/gateway"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/platform/httpx"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/shared"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/view"
)

// InventorySummary is the stock overview card.
type InventorySummary struct {
	TotalItems float64 `json:"total_items"`
	LowStock   float64 `json:"low_stock"`
}

// SalesSummary is the revenue overview card.
type SalesSummary struct {
	Currency     string  `json:"currency"`
	MonthRevenue float64 `json:"month_revenue"`
	OpenOrders   float64 `json:"open_orders"`
}

// ProductionSummary is the plant overview card.
type ProductionSummary struct {
	RunsToday  float64 `json:"runs_today"`
	Efficiency float64 `json:"efficiency"`
}

// Handler wires HTTP endpoints for the dashboard module.
type Handler struct {
	logger    *slog.Logger
	api       *gateway.Client
	templates *view.Engine
	csrf      *shared.CSRFManager
	sessions  *shared.SessionManager
}

// NewHandler constructs dashboard handler.
func NewHandler(logger *slog.Logger, api *gateway.Client, templates *view.Engine, csrf *shared.CSRFManager, sessions *shared.SessionManager) *Handler {
	return &Handler{logger: logger, api: api, templates: templates, csrf: csrf, sessions: sessions}
}

// MountRoutes registers dashboard routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleOverview)
}

type overviewPageData struct {
	Inventory  InventorySummary
	Sales      SalesSummary
	Production ProductionSummary
	Errors     map[string]string
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	token := sess.Token()

	data := overviewPageData{Errors: map[string]string{}}
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		return h.api.GetJSON(ctx, token, "/summary/inventory", &data.Inventory)
	})
	g.Go(func() error {
		return h.api.GetJSON(ctx, token, "/summary/sales", &data.Sales)
	})
	g.Go(func() error {
		return h.api.GetJSON(ctx, token, "/summary/production", &data.Production)
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, httpx.ErrUnauthorized) {
			h.sessions.Logout(r.Context(), sess)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		h.logger.Error("load dashboard summaries", slog.Any("error", err))
		data.Errors["general"] = "Some figures could not be loaded"
	}

	viewData := view.BaseData(r, h.csrf, "Dashboard", data)
	if err := h.templates.Render(w, "pages/dashboard.html", viewData); err != nil {
		h.logger.Error("render dashboard", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
