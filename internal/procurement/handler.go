// Package procurement renders purchase orders for raw materials.
package procurement

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/gateway"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/platform/httpx"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/shared"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/view"
)

// Order is one purchase order as the remote API reports it.
type Order struct {
	Number     string    `json:"number"`
	Supplier   string    `json:"supplier"`
	Currency   string    `json:"currency"`
	Total      float64   `json:"total"`
	Status     string    `json:"status"`
	ExpectedAt time.Time `json:"expected_at"`
}

// Handler wires HTTP endpoints for the procurement module.
type Handler struct {
	logger    *slog.Logger
	api       *gateway.Client
	templates *view.Engine
	csrf      *shared.CSRFManager
	sessions  *shared.SessionManager
}

// NewHandler constructs procurement handler.
func NewHandler(logger *slog.Logger, api *gateway.Client, templates *view.Engine, csrf *shared.CSRFManager, sessions *shared.SessionManager) *Handler {
	return &Handler{logger: logger, api: api, templates: templates, csrf: csrf, sessions: sessions}
}

// MountRoutes registers procurement routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleOrders)
}

type ordersPageData struct {
	Orders []Order
	Errors map[string]string
}

func (h *Handler) handleOrders(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	data := ordersPageData{Errors: map[string]string{}}

	var payload struct {
		Orders []Order `json:"orders"`
	}
	if err := h.api.GetJSON(r.Context(), sess.Token(), "/procurement/orders", &payload); err != nil {
		if errors.Is(err, httpx.ErrUnauthorized) {
			h.sessions.Logout(r.Context(), sess)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		h.logger.Error("load purchase orders", slog.Any("error", err))
		data.Errors["general"] = "Purchase orders could not be loaded"
	}
	data.Orders = payload.Orders

	viewData := view.BaseData(r, h.csrf, "Procurement", data)
	if err := h.templates.Render(w, "pages/procurement.html", viewData); err != nil {
		h.logger.Error("render procurement", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
