// Package inventory renders raw material and finished goods stock levels.
package inventory

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

// Item is one stock record as the remote API reports it.
type Item struct {
	SKU          string    `json:"sku"`
	Name         string    `json:"name"`
	Warehouse    string    `json:"warehouse"`
	Qty          float64   `json:"qty"`
	Unit         string    `json:"unit"`
	ReorderLevel float64   `json:"reorder_level"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Low reports whether the item has fallen to its reorder level.
func (i Item) Low() bool {
	return i.Qty <= i.ReorderLevel
}

// Handler wires HTTP endpoints for the inventory module.
type Handler struct {
	logger    *slog.Logger
	api       *gateway.Client
	templates *view.Engine
	csrf      *shared.CSRFManager
	sessions  *shared.SessionManager
}

// NewHandler constructs inventory handler.
func NewHandler(logger *slog.Logger, api *gateway.Client, templates *view.Engine, csrf *shared.CSRFManager, sessions *shared.SessionManager) *Handler {
	return &Handler{logger: logger, api: api, templates: templates, csrf: csrf, sessions: sessions}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
}

type listPageData struct {
	Items  []Item
	Errors map[string]string
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	data := listPageData{Errors: map[string]string{}}

	var payload struct {
		Items []Item `json:"items"`
	}
	if err := h.api.GetJSON(r.Context(), sess.Token(), "/inventory/items", &payload); err != nil {
		if errors.Is(err, httpx.ErrUnauthorized) {
			h.sessions.Logout(r.Context(), sess)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		h.logger.Error("load inventory items", slog.Any("error", err))
		data.Errors["general"] = "Stock levels could not be loaded"
	}
	data.Items = payload.Items

	viewData := view.BaseData(r, h.csrf, "Inventory", data)
	if err := h.templates.Render(w, "pages/inventory.html", viewData); err != nil {
		h.logger.Error("render inventory", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
