// Package sales renders customer orders and creates new ones.
package sales

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/gateway"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/platform/httpx"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/shared"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/view"
)

// Order is one sales order as the remote API reports it.
type Order struct {
	Number    string    `json:"number"`
	Customer  string    `json:"customer"`
	Currency  string    `json:"currency"`
	Total     float64   `json:"total"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type createOrderRequest struct {
	Customer string  `json:"customer"`
	Product  string  `json:"product"`
	Qty      float64 `json:"qty"`
}

// Handler wires HTTP endpoints for the sales module.
type Handler struct {
	logger    *slog.Logger
	api       *gateway.Client
	templates *view.Engine
	csrf      *shared.CSRFManager
	sessions  *shared.SessionManager
}

// NewHandler constructs sales handler.
func NewHandler(logger *slog.Logger, api *gateway.Client, templates *view.Engine, csrf *shared.CSRFManager, sessions *shared.SessionManager) *Handler {
	return &Handler{logger: logger, api: api, templates: templates, csrf: csrf, sessions: sessions}
}

// MountRoutes registers sales routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleOrders)
	r.Post("/orders", h.handleCreateOrder)
}

type orderForm struct {
	Customer string
	Product  string
	Qty      string
}

type ordersPageData struct {
	Orders []Order
	Form   orderForm
	Errors map[string]string
}

func (h *Handler) handleOrders(w http.ResponseWriter, r *http.Request) {
	h.renderOrders(w, r, http.StatusOK, ordersPageData{Errors: map[string]string{}})
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())

	form := orderForm{
		Customer: r.PostFormValue("customer"),
		Product:  r.PostFormValue("product"),
		Qty:      r.PostFormValue("qty"),
	}
	formErrors := map[string]string{}
	if form.Customer == "" {
		formErrors["Customer"] = "Customer is required"
	}
	if form.Product == "" {
		formErrors["Product"] = "Product is required"
	}
	qty, err := strconv.ParseFloat(form.Qty, 64)
	if err != nil || qty <= 0 {
		formErrors["Qty"] = "Quantity must be a positive number"
	}

	if len(formErrors) == 0 {
		req := createOrderRequest{Customer: form.Customer, Product: form.Product, Qty: qty}
		err := h.api.PostJSON(r.Context(), sess.Token(), "/sales/orders", req, nil)
		switch {
		case err == nil:
			sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Sales order created"})
			http.Redirect(w, r, "/m/sales", http.StatusSeeOther)
			return
		case errors.Is(err, httpx.ErrUnauthorized):
			h.sessions.Logout(r.Context(), sess)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		default:
			h.logger.Error("create sales order", slog.Any("error", err))
			formErrors["general"] = "Order could not be created, try again"
		}
	}

	h.renderOrders(w, r, http.StatusBadRequest, ordersPageData{Form: form, Errors: formErrors})
}

func (h *Handler) renderOrders(w http.ResponseWriter, r *http.Request, status int, data ordersPageData) {
	sess := shared.SessionFromContext(r.Context())

	var payload struct {
		Orders []Order `json:"orders"`
	}
	if err := h.api.GetJSON(r.Context(), sess.Token(), "/sales/orders", &payload); err != nil {
		if errors.Is(err, httpx.ErrUnauthorized) {
			h.sessions.Logout(r.Context(), sess)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		h.logger.Error("load sales orders", slog.Any("error", err))
		if data.Errors["general"] == "" {
			data.Errors["general"] = "Sales orders could not be loaded"
		}
	}
	data.Orders = payload.Orders

	viewData := view.BaseData(r, h.csrf, "Sales", data)
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := h.templates.Render(w, "pages/sales.html", viewData); err != nil {
		h.logger.Error("render sales", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
