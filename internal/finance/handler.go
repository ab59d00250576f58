// Package finance renders invoices and handles invoice approval.
package finance

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

// Invoice is one invoice as the remote API reports it.
type Invoice struct {
	ID       string    `json:"id"`
	Number   string    `json:"number"`
	Customer string    `json:"customer"`
	Currency string    `json:"currency"`
	Amount   float64   `json:"amount"`
	Status   string    `json:"status"`
	IssuedAt time.Time `json:"issued_at"`
}

// Handler wires HTTP endpoints for the finance module.
type Handler struct {
	logger    *slog.Logger
	api       *gateway.Client
	templates *view.Engine
	csrf      *shared.CSRFManager
	sessions  *shared.SessionManager
}

// NewHandler constructs finance handler.
func NewHandler(logger *slog.Logger, api *gateway.Client, templates *view.Engine, csrf *shared.CSRFManager, sessions *shared.SessionManager) *Handler {
	return &Handler{logger: logger, api: api, templates: templates, csrf: csrf, sessions: sessions}
}

// MountRoutes registers finance routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleInvoices)
	r.Post("/invoices/{id}/approve", h.handleApprove)
}

type invoicesPageData struct {
	Invoices []Invoice
	Errors   map[string]string
}

func (h *Handler) handleInvoices(w http.ResponseWriter, r *http.Request) {
	h.renderInvoices(w, r, http.StatusOK, invoicesPageData{Errors: map[string]string{}})
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	id := chi.URLParam(r, "id")

	err := h.api.PostJSON(r.Context(), sess.Token(), "/finance/invoices/"+id+"/approve", nil, nil)
	switch {
	case err == nil:
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Invoice approved"})
		http.Redirect(w, r, "/m/finance", http.StatusSeeOther)
		return
	case errors.Is(err, httpx.ErrUnauthorized):
		h.sessions.Logout(r.Context(), sess)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	case errors.Is(err, httpx.ErrNotFound):
		h.renderInvoices(w, r, http.StatusNotFound, invoicesPageData{Errors: map[string]string{"general": "Invoice not found"}})
		return
	default:
		h.logger.Error("approve invoice", slog.String("invoice", id), slog.Any("error", err))
		h.renderInvoices(w, r, http.StatusBadGateway, invoicesPageData{Errors: map[string]string{"general": "Invoice could not be approved, try again"}})
	}
}

func (h *Handler) renderInvoices(w http.ResponseWriter, r *http.Request, status int, data invoicesPageData) {
	sess := shared.SessionFromContext(r.Context())

	var payload struct {
		Invoices []Invoice `json:"invoices"`
	}
	if err := h.api.GetJSON(r.Context(), sess.Token(), "/finance/invoices", &payload); err != nil {
		if errors.Is(err, httpx.ErrUnauthorized) {
			h.sessions.Logout(r.Context(), sess)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		h.logger.Error("load invoices", slog.Any("error", err))
		if data.Errors["general"] == "" {
			data.Errors["general"] = "Invoices could not be loaded"
		}
	}
	data.Invoices = payload.Invoices

	viewData := view.BaseData(r, h.csrf, "Finance", data)
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := h.templates.Render(w, "pages/finance.html", viewData); err != nil {
		h.logger.Error("render finance", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
