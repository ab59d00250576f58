// Package logistics renders deliveries and schedules new ones.
package logistics

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

// Delivery is one delivery as the remote API reports it.
type Delivery struct {
	OrderNumber string    `json:"order_number"`
	Driver      string    `json:"driver"`
	Vehicle     string    `json:"vehicle"`
	Destination string    `json:"destination"`
	Status      string    `json:"status"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

type scheduleDeliveryRequest struct {
	OrderNumber string `json:"order_number"`
	Driver      string `json:"driver"`
	Vehicle     string `json:"vehicle"`
	Destination string `json:"destination"`
	ScheduledOn string `json:"scheduled_on"`
}

// Handler wires HTTP endpoints for the logistics module.
type Handler struct {
	logger    *slog.Logger
	api       *gateway.Client
	templates *view.Engine
	csrf      *shared.CSRFManager
	sessions  *shared.SessionManager
}

// NewHandler constructs logistics handler.
func NewHandler(logger *slog.Logger, api *gateway.Client, templates *view.Engine, csrf *shared.CSRFManager, sessions *shared.SessionManager) *Handler {
	return &Handler{logger: logger, api: api, templates: templates, csrf: csrf, sessions: sessions}
}

// MountRoutes registers logistics routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleDeliveries)
	r.Post("/deliveries", h.handleScheduleDelivery)
}

type deliveryForm struct {
	OrderNumber string
	Driver      string
	Vehicle     string
	Destination string
	ScheduledOn string
}

type deliveriesPageData struct {
	Deliveries []Delivery
	Form       deliveryForm
	Errors     map[string]string
}

func (h *Handler) handleDeliveries(w http.ResponseWriter, r *http.Request) {
	h.renderDeliveries(w, r, http.StatusOK, deliveriesPageData{Errors: map[string]string{}})
}

func (h *Handler) handleScheduleDelivery(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())

	form := deliveryForm{
		OrderNumber: r.PostFormValue("order_number"),
		Driver:      r.PostFormValue("driver"),
		Vehicle:     r.PostFormValue("vehicle"),
		Destination: r.PostFormValue("destination"),
		ScheduledOn: r.PostFormValue("scheduled_on"),
	}
	formErrors := map[string]string{}
	if form.OrderNumber == "" {
		formErrors["OrderNumber"] = "Order number is required"
	}
	if form.Driver == "" {
		formErrors["Driver"] = "Driver is required"
	}
	if form.Vehicle == "" {
		formErrors["Vehicle"] = "Vehicle is required"
	}
	if form.Destination == "" {
		formErrors["Destination"] = "Destination is required"
	}
	if _, err := time.Parse("2006-01-02", form.ScheduledOn); err != nil {
		formErrors["ScheduledOn"] = "Date must be YYYY-MM-DD"
	}

	if len(formErrors) == 0 {
		req := scheduleDeliveryRequest{
			OrderNumber: form.OrderNumber,
			Driver:      form.Driver,
			Vehicle:     form.Vehicle,
			Destination: form.Destination,
			ScheduledOn: form.ScheduledOn,
		}
		err := h.api.PostJSON(r.Context(), sess.Token(), "/logistics/deliveries", req, nil)
		switch {
		case err == nil:
			sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Delivery scheduled"})
			http.Redirect(w, r, "/m/logistics", http.StatusSeeOther)
			return
		case errors.Is(err, httpx.ErrUnauthorized):
			h.sessions.Logout(r.Context(), sess)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		default:
			h.logger.Error("schedule delivery", slog.Any("error", err))
			formErrors["general"] = "Delivery could not be scheduled, try again"
		}
	}

	h.renderDeliveries(w, r, http.StatusBadRequest, deliveriesPageData{Form: form, Errors: formErrors})
}

func (h *Handler) renderDeliveries(w http.ResponseWriter, r *http.Request, status int, data deliveriesPageData) {
	sess := shared.SessionFromContext(r.Context())

	var payload struct {
		Deliveries []Delivery `json:"deliveries"`
	}
	if err := h.api.GetJSON(r.Context(), sess.Token(), "/logistics/deliveries", &payload); err != nil {
		if errors.Is(err, httpx.ErrUnauthorized) {
			h.sessions.Logout(r.Context(), sess)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		h.logger.Error("load deliveries", slog.Any("error", err))
		if data.Errors["general"] == "" {
			data.Errors["general"] = "Deliveries could not be loaded"
		}
	}
	data.Deliveries = payload.Deliveries

	viewData := view.BaseData(r, h.csrf, "Logistics", data)
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := h.templates.Render(w, "pages/logistics.html", viewData); err != nil {
		h.logger.Error("render logistics", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
