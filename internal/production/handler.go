// Package production renders bottling line runs.
package production

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

// Run is one production run as the remote API reports it.
type Run struct {
	ID         string    `json:"id"`
	Line       string    `json:"line"`
	Product    string    `json:"product"`
	PlannedQty float64   `json:"planned_qty"`
	ActualQty  float64   `json:"actual_qty"`
	Status     string    `json:"status"`
	StartedAt  time.Time `json:"started_at"`
}

// Handler wires HTTP endpoints for the production module.
type Handler struct {
	logger    *slog.Logger
	api       *gateway.Client
	templates *view.Engine
	csrf      *shared.CSRFManager
	sessions  *shared.SessionManager
}

// NewHandler constructs production handler.
func NewHandler(logger *slog.Logger, api *gateway.Client, templates *view.Engine, csrf *shared.CSRFManager, sessions *shared.SessionManager) *Handler {
	return &Handler{logger: logger, api: api, templates: templates, csrf: csrf, sessions: sessions}
}

// MountRoutes registers production routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleRuns)
}

type runsPageData struct {
	Runs   []Run
	Errors map[string]string
}

func (h *Handler) handleRuns(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	data := runsPageData{Errors: map[string]string{}}

	var payload struct {
		Runs []Run `json:"runs"`
	}
	if err := h.api.GetJSON(r.Context(), sess.Token(), "/production/runs", &payload); err != nil {
		if errors.Is(err, httpx.ErrUnauthorized) {
			h.sessions.Logout(r.Context(), sess)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		h.logger.Error("load production runs", slog.Any("error", err))
		data.Errors["general"] = "Production runs could not be loaded"
	}
	data.Runs = payload.Runs

	viewData := view.BaseData(r, h.csrf, "Production", data)
	if err := h.templates.Render(w, "pages/production.html", viewData); err != nil {
		h.logger.Error("render production", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
