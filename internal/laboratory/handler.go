// Package laboratory renders water quality tests and records new results.
package laboratory

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

// Test is one quality test as the remote API reports it.
type Test struct {
	Batch     string    `json:"batch"`
	PH        float64   `json:"ph"`
	Turbidity float64   `json:"turbidity"`
	TDS       float64   `json:"tds"`
	Passed    bool      `json:"passed"`
	TestedBy  string    `json:"tested_by"`
	TestedAt  time.Time `json:"tested_at"`
}

type recordTestRequest struct {
	Batch     string  `json:"batch"`
	PH        float64 `json:"ph"`
	Turbidity float64 `json:"turbidity"`
	TDS       float64 `json:"tds"`
	Passed    bool    `json:"passed"`
}

// Handler wires HTTP endpoints for the laboratory module.
type Handler struct {
	logger    *slog.Logger
	api       *gateway.Client
	templates *view.Engine
	csrf      *shared.CSRFManager
	sessions  *shared.SessionManager
}

// NewHandler constructs laboratory handler.
func NewHandler(logger *slog.Logger, api *gateway.Client, templates *view.Engine, csrf *shared.CSRFManager, sessions *shared.SessionManager) *Handler {
	return &Handler{logger: logger, api: api, templates: templates, csrf: csrf, sessions: sessions}
}

// MountRoutes registers laboratory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleTests)
	r.Post("/tests", h.handleRecordTest)
}

type testForm struct {
	Batch     string
	PH        string
	Turbidity string
	TDS       string
	Passed    bool
}

type testsPageData struct {
	Tests  []Test
	Form   testForm
	Errors map[string]string
}

func (h *Handler) handleTests(w http.ResponseWriter, r *http.Request) {
	h.renderTests(w, r, http.StatusOK, testsPageData{Errors: map[string]string{}})
}

func (h *Handler) handleRecordTest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())

	form := testForm{
		Batch:     r.PostFormValue("batch"),
		PH:        r.PostFormValue("ph"),
		Turbidity: r.PostFormValue("turbidity"),
		TDS:       r.PostFormValue("tds"),
		Passed:    r.PostFormValue("passed") != "",
	}
	formErrors := map[string]string{}
	if form.Batch == "" {
		formErrors["Batch"] = "Batch is required"
	}
	ph := parseMeasure(form.PH, "PH", "pH", formErrors)
	turbidity := parseMeasure(form.Turbidity, "Turbidity", "Turbidity", formErrors)
	tds := parseMeasure(form.TDS, "TDS", "TDS", formErrors)
	if ph < 0 || ph > 14 {
		formErrors["PH"] = "pH must be between 0 and 14"
	}

	if len(formErrors) == 0 {
		req := recordTestRequest{Batch: form.Batch, PH: ph, Turbidity: turbidity, TDS: tds, Passed: form.Passed}
		err := h.api.PostJSON(r.Context(), sess.Token(), "/laboratory/tests", req, nil)
		switch {
		case err == nil:
			sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Quality test recorded"})
			http.Redirect(w, r, "/m/laboratory", http.StatusSeeOther)
			return
		case errors.Is(err, httpx.ErrUnauthorized):
			h.sessions.Logout(r.Context(), sess)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		default:
			h.logger.Error("record quality test", slog.Any("error", err))
			formErrors["general"] = "Test could not be recorded, try again"
		}
	}

	h.renderTests(w, r, http.StatusBadRequest, testsPageData{Form: form, Errors: formErrors})
}

func (h *Handler) renderTests(w http.ResponseWriter, r *http.Request, status int, data testsPageData) {
	sess := shared.SessionFromContext(r.Context())

	var payload struct {
		Tests []Test `json:"tests"`
	}
	if err := h.api.GetJSON(r.Context(), sess.Token(), "/laboratory/tests", &payload); err != nil {
		if errors.Is(err, httpx.ErrUnauthorized) {
			h.sessions.Logout(r.Context(), sess)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		h.logger.Error("load quality tests", slog.Any("error", err))
		if data.Errors["general"] == "" {
			data.Errors["general"] = "Quality tests could not be loaded"
		}
	}
	data.Tests = payload.Tests

	viewData := view.BaseData(r, h.csrf, "Laboratory", data)
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := h.templates.Render(w, "pages/laboratory.html", viewData); err != nil {
		h.logger.Error("render laboratory", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func parseMeasure(raw, key, label string, formErrors map[string]string) float64 {
	if raw == "" {
		formErrors[key] = label + " is required"
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		formErrors[key] = label + " must be a number"
		return 0
	}
	return v
}
