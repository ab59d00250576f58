package settings

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/registry"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/shared"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/view"
)

// Handler wires HTTP endpoints for the settings module.
type Handler struct {
	logger    *slog.Logger
	repo      Repository
	templates *view.Engine
	csrf      *shared.CSRFManager
	validator *validator.Validate
}

// NewHandler constructs settings handler.
func NewHandler(logger *slog.Logger, repo Repository, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, repo: repo, templates: templates, csrf: csrf, validator: validator.New()}
}

// MountRoutes registers settings routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.showPreferences)
	r.Post("/", h.handleSave)
}

type preferencesForm struct {
	Theme         string `validate:"required,oneof=light dark"`
	RowsPerPage   int    `validate:"required,min=10,max=100"`
	LandingModule string `validate:"required"`
}

type preferencesPageData struct {
	Prefs   Preferences
	Modules []registry.Module
	Errors  map[string]string
}

func (h *Handler) showPreferences(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	userID := ""
	if ident := sess.Identity(); ident != nil {
		userID = ident.ID
	}

	prefs, err := h.repo.Get(r.Context(), userID)
	if err != nil {
		h.logger.Error("load preferences", slog.Any("error", err))
		prefs = DefaultPreferences(userID)
	}
	h.renderPreferences(w, r, http.StatusOK, preferencesPageData{Prefs: prefs, Errors: map[string]string{}})
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	userID := ""
	if ident := sess.Identity(); ident != nil {
		userID = ident.ID
	}

	rows, _ := strconv.Atoi(r.PostFormValue("rows_per_page"))
	form := preferencesForm{
		Theme:         r.PostFormValue("theme"),
		RowsPerPage:   rows,
		LandingModule: r.PostFormValue("landing_module"),
	}
	formErrors := map[string]string{}
	if err := h.validator.Struct(form); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fieldErr := range fieldErrs {
				formErrors[fieldErr.Field()] = invalidFieldMessage(fieldErr.Field())
			}
		}
	}
	if _, ok := registry.Lookup(form.LandingModule); !ok {
		formErrors["LandingModule"] = "Unknown module"
	}

	prefs := Preferences{
		UserID:        userID,
		Theme:         form.Theme,
		RowsPerPage:   form.RowsPerPage,
		LandingModule: form.LandingModule,
	}
	if len(formErrors) == 0 {
		if err := h.repo.Save(r.Context(), prefs); err != nil {
			h.logger.Error("save preferences", slog.Any("error", err))
			formErrors["general"] = "Preferences could not be saved, try again"
		} else {
			CacheInSession(sess, prefs)
			sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Preferences saved"})
			http.Redirect(w, r, "/m/settings", http.StatusSeeOther)
			return
		}
	}

	h.renderPreferences(w, r, http.StatusBadRequest, preferencesPageData{Prefs: prefs, Errors: formErrors})
}

func (h *Handler) renderPreferences(w http.ResponseWriter, r *http.Request, status int, data preferencesPageData) {
	data.Modules = registry.Modules()
	viewData := view.BaseData(r, h.csrf, "Settings", data)
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := h.templates.Render(w, "pages/settings.html", viewData); err != nil {
		h.logger.Error("render settings", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func invalidFieldMessage(field string) string {
	switch field {
	case "Theme":
		return "Theme must be light or dark"
	case "RowsPerPage":
		return "Rows per page must be between 10 and 100"
	case "LandingModule":
		return "Landing module is required"
	default:
		return "Invalid value"
	}
}
