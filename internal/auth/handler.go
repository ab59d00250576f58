// Package auth implements the login and logout flows. Credentials are
// exchanged with the remote ERP API for a bearer token and identity; the
// dashboard itself never stores passwords.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/activity"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/identity"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/observability"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/registry"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/settings"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/shared"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/view"
)

// Exchanger swaps credentials for a bearer token and identity. The gateway
// client implements it in production; devauth implements it for local runs.
type Exchanger interface {
	Login(ctx context.Context, username, password string) (string, *identity.Identity, error)
}

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	exchanger Exchanger
	templates *view.Engine
	sessions  *shared.SessionManager
	csrf      *shared.CSRFManager
	prefs     settings.Repository
	activity  *activity.Service
	metrics   *observability.Metrics
	validator *validator.Validate
}

// NewHandler constructs a Handler instance. prefs may be nil, in which case
// every login starts from the default preferences.
func NewHandler(logger *slog.Logger, exchanger Exchanger, templates *view.Engine, sessions *shared.SessionManager, csrf *shared.CSRFManager, prefs settings.Repository, recorder *activity.Service, metrics *observability.Metrics) *Handler {
	return &Handler{
		logger:    logger,
		exchanger: exchanger,
		templates: templates,
		sessions:  sessions,
		csrf:      csrf,
		prefs:     prefs,
		activity:  recorder,
		metrics:   metrics,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

type loginForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type loginPageData struct {
	Form   loginForm
	Errors map[string]string
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess.IsAuthenticated() {
		landing := registry.SelectModule(settings.FromSession(sess).LandingModule, sess.Identity())
		http.Redirect(w, r, landing.Path, http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, http.StatusOK, loginPageData{})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())

	form := loginForm{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	formErrors := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fieldErr := range fieldErrs {
				formErrors[fieldErr.Field()] = "This field is required"
			}
		}
	}

	if len(formErrors) == 0 {
		token, ident, err := h.exchanger.Login(r.Context(), form.Username, form.Password)
		switch {
		case err == nil:
			if loginErr := h.sessions.Login(r.Context(), sess, ident, token); loginErr != nil {
				h.logger.Error("persist login", slog.Any("error", loginErr))
				formErrors["general"] = shared.UserSafeMessage(loginErr)
				break
			}
			h.metrics.LoginInc("success")
			h.activity.Record(r.Context(), activity.Entry{
				Actor:  ident.Username,
				Action: activity.ActionLogin,
				IP:     r.RemoteAddr,
			})
			prefs := h.loadPreferences(r.Context(), ident.ID)
			settings.CacheInSession(sess, prefs)
			sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Welcome back, " + ident.FullName})
			landing := registry.SelectModule(prefs.LandingModule, ident)
			http.Redirect(w, r, landing.Path, http.StatusSeeOther)
			return
		case errors.Is(err, shared.ErrInvalidCredentials):
			h.metrics.LoginInc("failure")
			h.activity.Record(r.Context(), activity.Entry{
				Actor:  form.Username,
				Action: activity.ActionLoginFailed,
				IP:     r.RemoteAddr,
			})
			formErrors["general"] = "Invalid username or password"
		default:
			h.logger.Error("credential exchange", slog.Any("error", err))
			h.metrics.LoginInc("error")
			formErrors["general"] = "Sign in is temporarily unavailable, try again shortly"
		}
	}

	form.Password = ""
	h.renderLogin(w, r, http.StatusBadRequest, loginPageData{Form: form, Errors: formErrors})
}

// loadPreferences fetches the stored display preferences for a fresh login.
// A missing row or a read failure yields the defaults; login never fails on
// preference state.
func (h *Handler) loadPreferences(ctx context.Context, userID string) settings.Preferences {
	if h.prefs == nil {
		return settings.DefaultPreferences(userID)
	}
	prefs, err := h.prefs.Get(ctx, userID)
	if err != nil {
		h.logger.Warn("load preferences at login", slog.Any("error", err))
		return settings.DefaultPreferences(userID)
	}
	return prefs
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess.IsAuthenticated() {
		actor := ""
		if ident := sess.Identity(); ident != nil {
			actor = ident.Username
		}
		h.sessions.Logout(r.Context(), sess)
		h.activity.Record(r.Context(), activity.Entry{
			Actor:  actor,
			Action: activity.ActionLogout,
			IP:     r.RemoteAddr,
		})
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, status int, data loginPageData) {
	viewData := view.BaseData(r, h.csrf, "Sign in", data)
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := h.templates.Render(w, "pages/login.html", viewData); err != nil {
		h.logger.Error("render login", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
