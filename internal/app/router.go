package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/activity"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/auth"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/authz"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/dashboard"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/finance"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/inventory"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/laboratory"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/logistics"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/observability"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/platform/httpx"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/procurement"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/production"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/registry"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/reports"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/sales"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/settings"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/shared"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/users"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Authz          authz.Middleware

	AuthHandler        *auth.Handler
	DashboardHandler   *dashboard.Handler
	InventoryHandler   *inventory.Handler
	ProductionHandler  *production.Handler
	LaboratoryHandler  *laboratory.Handler
	SalesHandler       *sales.Handler
	LogisticsHandler   *logistics.Handler
	ProcurementHandler *procurement.Handler
	FinanceHandler     *finance.Handler
	ReportsHandler     *reports.Handler
	UsersHandler       *users.Handler
	ActivityHandler    *activity.Handler
	SettingsHandler    *settings.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router for the dashboard.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	params.AuthHandler.MountRoutes(r)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if !sess.IsAuthenticated() {
			http.Redirect(w, r, authz.LoginPath, http.StatusSeeOther)
			return
		}
		landing := registry.SelectModule(settings.FromSession(sess).LandingModule, sess.Identity())
		http.Redirect(w, r, landing.Path, http.StatusSeeOther)
	})

	r.Route("/m", func(r chi.Router) {
		r.Use(params.Authz.RequireAuth)

		mount := func(m registry.Module, mountRoutes func(chi.Router)) {
			r.Route("/"+m.ID, func(r chi.Router) {
				r.Use(params.Authz.RequireCapability(m.Capability))
				mountRoutes(r)
			})
		}
		mount(mustModule("dashboard"), params.DashboardHandler.MountRoutes)
		mount(mustModule("inventory"), params.InventoryHandler.MountRoutes)
		mount(mustModule("production"), params.ProductionHandler.MountRoutes)
		mount(mustModule("laboratory"), params.LaboratoryHandler.MountRoutes)
		mount(mustModule("sales"), params.SalesHandler.MountRoutes)
		mount(mustModule("logistics"), params.LogisticsHandler.MountRoutes)
		mount(mustModule("procurement"), params.ProcurementHandler.MountRoutes)
		mount(mustModule("finance"), params.FinanceHandler.MountRoutes)
		mount(mustModule("reports"), params.ReportsHandler.MountRoutes)
		mount(mustModule("users"), params.UsersHandler.MountRoutes)
		mount(mustModule("activity_logs"), params.ActivityHandler.MountRoutes)
		mount(mustModule("settings"), params.SettingsHandler.MountRoutes)

		// Unknown or denied module ids resolve to an accessible module.
		r.Get("/{module}", func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			target := registry.SelectModule(chi.URLParam(r, "module"), sess.Identity())
			http.Redirect(w, r, target.Path, http.StatusSeeOther)
		})
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

func mustModule(id string) registry.Module {
	m, ok := registry.Lookup(id)
	if !ok {
		panic("app: unknown module id " + id)
	}
	return m
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
