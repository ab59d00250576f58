// Package authz is the auth boundary and route gate for HTTP handlers:
// anonymous requests are sent to the login surface, and module requests the
// identity cannot reach are silently redirected to the default module.
package authz

import (
	"log/slog"
	"net/http"

	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/activity"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/observability"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/registry"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/shared"
)

// LoginPath is where anonymous requests are sent.
const LoginPath = "/login"

// Middleware wires authorization helpers for HTTP handlers. Activity and
// Metrics are optional.
type Middleware struct {
	Logger   *slog.Logger
	Activity *activity.Service
	Metrics  *observability.Metrics
}

// RequireAuth blocks everything behind the credential-entry surface while no
// session exists. It is the LOCKED/UNLOCKED switch: the only way through is a
// session the SessionManager considers authenticated.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if !sess.IsAuthenticated() {
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireCapability gates a module subtree on one capability. A denied
// request is not an error: it is redirected to the default module, recorded
// in the activity log, and counted.
func (m Middleware) RequireCapability(capability string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			if sess.HasPermission(capability) {
				next.ServeHTTP(w, r)
				return
			}
			actor := "anonymous"
			if id := sess.Identity(); id != nil {
				actor = id.Username
			}
			if m.Logger != nil {
				m.Logger.Info("module request denied",
					slog.String("actor", actor),
					slog.String("capability", capability),
					slog.String("path", r.URL.Path))
			}
			m.Activity.Record(r.Context(), activity.Entry{
				Actor:  actor,
				Action: activity.ActionDenied,
				Module: capability,
				IP:     r.RemoteAddr,
			})
			m.Metrics.DeniedInc(capability)
			http.Redirect(w, r, registry.Default().Path, http.StatusSeeOther)
		})
	}
}
