package view

import (
	"net/http"

	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/registry"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/shared"
)

// BaseData assembles the TemplateData every page needs: CSRF token, flash,
// identity, and the navigable module list. The nav is recomputed from the
// current session on every call, never cached.
func BaseData(r *http.Request, csrf *shared.CSRFManager, title string, data any) TemplateData {
	sess := shared.SessionFromContext(r.Context())
	td := TemplateData{
		Title:       title,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if csrf != nil && sess != nil {
		td.CSRFToken, _ = csrf.EnsureToken(r.Context(), sess)
	}
	if sess != nil {
		td.Flash = sess.PopFlash()
		td.Identity = sess.Identity()
		td.Theme = sess.Get(shared.PrefThemeKey)
	}
	if td.Theme == "" {
		td.Theme = "light"
	}
	td.Nav = registry.NavigableModules(td.Identity)
	return td
}
