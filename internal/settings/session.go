package settings

import (
	"strconv"

	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/shared"
)

// CacheInSession mirrors the preferences into session values so per-request
// consumers (page shell theme, timeline paging, landing redirects) read them
// without a database round trip. Written at login and on every save.
func CacheInSession(sess *shared.Session, p Preferences) {
	if sess == nil {
		return
	}
	sess.Set(shared.PrefThemeKey, p.Theme)
	sess.Set(shared.PrefRowsPerPageKey, strconv.Itoa(p.RowsPerPage))
	sess.Set(shared.PrefLandingModuleKey, p.LandingModule)
}

// FromSession reads the mirrored preferences back, falling back to the
// defaults for anything absent or mangled.
func FromSession(sess *shared.Session) Preferences {
	userID := ""
	if ident := sess.Identity(); ident != nil {
		userID = ident.ID
	}
	p := DefaultPreferences(userID)
	if sess == nil {
		return p
	}
	if theme := sess.Get(shared.PrefThemeKey); theme != "" {
		p.Theme = theme
	}
	if rows, err := strconv.Atoi(sess.Get(shared.PrefRowsPerPageKey)); err == nil && rows > 0 {
		p.RowsPerPage = rows
	}
	if landing := sess.Get(shared.PrefLandingModuleKey); landing != "" {
		p.LandingModule = landing
	}
	return p
}
