// Package settings persists per-user display preferences in the local
// Postgres database; preferences never leave the dashboard.
package settings

// Preferences are the adjustable display options for one user.
type Preferences struct {
	UserID        string
	Theme         string
	RowsPerPage   int
	LandingModule string
}

// DefaultPreferences are applied until a user saves their own.
func DefaultPreferences(userID string) Preferences {
	return Preferences{
		UserID:        userID,
		Theme:         "light",
		RowsPerPage:   20,
		LandingModule: "dashboard",
	}
}
