package activity

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/shared"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/view"
)

func TestTimelinePageRendersEntriesAndFilters(t *testing.T) {
	templates, err := view.NewEngine()
	require.NoError(t, err)

	repo := &mockRepo{entries: []Entry{
		{Actor: "bursar", Action: ActionLogin, IP: "10.0.0.4", OccurredAt: time.Date(2026, 5, 3, 9, 0, 0, 0, time.UTC)},
		{Actor: "lab", Action: ActionDenied, Module: "settings", OccurredAt: time.Date(2026, 5, 3, 9, 5, 0, 0, time.UTC)},
	}}
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), NewService(repo, nil), templates, shared.NewCSRFManager("csrf"))

	r := chi.NewRouter()
	h.MountRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/?actor=bursar&action=login", nil)
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "bursar")
	assert.Contains(t, body, "Page 1")
	assert.Contains(t, body, `value="bursar"`)
}

func TestTimelineUsesRowsPerPagePreference(t *testing.T) {
	templates, err := view.NewEngine()
	require.NoError(t, err)

	repo := &mockRepo{}
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), NewService(repo, nil), templates, shared.NewCSRFManager("csrf"))

	r := chi.NewRouter()
	h.MountRoutes(r)

	sess := &shared.Session{ID: "s-1"}
	sess.Set(shared.PrefRowsPerPageKey, "35")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	// The service fetches one row past the page to detect a next page.
	assert.Equal(t, 36, repo.lastLimit)
}

func TestTimelinePageSurvivesRepositoryFailure(t *testing.T) {
	templates, err := view.NewEngine()
	require.NoError(t, err)

	repo := &mockRepo{timelineErr: assert.AnError}
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), NewService(repo, nil), templates, shared.NewCSRFManager("csrf"))

	r := chi.NewRouter()
	h.MountRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "Activity log could not be loaded")
	assert.Contains(t, res.Body.String(), "No activity recorded")
}
