package activity

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/shared"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/view"
)

// Handler wires HTTP endpoints for the activity log module.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
}

// NewHandler constructs activity handler.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf}
}

// MountRoutes registers activity routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleTimeline)
}

type timelinePageData struct {
	Rows    []Entry
	Paging  PagingInfo
	Filters Filters
	Actions []string
	Errors  map[string]string
}

func (h *Handler) handleTimeline(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := Filters{
		Actor:  q.Get("actor"),
		Action: q.Get("action"),
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		filters.Page = page
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		if rows, err := strconv.Atoi(sess.Get(shared.PrefRowsPerPageKey)); err == nil && rows > 0 {
			filters.PageSize = rows
		}
	}

	data := timelinePageData{
		Filters: filters,
		Actions: []string{ActionLogin, ActionLoginFailed, ActionLogout, ActionDenied},
		Errors:  map[string]string{},
	}
	result, err := h.service.Timeline(r.Context(), filters)
	if err != nil {
		h.logger.Error("load activity timeline", slog.Any("error", err))
		data.Errors["general"] = "Activity log could not be loaded"
	} else {
		data.Rows = result.Rows
		data.Paging = result.Paging
	}

	viewData := view.BaseData(r, h.csrf, "Activity log", data)
	if err := h.templates.Render(w, "pages/activity.html", viewData); err != nil {
		h.logger.Error("render activity", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
