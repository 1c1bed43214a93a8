package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/gitstats/internal/auth"
	"github.com/sakif/gitstats/internal/model"
)

// StatsProvider serves the cached statistics. *service.StatsService
// implements it.
type StatsProvider interface {
	StatsForUserID(ctx context.Context, userID string) (*model.StatsView, error)
	Refresh(ctx context.Context, userID string) error
}

// StatsHandler serves the statistics page and its JSON twin.
//
// Both routes sit behind auth.OptionalAuth: an anonymous visitor gets the
// empty view (200), not a 401.
type StatsHandler struct {
	stats  StatsProvider
	pages  *Pages
	logger *slog.Logger
}

// NewStatsHandler creates a StatsHandler. pages may be nil when only the
// JSON routes are mounted.
func NewStatsHandler(stats StatsProvider, pages *Pages, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{stats: stats, pages: pages, logger: logger}
}

func (h *StatsHandler) view(r *http.Request) (*model.StatsView, error) {
	userID, _ := auth.UserIDFromContext(r.Context())
	view, err := h.stats.StatsForUserID(r.Context(), userID)
	if err != nil {
		h.logger.Error("stats lookup failed",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return view, nil
}

// HandleStatsPage renders the statistics tables.
//
// HTTP: GET /stats
func (h *StatsHandler) HandleStatsPage(w http.ResponseWriter, r *http.Request) {
	view, err := h.view(r)
	if err != nil {
		h.pages.renderError(w, err)
		return
	}
	_, signedIn := auth.UserIDFromContext(r.Context())
	h.pages.render(w, http.StatusOK, "stats", PageData{Title: "Your GitHub statistics", SignedIn: signedIn, Stats: view})
}

// HandleStatsJSON returns the same view as JSON.
//
// HTTP: GET /api/stats
func (h *StatsHandler) HandleStatsJSON(w http.ResponseWriter, r *http.Request) {
	view, err := h.view(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleRefresh drops the caller's cached statistics; the next GET
// recomputes them from GitHub.
//
// HTTP: POST /api/stats/refresh
// Auth: Required
func (h *StatsHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	if err := h.stats.Refresh(r.Context(), userID); err != nil {
		h.logger.Warn("stats refresh failed",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "statistics will be recomputed on the next visit"})
}
