package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/pagination"
)

// DashboardHandler implements the channel owner's dashboard endpoints.
type DashboardHandler struct {
	Stats         StatsProvider
	ChannelVideos ChannelVideoLister
}

// StatsOverview handles GET /api/v1/dashboard/stats: total views, subscribers,
// videos and likes for the caller's channel. Empty channels report zeros.
func (h DashboardHandler) StatsOverview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.Stats.ChannelStats(ctx, middleware.UserIDFromContext(ctx))
	if err != nil {
		respondStoreError(ctx, w, err, "channel not found")
		return
	}

	respondData(ctx, w, http.StatusOK, stats, "channel stats")
}

// Videos handles GET /api/v1/dashboard/videos: every video the caller owns,
// drafts included.
func (h DashboardHandler) Videos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page := pagination.Parse(r.URL.Query().Get("page"), r.URL.Query().Get("limit"))
	limit, offset := page.Window()

	videos, total, err := h.ChannelVideos.ChannelVideos(ctx, middleware.UserIDFromContext(ctx), limit, offset)
	if err != nil {
		respondStoreError(ctx, w, err, "channel not found")
		return
	}
	if videos == nil {
		videos = []models.Video{}
	}

	respondData(ctx, w, http.StatusOK, listPayload{Items: videos, Meta: page.MetaFor(total)}, "channel videos")
}
