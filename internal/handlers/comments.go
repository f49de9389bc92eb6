package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/authz"
	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/pagination"
)

// CommentHandler implements the comment thread endpoints.
type CommentHandler struct {
	Comments CommentStore
	Videos   VideoStore
	NowFunc  func() time.Time
}

// Thread handles GET /api/v1/comments/{videoId}: the paginated comment
// thread with like counts relative to the viewer.
func (h CommentHandler) Thread(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewerID := middleware.UserIDFromContext(ctx)

	video, ok := h.visibleVideo(w, r, viewerID)
	if !ok {
		return
	}

	page := pagination.Parse(r.URL.Query().Get("page"), r.URL.Query().Get("limit"))
	limit, offset := page.Window()

	thread, total, err := h.Comments.ThreadForVideo(ctx, video.ID, viewerID, limit, offset)
	if err != nil {
		respondStoreError(ctx, w, err, "comments not found")
		return
	}
	if thread == nil {
		thread = []models.CommentView{}
	}

	respondData(ctx, w, http.StatusOK, listPayload{Items: thread, Meta: page.MetaFor(total)}, "video comments")
}

// Create handles POST /api/v1/comments/{videoId}.
func (h CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserIDFromContext(ctx)

	video, ok := h.visibleVideo(w, r, userID)
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondError(ctx, w, http.StatusBadRequest, "content is required")
		return
	}

	now := h.now()
	comment := models.Comment{
		ID:        uuid.NewString(),
		OwnerID:   userID,
		VideoID:   video.ID,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Comments.Create(ctx, comment); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	respondData(ctx, w, http.StatusCreated, comment, "comment added")
}

// Update handles PATCH /api/v1/comments/c/{commentId}.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	comment, ok := h.ownedComment(w, r)
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondError(ctx, w, http.StatusBadRequest, "content is required")
		return
	}

	updated, err := h.Comments.UpdateContent(ctx, comment.ID, req.Content)
	if err != nil {
		respondStoreError(ctx, w, err, "comment not found")
		return
	}

	respondData(ctx, w, http.StatusOK, updated, "comment updated")
}

// Delete handles DELETE /api/v1/comments/c/{commentId}.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	comment, ok := h.ownedComment(w, r)
	if !ok {
		return
	}

	if err := h.Comments.Delete(ctx, comment.ID); err != nil {
		respondStoreError(ctx, w, err, "comment not found")
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "comment deleted")
}

// visibleVideo resolves the path video and enforces the visibility guard so
// comments on hidden drafts do not leak their existence.
func (h CommentHandler) visibleVideo(w http.ResponseWriter, r *http.Request, viewerID string) (models.Video, bool) {
	ctx := r.Context()

	videoID := r.PathValue("videoId")
	if err := authz.ValidateID(videoID); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return models.Video{}, false
	}

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return models.Video{}, false
	}

	if err := authz.CanView(viewerID, video.OwnerID, video.IsPublished); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return models.Video{}, false
	}

	return video, true
}

func (h CommentHandler) ownedComment(w http.ResponseWriter, r *http.Request) (models.Comment, bool) {
	ctx := r.Context()

	commentID := r.PathValue("commentId")
	if err := authz.ValidateID(commentID); err != nil {
		respondStoreError(ctx, w, err, "comment not found")
		return models.Comment{}, false
	}

	comment, err := h.Comments.FindByID(ctx, commentID)
	if err != nil {
		respondStoreError(ctx, w, err, "comment not found")
		return models.Comment{}, false
	}

	if err := authz.CanMutate(middleware.UserIDFromContext(ctx), comment.OwnerID); err != nil {
		respondStoreError(ctx, w, err, "comment not found")
		return models.Comment{}, false
	}

	return comment, true
}

func (h CommentHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
