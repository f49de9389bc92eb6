package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/authz"
	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/models"
)

// LikeHandler implements like toggle endpoints for videos, comments and tweets.
type LikeHandler struct {
	Likes    LikeStore
	Videos   VideoStore
	Comments CommentStore
	Tweets   TweetStore
}

// ToggleVideo handles POST /api/v1/likes/toggle/v/{videoId}.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videoID := r.PathValue("videoId")
	if err := authz.ValidateID(videoID); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}
	if err := authz.CanView(middleware.UserIDFromContext(ctx), video.OwnerID, video.IsPublished); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	h.toggle(w, r, models.VideoTarget(videoID))
}

// ToggleComment handles POST /api/v1/likes/toggle/c/{commentId}.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	commentID := r.PathValue("commentId")
	if err := authz.ValidateID(commentID); err != nil {
		respondStoreError(ctx, w, err, "comment not found")
		return
	}

	if _, err := h.Comments.FindByID(ctx, commentID); err != nil {
		respondStoreError(ctx, w, err, "comment not found")
		return
	}

	h.toggle(w, r, models.CommentTarget(commentID))
}

// ToggleTweet handles POST /api/v1/likes/toggle/t/{tweetId}.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tweetID := r.PathValue("tweetId")
	if err := authz.ValidateID(tweetID); err != nil {
		respondStoreError(ctx, w, err, "tweet not found")
		return
	}

	if _, err := h.Tweets.FindByID(ctx, tweetID); err != nil {
		respondStoreError(ctx, w, err, "tweet not found")
		return
	}

	h.toggle(w, r, models.TweetTarget(tweetID))
}

// LikedVideos handles GET /api/v1/likes/videos: every video the caller has
// liked, joined with the owners' public profiles.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	liked, err := h.Likes.LikedVideos(ctx, middleware.UserIDFromContext(ctx))
	if err != nil {
		respondStoreError(ctx, w, err, "liked videos not found")
		return
	}
	if liked == nil {
		liked = []models.VideoWithOwner{}
	}

	respondData(ctx, w, http.StatusOK, liked, "liked videos")
}

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, target models.LikeTarget) {
	ctx := r.Context()

	liked, err := h.Likes.Toggle(ctx, middleware.UserIDFromContext(ctx), target)
	if err != nil {
		respondStoreError(ctx, w, err, "target not found")
		return
	}

	message := "like removed"
	if liked {
		message = "like added"
	}
	respondData(ctx, w, http.StatusOK, map[string]bool{"liked": liked}, message)
}
