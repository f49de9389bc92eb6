package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/authz"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/pagination"
	"github.com/vidtube/backend/internal/repositories"
)

// VideoHandler implements video upload, retrieval and feed endpoints.
type VideoHandler struct {
	Videos  VideoStore
	Users   UserStore
	Storage MediaStorage
	Cleaner MediaCleaner
	Prober  DurationProber

	MaxUploadBytes int64
	NowFunc        func() time.Time
}

// Feed handles GET /api/v1/videos: the paginated, searchable video feed.
func (h VideoHandler) Feed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query()
	page := pagination.Parse(query.Get("page"), query.Get("limit"))
	limit, offset := page.Window()

	ownerID := strings.TrimSpace(query.Get("userId"))
	if ownerID != "" {
		if err := authz.ValidateID(ownerID); err != nil {
			respondStoreError(ctx, w, err, "user not found")
			return
		}
	}

	feed, total, err := h.Videos.Feed(ctx, repositories.FeedQuery{
		Search:   strings.TrimSpace(query.Get("query")),
		OwnerID:  ownerID,
		ViewerID: middleware.UserIDFromContext(ctx),
		SortBy:   query.Get("sortBy"),
		SortAsc:  strings.EqualFold(query.Get("sortType"), "asc"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		respondStoreError(ctx, w, err, "videos not found")
		return
	}
	if feed == nil {
		feed = []models.VideoWithOwner{}
	}

	respondData(ctx, w, http.StatusOK, listPayload{Items: feed, Meta: page.MetaFor(total)}, "video feed")
}

// Publish handles POST /api/v1/videos: multipart upload of a video file plus
// an optional thumbnail. The file is spooled to disk so its duration can be
// probed before it is pushed to the object store.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	userID := middleware.UserIDFromContext(ctx)

	if h.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		logger.Warn("invalid publish form", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" {
		respondError(ctx, w, http.StatusBadRequest, "title is required")
		return
	}

	file, header, err := r.FormFile("videoFile")
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, "videoFile is required")
		return
	}
	defer file.Close()

	tmpPath, err := spoolToTemp(file, header.Filename)
	if err != nil {
		logger.Error("spool upload to disk", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to process upload")
		return
	}
	defer os.Remove(tmpPath)

	duration := 0.0
	if h.Prober != nil {
		duration, err = h.Prober.Duration(ctx, tmpPath)
		if err != nil {
			logger.Warn("probe video duration", "error", err)
			duration = 0
		}
	}

	videoID := uuid.NewString()

	tmp, err := os.Open(tmpPath)
	if err != nil {
		logger.Error("reopen spooled upload", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to process upload")
		return
	}
	defer tmp.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	videoURL, err := h.Storage.Save(ctx, fmt.Sprintf("videos/%s%s", videoID, ext), tmp)
	if err != nil {
		logger.Error("upload video file", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to store video")
		return
	}

	thumbnailURL := ""
	if thumb, thumbHeader, err := r.FormFile("thumbnail"); err == nil {
		defer thumb.Close()
		thumbnailURL, err = saveUpload(ctx, h.Storage, "thumbnails", thumbHeader, thumb)
		if err != nil {
			logger.Error("upload thumbnail", "error", err)
			respondError(ctx, w, http.StatusInternalServerError, "failed to store thumbnail")
			return
		}
	} else if !errors.Is(err, http.ErrMissingFile) {
		respondError(ctx, w, http.StatusBadRequest, "invalid thumbnail upload")
		return
	}

	now := h.now()
	video := models.Video{
		ID:           videoID,
		OwnerID:      userID,
		Title:        title,
		Description:  description,
		VideoURL:     videoURL,
		ThumbnailURL: thumbnailURL,
		Duration:     duration,
		IsPublished:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		respondStoreError(ctx, w, err, "owner not found")
		return
	}

	respondData(ctx, w, http.StatusCreated, video, "video published")
}

// Get handles GET /api/v1/videos/{videoId}. Unpublished videos resolve only
// for their owner; everyone else sees a 404. Serving a video bumps its view
// counter.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	viewerID := middleware.UserIDFromContext(ctx)

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

	if err := authz.CanView(viewerID, video.OwnerID, video.IsPublished); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	if err := h.Videos.IncrementViews(ctx, videoID); err != nil {
		logger.Warn("increment views failed", "videoId", videoID, "error", err)
	} else {
		video.Views++
	}

	owner, err := h.Users.FindByID(ctx, video.OwnerID)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	respondData(ctx, w, http.StatusOK, models.VideoWithOwner{Video: video, Owner: owner.Profile()}, "video")
}

// Update handles PATCH /api/v1/videos/{videoId}. Title and description come
// as JSON; a replacement thumbnail comes as multipart.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	video, ok := h.ownedVideo(w, r)
	if !ok {
		return
	}

	oldThumbnail := ""
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			respondError(ctx, w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		if title := strings.TrimSpace(r.FormValue("title")); title != "" {
			video.Title = title
		}
		if description := strings.TrimSpace(r.FormValue("description")); description != "" {
			video.Description = description
		}
		if thumb, thumbHeader, err := r.FormFile("thumbnail"); err == nil {
			defer thumb.Close()
			location, err := saveUpload(ctx, h.Storage, "thumbnails", thumbHeader, thumb)
			if err != nil {
				logger.Error("upload thumbnail", "error", err)
				respondError(ctx, w, http.StatusInternalServerError, "failed to store thumbnail")
				return
			}
			oldThumbnail = video.ThumbnailURL
			video.ThumbnailURL = location
		} else if !errors.Is(err, http.ErrMissingFile) {
			respondError(ctx, w, http.StatusBadRequest, "invalid thumbnail upload")
			return
		}
	} else {
		var req struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(ctx, w, http.StatusBadRequest, "invalid request body")
			return
		}
		if title := strings.TrimSpace(req.Title); title != "" {
			video.Title = title
		}
		if description := strings.TrimSpace(req.Description); description != "" {
			video.Description = description
		}
	}

	video.UpdatedAt = h.now()
	if err := h.Videos.Update(ctx, video); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	if h.Cleaner != nil && oldThumbnail != "" {
		if err := h.Cleaner.Enqueue(ctx, oldThumbnail); err != nil {
			logger.Warn("failed to schedule media cleanup", "location", oldThumbnail, "error", err)
		}
	}

	respondData(ctx, w, http.StatusOK, video, "video updated")
}

// Delete handles DELETE /api/v1/videos/{videoId}.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	video, ok := h.ownedVideo(w, r)
	if !ok {
		return
	}

	if err := h.Videos.Delete(ctx, video.ID); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	if h.Cleaner != nil {
		for _, location := range []string{video.VideoURL, video.ThumbnailURL} {
			if location == "" {
				continue
			}
			if err := h.Cleaner.Enqueue(ctx, location); err != nil {
				logger.Warn("failed to schedule media cleanup", "location", location, "error", err)
			}
		}
	}

	respondData(ctx, w, http.StatusOK, nil, "video deleted")
}

// TogglePublish handles PATCH /api/v1/videos/toggle/publish/{videoId}.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	video, ok := h.ownedVideo(w, r)
	if !ok {
		return
	}

	published := !video.IsPublished
	if err := h.Videos.SetPublished(ctx, video.ID, published); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	respondData(ctx, w, http.StatusOK, map[string]bool{"isPublished": published}, "publish state toggled")
}

// ownedVideo resolves the path video and enforces the ownership guard. On
// failure the response has already been written.
func (h VideoHandler) ownedVideo(w http.ResponseWriter, r *http.Request) (models.Video, bool) {
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

	if err := authz.CanMutate(middleware.UserIDFromContext(ctx), video.OwnerID); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return models.Video{}, false
	}

	return video, true
}

func spoolToTemp(r io.Reader, filename string) (string, error) {
	tmp, err := os.CreateTemp("", "upload-*"+strings.ToLower(filepath.Ext(filename)))
	if err != nil {
		return "", err
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, r); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}

	return tmp.Name(), nil
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
