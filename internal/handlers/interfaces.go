package handlers

import (
	"context"
	"io"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

// UserStore captures the persistence operations required by the user handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	Update(ctx context.Context, user models.User) error
}

// SessionManager issues, verifies, refreshes and revokes authentication tokens.
type SessionManager interface {
	Issue(ctx context.Context, userID string) (models.SessionTokens, error)
	Verify(accessToken string) (string, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Revoke(ctx context.Context, refreshToken string)
}

// VideoStore captures persistence and the feed read view for videos.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	Update(ctx context.Context, video models.Video) error
	Delete(ctx context.Context, id string) error
	SetPublished(ctx context.Context, id string, published bool) error
	IncrementViews(ctx context.Context, id string) error
	Feed(ctx context.Context, q repositories.FeedQuery) ([]models.VideoWithOwner, int64, error)
}

// TweetStore captures persistence for tweets.
type TweetStore interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	ListForUser(ctx context.Context, ownerID string, limit, offset int) ([]models.Tweet, int64, error)
	UpdateContent(ctx context.Context, id, content string) (models.Tweet, error)
	Delete(ctx context.Context, id string) error
}

// CommentStore captures persistence and the thread read view for comments.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	ThreadForVideo(ctx context.Context, videoID, viewerID string, limit, offset int) ([]models.CommentView, int64, error)
	UpdateContent(ctx context.Context, id, content string) (models.Comment, error)
	Delete(ctx context.Context, id string) error
}

// LikeStore captures the like toggle and the liked-videos read view.
type LikeStore interface {
	Toggle(ctx context.Context, likedBy string, target models.LikeTarget) (bool, error)
	LikedVideos(ctx context.Context, userID string) ([]models.VideoWithOwner, error)
}

// SubscriptionStore captures the subscription toggle and its read views.
type SubscriptionStore interface {
	Toggle(ctx context.Context, subscriberID, channelID string) (bool, error)
	Subscribers(ctx context.Context, channelID string) ([]models.ChannelMember, error)
	SubscribedChannels(ctx context.Context, subscriberID string) ([]models.ChannelMember, error)
	Overview(ctx context.Context, channelID, viewerID string) (subscribers, subscribedTo int64, isSubscribed bool, err error)
}

// PlaylistStore captures persistence for playlists and their video lists.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	ListForUser(ctx context.Context, ownerID string) ([]models.Playlist, error)
	UpdateDetails(ctx context.Context, id, name, description string) (models.Playlist, error)
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
}

// StatsProvider computes the channel dashboard aggregates.
type StatsProvider interface {
	ChannelStats(ctx context.Context, channelID string) (models.ChannelStats, error)
}

// ChannelVideoLister returns a channel's own videos, drafts included.
type ChannelVideoLister interface {
	ChannelVideos(ctx context.Context, ownerID string, limit, offset int) ([]models.Video, int64, error)
}

// MediaStorage persists uploaded media files and serves back public locations.
type MediaStorage interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// MediaCleaner schedules background removal of superseded media objects.
type MediaCleaner interface {
	Enqueue(ctx context.Context, location string) error
}

// DurationProber resolves the playable duration of an uploaded video file.
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// CookieConfig controls the session cookie attributes.
type CookieConfig struct {
	Domain string
	Secure bool
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users         UserStore
	Sessions      SessionManager
	Videos        VideoStore
	Tweets        TweetStore
	Comments      CommentStore
	Likes         LikeStore
	Subscriptions SubscriptionStore
	Playlists     PlaylistStore
	Stats         StatsProvider
	ChannelVideos ChannelVideoLister

	Storage MediaStorage
	Cleaner MediaCleaner
	Prober  DurationProber

	Limiter RateLimiter
	Cookies CookieConfig

	MaxUploadBytes     int64
	AllowSelfSubscribe bool
}
