package repositories

import (
	"context"

	"github.com/vidtube/backend/internal/models"
)

// UserRepository defines the data access contract for users.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	Update(ctx context.Context, user models.User) error
}

// FeedQuery parameterises the video feed read view.
type FeedQuery struct {
	// Search is matched case-insensitively against title and description.
	Search string
	// OwnerID restricts the feed to a single channel when set.
	OwnerID string
	// ViewerID is the requesting actor; their own unpublished videos stay visible.
	ViewerID string
	// SortBy is one of createdAt, views, duration, title. Empty means createdAt.
	SortBy string
	// SortAsc flips the default descending order.
	SortAsc bool
	Limit   int
	Offset  int
}

// VideoRepository exposes persistence and read views for videos.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	Update(ctx context.Context, video models.Video) error
	Delete(ctx context.Context, id string) error
	SetPublished(ctx context.Context, id string, published bool) error
	IncrementViews(ctx context.Context, id string) error
	Feed(ctx context.Context, q FeedQuery) ([]models.VideoWithOwner, int64, error)
}

// TweetRepository exposes persistence for tweets.
type TweetRepository interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	ListForUser(ctx context.Context, ownerID string, limit, offset int) ([]models.Tweet, int64, error)
	UpdateContent(ctx context.Context, id, content string) (models.Tweet, error)
	Delete(ctx context.Context, id string) error
}

// CommentRepository exposes persistence and the thread read view for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	ThreadForVideo(ctx context.Context, videoID, viewerID string, limit, offset int) ([]models.CommentView, int64, error)
	UpdateContent(ctx context.Context, id, content string) (models.Comment, error)
	Delete(ctx context.Context, id string) error
}

// LikeRepository exposes the like toggle and the liked-videos read view.
type LikeRepository interface {
	Toggle(ctx context.Context, likedBy string, target models.LikeTarget) (bool, error)
	LikedVideos(ctx context.Context, userID string) ([]models.VideoWithOwner, error)
}

// SubscriptionRepository exposes the subscription toggle and its read views.
type SubscriptionRepository interface {
	Toggle(ctx context.Context, subscriberID, channelID string) (bool, error)
	Subscribers(ctx context.Context, channelID string) ([]models.ChannelMember, error)
	SubscribedChannels(ctx context.Context, subscriberID string) ([]models.ChannelMember, error)
	Overview(ctx context.Context, channelID, viewerID string) (subscribers, subscribedTo int64, isSubscribed bool, err error)
}

// PlaylistRepository exposes persistence for playlists and their video lists.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	ListForUser(ctx context.Context, ownerID string) ([]models.Playlist, error)
	UpdateDetails(ctx context.Context, id, name, description string) (models.Playlist, error)
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
}

// StatsRepository exposes the channel dashboard aggregates.
type StatsRepository interface {
	ChannelStats(ctx context.Context, channelID string) (models.ChannelStats, error)
	ChannelVideos(ctx context.Context, ownerID string, limit, offset int) ([]models.Video, int64, error)
}
