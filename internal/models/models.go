package models

import "time"

// User represents an account within the VidTube platform. The password field
// always holds a bcrypt hash, never the plaintext secret.
type User struct {
	ID           string
	Username     string
	Email        string
	FullName     string
	AvatarURL    string
	CoverURL     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicProfile is the subset of user fields exposed inside read views.
type PublicProfile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}

// Profile returns the public projection of the user.
func (u User) Profile() PublicProfile {
	return PublicProfile{ID: u.ID, Username: u.Username, FullName: u.FullName, Avatar: u.AvatarURL}
}

// Video is an uploaded video owned by a user. Unpublished videos are visible
// only to their owner.
type Video struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"ownerId"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VideoURL     string    `json:"videoUrl"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	Duration     float64   `json:"duration"`
	Views        int64     `json:"views"`
	IsPublished  bool      `json:"isPublished"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Tweet is a short text post owned by a user.
type Tweet struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Comment is a text reply attached to a video.
type Comment struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	VideoID   string    `json:"videoId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LikeTargetKind discriminates the entity a like is attached to.
type LikeTargetKind string

const (
	LikeTargetVideo   LikeTargetKind = "video"
	LikeTargetComment LikeTargetKind = "comment"
	LikeTargetTweet   LikeTargetKind = "tweet"
)

// LikeTarget identifies exactly one likeable entity. Modelling the target as
// a kind/id pair keeps the "exactly one reference set" invariant structural
// instead of relying on three nullable columns.
type LikeTarget struct {
	Kind LikeTargetKind
	ID   string
}

// VideoTarget builds a like target pointing at a video.
func VideoTarget(id string) LikeTarget { return LikeTarget{Kind: LikeTargetVideo, ID: id} }

// CommentTarget builds a like target pointing at a comment.
func CommentTarget(id string) LikeTarget { return LikeTarget{Kind: LikeTargetComment, ID: id} }

// TweetTarget builds a like target pointing at a tweet.
func TweetTarget(id string) LikeTarget { return LikeTarget{Kind: LikeTargetTweet, ID: id} }

// Like is an edge between a user and a single target entity. At most one
// like exists per (likedBy, target) pair.
type Like struct {
	ID        string
	LikedBy   string
	Target    LikeTarget
	CreatedAt time.Time
}

// Subscription is a directed edge from a subscriber to a channel (both
// users). At most one subscription exists per (subscriber, channel) pair.
type Subscription struct {
	ID           string
	SubscriberID string
	ChannelID    string
	CreatedAt    time.Time
}

// Playlist is an ordered collection of video references owned by a user.
// Duplicate video entries are allowed.
type Playlist struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	VideoIDs    []string  `json:"videoIds"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SessionTokens groups the credentials issued to authenticated users. The
// access token is a signed JWT; the refresh token is an opaque value stored
// server side.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

// VideoWithOwner is the video feed read view: a video joined with its
// owner's public profile. It is computed, never persisted.
type VideoWithOwner struct {
	Video
	Owner PublicProfile `json:"owner"`
}

// CommentView is a comment thread read view entry: the comment, its owner's
// public profile, the like count and whether the requesting actor liked it.
type CommentView struct {
	ID         string        `json:"id"`
	Content    string        `json:"content"`
	Owner      PublicProfile `json:"owner"`
	LikesCount int64         `json:"likesCount"`
	IsLiked    bool          `json:"isLiked"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// ChannelStats aggregates a channel's totals. Every field is zero when the
// underlying set is empty.
type ChannelStats struct {
	TotalViews       int64 `json:"totalViews"`
	TotalSubscribers int64 `json:"totalSubscribers"`
	TotalVideos      int64 `json:"totalVideos"`
	TotalLikes       int64 `json:"totalLikes"`
}

// ChannelMember is a subscriber-list / subscribed-channels read view entry:
// the counterpart user's profile plus that user's own subscriber count.
type ChannelMember struct {
	PublicProfile
	SubscriberCount int64 `json:"subscriberCount"`
}

// ChannelProfile is the public channel page view.
type ChannelProfile struct {
	PublicProfile
	Cover           string `json:"cover"`
	SubscriberCount int64  `json:"subscriberCount"`
	SubscribedTo    int64  `json:"subscribedTo"`
	IsSubscribed    bool   `json:"isSubscribed"`
}
