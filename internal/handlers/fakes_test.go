package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]models.User)}
}

func (s *fakeUserStore) Create(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return repositories.ErrConflict
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *fakeUserStore) FindByUsername(_ context.Context, username string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *fakeUserStore) Update(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.users[user.ID] = user
	return nil
}

type fakeVideoStore struct {
	mu     sync.Mutex
	videos map[string]models.Video
	users  *fakeUserStore
}

func newFakeVideoStore(users *fakeUserStore) *fakeVideoStore {
	return &fakeVideoStore{videos: make(map[string]models.Video), users: users}
}

func (s *fakeVideoStore) Create(_ context.Context, video models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videos[video.ID] = video
	return nil
}

func (s *fakeVideoStore) FindByID(_ context.Context, id string) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if video, ok := s.videos[id]; ok {
		return video, nil
	}
	return models.Video{}, repositories.ErrNotFound
}

func (s *fakeVideoStore) Update(_ context.Context, video models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[video.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.videos[video.ID] = video
	return nil
}

func (s *fakeVideoStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.videos, id)
	return nil
}

func (s *fakeVideoStore) SetPublished(_ context.Context, id string, published bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok {
		return repositories.ErrNotFound
	}
	video.IsPublished = published
	s.videos[id] = video
	return nil
}

func (s *fakeVideoStore) IncrementViews(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok {
		return repositories.ErrNotFound
	}
	video.Views++
	s.videos[id] = video
	return nil
}

func (s *fakeVideoStore) Feed(ctx context.Context, q repositories.FeedQuery) ([]models.VideoWithOwner, int64, error) {
	s.mu.Lock()
	var matched []models.Video
	for _, video := range s.videos {
		if !video.IsPublished && video.OwnerID != q.ViewerID {
			continue
		}
		if q.OwnerID != "" && video.OwnerID != q.OwnerID {
			continue
		}
		if q.Search != "" {
			needle := strings.ToLower(q.Search)
			if !strings.Contains(strings.ToLower(video.Title), needle) &&
				!strings.Contains(strings.ToLower(video.Description), needle) {
				continue
			}
		}
		matched = append(matched, video)
	}
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		if q.SortAsc {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if q.Offset >= len(matched) {
		return nil, total, nil
	}
	end := q.Offset + q.Limit
	if end > len(matched) {
		end = len(matched)
	}

	var result []models.VideoWithOwner
	for _, video := range matched[q.Offset:end] {
		owner, err := s.users.FindByID(ctx, video.OwnerID)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, models.VideoWithOwner{Video: video, Owner: owner.Profile()})
	}
	return result, total, nil
}

type fakeLikeStore struct {
	mu     sync.Mutex
	likes  map[string]map[models.LikeTarget]bool
	videos *fakeVideoStore
}

func newFakeLikeStore(videos *fakeVideoStore) *fakeLikeStore {
	return &fakeLikeStore{likes: make(map[string]map[models.LikeTarget]bool), videos: videos}
}

func (s *fakeLikeStore) Toggle(_ context.Context, likedBy string, target models.LikeTarget) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.likes[likedBy] == nil {
		s.likes[likedBy] = make(map[models.LikeTarget]bool)
	}
	if s.likes[likedBy][target] {
		delete(s.likes[likedBy], target)
		return false, nil
	}
	s.likes[likedBy][target] = true
	return true, nil
}

func (s *fakeLikeStore) LikedVideos(ctx context.Context, userID string) ([]models.VideoWithOwner, error) {
	s.mu.Lock()
	var ids []string
	for target := range s.likes[userID] {
		if target.Kind == models.LikeTargetVideo {
			ids = append(ids, target.ID)
		}
	}
	s.mu.Unlock()

	var liked []models.VideoWithOwner
	for _, id := range ids {
		video, err := s.videos.FindByID(ctx, id)
		if err != nil {
			continue
		}
		owner, err := s.videos.users.FindByID(ctx, video.OwnerID)
		if err != nil {
			continue
		}
		liked = append(liked, models.VideoWithOwner{Video: video, Owner: owner.Profile()})
	}
	return liked, nil
}

type fakeSubscriptionStore struct {
	mu    sync.Mutex
	edges map[string]map[string]bool // subscriber -> channel
	users *fakeUserStore
}

func newFakeSubscriptionStore(users *fakeUserStore) *fakeSubscriptionStore {
	return &fakeSubscriptionStore{edges: make(map[string]map[string]bool), users: users}
}

func (s *fakeSubscriptionStore) Toggle(_ context.Context, subscriberID, channelID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.edges[subscriberID] == nil {
		s.edges[subscriberID] = make(map[string]bool)
	}
	if s.edges[subscriberID][channelID] {
		delete(s.edges[subscriberID], channelID)
		return false, nil
	}
	s.edges[subscriberID][channelID] = true
	return true, nil
}

func (s *fakeSubscriptionStore) Subscribers(ctx context.Context, channelID string) ([]models.ChannelMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var members []models.ChannelMember
	for subscriber, channels := range s.edges {
		if channels[channelID] {
			user, err := s.users.FindByID(ctx, subscriber)
			if err != nil {
				continue
			}
			members = append(members, models.ChannelMember{PublicProfile: user.Profile()})
		}
	}
	return members, nil
}

func (s *fakeSubscriptionStore) SubscribedChannels(ctx context.Context, subscriberID string) ([]models.ChannelMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var members []models.ChannelMember
	for channel := range s.edges[subscriberID] {
		user, err := s.users.FindByID(ctx, channel)
		if err != nil {
			continue
		}
		members = append(members, models.ChannelMember{PublicProfile: user.Profile()})
	}
	return members, nil
}

func (s *fakeSubscriptionStore) Overview(_ context.Context, channelID, viewerID string) (int64, int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var subscribers int64
	for _, channels := range s.edges {
		if channels[channelID] {
			subscribers++
		}
	}
	subscribedTo := int64(len(s.edges[channelID]))
	isSubscribed := viewerID != "" && s.edges[viewerID][channelID]
	return subscribers, subscribedTo, isSubscribed, nil
}

type fakeCommentStore struct {
	mu       sync.Mutex
	comments map[string]models.Comment
	users    *fakeUserStore
}

func newFakeCommentStore(users *fakeUserStore) *fakeCommentStore {
	return &fakeCommentStore{comments: make(map[string]models.Comment), users: users}
}

func (s *fakeCommentStore) Create(_ context.Context, comment models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments[comment.ID] = comment
	return nil
}

func (s *fakeCommentStore) FindByID(_ context.Context, id string) (models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if comment, ok := s.comments[id]; ok {
		return comment, nil
	}
	return models.Comment{}, repositories.ErrNotFound
}

func (s *fakeCommentStore) ThreadForVideo(ctx context.Context, videoID, viewerID string, limit, offset int) ([]models.CommentView, int64, error) {
	s.mu.Lock()
	var matched []models.Comment
	for _, comment := range s.comments {
		if comment.VideoID == videoID {
			matched = append(matched, comment)
		}
	}
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}

	var views []models.CommentView
	for _, comment := range matched[offset:end] {
		owner, err := s.users.FindByID(ctx, comment.OwnerID)
		if err != nil {
			return nil, 0, err
		}
		views = append(views, models.CommentView{
			ID:        comment.ID,
			Content:   comment.Content,
			Owner:     owner.Profile(),
			CreatedAt: comment.CreatedAt,
		})
	}
	return views, total, nil
}

func (s *fakeCommentStore) UpdateContent(_ context.Context, id, content string) (models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comment, ok := s.comments[id]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	comment.Content = content
	s.comments[id] = comment
	return comment, nil
}

func (s *fakeCommentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

type fakeTweetStore struct {
	mu     sync.Mutex
	tweets map[string]models.Tweet
}

func newFakeTweetStore() *fakeTweetStore {
	return &fakeTweetStore{tweets: make(map[string]models.Tweet)}
}

func (s *fakeTweetStore) Create(_ context.Context, tweet models.Tweet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tweets[tweet.ID] = tweet
	return nil
}

func (s *fakeTweetStore) FindByID(_ context.Context, id string) (models.Tweet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tweet, ok := s.tweets[id]; ok {
		return tweet, nil
	}
	return models.Tweet{}, repositories.ErrNotFound
}

func (s *fakeTweetStore) ListForUser(_ context.Context, ownerID string, limit, offset int) ([]models.Tweet, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []models.Tweet
	for _, tweet := range s.tweets {
		if tweet.OwnerID == ownerID {
			matched = append(matched, tweet)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (s *fakeTweetStore) UpdateContent(_ context.Context, id, content string) (models.Tweet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tweet, ok := s.tweets[id]
	if !ok {
		return models.Tweet{}, repositories.ErrNotFound
	}
	tweet.Content = content
	s.tweets[id] = tweet
	return tweet, nil
}

func (s *fakeTweetStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tweets[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.tweets, id)
	return nil
}

type fakePlaylistStore struct {
	mu        sync.Mutex
	playlists map[string]models.Playlist
}

func newFakePlaylistStore() *fakePlaylistStore {
	return &fakePlaylistStore{playlists: make(map[string]models.Playlist)}
}

func (s *fakePlaylistStore) Create(_ context.Context, playlist models.Playlist) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playlists[playlist.ID] = playlist
	return nil
}

func (s *fakePlaylistStore) FindByID(_ context.Context, id string) (models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if playlist, ok := s.playlists[id]; ok {
		return playlist, nil
	}
	return models.Playlist{}, repositories.ErrNotFound
}

func (s *fakePlaylistStore) ListForUser(_ context.Context, ownerID string) ([]models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []models.Playlist
	for _, playlist := range s.playlists {
		if playlist.OwnerID == ownerID {
			matched = append(matched, playlist)
		}
	}
	return matched, nil
}

func (s *fakePlaylistStore) UpdateDetails(_ context.Context, id, name, description string) (models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	playlist, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	playlist.Name = name
	playlist.Description = description
	s.playlists[id] = playlist
	return playlist, nil
}

func (s *fakePlaylistStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.playlists[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.playlists, id)
	return nil
}

func (s *fakePlaylistStore) AddVideo(_ context.Context, playlistID, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	playlist, ok := s.playlists[playlistID]
	if !ok {
		return repositories.ErrNotFound
	}
	playlist.VideoIDs = append(playlist.VideoIDs, videoID)
	s.playlists[playlistID] = playlist
	return nil
}

func (s *fakePlaylistStore) RemoveVideo(_ context.Context, playlistID, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	playlist, ok := s.playlists[playlistID]
	if !ok {
		return repositories.ErrNotFound
	}
	var kept []string
	for _, id := range playlist.VideoIDs {
		if id != videoID {
			kept = append(kept, id)
		}
	}
	playlist.VideoIDs = kept
	s.playlists[playlistID] = playlist
	return nil
}

type fakeStats struct {
	stats models.ChannelStats
	err   error
}

func (s fakeStats) ChannelStats(context.Context, string) (models.ChannelStats, error) {
	return s.stats, s.err
}

type fakeChannelVideos struct {
	videos *fakeVideoStore
}

func (s fakeChannelVideos) ChannelVideos(_ context.Context, ownerID string, limit, offset int) ([]models.Video, int64, error) {
	s.videos.mu.Lock()
	defer s.videos.mu.Unlock()
	var matched []models.Video
	for _, video := range s.videos.videos {
		if video.OwnerID == ownerID {
			matched = append(matched, video)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

// testEnv bundles the fake stores behind a routed test server.
type testEnv struct {
	users         *fakeUserStore
	videos        *fakeVideoStore
	tweets        *fakeTweetStore
	comments      *fakeCommentStore
	likes         *fakeLikeStore
	subscriptions *fakeSubscriptionStore
	playlists     *fakePlaylistStore
	sessions      *auth.Manager
	mux           *http.ServeMux
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := newFakeUserStore()
	videos := newFakeVideoStore(users)
	sessions := auth.NewManager("test-secret", 15*time.Minute, time.Hour, auth.NewInMemorySessionStore())

	env := &testEnv{
		users:         users,
		videos:        videos,
		tweets:        newFakeTweetStore(),
		comments:      newFakeCommentStore(users),
		likes:         newFakeLikeStore(videos),
		subscriptions: newFakeSubscriptionStore(users),
		playlists:     newFakePlaylistStore(),
		sessions:      sessions,
		mux:           http.NewServeMux(),
	}

	RegisterRoutes(env.mux, Dependencies{
		Users:         env.users,
		Sessions:      env.sessions,
		Videos:        env.videos,
		Tweets:        env.tweets,
		Comments:      env.comments,
		Likes:         env.likes,
		Subscriptions: env.subscriptions,
		Playlists:     env.playlists,
		Stats:         fakeStats{},
		ChannelVideos: fakeChannelVideos{videos: env.videos},
	})

	return env
}

func (e *testEnv) createUser(t *testing.T, username string) models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        username + "@example.com",
		FullName:     username,
		PasswordHash: string(hashed),
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := e.users.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (e *testEnv) createVideo(t *testing.T, ownerID, title string, published bool) models.Video {
	t.Helper()
	video := models.Video{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       title,
		VideoURL:    "https://cdn.example.com/v.mp4",
		IsPublished: published,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	if err := e.videos.Create(context.Background(), video); err != nil {
		t.Fatalf("create video: %v", err)
	}
	return video
}

// do performs a request against the routed mux, optionally authenticated as
// the provided user.
func (e *testEnv) do(t *testing.T, req *http.Request, as string) *httptest.ResponseRecorder {
	t.Helper()
	if as != "" {
		tokens, err := e.sessions.Issue(req.Context(), as)
		if err != nil {
			t.Fatalf("issue session: %v", err)
		}
		req.AddCookie(&http.Cookie{Name: middleware.AccessCookie, Value: tokens.AccessToken})
		req.AddCookie(&http.Cookie{Name: middleware.RefreshCookie, Value: tokens.RefreshToken})
	}
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}
