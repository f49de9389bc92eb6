package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/cockroachdb/cockroach-go/v2/testserver"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidtube/backend/internal/models"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	server, err := testserver.NewTestServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "start cockroach test server: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, server.PGURL().String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to cockroach test server: %v\n", err)
		server.Stop()
		os.Exit(1)
	}

	if err := applyMigrations(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "apply migrations: %v\n", err)
		pool.Close()
		server.Stop()
		os.Exit(1)
	}

	testPool = pool

	code := m.Run()

	pool.Close()
	server.Stop()

	os.Exit(code)
}

func TestPostgresUserRepository_CreateFindAndUpdate(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresUserRepository(testPool)
	user := createTestUser(t, repo, "alice")

	dup := user
	dup.ID = uuid.NewString()
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict creating duplicate username, got %v", err)
	}

	fetched, err := repo.FindByUsername(ctx, user.Username)
	if err != nil {
		t.Fatalf("find by username: %v", err)
	}
	if fetched.ID != user.ID || fetched.Email != user.Email {
		t.Fatalf("unexpected user fetched: %+v", fetched)
	}

	updated := user
	updated.FullName = "Alice Updated"
	updated.AvatarURL = "https://cdn.example.com/new-avatar.png"
	updated.UpdatedAt = time.Now().UTC()
	if err := repo.Update(ctx, updated); err != nil {
		t.Fatalf("update user: %v", err)
	}

	fetched, err = repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if fetched.FullName != updated.FullName || fetched.AvatarURL != updated.AvatarURL {
		t.Fatalf("expected updated fields to persist, got %+v", fetched)
	}

	missing := user
	missing.ID = uuid.NewString()
	missing.Username = "ghost"
	missing.Email = "ghost@example.com"
	if err := repo.Update(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating missing user, got %v", err)
	}
}

func TestPostgresVideoRepository_FeedVisibilityAndPagination(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	videoRepo := NewPostgresVideoRepository(testPool)

	alice := createTestUser(t, userRepo, "alice")
	bob := createTestUser(t, userRepo, "bob")

	base := time.Now().UTC().Add(-time.Hour)
	var published []models.Video
	for i := 0; i < 15; i++ {
		video := testVideo(alice.ID, fmt.Sprintf("Go tutorial %02d", i), true)
		video.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := videoRepo.Create(ctx, video); err != nil {
			t.Fatalf("create video %d: %v", i, err)
		}
		published = append(published, video)
	}

	draft := testVideo(alice.ID, "Unreleased draft", false)
	draft.CreatedAt = base.Add(2 * time.Hour)
	if err := videoRepo.Create(ctx, draft); err != nil {
		t.Fatalf("create draft: %v", err)
	}

	// Bob never sees the draft; the total reflects only published videos.
	feed, total, err := videoRepo.Feed(ctx, FeedQuery{ViewerID: bob.ID, Limit: 10, Offset: 0})
	if err != nil {
		t.Fatalf("feed page 1: %v", err)
	}
	if total != 15 {
		t.Fatalf("expected total 15 for bob, got %d", total)
	}
	if len(feed) != 10 {
		t.Fatalf("expected 10 entries on page 1, got %d", len(feed))
	}
	for _, item := range feed {
		if item.ID == draft.ID {
			t.Fatal("draft leaked into another viewer's feed")
		}
		if item.Owner.Username != "alice" {
			t.Fatalf("expected owner profile join, got %+v", item.Owner)
		}
	}

	// Pages are contiguous: page 2 continues exactly where page 1 stopped.
	page2, _, err := videoRepo.Feed(ctx, FeedQuery{ViewerID: bob.ID, Limit: 10, Offset: 10})
	if err != nil {
		t.Fatalf("feed page 2: %v", err)
	}
	if len(page2) != 5 {
		t.Fatalf("expected 5 entries on page 2, got %d", len(page2))
	}
	seen := make(map[string]bool)
	for _, item := range append(feed, page2...) {
		if seen[item.ID] {
			t.Fatalf("video %s appeared on both pages", item.ID)
		}
		seen[item.ID] = true
	}
	if len(seen) != 15 {
		t.Fatalf("expected pages to cover all 15 published videos, got %d", len(seen))
	}

	// The owner sees their own draft.
	ownFeed, ownTotal, err := videoRepo.Feed(ctx, FeedQuery{ViewerID: alice.ID, OwnerID: alice.ID, Limit: 100})
	if err != nil {
		t.Fatalf("owner feed: %v", err)
	}
	if ownTotal != 16 {
		t.Fatalf("expected owner total 16, got %d", ownTotal)
	}
	if ownFeed[0].ID != draft.ID {
		t.Fatalf("expected draft first in owner feed, got %s", ownFeed[0].Title)
	}

	// Text search matches title or description, case-insensitively.
	_, searchTotal, err := videoRepo.Feed(ctx, FeedQuery{ViewerID: bob.ID, Search: "TUTORIAL 03", Limit: 10})
	if err != nil {
		t.Fatalf("search feed: %v", err)
	}
	if searchTotal != 1 {
		t.Fatalf("expected 1 search match, got %d", searchTotal)
	}

	_ = published
}

func TestPostgresLikeRepository_ToggleAndLikedVideos(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	videoRepo := NewPostgresVideoRepository(testPool)
	likeRepo := NewPostgresLikeRepository(testPool)
	statsRepo := NewPostgresStatsRepository(testPool)

	alice := createTestUser(t, userRepo, "alice")
	bob := createTestUser(t, userRepo, "bob")

	video := testVideo(alice.ID, "Alice publishes V1", true)
	if err := videoRepo.Create(ctx, video); err != nil {
		t.Fatalf("create video: %v", err)
	}

	stats, err := statsRepo.ChannelStats(ctx, alice.ID)
	if err != nil {
		t.Fatalf("stats before like: %v", err)
	}
	if stats.TotalLikes != 0 {
		t.Fatalf("expected 0 likes before toggle, got %d", stats.TotalLikes)
	}

	active, err := likeRepo.Toggle(ctx, bob.ID, models.VideoTarget(video.ID))
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !active {
		t.Fatal("expected first toggle to activate the like")
	}

	liked, err := likeRepo.LikedVideos(ctx, bob.ID)
	if err != nil {
		t.Fatalf("liked videos: %v", err)
	}
	if len(liked) != 1 || liked[0].ID != video.ID || liked[0].Owner.Username != "alice" {
		t.Fatalf("unexpected liked videos: %+v", liked)
	}

	stats, err = statsRepo.ChannelStats(ctx, alice.ID)
	if err != nil {
		t.Fatalf("stats during like: %v", err)
	}
	if stats.TotalLikes != 1 {
		t.Fatalf("expected 1 like during toggle, got %d", stats.TotalLikes)
	}

	active, err = likeRepo.Toggle(ctx, bob.ID, models.VideoTarget(video.ID))
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if active {
		t.Fatal("expected second toggle to remove the like")
	}

	liked, err = likeRepo.LikedVideos(ctx, bob.ID)
	if err != nil {
		t.Fatalf("liked videos after untoggle: %v", err)
	}
	if len(liked) != 0 {
		t.Fatalf("expected empty liked feed, got %d entries", len(liked))
	}

	stats, err = statsRepo.ChannelStats(ctx, alice.ID)
	if err != nil {
		t.Fatalf("stats after untoggle: %v", err)
	}
	if stats.TotalLikes != 0 {
		t.Fatalf("expected 0 likes after untoggle, got %d", stats.TotalLikes)
	}
}

func TestPostgresCommentRepository_ThreadView(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	videoRepo := NewPostgresVideoRepository(testPool)
	commentRepo := NewPostgresCommentRepository(testPool)
	likeRepo := NewPostgresLikeRepository(testPool)

	alice := createTestUser(t, userRepo, "alice")
	bob := createTestUser(t, userRepo, "bob")
	carol := createTestUser(t, userRepo, "carol")

	video := testVideo(alice.ID, "Commented video", true)
	if err := videoRepo.Create(ctx, video); err != nil {
		t.Fatalf("create video: %v", err)
	}

	comment := models.Comment{
		ID:        uuid.NewString(),
		OwnerID:   bob.ID,
		VideoID:   video.ID,
		Content:   "first!",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := commentRepo.Create(ctx, comment); err != nil {
		t.Fatalf("create comment: %v", err)
	}

	if _, err := likeRepo.Toggle(ctx, alice.ID, models.CommentTarget(comment.ID)); err != nil {
		t.Fatalf("alice likes comment: %v", err)
	}
	if _, err := likeRepo.Toggle(ctx, carol.ID, models.CommentTarget(comment.ID)); err != nil {
		t.Fatalf("carol likes comment: %v", err)
	}

	// likesCount equals the number of like edges; isLiked reflects the viewer.
	thread, total, err := commentRepo.ThreadForVideo(ctx, video.ID, carol.ID, 10, 0)
	if err != nil {
		t.Fatalf("thread for carol: %v", err)
	}
	if total != 1 || len(thread) != 1 {
		t.Fatalf("expected one comment, got total=%d len=%d", total, len(thread))
	}
	view := thread[0]
	if view.LikesCount != 2 {
		t.Fatalf("expected likesCount 2, got %d", view.LikesCount)
	}
	if !view.IsLiked {
		t.Fatal("expected isLiked true for carol")
	}
	if view.Owner.Username != "bob" {
		t.Fatalf("expected owner join for bob, got %+v", view.Owner)
	}

	thread, _, err = commentRepo.ThreadForVideo(ctx, video.ID, bob.ID, 10, 0)
	if err != nil {
		t.Fatalf("thread for bob: %v", err)
	}
	if thread[0].IsLiked {
		t.Fatal("expected isLiked false for bob")
	}
}

func TestPostgresSubscriptionRepository_ToggleAndViews(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	subRepo := NewPostgresSubscriptionRepository(testPool)

	channel := createTestUser(t, userRepo, "channel")
	fan := createTestUser(t, userRepo, "fan")
	other := createTestUser(t, userRepo, "other")

	active, err := subRepo.Toggle(ctx, fan.ID, channel.ID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if !active {
		t.Fatal("expected subscribe to activate")
	}
	if _, err := subRepo.Toggle(ctx, other.ID, channel.ID); err != nil {
		t.Fatalf("second subscriber: %v", err)
	}

	subscribers, err := subRepo.Subscribers(ctx, channel.ID)
	if err != nil {
		t.Fatalf("subscribers: %v", err)
	}
	if len(subscribers) != 2 {
		t.Fatalf("expected 2 subscribers, got %d", len(subscribers))
	}

	channels, err := subRepo.SubscribedChannels(ctx, fan.ID)
	if err != nil {
		t.Fatalf("subscribed channels: %v", err)
	}
	if len(channels) != 1 || channels[0].Username != "channel" {
		t.Fatalf("unexpected subscribed channels: %+v", channels)
	}
	if channels[0].SubscriberCount != 2 {
		t.Fatalf("expected nested subscriber count 2, got %d", channels[0].SubscriberCount)
	}

	subs, subscribedTo, isSubscribed, err := subRepo.Overview(ctx, channel.ID, fan.ID)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if subs != 2 || subscribedTo != 0 || !isSubscribed {
		t.Fatalf("unexpected overview: subs=%d subscribedTo=%d isSubscribed=%v", subs, subscribedTo, isSubscribed)
	}

	// Toggling twice returns the edge to its original state.
	if _, err := subRepo.Toggle(ctx, fan.ID, channel.ID); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	subscribers, err = subRepo.Subscribers(ctx, channel.ID)
	if err != nil {
		t.Fatalf("subscribers after unsubscribe: %v", err)
	}
	if len(subscribers) != 1 {
		t.Fatalf("expected 1 subscriber after unsubscribe, got %d", len(subscribers))
	}
}

func TestPostgresStatsRepository_EmptyChannel(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	statsRepo := NewPostgresStatsRepository(testPool)

	lurker := createTestUser(t, userRepo, "lurker")

	stats, err := statsRepo.ChannelStats(ctx, lurker.ID)
	if err != nil {
		t.Fatalf("stats for empty channel: %v", err)
	}
	if stats != (models.ChannelStats{}) {
		t.Fatalf("expected all-zero stats, got %+v", stats)
	}

	videos, total, err := statsRepo.ChannelVideos(ctx, lurker.ID, 10, 0)
	if err != nil {
		t.Fatalf("videos for empty channel: %v", err)
	}
	if len(videos) != 0 || total != 0 {
		t.Fatalf("expected empty channel videos, got len=%d total=%d", len(videos), total)
	}
}

func TestPostgresPlaylistRepository_VideoOrdering(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	videoRepo := NewPostgresVideoRepository(testPool)
	playlistRepo := NewPostgresPlaylistRepository(testPool)

	owner := createTestUser(t, userRepo, "curator")

	first := testVideo(owner.ID, "First", true)
	second := testVideo(owner.ID, "Second", true)
	for _, v := range []models.Video{first, second} {
		if err := videoRepo.Create(ctx, v); err != nil {
			t.Fatalf("create video: %v", err)
		}
	}

	playlist := models.Playlist{
		ID:          uuid.NewString(),
		OwnerID:     owner.ID,
		Name:        "Favorites",
		Description: "weekend watching",
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	if err := playlistRepo.Create(ctx, playlist); err != nil {
		t.Fatalf("create playlist: %v", err)
	}

	for _, id := range []string{first.ID, second.ID, first.ID} {
		if err := playlistRepo.AddVideo(ctx, playlist.ID, id); err != nil {
			t.Fatalf("add video %s: %v", id, err)
		}
	}

	fetched, err := playlistRepo.FindByID(ctx, playlist.ID)
	if err != nil {
		t.Fatalf("find playlist: %v", err)
	}
	want := []string{first.ID, second.ID, first.ID}
	if len(fetched.VideoIDs) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(fetched.VideoIDs))
	}
	for i, id := range want {
		if fetched.VideoIDs[i] != id {
			t.Fatalf("unexpected order at %d: got %s want %s", i, fetched.VideoIDs[i], id)
		}
	}

	// RemoveVideo clears every occurrence of the reference.
	if err := playlistRepo.RemoveVideo(ctx, playlist.ID, first.ID); err != nil {
		t.Fatalf("remove video: %v", err)
	}
	fetched, err = playlistRepo.FindByID(ctx, playlist.ID)
	if err != nil {
		t.Fatalf("find playlist after removal: %v", err)
	}
	if len(fetched.VideoIDs) != 1 || fetched.VideoIDs[0] != second.ID {
		t.Fatalf("unexpected playlist after removal: %+v", fetched.VideoIDs)
	}
}

func applyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrationsDir := filepath.Join("..", "..", "migrations")
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		contents, err := os.ReadFile(filepath.Join(migrationsDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		if _, err := pool.Exec(ctx, string(contents)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func resetDatabase(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	conn, err := testPool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire connection: %v", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "TRUNCATE TABLE playlist_videos, playlists, subscriptions, likes, comments, tweets, videos, sessions, users CASCADE"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func createTestUser(t *testing.T, repo *PostgresUserRepository, username string) models.User {
	t.Helper()
	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        username + "@example.com",
		FullName:     username,
		PasswordHash: "password-hash",
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return user
}

func testVideo(ownerID, title string, published bool) models.Video {
	return models.Video{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Title:        title,
		Description:  "description of " + title,
		VideoURL:     "https://cdn.example.com/videos/" + uuid.NewString() + ".mp4",
		ThumbnailURL: "https://cdn.example.com/thumbs/" + uuid.NewString() + ".jpg",
		Duration:     120,
		IsPublished:  published,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
}
