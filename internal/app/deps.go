package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/handlers"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/views"
)

// appResources groups background collaborators that need an orderly shutdown.
type appResources struct {
	cleaner *media.Cleaner
}

// buildDependencies wires together concrete implementations used by the HTTP
// handlers.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config, logger *slog.Logger) (handlers.Dependencies, appResources, error) {
	sessionStore := repositories.NewPostgresSessionStore(pool)
	statsRepo := repositories.NewPostgresStatsRepository(pool)

	storage, err := media.NewS3Storage(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, appResources{}, err
	}

	cleaner := media.NewCleaner(storage, media.CleanerConfig{QueueSize: 32, Workers: 2}, logger)

	var stats handlers.StatsProvider
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		stats = views.NewRedisStats(statsRepo, client, cfg.StatsTTL)
	} else {
		stats = views.NewCachingStats(statsRepo, cfg.StatsTTL)
	}

	deps := handlers.Dependencies{
		Users:         repositories.NewPostgresUserRepository(pool),
		Sessions:      auth.NewManager(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL, sessionStore),
		Videos:        repositories.NewPostgresVideoRepository(pool),
		Tweets:        repositories.NewPostgresTweetRepository(pool),
		Comments:      repositories.NewPostgresCommentRepository(pool),
		Likes:         repositories.NewPostgresLikeRepository(pool),
		Subscriptions: repositories.NewPostgresSubscriptionRepository(pool),
		Playlists:     repositories.NewPostgresPlaylistRepository(pool),
		Stats:         stats,
		ChannelVideos: statsRepo,

		Storage: storage,
		Cleaner: cleaner,
		Prober:  media.NewFFProbe(cfg.FFProbePath, cfg.FFProbeTimeout),

		Limiter: middleware.NewIPRateLimiter(10, time.Minute, 5, 10*time.Minute),
		Cookies: handlers.CookieConfig{Domain: cfg.CookieDomain, Secure: cfg.CookieSecure},

		MaxUploadBytes:     cfg.MaxUploadBytes,
		AllowSelfSubscribe: cfg.AllowSelfSubscribe,
	}

	return deps, appResources{cleaner: cleaner}, nil
}
