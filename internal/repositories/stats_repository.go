package repositories

import (
	"context"
	"fmt"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
)

// PostgresStatsRepository computes the channel dashboard aggregates.
type PostgresStatsRepository struct {
	pool db.Pool
}

// NewPostgresStatsRepository constructs a stats repository backed by PostgreSQL.
func NewPostgresStatsRepository(pool db.Pool) *PostgresStatsRepository {
	return &PostgresStatsRepository{pool: pool}
}

// ChannelStats returns the four channel aggregates in a single round trip.
// COALESCE keeps the view-sum at zero for a channel with no videos; the
// counts are zero by construction. A brand-new channel therefore yields
// {0,0,0,0} rather than an error.
func (r *PostgresStatsRepository) ChannelStats(ctx context.Context, channelID string) (models.ChannelStats, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.ChannelStats{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT COALESCE((SELECT sum(views) FROM videos WHERE owner_id = $1), 0),
               (SELECT count(*) FROM subscriptions WHERE channel_id = $1),
               (SELECT count(*) FROM videos WHERE owner_id = $1),
               (SELECT count(*)
                  FROM likes l
                  JOIN videos v ON v.id = l.target_id AND l.target_kind = 'video'
                 WHERE v.owner_id = $1)
    `, channelID)

	var stats models.ChannelStats
	if err := row.Scan(&stats.TotalViews, &stats.TotalSubscribers, &stats.TotalVideos, &stats.TotalLikes); err != nil {
		return models.ChannelStats{}, fmt.Errorf("select channel stats: %w", err)
	}

	return stats, nil
}

// ChannelVideos lists a channel owner's videos newest first, including
// unpublished ones. This view backs the owner dashboard only; public
// listings go through VideoRepository.Feed.
func (r *PostgresStatsRepository) ChannelVideos(ctx context.Context, ownerID string, limit, offset int) ([]models.Video, int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, owner_id, title, description, video_url, thumbnail_url,
               duration_seconds, views, is_published, created_at, updated_at,
               count(*) OVER () AS total
        FROM videos
        WHERE owner_id = $1
        ORDER BY created_at DESC, id DESC
        LIMIT $2 OFFSET $3
    `, ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query channel videos: %w", err)
	}
	defer rows.Close()

	var (
		videos []models.Video
		total  int64
	)
	for rows.Next() {
		var video models.Video
		if err := rows.Scan(
			&video.ID, &video.OwnerID, &video.Title, &video.Description, &video.VideoURL, &video.ThumbnailURL,
			&video.Duration, &video.Views, &video.IsPublished, &video.CreatedAt, &video.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan channel video: %w", err)
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate channel videos: %w", err)
	}

	return videos, total, nil
}

var _ StatsRepository = (*PostgresStatsRepository)(nil)
