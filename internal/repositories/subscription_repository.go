package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
)

// PostgresSubscriptionRepository provides PostgreSQL-backed persistence for
// subscription edges.
type PostgresSubscriptionRepository struct {
	pool db.Pool
}

// NewPostgresSubscriptionRepository constructs a subscription repository backed by PostgreSQL.
func NewPostgresSubscriptionRepository(pool db.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

// Toggle flips the subscription edge for the (subscriber, channel) pair and
// reports the resulting state. The unique index over the pair serialises
// concurrent toggles from the same subscriber.
func (r *PostgresSubscriptionRepository) Toggle(ctx context.Context, subscriberID, channelID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (subscriber_id, channel_id) DO NOTHING
    `, uuid.NewString(), subscriberID, channelID, time.Now().UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("insert subscription: %w", err)
	}

	if tag.RowsAffected() == 1 {
		return true, nil
	}

	if _, err := conn.Exec(ctx, `
        DELETE FROM subscriptions
        WHERE subscriber_id = $1 AND channel_id = $2
    `, subscriberID, channelID); err != nil {
		return false, fmt.Errorf("delete subscription: %w", err)
	}

	return false, nil
}

// Subscribers composes the subscriber-list read view: each subscriber's
// public profile plus the size of that subscriber's own audience as a
// correlated aggregate.
func (r *PostgresSubscriptionRepository) Subscribers(ctx context.Context, channelID string) ([]models.ChannelMember, error) {
	return r.memberView(ctx, `
        SELECT u.id, u.username, u.full_name, u.avatar_url,
               (SELECT count(*) FROM subscriptions s2 WHERE s2.channel_id = u.id) AS subscriber_count
        FROM subscriptions s
        JOIN users u ON u.id = s.subscriber_id
        WHERE s.channel_id = $1
        ORDER BY s.created_at DESC
    `, channelID)
}

// SubscribedChannels composes the channels-subscribed-by-user read view.
func (r *PostgresSubscriptionRepository) SubscribedChannels(ctx context.Context, subscriberID string) ([]models.ChannelMember, error) {
	return r.memberView(ctx, `
        SELECT u.id, u.username, u.full_name, u.avatar_url,
               (SELECT count(*) FROM subscriptions s2 WHERE s2.channel_id = u.id) AS subscriber_count
        FROM subscriptions s
        JOIN users u ON u.id = s.channel_id
        WHERE s.subscriber_id = $1
        ORDER BY s.created_at DESC
    `, subscriberID)
}

func (r *PostgresSubscriptionRepository) memberView(ctx context.Context, query, key string) ([]models.ChannelMember, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, key)
	if err != nil {
		return nil, fmt.Errorf("query subscription members: %w", err)
	}
	defer rows.Close()

	var members []models.ChannelMember
	for rows.Next() {
		var member models.ChannelMember
		if err := rows.Scan(&member.ID, &member.Username, &member.FullName, &member.Avatar, &member.SubscriberCount); err != nil {
			return nil, fmt.Errorf("scan subscription member: %w", err)
		}
		members = append(members, member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscription members: %w", err)
	}

	return members, nil
}

// Overview returns a channel's subscriber count, how many channels it
// subscribes to, and whether the viewer currently subscribes to it. All
// aggregates are zero for an untouched channel.
func (r *PostgresSubscriptionRepository) Overview(ctx context.Context, channelID, viewerID string) (int64, int64, bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, 0, false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT (SELECT count(*) FROM subscriptions WHERE channel_id = $1),
               (SELECT count(*) FROM subscriptions WHERE subscriber_id = $1),
               EXISTS (SELECT 1 FROM subscriptions WHERE channel_id = $1 AND subscriber_id = $2)
    `, channelID, viewerID)

	var (
		subscribers  int64
		subscribedTo int64
		isSubscribed bool
	)
	if err := row.Scan(&subscribers, &subscribedTo, &isSubscribed); err != nil {
		return 0, 0, false, fmt.Errorf("select channel overview: %w", err)
	}

	return subscribers, subscribedTo, isSubscribed, nil
}

var _ SubscriptionRepository = (*PostgresSubscriptionRepository)(nil)
