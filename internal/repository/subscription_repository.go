package repository

import (
	"context"
	"fmt"

	"vidtube/pkg/database"

	"github.com/google/uuid"
)

// subscriptionRepository handles follow-edge persistence with PostgreSQL
type subscriptionRepository struct {
	db *database.PostgresDB
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *database.PostgresDB) SubscriptionRepository {
	return &subscriptionRepository{
		db: db,
	}
}

// Create inserts a (subscriber, channel) edge. The unique constraint makes a
// duplicate subscribe a no-op; created reports whether a row was inserted.
func (r *subscriptionRepository) Create(ctx context.Context, subscriberID, channelID string) (bool, error) {
	query := `
		INSERT INTO subscriptions (id, subscriber_id, channel_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (subscriber_id, channel_id) DO NOTHING
	`

	tag, err := r.db.Pool.Exec(ctx, query, uuid.NewString(), subscriberID, channelID)
	if err != nil {
		return false, fmt.Errorf("failed to create subscription: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Delete removes a (subscriber, channel) edge if present
func (r *subscriptionRepository) Delete(ctx context.Context, subscriberID, channelID string) error {
	query := `DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2`

	if _, err := r.db.Pool.Exec(ctx, query, subscriberID, channelID); err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}

	return nil
}

// Exists reports whether the (subscriber, channel) edge is present
func (r *subscriptionRepository) Exists(ctx context.Context, subscriberID, channelID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2)`

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, query, subscriberID, channelID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check subscription: %w", err)
	}

	return exists, nil
}

// CountByChannel counts edges pointing at the channel (its subscribers)
func (r *subscriptionRepository) CountByChannel(ctx context.Context, channelID string) (int64, error) {
	query := `SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1`

	var count int64
	if err := r.db.Pool.QueryRow(ctx, query, channelID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count subscribers: %w", err)
	}

	return count, nil
}

// CountBySubscriber counts edges originating from the user (channels followed)
func (r *subscriptionRepository) CountBySubscriber(ctx context.Context, subscriberID string) (int64, error) {
	query := `SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = $1`

	var count int64
	if err := r.db.Pool.QueryRow(ctx, query, subscriberID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	return count, nil
}
