package repository

import (
	"context"

	"vidtube/internal/domain"
)

// UserRepository defines the interface for user data operations.
// Lookup methods return (nil, nil) when no row matches.
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByUsernameOrEmail retrieves a user whose username or email equals identifier
	GetByUsernameOrEmail(ctx context.Context, identifier string) (*domain.User, error)

	// GetByUsername retrieves a user by case-insensitive username match
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// UsernameTaken reports whether another user already holds the username
	UsernameTaken(ctx context.Context, username, excludeID string) (bool, error)

	// EmailTaken reports whether another user already holds the email
	EmailTaken(ctx context.Context, email, excludeID string) (bool, error)

	// Update updates an existing user's profile fields and password hash
	Update(ctx context.Context, user *domain.User) error

	// UpdateRefreshToken overwrites the stored refresh token slot; nil clears it
	UpdateRefreshToken(ctx context.Context, userID string, token *string) error

	// GetWatchHistoryIDs returns the user's watch history video ids in stored order
	GetWatchHistoryIDs(ctx context.Context, userID string) ([]string, error)

	// AppendWatchHistory appends a video reference to the user's history list
	AppendWatchHistory(ctx context.Context, userID, videoID string) error
}

// VideoRepository defines the interface for video data operations
type VideoRepository interface {
	// Create creates a new video
	Create(ctx context.Context, video *domain.Video) error

	// GetByID retrieves a video by ID; (nil, nil) when absent
	GetByID(ctx context.Context, id string) (*domain.Video, error)

	// GetByIDsWithOwner loads videos with owner projection, keyed by video id.
	// Ids without a live video are simply absent from the result.
	GetByIDsWithOwner(ctx context.Context, ids []string) (map[string]*domain.VideoWithOwner, error)

	// List returns published videos joined with owner fields. sortColumn and
	// sortDirection must already be validated against the allowed sets.
	List(ctx context.Context, filter domain.VideoFilter, sortColumn, sortDirection string, offset, limit int) ([]*domain.VideoWithOwner, error)

	// Update persists mutable video fields
	Update(ctx context.Context, video *domain.Video) error

	// Delete removes a video
	Delete(ctx context.Context, id string) error

	// IncrementViews bumps the view counter
	IncrementViews(ctx context.Context, id string) error
}

// SubscriptionRepository defines the interface for follow-edge operations
type SubscriptionRepository interface {
	// Create inserts a (subscriber, channel) edge; duplicate edges are a no-op
	// and report created=false
	Create(ctx context.Context, subscriberID, channelID string) (created bool, err error)

	// Delete removes a (subscriber, channel) edge if present
	Delete(ctx context.Context, subscriberID, channelID string) error

	// Exists reports whether the (subscriber, channel) edge is present
	Exists(ctx context.Context, subscriberID, channelID string) (bool, error)

	// CountByChannel counts edges pointing at the channel (its subscribers)
	CountByChannel(ctx context.Context, channelID string) (int64, error)

	// CountBySubscriber counts edges originating from the user (channels followed)
	CountBySubscriber(ctx context.Context, subscriberID string) (int64, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	User         UserRepository
	Video        VideoRepository
	Subscription SubscriptionRepository
}
