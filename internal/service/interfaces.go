package service

import (
	"context"

	"vidtube/internal/domain"
)

// AuthService manages the credential lifecycle: paired access/refresh token
// issuance, rotation, and validation.
type AuthService interface {
	// IssueTokenPair signs a new access/refresh pair for the user and stores
	// the refresh token on the user record, superseding any prior one
	IssueTokenPair(ctx context.Context, userID string) (*domain.TokenPair, error)

	// Login authenticates by username or email plus password and issues tokens
	Login(ctx context.Context, identifier, password string) (*domain.PublicUser, *domain.TokenPair, error)

	// Refresh exchanges a valid, current refresh token for a new pair,
	// invalidating the presented token
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)

	// Logout clears the stored refresh token, ending the session family
	Logout(ctx context.Context, userID string) error

	// Authenticate verifies an access token and loads its user. Access tokens
	// are stateless; no stored value is consulted.
	Authenticate(ctx context.Context, accessToken string) (*domain.User, error)
}

// UserService covers registration, profile management, and the derived
// channel/watch-history queries.
type UserService interface {
	// Register creates a user with uploaded avatar/cover media
	Register(ctx context.Context, req *domain.RegisterRequest, avatarPath, coverPath string) (*domain.PublicUser, error)

	// UpdateAccountDetails applies the non-empty fields of req
	UpdateAccountDetails(ctx context.Context, userID string, req *domain.UpdateAccountRequest) (*domain.PublicUser, error)

	// ChangePassword verifies the old password and stores a new hash
	ChangePassword(ctx context.Context, userID string, req *domain.ChangePasswordRequest) error

	// UpdateAvatar uploads a new avatar and stores its URL
	UpdateAvatar(ctx context.Context, userID, localPath string) (*domain.PublicUser, error)

	// UpdateCoverImage uploads a new cover image and stores its URL
	UpdateCoverImage(ctx context.Context, userID, localPath string) (*domain.PublicUser, error)

	// GetChannelProfile resolves a channel by case-insensitive username and
	// computes its viewer-relative derived fields. viewerID may be empty.
	GetChannelProfile(ctx context.Context, username, viewerID string) (*domain.ChannelProfile, error)

	// GetWatchHistory returns the user's history in stored order, dropping
	// references to videos that no longer exist
	GetWatchHistory(ctx context.Context, userID string) ([]*domain.VideoWithOwner, error)

	// RecordWatch appends a video to the user's history and bumps its views
	RecordWatch(ctx context.Context, userID, videoID string) error
}

// VideoService covers publishing and the listing query
type VideoService interface {
	// List returns one page of published videos joined with owner fields
	List(ctx context.Context, filter domain.VideoFilter, sort domain.VideoSort, page domain.Pagination) (*domain.VideoPage, error)

	// Publish uploads the media files and creates the video
	Publish(ctx context.Context, ownerID string, req *domain.PublishVideoRequest, videoPath, thumbnailPath string) (*domain.Video, error)

	// GetByID fetches a single video
	GetByID(ctx context.Context, videoID string) (*domain.Video, error)

	// Update applies owner-only metadata changes; thumbnailPath may be empty
	Update(ctx context.Context, userID, videoID string, req *domain.UpdateVideoRequest, thumbnailPath string) (*domain.Video, error)

	// Delete removes an owned video
	Delete(ctx context.Context, userID, videoID string) error

	// TogglePublish flips the published flag on an owned video
	TogglePublish(ctx context.Context, userID, videoID string) (bool, error)
}

// SubscriptionService manages follow edges between users
type SubscriptionService interface {
	// Subscribe adds a (subscriber, channel) edge; duplicates are a no-op
	Subscribe(ctx context.Context, subscriberID, channelID string) error

	// Unsubscribe removes the (subscriber, channel) edge
	Unsubscribe(ctx context.Context, subscriberID, channelID string) error
}

// Services aggregates all service interfaces
type Services struct {
	Auth         AuthService
	User         UserService
	Video        VideoService
	Subscription SubscriptionService
}
