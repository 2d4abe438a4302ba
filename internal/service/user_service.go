package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"vidtube/internal/domain"
	"vidtube/internal/repository"
	"vidtube/pkg/errors"
	"vidtube/pkg/logger"
	"vidtube/pkg/storage"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// userService implements UserService
type userService struct {
	users  repository.UserRepository
	videos repository.VideoRepository
	subs   repository.SubscriptionRepository
	media  storage.MediaStorage
	cache  *CacheService
	logger *logger.Logger
}

// NewUserService creates a new user service. cache may be nil when Redis is
// not configured.
func NewUserService(
	users repository.UserRepository,
	videos repository.VideoRepository,
	subs repository.SubscriptionRepository,
	media storage.MediaStorage,
	cache *CacheService,
	logger *logger.Logger,
) UserService {
	return &userService{
		users:  users,
		videos: videos,
		subs:   subs,
		media:  media,
		cache:  cache,
		logger: logger,
	}
}

// Register creates a user with uploaded avatar/cover media
func (s *userService) Register(ctx context.Context, req *domain.RegisterRequest, avatarPath, coverPath string) (*domain.PublicUser, error) {
	if strings.TrimSpace(req.Username) == "" ||
		strings.TrimSpace(req.Email) == "" ||
		strings.TrimSpace(req.FullName) == "" ||
		strings.TrimSpace(req.Password) == "" {
		return nil, errors.NewValidationError("All fields are required")
	}
	if avatarPath == "" {
		return nil, errors.NewValidationError("Avatar is required")
	}

	taken, err := s.users.UsernameTaken(ctx, req.Username, "")
	if err != nil {
		return nil, errors.NewInternalError("Could not check username", err)
	}
	if !taken {
		taken, err = s.users.EmailTaken(ctx, req.Email, "")
		if err != nil {
			return nil, errors.NewInternalError("Could not check email", err)
		}
	}
	if taken {
		return nil, errors.NewValidationError("Username or email already registered")
	}

	avatarURL, err := s.uploadImage(ctx, "avatars", avatarPath)
	if err != nil {
		return nil, err
	}

	coverURL := ""
	if coverPath != "" {
		coverURL, err = s.uploadImage(ctx, "covers", coverPath)
		if err != nil {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.NewInternalError("Could not hash password", err)
	}

	user := &domain.User{
		ID:            uuid.NewString(),
		Username:      strings.ToLower(req.Username),
		Email:         strings.ToLower(req.Email),
		FullName:      req.FullName,
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
		PasswordHash:  string(hash),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, errors.NewInternalError("Could not create the user", err)
	}

	s.logger.WithField("user_id", user.ID).Info("User registered")

	return user.Public(), nil
}

// UpdateAccountDetails applies the non-empty fields of req
func (s *userService) UpdateAccountDetails(ctx context.Context, userID string, req *domain.UpdateAccountRequest) (*domain.PublicUser, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	fullName := strings.TrimSpace(req.FullName)

	if username == "" && email == "" && fullName == "" {
		return nil, errors.NewValidationError("At least one field is required")
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	oldUsername := user.Username

	if username != "" {
		taken, err := s.users.UsernameTaken(ctx, username, userID)
		if err != nil {
			return nil, errors.NewInternalError("Could not check username", err)
		}
		if taken {
			return nil, errors.NewValidationError("Username is already taken")
		}
		user.Username = strings.ToLower(username)
	}

	if email != "" {
		taken, err := s.users.EmailTaken(ctx, email, userID)
		if err != nil {
			return nil, errors.NewInternalError("Could not check email", err)
		}
		if taken {
			return nil, errors.NewValidationError("Email is already in use")
		}
		user.Email = strings.ToLower(email)
	}

	if fullName != "" {
		user.FullName = fullName
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, errors.NewInternalError("Could not update user", err)
	}

	s.invalidateChannelProfiles(ctx, oldUsername, user.Username)

	return user.Public(), nil
}

// ChangePassword verifies the old password and stores a new hash
func (s *userService) ChangePassword(ctx context.Context, userID string, req *domain.ChangePasswordRequest) error {
	if req.OldPassword == "" || req.NewPassword == "" || req.ConfirmPassword == "" {
		return errors.NewValidationError("All fields are required")
	}
	if req.NewPassword != req.ConfirmPassword {
		return errors.NewValidationError("New password and confirmation must match")
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return errors.NewAuthenticationError("Incorrect password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.NewInternalError("Could not hash password", err)
	}
	user.PasswordHash = string(hash)

	if err := s.users.Update(ctx, user); err != nil {
		return errors.NewInternalError("Could not update password", err)
	}

	s.logger.WithField("user_id", userID).Info("Password changed")
	return nil
}

// UpdateAvatar uploads a new avatar and stores its URL
func (s *userService) UpdateAvatar(ctx context.Context, userID, localPath string) (*domain.PublicUser, error) {
	return s.updateImage(ctx, userID, localPath, "avatars", func(u *domain.User, url string) {
		u.AvatarURL = url
	})
}

// UpdateCoverImage uploads a new cover image and stores its URL
func (s *userService) UpdateCoverImage(ctx context.Context, userID, localPath string) (*domain.PublicUser, error) {
	return s.updateImage(ctx, userID, localPath, "covers", func(u *domain.User, url string) {
		u.CoverImageURL = url
	})
}

// GetChannelProfile resolves a channel by case-insensitive username and
// computes subscriber counts plus the viewer-relative subscription flag.
// Only public fields are projected.
func (s *userService) GetChannelProfile(ctx context.Context, username, viewerID string) (*domain.ChannelProfile, error) {
	if strings.TrimSpace(username) == "" {
		return nil, errors.NewValidationError("Username is required")
	}

	compute := func(ctx context.Context) (*domain.ChannelProfile, error) {
		channel, err := s.users.GetByUsername(ctx, username)
		if err != nil {
			return nil, errors.NewInternalError("Could not load channel", err)
		}
		if channel == nil {
			return nil, errors.NewNotFoundError("No such channel exists")
		}

		subscribers, err := s.subs.CountByChannel(ctx, channel.ID)
		if err != nil {
			return nil, errors.NewInternalError("Could not count subscribers", err)
		}

		subscribedTo, err := s.subs.CountBySubscriber(ctx, channel.ID)
		if err != nil {
			return nil, errors.NewInternalError("Could not count subscriptions", err)
		}

		isSubscribed := false
		if viewerID != "" {
			isSubscribed, err = s.subs.Exists(ctx, viewerID, channel.ID)
			if err != nil {
				return nil, errors.NewInternalError("Could not check subscription", err)
			}
		}

		return &domain.ChannelProfile{
			ID:                channel.ID,
			Username:          channel.Username,
			FullName:          channel.FullName,
			AvatarURL:         channel.AvatarURL,
			CoverImageURL:     channel.CoverImageURL,
			SubscribersCount:  subscribers,
			SubscribedToCount: subscribedTo,
			IsSubscribed:      isSubscribed,
		}, nil
	}

	if s.cache == nil {
		return compute(ctx)
	}
	return s.cache.GetChannelProfileWithCache(ctx, strings.ToLower(username), viewerID, compute)
}

// GetWatchHistory returns the user's history in stored order. References to
// videos that have since been deleted are dropped at read time; the stored
// list is never pruned.
func (s *userService) GetWatchHistory(ctx context.Context, userID string) ([]*domain.VideoWithOwner, error) {
	ids, err := s.users.GetWatchHistoryIDs(ctx, userID)
	if err != nil {
		return nil, errors.NewInternalError("Could not load watch history", err)
	}

	loaded, err := s.videos.GetByIDsWithOwner(ctx, ids)
	if err != nil {
		return nil, errors.NewInternalError("Could not load watch history videos", err)
	}

	history := make([]*domain.VideoWithOwner, 0, len(ids))
	for _, id := range ids {
		if entry, ok := loaded[id]; ok {
			history = append(history, entry)
		}
	}

	return history, nil
}

// RecordWatch appends a video to the user's history and bumps its views
func (s *userService) RecordWatch(ctx context.Context, userID, videoID string) error {
	video, err := s.videos.GetByID(ctx, videoID)
	if err != nil {
		return errors.NewInternalError("Could not load video", err)
	}
	if video == nil {
		return errors.NewNotFoundError("No such video exists")
	}

	if err := s.users.AppendWatchHistory(ctx, userID, videoID); err != nil {
		return errors.NewInternalError("Could not record watch", err)
	}

	if err := s.videos.IncrementViews(ctx, videoID); err != nil {
		return errors.NewInternalError("Could not record view", err)
	}

	// The cached copy carries the old view count
	if s.cache != nil {
		if err := s.cache.InvalidateVideo(ctx, videoID); err != nil {
			s.logger.WithError(err).WithField("video_id", videoID).Warn("Failed to invalidate video cache")
		}
	}

	return nil
}

func (s *userService) loadUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.NewInternalError("Could not load user", err)
	}
	if user == nil {
		return nil, errors.NewNotFoundError("User does not exist")
	}
	return user, nil
}

func (s *userService) updateImage(ctx context.Context, userID, localPath, prefix string, apply func(*domain.User, string)) (*domain.PublicUser, error) {
	if localPath == "" {
		return nil, errors.NewValidationError("Image file is required")
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	url, err := s.uploadImage(ctx, prefix, localPath)
	if err != nil {
		return nil, err
	}
	apply(user, url)

	if err := s.users.Update(ctx, user); err != nil {
		return nil, errors.NewInternalError("Could not update user", err)
	}

	s.invalidateChannelProfiles(ctx, user.Username)

	return user.Public(), nil
}

func (s *userService) uploadImage(ctx context.Context, prefix, localPath string) (string, error) {
	key := fmt.Sprintf("%s/%s%s", prefix, uuid.NewString(), filepath.Ext(localPath))
	res, err := s.media.UploadFile(ctx, key, localPath)
	if err != nil {
		return "", errors.NewInternalError("Could not upload image", err)
	}
	return res.URL, nil
}

func (s *userService) invalidateChannelProfiles(ctx context.Context, usernames ...string) {
	if s.cache == nil {
		return
	}
	for _, username := range usernames {
		if err := s.cache.InvalidateChannelProfile(ctx, username); err != nil {
			s.logger.WithError(err).WithField("username", username).Warn("Failed to invalidate channel profile cache")
		}
	}
}
