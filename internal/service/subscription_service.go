package service

import (
	"context"

	"vidtube/internal/repository"
	"vidtube/pkg/errors"
	"vidtube/pkg/logger"
)

// subscriptionService implements SubscriptionService
type subscriptionService struct {
	subs   repository.SubscriptionRepository
	users  repository.UserRepository
	cache  *CacheService
	logger *logger.Logger
}

// NewSubscriptionService creates a new subscription service. cache may be nil
// when Redis is not configured.
func NewSubscriptionService(subs repository.SubscriptionRepository, users repository.UserRepository, cache *CacheService, logger *logger.Logger) SubscriptionService {
	return &subscriptionService{
		subs:   subs,
		users:  users,
		cache:  cache,
		logger: logger,
	}
}

// Subscribe adds a (subscriber, channel) edge; duplicates are a no-op
func (s *subscriptionService) Subscribe(ctx context.Context, subscriberID, channelID string) error {
	if subscriberID == channelID {
		return errors.NewValidationError("Cannot subscribe to your own channel")
	}

	channel, err := s.users.GetByID(ctx, channelID)
	if err != nil {
		return errors.NewInternalError("Could not load channel", err)
	}
	if channel == nil {
		return errors.NewNotFoundError("No such channel exists")
	}

	created, err := s.subs.Create(ctx, subscriberID, channelID)
	if err != nil {
		return errors.NewInternalError("Could not subscribe", err)
	}

	if created {
		s.invalidate(ctx, channel.Username)
		s.logger.WithFields(map[string]interface{}{
			"subscriber_id": subscriberID,
			"channel_id":    channelID,
		}).Info("Subscribed")
	}

	return nil
}

// Unsubscribe removes the (subscriber, channel) edge
func (s *subscriptionService) Unsubscribe(ctx context.Context, subscriberID, channelID string) error {
	channel, err := s.users.GetByID(ctx, channelID)
	if err != nil {
		return errors.NewInternalError("Could not load channel", err)
	}
	if channel == nil {
		return errors.NewNotFoundError("No such channel exists")
	}

	if err := s.subs.Delete(ctx, subscriberID, channelID); err != nil {
		return errors.NewInternalError("Could not unsubscribe", err)
	}

	s.invalidate(ctx, channel.Username)

	return nil
}

func (s *subscriptionService) invalidate(ctx context.Context, username string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateChannelProfile(ctx, username); err != nil {
		s.logger.WithError(err).WithField("username", username).Warn("Failed to invalidate channel profile cache")
	}
}
