package service

import (
	"context"
	"encoding/json"
	"fmt"

	"vidtube/internal/domain"
	"vidtube/pkg/redis"

	"go.uber.org/zap"
)

// CacheService provides cache-aside access to derived channel views. Cache
// failures are logged and fall through to the store; they never fail a read.
type CacheService struct {
	redis  *redis.Client
	logger *zap.Logger
}

// NewCacheService creates a new cache service
func NewCacheService(redisClient *redis.Client, logger *zap.Logger) *CacheService {
	return &CacheService{
		redis:  redisClient,
		logger: logger,
	}
}

// GetChannelProfileWithCache retrieves a viewer-relative channel profile with
// the cache-aside pattern. The key is per (username, viewer) because
// IsSubscribed depends on who is asking.
func (c *CacheService) GetChannelProfileWithCache(ctx context.Context, username, viewerID string, fallback func(ctx context.Context) (*domain.ChannelProfile, error)) (*domain.ChannelProfile, error) {
	cacheKey := c.redis.KeyBuilder.KeyChannelProfile(username, viewerID)

	cachedData, err := c.redis.Get(ctx, cacheKey)
	if err == nil && cachedData != "" {
		var profile domain.ChannelProfile
		if unmarshalErr := json.Unmarshal([]byte(cachedData), &profile); unmarshalErr == nil {
			c.logger.Debug("Channel profile cache hit", zap.String("username", username))
			return &profile, nil
		} else {
			c.logger.Warn("Channel profile cache corrupted, falling back to store",
				zap.String("username", username),
				zap.Error(unmarshalErr))
		}
	} else if err != nil && err != redis.Nil {
		c.logger.Warn("Channel profile cache error, falling back to store",
			zap.String("username", username),
			zap.Error(err))
	}

	profile, err := fallback(ctx)
	if err != nil {
		return nil, err
	}

	if profile != nil {
		c.cacheProfile(ctx, cacheKey, profile)
	}

	return profile, nil
}

// GetVideoWithCache retrieves a single video with the cache-aside pattern.
// Only found videos are cached; lookup failures pass through uncached.
func (c *CacheService) GetVideoWithCache(ctx context.Context, videoID string, fallback func(ctx context.Context) (*domain.Video, error)) (*domain.Video, error) {
	cacheKey := c.redis.KeyBuilder.KeyVideoByID(videoID)

	cachedData, err := c.redis.Get(ctx, cacheKey)
	if err == nil && cachedData != "" {
		var video domain.Video
		if unmarshalErr := json.Unmarshal([]byte(cachedData), &video); unmarshalErr == nil {
			c.logger.Debug("Video cache hit", zap.String("video_id", videoID))
			return &video, nil
		} else {
			c.logger.Warn("Video cache corrupted, falling back to store",
				zap.String("video_id", videoID),
				zap.Error(unmarshalErr))
		}
	} else if err != nil && err != redis.Nil {
		c.logger.Warn("Video cache error, falling back to store",
			zap.String("video_id", videoID),
			zap.Error(err))
	}

	video, err := fallback(ctx)
	if err != nil {
		return nil, err
	}

	if video != nil {
		data, marshalErr := json.Marshal(video)
		if marshalErr != nil {
			c.logger.Warn("Failed to marshal video for cache", zap.Error(marshalErr))
			return video, nil
		}
		if setErr := c.redis.Set(ctx, cacheKey, string(data), redis.TTLVideo); setErr != nil {
			c.logger.Warn("Failed to cache video", zap.Error(setErr))
		}
	}

	return video, nil
}

// InvalidateVideo drops the cached copy of a video. Called after metadata
// edits, view bumps, publish toggles and deletes.
func (c *CacheService) InvalidateVideo(ctx context.Context, videoID string) error {
	key := c.redis.KeyBuilder.KeyVideoByID(videoID)
	if err := c.redis.Delete(ctx, key); err != nil {
		return fmt.Errorf("invalidate video %s: %w", videoID, err)
	}
	return nil
}

// InvalidateChannelProfile drops every cached viewer-relative view of a
// channel. Called after subscribe/unsubscribe and profile updates.
func (c *CacheService) InvalidateChannelProfile(ctx context.Context, username string) error {
	pattern := c.redis.KeyBuilder.KeyChannelProfilePattern(username)
	if err := c.redis.DeleteByPattern(ctx, pattern); err != nil {
		return fmt.Errorf("invalidate channel profile %s: %w", username, err)
	}
	return nil
}

func (c *CacheService) cacheProfile(ctx context.Context, key string, profile *domain.ChannelProfile) {
	data, err := json.Marshal(profile)
	if err != nil {
		c.logger.Warn("Failed to marshal channel profile for cache", zap.Error(err))
		return
	}
	if err := c.redis.Set(ctx, key, string(data), redis.TTLChannelProfile); err != nil {
		c.logger.Warn("Failed to cache channel profile", zap.Error(err))
	}
}
