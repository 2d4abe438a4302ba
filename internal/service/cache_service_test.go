package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vidtube/internal/domain"
	"vidtube/pkg/redis"
)

func newTestCache(t *testing.T) (*CacheService, *miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := redis.NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return NewCacheService(client, zap.NewNop()), mr, client
}

func sampleProfile(username string) *domain.ChannelProfile {
	return &domain.ChannelProfile{
		ID:               "d2c1a6a0-1111-4222-8333-444455556666",
		Username:         username,
		FullName:         "Alice Chen",
		SubscribersCount: 7,
		IsSubscribed:     true,
	}
}

func TestGetChannelProfileWithCache(t *testing.T) {
	cache, _, _ := newTestCache(t)
	ctx := context.Background()

	calls := 0
	fallback := func(ctx context.Context) (*domain.ChannelProfile, error) {
		calls++
		return sampleProfile("alice"), nil
	}

	// Miss populates the cache
	profile, err := cache.GetChannelProfileWithCache(ctx, "alice", "viewer-1", fallback)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, 1, calls)

	// Hit skips the fallback
	profile, err = cache.GetChannelProfileWithCache(ctx, "alice", "viewer-1", fallback)
	require.NoError(t, err)
	assert.Equal(t, int64(7), profile.SubscribersCount)
	assert.Equal(t, 1, calls)

	// A different viewer has its own key
	_, err = cache.GetChannelProfileWithCache(ctx, "alice", "viewer-2", fallback)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestGetChannelProfileWithCacheCorruptedEntry(t *testing.T) {
	cache, mr, client := newTestCache(t)
	ctx := context.Background()

	key := client.KeyBuilder.KeyChannelProfile("alice", "viewer-1")
	require.NoError(t, mr.Set(key, "{not json"))

	profile, err := cache.GetChannelProfileWithCache(ctx, "alice", "viewer-1", func(ctx context.Context) (*domain.ChannelProfile, error) {
		return sampleProfile("alice"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)

	// The bad entry was overwritten with a valid one
	raw, err := mr.Get(key)
	require.NoError(t, err)
	var cached domain.ChannelProfile
	require.NoError(t, json.Unmarshal([]byte(raw), &cached))
	assert.Equal(t, "alice", cached.Username)
}

func TestGetVideoWithCache(t *testing.T) {
	cache, mr, client := newTestCache(t)
	ctx := context.Background()

	video := &domain.Video{
		ID:    "9f0e8d7c-1234-4abc-9def-567890abcdef",
		Title: "Go Concurrency Patterns",
		Views: 12,
	}

	calls := 0
	fallback := func(ctx context.Context) (*domain.Video, error) {
		calls++
		return video, nil
	}

	// Miss populates the cache
	got, err := cache.GetVideoWithCache(ctx, video.ID, fallback)
	require.NoError(t, err)
	assert.Equal(t, "Go Concurrency Patterns", got.Title)
	assert.Equal(t, 1, calls)

	// Hit skips the fallback
	got, err = cache.GetVideoWithCache(ctx, video.ID, fallback)
	require.NoError(t, err)
	assert.Equal(t, int64(12), got.Views)
	assert.Equal(t, 1, calls)

	// Invalidation forces the next read back to the fallback
	require.NoError(t, cache.InvalidateVideo(ctx, video.ID))
	assert.False(t, mr.Exists(client.KeyBuilder.KeyVideoByID(video.ID)))

	_, err = cache.GetVideoWithCache(ctx, video.ID, fallback)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestGetVideoWithCacheSkipsMissing(t *testing.T) {
	cache, mr, client := newTestCache(t)
	ctx := context.Background()

	got, err := cache.GetVideoWithCache(ctx, "no-such-video", func(ctx context.Context) (*domain.Video, error) {
		return nil, nil
	})
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, mr.Exists(client.KeyBuilder.KeyVideoByID("no-such-video")))
}

func TestInvalidateChannelProfile(t *testing.T) {
	cache, mr, client := newTestCache(t)
	ctx := context.Background()

	fallback := func(ctx context.Context) (*domain.ChannelProfile, error) {
		return sampleProfile("alice"), nil
	}

	for _, viewer := range []string{"viewer-1", "viewer-2", ""} {
		_, err := cache.GetChannelProfileWithCache(ctx, "alice", viewer, fallback)
		require.NoError(t, err)
	}

	// Another channel's entry must survive the invalidation
	otherKey := client.KeyBuilder.KeyChannelProfile("bob", "viewer-1")
	require.NoError(t, mr.Set(otherKey, `{"username":"bob"}`))

	require.NoError(t, cache.InvalidateChannelProfile(ctx, "alice"))

	assert.False(t, mr.Exists(client.KeyBuilder.KeyChannelProfile("alice", "viewer-1")))
	assert.False(t, mr.Exists(client.KeyBuilder.KeyChannelProfile("alice", "viewer-2")))
	assert.False(t, mr.Exists(client.KeyBuilder.KeyChannelProfile("alice", "")))
	assert.True(t, mr.Exists(otherKey))
}
