package redis

import "fmt"

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" || environment == "test" {
		prefix = "staging"
	}

	return &KeyBuilder{
		prefix: prefix,
	}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

// KeyChannelProfile builds the cache key for a viewer-relative channel profile
func (kb *KeyBuilder) KeyChannelProfile(username, viewerID string) string {
	if viewerID == "" {
		viewerID = "anon"
	}
	return kb.BuildKey(fmt.Sprintf(KeyChannelProfile, username, viewerID))
}

// KeyChannelProfilePattern matches every cached profile view of a channel
func (kb *KeyBuilder) KeyChannelProfilePattern(username string) string {
	return kb.BuildKey(fmt.Sprintf("channel:%s:profile:*", username))
}

// KeyVideoByID builds the cache key for a single video
func (kb *KeyBuilder) KeyVideoByID(videoID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyVideoByID, videoID))
}

// KeyCustom builds a key from a custom pattern
func (kb *KeyBuilder) KeyCustom(pattern string, args ...interface{}) string {
	return kb.BuildKey(fmt.Sprintf(pattern, args...))
}
