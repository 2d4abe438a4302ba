package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewKeyBuilder(t *testing.T) {
	tests := []struct {
		environment string
		wantPrefix  string
	}{
		{"production", "prod"},
		{"development", "staging"},
		{"staging", "staging"},
		{"test", "staging"},
		{"", "prod"},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			kb := NewKeyBuilder(tt.environment)
			assert.Equal(t, tt.wantPrefix, kb.GetPrefix())
		})
	}
}

func TestKeyChannelProfile(t *testing.T) {
	kb := NewKeyBuilder("production")

	assert.Equal(t, "prod:channel:alice:profile:viewer-1", kb.KeyChannelProfile("alice", "viewer-1"))
	assert.Equal(t, "prod:channel:alice:profile:anon", kb.KeyChannelProfile("alice", ""))
	assert.Equal(t, "prod:channel:alice:profile:*", kb.KeyChannelProfilePattern("alice"))
}

func TestKeyCustom(t *testing.T) {
	kb := NewKeyBuilder("staging")
	assert.Equal(t, "staging:session:42", kb.KeyCustom("session:%d", 42))
}
