package domain

import "time"

// Subscription is a directed follow edge from a subscriber to a channel.
// Both ends are user ids. The pair is unique; subscribing twice is a no-op.
type Subscription struct {
	ID           string    `json:"id"`
	SubscriberID string    `json:"subscriber_id"`
	ChannelID    string    `json:"channel_id"`
	CreatedAt    time.Time `json:"created_at"`
}
