package domain

import "time"

// Video represents a published or draft video. OwnerID is set at creation
// and never changes.
type Video struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VideoURL     string    `json:"video_url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Duration     float64   `json:"duration"` // seconds
	Views        int64     `json:"views"`
	IsPublished  bool      `json:"is_published"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// VideoWithOwner joins a video with the public projection of its owner
type VideoWithOwner struct {
	Video
	Owner VideoOwner `json:"owner"`
}

// VideoFilter restricts a video listing
type VideoFilter struct {
	Query   string // case-insensitive substring over title or description
	OwnerID string
}

// VideoSort orders a video listing
type VideoSort struct {
	Field     string
	Direction string
}

// Pagination selects one page of a listing
type Pagination struct {
	Page  int
	Limit int
}

// VideoPage is one page of joined video rows
type VideoPage struct {
	Videos []*VideoWithOwner `json:"videos"`
	Page   int               `json:"page"`
	Limit  int               `json:"limit"`
}

// PublishVideoRequest carries the metadata for a video publish
type PublishVideoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UpdateVideoRequest carries optional video metadata changes
type UpdateVideoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
