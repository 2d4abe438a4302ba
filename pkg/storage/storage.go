package storage

import (
	"context"
	"io"
	"time"
)

// UploadResult describes where an uploaded asset can be reached publicly and,
// for video content, how long it plays.
type UploadResult struct {
	URL      string
	Duration time.Duration
}

// MediaStorage persists uploaded media with a remote object store and returns
// a public location for it. Implementations do not retry; a failure surfaces
// to the caller immediately.
type MediaStorage interface {
	// Upload stores the content under key and returns its public URL.
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (UploadResult, error)

	// UploadFile stores a local file under key. For MP4 content the result
	// includes the probed playback duration.
	UploadFile(ctx context.Context, key, localPath string) (UploadResult, error)
}
