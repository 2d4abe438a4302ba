package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidtube/internal/domain"
	"vidtube/pkg/errors"
	"vidtube/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.New("error")
	require.NoError(t, err)
	return log
}

func requireAppError(t *testing.T, err error, wantType errors.ErrorType) *errors.AppError {
	t.Helper()

	require.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok, "expected *errors.AppError, got %T", err)
	assert.Equal(t, wantType, appErr.Type)
	return appErr
}

func TestListSortValidation(t *testing.T) {
	ownerID := uuid.NewString()

	tests := []struct {
		name          string
		sort          domain.VideoSort
		filter        domain.VideoFilter
		wantType      errors.ErrorType
		wantColumn    string
		wantDirection string
	}{
		{
			name:          "defaults to newest first",
			sort:          domain.VideoSort{},
			wantColumn:    "created_at",
			wantDirection: "DESC",
		},
		{
			name:          "views ascending",
			sort:          domain.VideoSort{Field: "views", Direction: "asc"},
			wantColumn:    "views",
			wantDirection: "ASC",
		},
		{
			name:          "duration maps to its column",
			sort:          domain.VideoSort{Field: "duration", Direction: "desc"},
			wantColumn:    "duration",
			wantDirection: "DESC",
		},
		{
			name:     "unknown sort field",
			sort:     domain.VideoSort{Field: "views; DROP TABLE videos"},
			wantType: errors.ErrorTypeValidation,
		},
		{
			name:     "unknown sort direction",
			sort:     domain.VideoSort{Field: "views", Direction: "sideways"},
			wantType: errors.ErrorTypeValidation,
		},
		{
			name:     "malformed owner id",
			filter:   domain.VideoFilter{OwnerID: "not-a-uuid"},
			wantType: errors.ErrorTypeNotFound,
		},
		{
			name:          "valid owner id passes through",
			filter:        domain.VideoFilter{OwnerID: ownerID},
			wantColumn:    "created_at",
			wantDirection: "DESC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeVideoRepo()
			svc := NewVideoService(repo, &fakeMedia{}, nil, testLogger(t))

			_, err := svc.List(context.Background(), tt.filter, tt.sort, domain.Pagination{})
			if tt.wantType != "" {
				requireAppError(t, err, tt.wantType)
				assert.Nil(t, repo.lastList, "repository must not be reached on invalid input")
				return
			}

			require.NoError(t, err)
			require.NotNil(t, repo.lastList)
			assert.Equal(t, tt.wantColumn, repo.lastList.sortColumn)
			assert.Equal(t, tt.wantDirection, repo.lastList.sortDirection)
		})
	}
}

func TestListPagination(t *testing.T) {
	tests := []struct {
		name       string
		page       domain.Pagination
		wantOffset int
		wantLimit  int
		wantPage   int
	}{
		{"defaults", domain.Pagination{}, 0, 10, 1},
		{"second page", domain.Pagination{Page: 2, Limit: 2}, 2, 2, 2},
		{"third page larger limit", domain.Pagination{Page: 3, Limit: 25}, 50, 25, 3},
		{"negative values fall back", domain.Pagination{Page: -1, Limit: -5}, 0, 10, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeVideoRepo()
			svc := NewVideoService(repo, &fakeMedia{}, nil, testLogger(t))

			result, err := svc.List(context.Background(), domain.VideoFilter{}, domain.VideoSort{}, tt.page)
			require.NoError(t, err)
			require.NotNil(t, repo.lastList)

			assert.Equal(t, tt.wantOffset, repo.lastList.offset)
			assert.Equal(t, tt.wantLimit, repo.lastList.limit)
			assert.Equal(t, tt.wantPage, result.Page)
			assert.Equal(t, tt.wantLimit, result.Limit)
			assert.NotNil(t, result.Videos, "empty page must not be nil")
		})
	}
}

func TestListViewsOrdering(t *testing.T) {
	repo := newFakeVideoRepo()
	svc := NewVideoService(repo, &fakeMedia{}, nil, testLogger(t))

	for _, views := range []int64{5, 1, 3} {
		id := uuid.NewString()
		repo.videos[id] = &domain.VideoWithOwner{
			Video: domain.Video{ID: id, Views: views, IsPublished: true},
		}
	}

	result, err := svc.List(context.Background(), domain.VideoFilter{},
		domain.VideoSort{Field: "views", Direction: "asc"}, domain.Pagination{})
	require.NoError(t, err)
	require.Len(t, result.Videos, 3)

	got := []int64{result.Videos[0].Views, result.Videos[1].Views, result.Videos[2].Views}
	assert.Equal(t, []int64{1, 3, 5}, got)
}

func TestListSecondPage(t *testing.T) {
	repo := newFakeVideoRepo()
	svc := NewVideoService(repo, &fakeMedia{}, nil, testLogger(t))

	for _, views := range []int64{4, 1, 5, 2, 3} {
		id := uuid.NewString()
		repo.videos[id] = &domain.VideoWithOwner{
			Video: domain.Video{ID: id, Views: views, IsPublished: true},
		}
	}

	// page 2 of the ascending views order [1 2 3 4 5] holds [3 4]
	result, err := svc.List(context.Background(), domain.VideoFilter{},
		domain.VideoSort{Field: "views", Direction: "asc"}, domain.Pagination{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, result.Videos, 2)
	assert.Equal(t, int64(3), result.Videos[0].Views)
	assert.Equal(t, int64(4), result.Videos[1].Views)
}

func TestPublish(t *testing.T) {
	ownerID := uuid.NewString()

	tests := []struct {
		name      string
		req       *domain.PublishVideoRequest
		videoPath string
		thumbPath string
		wantType  errors.ErrorType
	}{
		{
			name:      "valid publish",
			req:       &domain.PublishVideoRequest{Title: "My first video", Description: "hello"},
			videoPath: "/tmp/clip.mp4",
			thumbPath: "/tmp/thumb.jpg",
		},
		{
			name:      "missing title",
			req:       &domain.PublishVideoRequest{Description: "hello"},
			videoPath: "/tmp/clip.mp4",
			thumbPath: "/tmp/thumb.jpg",
			wantType:  errors.ErrorTypeValidation,
		},
		{
			name:      "title too short",
			req:       &domain.PublishVideoRequest{Title: "abc", Description: "hello"},
			videoPath: "/tmp/clip.mp4",
			thumbPath: "/tmp/thumb.jpg",
			wantType:  errors.ErrorTypeValidation,
		},
		{
			name:      "description too long",
			req:       &domain.PublishVideoRequest{Title: "My first video", Description: strings.Repeat("x", 5001)},
			videoPath: "/tmp/clip.mp4",
			thumbPath: "/tmp/thumb.jpg",
			wantType:  errors.ErrorTypeValidation,
		},
		{
			name:      "missing video file",
			req:       &domain.PublishVideoRequest{Title: "My first video", Description: "hello"},
			thumbPath: "/tmp/thumb.jpg",
			wantType:  errors.ErrorTypeValidation,
		},
		{
			name:      "missing thumbnail",
			req:       &domain.PublishVideoRequest{Title: "My first video", Description: "hello"},
			videoPath: "/tmp/clip.mp4",
			wantType:  errors.ErrorTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeVideoRepo()
			media := &fakeMedia{}
			svc := NewVideoService(repo, media, nil, testLogger(t))

			video, err := svc.Publish(context.Background(), ownerID, tt.req, tt.videoPath, tt.thumbPath)
			if tt.wantType != "" {
				requireAppError(t, err, tt.wantType)
				assert.Empty(t, media.uploads, "nothing may be uploaded on invalid input")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, ownerID, video.OwnerID)
			assert.True(t, video.IsPublished)
			assert.Equal(t, 42.0, video.Duration)
			assert.Contains(t, video.VideoURL, "videos/")
			assert.Contains(t, video.ThumbnailURL, "thumbnails/")
			assert.Len(t, media.uploads, 2)
		})
	}
}

func TestOwnerOnlyMutations(t *testing.T) {
	ownerID := uuid.NewString()
	strangerID := uuid.NewString()
	videoID := uuid.NewString()

	setup := func() (*fakeVideoRepo, VideoService) {
		repo := newFakeVideoRepo()
		repo.videos[videoID] = &domain.VideoWithOwner{
			Video: domain.Video{
				ID:          videoID,
				OwnerID:     ownerID,
				Title:       "Original title",
				IsPublished: true,
			},
		}
		return repo, NewVideoService(repo, &fakeMedia{}, nil, testLogger(t))
	}

	t.Run("stranger cannot update", func(t *testing.T) {
		_, svc := setup()
		_, err := svc.Update(context.Background(), strangerID, videoID, &domain.UpdateVideoRequest{Title: "Hijacked title"}, "")
		requireAppError(t, err, errors.ErrorTypeAuthorization)
	})

	t.Run("stranger cannot delete", func(t *testing.T) {
		repo, svc := setup()
		err := svc.Delete(context.Background(), strangerID, videoID)
		requireAppError(t, err, errors.ErrorTypeAuthorization)
		assert.Contains(t, repo.videos, videoID)
	})

	t.Run("owner updates title", func(t *testing.T) {
		repo, svc := setup()
		video, err := svc.Update(context.Background(), ownerID, videoID, &domain.UpdateVideoRequest{Title: "A better title"}, "")
		require.NoError(t, err)
		assert.Equal(t, "A better title", video.Title)
		assert.Equal(t, "A better title", repo.videos[videoID].Title)
	})

	t.Run("update requires at least one field", func(t *testing.T) {
		_, svc := setup()
		_, err := svc.Update(context.Background(), ownerID, videoID, &domain.UpdateVideoRequest{}, "")
		requireAppError(t, err, errors.ErrorTypeValidation)
	})

	t.Run("owner deletes", func(t *testing.T) {
		repo, svc := setup()
		require.NoError(t, svc.Delete(context.Background(), ownerID, videoID))
		assert.NotContains(t, repo.videos, videoID)
	})

	t.Run("toggle publish flips twice", func(t *testing.T) {
		_, svc := setup()

		published, err := svc.TogglePublish(context.Background(), ownerID, videoID)
		require.NoError(t, err)
		assert.False(t, published)

		published, err = svc.TogglePublish(context.Background(), ownerID, videoID)
		require.NoError(t, err)
		assert.True(t, published)
	})

	t.Run("unknown video", func(t *testing.T) {
		_, svc := setup()
		_, err := svc.GetByID(context.Background(), uuid.NewString())
		requireAppError(t, err, errors.ErrorTypeNotFound)
	})
}
