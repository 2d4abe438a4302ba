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
)

// Pagination defaults applied when the caller sends nothing usable
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// sortColumns maps the allowed sort fields onto their SQL columns. Anything
// outside this map is a validation failure, never interpolated into SQL.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"views":     "views",
	"duration":  "duration",
	"title":     "title",
}

var sortDirections = map[string]string{
	"asc":  "ASC",
	"desc": "DESC",
}

// videoService implements VideoService
type videoService struct {
	videos repository.VideoRepository
	media  storage.MediaStorage
	cache  *CacheService
	logger *logger.Logger
}

// NewVideoService creates a new video service. cache may be nil when Redis is
// not configured.
func NewVideoService(videos repository.VideoRepository, media storage.MediaStorage, cache *CacheService, logger *logger.Logger) VideoService {
	return &videoService{
		videos: videos,
		media:  media,
		cache:  cache,
		logger: logger,
	}
}

// List returns one page of published videos joined with owner fields
func (s *videoService) List(ctx context.Context, filter domain.VideoFilter, sort domain.VideoSort, page domain.Pagination) (*domain.VideoPage, error) {
	if sort.Field == "" {
		sort.Field = "createdAt"
	}
	if sort.Direction == "" {
		sort.Direction = "desc"
	}

	column, ok := sortColumns[sort.Field]
	if !ok {
		return nil, errors.NewValidationError("Invalid sort field")
	}
	direction, ok := sortDirections[sort.Direction]
	if !ok {
		return nil, errors.NewValidationError("Invalid sort direction")
	}

	if filter.OwnerID != "" {
		if _, err := uuid.Parse(filter.OwnerID); err != nil {
			return nil, errors.NewNotFoundError("Invalid user")
		}
	}

	if page.Page < 1 {
		page.Page = DefaultPage
	}
	if page.Limit < 1 {
		page.Limit = DefaultLimit
	}

	offset := (page.Page - 1) * page.Limit
	videos, err := s.videos.List(ctx, filter, column, direction, offset, page.Limit)
	if err != nil {
		return nil, errors.NewInternalError("Could not list videos", err)
	}

	if videos == nil {
		videos = []*domain.VideoWithOwner{}
	}

	return &domain.VideoPage{
		Videos: videos,
		Page:   page.Page,
		Limit:  page.Limit,
	}, nil
}

// Publish uploads the media files and creates the video
func (s *videoService) Publish(ctx context.Context, ownerID string, req *domain.PublishVideoRequest, videoPath, thumbnailPath string) (*domain.Video, error) {
	if err := validateVideoMeta(req.Title, req.Description, true); err != nil {
		return nil, err
	}
	if videoPath == "" {
		return nil, errors.NewValidationError("Video file is required")
	}
	if thumbnailPath == "" {
		return nil, errors.NewValidationError("Thumbnail is required")
	}

	videoRes, err := s.upload(ctx, "videos", videoPath)
	if err != nil {
		return nil, err
	}
	thumbRes, err := s.upload(ctx, "thumbnails", thumbnailPath)
	if err != nil {
		return nil, err
	}

	video := &domain.Video{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Title:        req.Title,
		Description:  req.Description,
		VideoURL:     videoRes.URL,
		ThumbnailURL: thumbRes.URL,
		Duration:     videoRes.Duration.Seconds(),
		IsPublished:  true,
	}

	if err := s.videos.Create(ctx, video); err != nil {
		return nil, errors.NewInternalError("Could not create video", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"video_id": video.ID,
		"owner_id": ownerID,
	}).Info("Video published")

	return video, nil
}

// GetByID fetches a single video, through the cache when one is configured
func (s *videoService) GetByID(ctx context.Context, videoID string) (*domain.Video, error) {
	if s.cache == nil {
		return s.loadVideo(ctx, videoID)
	}
	return s.cache.GetVideoWithCache(ctx, videoID, func(ctx context.Context) (*domain.Video, error) {
		return s.loadVideo(ctx, videoID)
	})
}

// Update applies owner-only metadata changes; thumbnailPath may be empty
func (s *videoService) Update(ctx context.Context, userID, videoID string, req *domain.UpdateVideoRequest, thumbnailPath string) (*domain.Video, error) {
	video, err := s.loadOwnedVideo(ctx, userID, videoID, "You cannot update this video")
	if err != nil {
		return nil, err
	}

	if req.Title == "" && req.Description == "" && thumbnailPath == "" {
		return nil, errors.NewValidationError("Provide at least one field")
	}

	if req.Title != "" {
		if err := validateTitle(req.Title); err != nil {
			return nil, err
		}
		video.Title = req.Title
	}
	if req.Description != "" {
		if err := validateDescription(req.Description); err != nil {
			return nil, err
		}
		video.Description = req.Description
	}
	if thumbnailPath != "" {
		thumbRes, err := s.upload(ctx, "thumbnails", thumbnailPath)
		if err != nil {
			return nil, err
		}
		video.ThumbnailURL = thumbRes.URL
	}

	if err := s.videos.Update(ctx, video); err != nil {
		return nil, errors.NewInternalError("Could not update video", err)
	}

	s.invalidateVideo(ctx, videoID)

	return video, nil
}

// Delete removes an owned video
func (s *videoService) Delete(ctx context.Context, userID, videoID string) error {
	if _, err := s.loadOwnedVideo(ctx, userID, videoID, "You cannot delete this video"); err != nil {
		return err
	}

	if err := s.videos.Delete(ctx, videoID); err != nil {
		return errors.NewInternalError("Could not delete video", err)
	}

	s.invalidateVideo(ctx, videoID)

	s.logger.WithFields(map[string]interface{}{
		"video_id": videoID,
		"owner_id": userID,
	}).Info("Video deleted")

	return nil
}

// TogglePublish flips the published flag on an owned video
func (s *videoService) TogglePublish(ctx context.Context, userID, videoID string) (bool, error) {
	video, err := s.loadOwnedVideo(ctx, userID, videoID, "You are not authorized to take this action")
	if err != nil {
		return false, err
	}

	video.IsPublished = !video.IsPublished
	if err := s.videos.Update(ctx, video); err != nil {
		return false, errors.NewInternalError("Could not update video", err)
	}

	s.invalidateVideo(ctx, videoID)

	return video.IsPublished, nil
}

func (s *videoService) invalidateVideo(ctx context.Context, videoID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateVideo(ctx, videoID); err != nil {
		s.logger.WithError(err).WithField("video_id", videoID).Warn("Failed to invalidate video cache")
	}
}

func (s *videoService) loadVideo(ctx context.Context, videoID string) (*domain.Video, error) {
	if videoID == "" {
		return nil, errors.NewValidationError("Video id is required")
	}

	video, err := s.videos.GetByID(ctx, videoID)
	if err != nil {
		return nil, errors.NewInternalError("Could not load video", err)
	}
	if video == nil {
		return nil, errors.NewNotFoundError("No such video exists")
	}
	return video, nil
}

func (s *videoService) loadOwnedVideo(ctx context.Context, userID, videoID, denied string) (*domain.Video, error) {
	video, err := s.loadVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video.OwnerID != userID {
		return nil, errors.NewAuthorizationError(denied)
	}
	return video, nil
}

func (s *videoService) upload(ctx context.Context, prefix, localPath string) (storage.UploadResult, error) {
	key := fmt.Sprintf("%s/%s%s", prefix, uuid.NewString(), filepath.Ext(localPath))
	res, err := s.media.UploadFile(ctx, key, localPath)
	if err != nil {
		return storage.UploadResult{}, errors.NewInternalError("Could not upload media", err)
	}
	return res, nil
}

func validateVideoMeta(title, description string, required bool) error {
	if required && (strings.TrimSpace(title) == "" || strings.TrimSpace(description) == "") {
		return errors.NewValidationError("All fields are required")
	}
	if err := validateTitle(title); err != nil {
		return err
	}
	return validateDescription(description)
}

func validateTitle(title string) error {
	if len(title) < 5 || len(title) > 100 {
		return errors.NewValidationError("Title length should be between 5 and 100")
	}
	return nil
}

func validateDescription(description string) error {
	if len(description) > 5000 {
		return errors.NewValidationError("Description length should be less than 5000")
	}
	return nil
}
