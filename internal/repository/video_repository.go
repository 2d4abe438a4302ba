package repository

import (
	"context"
	"fmt"

	"vidtube/internal/domain"
	"vidtube/pkg/database"

	"github.com/jackc/pgx/v5"
)

// videoRepository handles video persistence with PostgreSQL
type videoRepository struct {
	db *database.PostgresDB
}

// NewVideoRepository creates a new video repository
func NewVideoRepository(db *database.PostgresDB) VideoRepository {
	return &videoRepository{
		db: db,
	}
}

const videoColumns = `id, owner_id, title, description, video_url, thumbnail_url, duration, views, is_published, created_at, updated_at`

func scanVideo(row pgx.Row) (*domain.Video, error) {
	video := &domain.Video{}
	err := row.Scan(
		&video.ID,
		&video.OwnerID,
		&video.Title,
		&video.Description,
		&video.VideoURL,
		&video.ThumbnailURL,
		&video.Duration,
		&video.Views,
		&video.IsPublished,
		&video.CreatedAt,
		&video.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return video, nil
}

// Create creates a new video in the database
func (r *videoRepository) Create(ctx context.Context, video *domain.Video) error {
	query := `
		INSERT INTO videos (id, owner_id, title, description, video_url, thumbnail_url, duration, is_published)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING views, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		video.ID,
		video.OwnerID,
		video.Title,
		video.Description,
		video.VideoURL,
		video.ThumbnailURL,
		video.Duration,
		video.IsPublished,
	).Scan(&video.Views, &video.CreatedAt, &video.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create video: %w", err)
	}

	return nil
}

// GetByID retrieves a video by ID
func (r *videoRepository) GetByID(ctx context.Context, id string) (*domain.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE id = $1`

	video, err := scanVideo(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get video by id: %w", err)
	}
	return video, nil
}

// GetByIDsWithOwner loads videos with owner projection, keyed by video id.
// Ids without a live video are simply absent from the result.
func (r *videoRepository) GetByIDsWithOwner(ctx context.Context, ids []string) (map[string]*domain.VideoWithOwner, error) {
	if len(ids) == 0 {
		return map[string]*domain.VideoWithOwner{}, nil
	}

	query := `
		SELECT v.id, v.owner_id, v.title, v.description, v.video_url, v.thumbnail_url,
			v.duration, v.views, v.is_published, v.created_at, v.updated_at,
			u.id, u.username, u.full_name, u.avatar_url
		FROM videos v
		JOIN users u ON u.id = v.owner_id
		WHERE v.id = ANY($1)
	`

	rows, err := r.db.Pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos by ids: %w", err)
	}
	defer rows.Close()

	result := make(map[string]*domain.VideoWithOwner, len(ids))
	for rows.Next() {
		entry, err := scanVideoWithOwner(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video row: %w", err)
		}
		result[entry.ID] = entry
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading video rows: %w", err)
	}

	return result, nil
}

// List returns published videos joined with owner fields, sorted and paged.
// sortColumn and sortDirection come from the service-level whitelist, never
// from raw request input.
func (r *videoRepository) List(ctx context.Context, filter domain.VideoFilter, sortColumn, sortDirection string, offset, limit int) ([]*domain.VideoWithOwner, error) {
	var ownerID *string
	if filter.OwnerID != "" {
		ownerID = &filter.OwnerID
	}

	query := fmt.Sprintf(`
		SELECT v.id, v.owner_id, v.title, v.description, v.video_url, v.thumbnail_url,
			v.duration, v.views, v.is_published, v.created_at, v.updated_at,
			u.id, u.username, u.full_name, u.avatar_url
		FROM videos v
		JOIN users u ON u.id = v.owner_id
		WHERE v.is_published = TRUE
			AND ($1 = '' OR v.title ILIKE '%%' || $1 || '%%' OR v.description ILIKE '%%' || $1 || '%%')
			AND ($2::uuid IS NULL OR v.owner_id = $2::uuid)
		ORDER BY v.%s %s, v.id
		OFFSET $3 LIMIT $4
	`, sortColumn, sortDirection)

	rows, err := r.db.Pool.Query(ctx, query, filter.Query, ownerID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	defer rows.Close()

	var videos []*domain.VideoWithOwner
	for rows.Next() {
		entry, err := scanVideoWithOwner(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video row: %w", err)
		}
		videos = append(videos, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading video rows: %w", err)
	}

	return videos, nil
}

// Update persists mutable video fields
func (r *videoRepository) Update(ctx context.Context, video *domain.Video) error {
	query := `
		UPDATE videos
		SET title = $2, description = $3, thumbnail_url = $4, is_published = $5, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		video.ID,
		video.Title,
		video.Description,
		video.ThumbnailURL,
		video.IsPublished,
	).Scan(&video.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to update video: %w", err)
	}

	return nil
}

// Delete removes a video
func (r *videoRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Pool.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	return nil
}

// IncrementViews bumps the view counter
func (r *videoRepository) IncrementViews(ctx context.Context, id string) error {
	if _, err := r.db.Pool.Exec(ctx, `UPDATE videos SET views = views + 1 WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	return nil
}

func scanVideoWithOwner(rows pgx.Rows) (*domain.VideoWithOwner, error) {
	entry := &domain.VideoWithOwner{}
	err := rows.Scan(
		&entry.ID,
		&entry.OwnerID,
		&entry.Title,
		&entry.Description,
		&entry.VideoURL,
		&entry.ThumbnailURL,
		&entry.Duration,
		&entry.Views,
		&entry.IsPublished,
		&entry.CreatedAt,
		&entry.UpdatedAt,
		&entry.Owner.ID,
		&entry.Owner.Username,
		&entry.Owner.FullName,
		&entry.Owner.AvatarURL,
	)
	if err != nil {
		return nil, err
	}
	return entry, nil
}
