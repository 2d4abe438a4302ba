package service

import (
	"context"
	"io"
	"sort"
	"time"

	"vidtube/internal/domain"
	"vidtube/pkg/storage"
)

// In-memory repository fakes shared by the service tests.

type fakeUserRepo struct {
	users         map[string]*domain.User
	history       map[string][]string
	usernameTaken bool
	emailTaken    bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:   make(map[string]*domain.User),
		history: make(map[string][]string),
	}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) GetByUsernameOrEmail(ctx context.Context, identifier string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == identifier || u.Email == identifier {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) UsernameTaken(ctx context.Context, username, excludeID string) (bool, error) {
	return r.usernameTaken, nil
}

func (r *fakeUserRepo) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	return r.emailTaken, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) UpdateRefreshToken(ctx context.Context, userID string, token *string) error {
	if u, ok := r.users[userID]; ok {
		u.RefreshToken = token
	}
	return nil
}

func (r *fakeUserRepo) GetWatchHistoryIDs(ctx context.Context, userID string) ([]string, error) {
	return r.history[userID], nil
}

func (r *fakeUserRepo) AppendWatchHistory(ctx context.Context, userID, videoID string) error {
	r.history[userID] = append(r.history[userID], videoID)
	return nil
}

type listCall struct {
	filter        domain.VideoFilter
	sortColumn    string
	sortDirection string
	offset        int
	limit         int
}

type fakeVideoRepo struct {
	videos     map[string]*domain.VideoWithOwner
	listResult []*domain.VideoWithOwner
	lastList   *listCall
}

func newFakeVideoRepo() *fakeVideoRepo {
	return &fakeVideoRepo{videos: make(map[string]*domain.VideoWithOwner)}
}

func (r *fakeVideoRepo) Create(ctx context.Context, video *domain.Video) error {
	r.videos[video.ID] = &domain.VideoWithOwner{Video: *video}
	return nil
}

func (r *fakeVideoRepo) GetByID(ctx context.Context, id string) (*domain.Video, error) {
	v, ok := r.videos[id]
	if !ok {
		return nil, nil
	}
	video := v.Video
	return &video, nil
}

func (r *fakeVideoRepo) GetByIDsWithOwner(ctx context.Context, ids []string) (map[string]*domain.VideoWithOwner, error) {
	result := make(map[string]*domain.VideoWithOwner)
	for _, id := range ids {
		if v, ok := r.videos[id]; ok {
			result[id] = v
		}
	}
	return result, nil
}

func (r *fakeVideoRepo) List(ctx context.Context, filter domain.VideoFilter, sortColumn, sortDirection string, offset, limit int) ([]*domain.VideoWithOwner, error) {
	r.lastList = &listCall{
		filter:        filter,
		sortColumn:    sortColumn,
		sortDirection: sortDirection,
		offset:        offset,
		limit:         limit,
	}
	if r.listResult != nil {
		return r.listResult, nil
	}

	var rows []*domain.VideoWithOwner
	for _, v := range r.videos {
		if v.IsPublished {
			rows = append(rows, v)
		}
	}
	if sortColumn == "views" {
		sort.Slice(rows, func(i, j int) bool {
			if sortDirection == "ASC" {
				return rows[i].Views < rows[j].Views
			}
			return rows[i].Views > rows[j].Views
		})
	}
	if offset >= len(rows) {
		return nil, nil
	}
	rows = rows[offset:]
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (r *fakeVideoRepo) Update(ctx context.Context, video *domain.Video) error {
	existing, ok := r.videos[video.ID]
	if !ok {
		r.videos[video.ID] = &domain.VideoWithOwner{Video: *video}
		return nil
	}
	existing.Video = *video
	return nil
}

func (r *fakeVideoRepo) Delete(ctx context.Context, id string) error {
	delete(r.videos, id)
	return nil
}

func (r *fakeVideoRepo) IncrementViews(ctx context.Context, id string) error {
	if v, ok := r.videos[id]; ok {
		v.Views++
	}
	return nil
}

type fakeSubRepo struct {
	edges map[string]map[string]bool // subscriber -> channels
}

func newFakeSubRepo() *fakeSubRepo {
	return &fakeSubRepo{edges: make(map[string]map[string]bool)}
}

func (r *fakeSubRepo) Create(ctx context.Context, subscriberID, channelID string) (bool, error) {
	if r.edges[subscriberID] == nil {
		r.edges[subscriberID] = make(map[string]bool)
	}
	if r.edges[subscriberID][channelID] {
		return false, nil
	}
	r.edges[subscriberID][channelID] = true
	return true, nil
}

func (r *fakeSubRepo) Delete(ctx context.Context, subscriberID, channelID string) error {
	delete(r.edges[subscriberID], channelID)
	return nil
}

func (r *fakeSubRepo) Exists(ctx context.Context, subscriberID, channelID string) (bool, error) {
	return r.edges[subscriberID][channelID], nil
}

func (r *fakeSubRepo) CountByChannel(ctx context.Context, channelID string) (int64, error) {
	var n int64
	for _, channels := range r.edges {
		if channels[channelID] {
			n++
		}
	}
	return n, nil
}

func (r *fakeSubRepo) CountBySubscriber(ctx context.Context, subscriberID string) (int64, error) {
	return int64(len(r.edges[subscriberID])), nil
}

type fakeMedia struct {
	uploads []string
}

func (m *fakeMedia) Upload(ctx context.Context, key string, body io.Reader, contentType string) (storage.UploadResult, error) {
	m.uploads = append(m.uploads, key)
	return storage.UploadResult{URL: "https://media.test/" + key}, nil
}

func (m *fakeMedia) UploadFile(ctx context.Context, key, localPath string) (storage.UploadResult, error) {
	m.uploads = append(m.uploads, key)
	return storage.UploadResult{
		URL:      "https://media.test/" + key,
		Duration: 42 * time.Second,
	}, nil
}
