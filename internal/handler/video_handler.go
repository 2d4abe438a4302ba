package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"vidtube/internal/container"
	"vidtube/internal/domain"
	"vidtube/internal/middleware"
	"vidtube/pkg/errors"
)

// VideoHandler handles publishing and the video listing query
type VideoHandler struct {
	container *container.Container
}

// NewVideoHandler creates a new video handler
func NewVideoHandler(container *container.Container) *VideoHandler {
	return &VideoHandler{
		container: container,
	}
}

// List handles GET /api/v1/videos. Supported query parameters: page, limit,
// query, sortBy, sortType and userId. Non-numeric page or limit falls back
// to the defaults.
func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	log := h.container.GetLogger()
	q := r.URL.Query()

	filter := domain.VideoFilter{
		Query:   strings.TrimSpace(q.Get("query")),
		OwnerID: strings.TrimSpace(q.Get("userId")),
	}
	sort := domain.VideoSort{
		Field:     strings.TrimSpace(q.Get("sortBy")),
		Direction: strings.TrimSpace(q.Get("sortType")),
	}
	page := domain.Pagination{
		Page:  parseIntParam(q.Get("page")),
		Limit: parseIntParam(q.Get("limit")),
	}

	result, err := h.container.GetVideoService().List(r.Context(), filter, sort, page)
	if err != nil {
		respondError(w, log, err)
		return
	}

	respondJSON(w, http.StatusOK, result, "Videos fetched")
}

// Publish handles POST /api/v1/videos (multipart form)
func (h *VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	log := h.container.GetLogger()
	user := middleware.UserFromContext(r.Context())

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, log, errors.NewValidationError("Invalid multipart form"))
		return
	}

	req := &domain.PublishVideoRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
	}

	videoPath, videoCleanup, err := saveUploadedFile(r, "video")
	if err != nil {
		respondError(w, log, err)
		return
	}
	defer videoCleanup()

	thumbnailPath, thumbnailCleanup, err := saveUploadedFile(r, "thumbnail")
	if err != nil {
		respondError(w, log, err)
		return
	}
	defer thumbnailCleanup()

	video, err := h.container.GetVideoService().Publish(r.Context(), user.ID, req, videoPath, thumbnailPath)
	if err != nil {
		respondError(w, log, err)
		return
	}

	respondJSON(w, http.StatusCreated, video, "Video published")
}

// GetByID handles GET /api/v1/videos/{videoId}
func (h *VideoHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	log := h.container.GetLogger()

	video, err := h.container.GetVideoService().GetByID(r.Context(), chi.URLParam(r, "videoId"))
	if err != nil {
		respondError(w, log, err)
		return
	}

	respondJSON(w, http.StatusOK, video, "Video fetched")
}

// Update handles PATCH /api/v1/videos/{videoId} (multipart form, thumbnail optional)
func (h *VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.container.GetLogger()
	user := middleware.UserFromContext(r.Context())

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, log, errors.NewValidationError("Invalid multipart form"))
		return
	}

	req := &domain.UpdateVideoRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
	}

	thumbnailPath, cleanup, err := saveUploadedFile(r, "thumbnail")
	if err != nil {
		respondError(w, log, err)
		return
	}
	defer cleanup()

	video, err := h.container.GetVideoService().Update(r.Context(), user.ID, chi.URLParam(r, "videoId"), req, thumbnailPath)
	if err != nil {
		respondError(w, log, err)
		return
	}

	respondJSON(w, http.StatusOK, video, "Video updated")
}

// Delete handles DELETE /api/v1/videos/{videoId}
func (h *VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.container.GetLogger()
	user := middleware.UserFromContext(r.Context())

	if err := h.container.GetVideoService().Delete(r.Context(), user.ID, chi.URLParam(r, "videoId")); err != nil {
		respondError(w, log, err)
		return
	}

	respondJSON(w, http.StatusOK, nil, "Video deleted")
}

// TogglePublish handles PATCH /api/v1/videos/toggle/publish/{videoId}
func (h *VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	log := h.container.GetLogger()
	user := middleware.UserFromContext(r.Context())

	published, err := h.container.GetVideoService().TogglePublish(r.Context(), user.ID, chi.URLParam(r, "videoId"))
	if err != nil {
		respondError(w, log, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"is_published": published}, "Publish state toggled")
}

func parseIntParam(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
