package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vidtube/internal/container"
	"vidtube/internal/domain"
	"vidtube/internal/middleware"
	"vidtube/pkg/errors"
)

// UserHandler handles account management, channel profiles and watch history
type UserHandler struct {
	container *container.Container
}

// NewUserHandler creates a new user handler
func NewUserHandler(container *container.Container) *UserHandler {
	return &UserHandler{
		container: container,
	}
}

// UpdateDetails handles PATCH /api/v1/users/update-account
func (h *UserHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	log := h.container.GetLogger()
	user := middleware.UserFromContext(r.Context())

	var req domain.UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, log, errors.NewValidationError("Invalid request body"))
		return
	}

	updated, err := h.container.GetUserService().UpdateAccountDetails(r.Context(), user.ID, &req)
	if err != nil {
		respondError(w, log, err)
		return
	}

	respondJSON(w, http.StatusOK, updated, "Account details updated")
}

// UpdateAvatar handles PATCH /api/v1/users/avatar (multipart form)
func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar", h.container.GetUserService().UpdateAvatar, "Avatar updated")
}

// UpdateCoverImage handles PATCH /api/v1/users/cover-image (multipart form)
func (h *UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "cover_image", h.container.GetUserService().UpdateCoverImage, "Cover image updated")
}

// ChannelProfile handles GET /api/v1/users/c/{username}. The viewer is
// optional: anonymous requests get is_subscribed = false.
func (h *UserHandler) ChannelProfile(w http.ResponseWriter, r *http.Request) {
	log := h.container.GetLogger()

	username := chi.URLParam(r, "username")
	viewerID := ""
	if user := middleware.UserFromContext(r.Context()); user != nil {
		viewerID = user.ID
	}

	profile, err := h.container.GetUserService().GetChannelProfile(r.Context(), username, viewerID)
	if err != nil {
		respondError(w, log, err)
		return
	}

	respondJSON(w, http.StatusOK, profile, "Channel profile fetched")
}

// WatchHistory handles GET /api/v1/users/history
func (h *UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	log := h.container.GetLogger()
	user := middleware.UserFromContext(r.Context())

	videos, err := h.container.GetUserService().GetWatchHistory(r.Context(), user.ID)
	if err != nil {
		respondError(w, log, err)
		return
	}

	respondJSON(w, http.StatusOK, videos, "Watch history fetched")
}

// RecordWatch handles POST /api/v1/users/history/{videoId}
func (h *UserHandler) RecordWatch(w http.ResponseWriter, r *http.Request) {
	log := h.container.GetLogger()
	user := middleware.UserFromContext(r.Context())

	videoID := chi.URLParam(r, "videoId")
	if err := h.container.GetUserService().RecordWatch(r.Context(), user.ID, videoID); err != nil {
		respondError(w, log, err)
		return
	}

	respondJSON(w, http.StatusOK, nil, "Watch recorded")
}

func (h *UserHandler) updateImage(
	w http.ResponseWriter,
	r *http.Request,
	field string,
	update func(ctx context.Context, userID, path string) (*domain.PublicUser, error),
	message string,
) {
	log := h.container.GetLogger()
	user := middleware.UserFromContext(r.Context())

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, log, errors.NewValidationError("Invalid multipart form"))
		return
	}

	path, cleanup, err := saveUploadedFile(r, field)
	if err != nil {
		respondError(w, log, err)
		return
	}
	defer cleanup()

	if path == "" {
		respondError(w, log, errors.NewValidationError("Image file is required"))
		return
	}

	updated, err := update(r.Context(), user.ID, path)
	if err != nil {
		respondError(w, log, err)
		return
	}

	respondJSON(w, http.StatusOK, updated, message)
}
