package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"vidtube/internal/container"
	"vidtube/internal/middleware"
)

// SubscriptionHandler handles the subscription edge between viewers and channels
type SubscriptionHandler struct {
	container *container.Container
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(container *container.Container) *SubscriptionHandler {
	return &SubscriptionHandler{
		container: container,
	}
}

// Subscribe handles POST /api/v1/subscriptions/{channelId}
func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	log := h.container.GetLogger()
	user := middleware.UserFromContext(r.Context())

	if err := h.container.GetSubscriptionService().Subscribe(r.Context(), user.ID, chi.URLParam(r, "channelId")); err != nil {
		respondError(w, log, err)
		return
	}

	respondJSON(w, http.StatusOK, nil, "Subscribed")
}

// Unsubscribe handles DELETE /api/v1/subscriptions/{channelId}
func (h *SubscriptionHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	log := h.container.GetLogger()
	user := middleware.UserFromContext(r.Context())

	if err := h.container.GetSubscriptionService().Unsubscribe(r.Context(), user.ID, chi.URLParam(r, "channelId")); err != nil {
		respondError(w, log, err)
		return
	}

	respondJSON(w, http.StatusOK, nil, "Unsubscribed")
}
