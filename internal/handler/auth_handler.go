package handler

import (
	"encoding/json"
	"net/http"

	"vidtube/internal/container"
	"vidtube/internal/domain"
	"vidtube/internal/middleware"
	"vidtube/pkg/errors"
)

// AuthHandler handles registration and the session lifecycle
type AuthHandler struct {
	container *container.Container
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(container *container.Container) *AuthHandler {
	return &AuthHandler{
		container: container,
	}
}

// Register handles POST /api/v1/users/register (multipart form)
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := h.container.GetLogger()

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, log, errors.NewValidationError("Invalid multipart form"))
		return
	}

	req := &domain.RegisterRequest{
		Username: r.FormValue("username"),
		Email:    r.FormValue("email"),
		FullName: r.FormValue("full_name"),
		Password: r.FormValue("password"),
	}

	avatarPath, avatarCleanup, err := saveUploadedFile(r, "avatar")
	if err != nil {
		respondError(w, log, err)
		return
	}
	defer avatarCleanup()

	coverPath, coverCleanup, err := saveUploadedFile(r, "cover_image")
	if err != nil {
		respondError(w, log, err)
		return
	}
	defer coverCleanup()

	user, err := h.container.GetUserService().Register(r.Context(), req, avatarPath, coverPath)
	if err != nil {
		respondError(w, log, err)
		return
	}

	respondJSON(w, http.StatusCreated, user, "Registration successful")
}

type loginPayload struct {
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

// Login handles POST /api/v1/users/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := h.container.GetLogger()

	var payload loginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, log, errors.NewValidationError("Invalid request body"))
		return
	}

	identifier := payload.Identifier
	if identifier == "" {
		identifier = payload.Username
	}
	if identifier == "" {
		identifier = payload.Email
	}

	user, pair, err := h.container.GetAuthService().Login(r.Context(), identifier, payload.Password)
	if err != nil {
		respondError(w, log, err)
		return
	}

	h.setSessionCookies(w, pair)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user":          user,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	}, "Login successful")
}

// Logout handles POST /api/v1/users/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	log := h.container.GetLogger()
	user := middleware.UserFromContext(r.Context())

	if err := h.container.GetAuthService().Logout(r.Context(), user.ID); err != nil {
		respondError(w, log, err)
		return
	}

	clearTokenCookie(w, middleware.AccessTokenCookie)
	clearTokenCookie(w, refreshTokenCookie)

	respondJSON(w, http.StatusOK, nil, "User logged out")
}

// Refresh handles POST /api/v1/users/refresh-token. The token comes from the
// refresh cookie or, for non-browser clients, the request body.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	log := h.container.GetLogger()

	token := ""
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil {
		token = cookie.Value
	}
	if token == "" && r.Body != nil {
		var payload struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err == nil {
			token = payload.RefreshToken
		}
	}

	pair, err := h.container.GetAuthService().Refresh(r.Context(), token)
	if err != nil {
		respondError(w, log, err)
		return
	}

	h.setSessionCookies(w, pair)

	respondJSON(w, http.StatusOK, pair, "Token refreshed")
}

// CurrentUser handles GET /api/v1/users/me
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	respondJSON(w, http.StatusOK, user.Public(), "Current user fetched")
}

// ChangePassword handles POST /api/v1/users/change-password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	log := h.container.GetLogger()
	user := middleware.UserFromContext(r.Context())

	var req domain.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, log, errors.NewValidationError("Invalid request body"))
		return
	}

	if err := h.container.GetUserService().ChangePassword(r.Context(), user.ID, &req); err != nil {
		respondError(w, log, err)
		return
	}

	respondJSON(w, http.StatusOK, nil, "Password updated")
}

func (h *AuthHandler) setSessionCookies(w http.ResponseWriter, pair *domain.TokenPair) {
	cfg := h.container.GetConfig()
	setTokenCookie(w, middleware.AccessTokenCookie, pair.AccessToken, cfg.AccessTokenTTL)
	setTokenCookie(w, refreshTokenCookie, pair.RefreshToken, cfg.RefreshTokenTTL)
}
