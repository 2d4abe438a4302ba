package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidtube/pkg/errors"
	"vidtube/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.New("error")
	require.NoError(t, err)
	return log
}

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	respondJSON(rec, http.StatusCreated, map[string]string{"id": "42"}, "Created")

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusCreated, body.Status)
	assert.Equal(t, "Created", body.Message)
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "validation error",
			err:         errors.NewValidationError("Title length should be between 5 and 100"),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Title length should be between 5 and 100",
		},
		{
			name:        "not found",
			err:         errors.NewNotFoundError("No such video exists"),
			wantStatus:  http.StatusNotFound,
			wantMessage: "No such video exists",
		},
		{
			name:        "authorization",
			err:         errors.NewAuthorizationError("You cannot delete this video"),
			wantStatus:  http.StatusForbidden,
			wantMessage: "You cannot delete this video",
		},
		{
			name:       "unknown error becomes internal",
			err:        assert.AnError,
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondError(rec, testLogger(t), tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body APIErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body.Status)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, body.Message)
			}
		})
	}
}

func TestTokenCookies(t *testing.T) {
	rec := httptest.NewRecorder()
	setTokenCookie(rec, refreshTokenCookie, "opaque-token", 240*time.Hour)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	cookie := cookies[0]
	assert.Equal(t, refreshTokenCookie, cookie.Name)
	assert.Equal(t, "opaque-token", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, int((240 * time.Hour).Seconds()), cookie.MaxAge)

	rec = httptest.NewRecorder()
	clearTokenCookie(rec, refreshTokenCookie)

	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}
