package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"vidtube/internal/config"
	"vidtube/internal/domain"
	"vidtube/internal/repository"
	"vidtube/internal/service"
	"vidtube/pkg/errors"
	"vidtube/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service implements the AuthService interface. Refresh tokens are rotated
// through a single slot on the user record: issuing a pair overwrites the
// stored value, so the previously issued refresh token stops being accepted.
//
// Concurrent refreshes for the same user are not serialized; the last writer
// wins and the loser's pair is rejected on its next refresh.
type Service struct {
	users  repository.UserRepository
	logger *logger.Logger

	accessSecret  []byte
	accessTTL     time.Duration
	refreshSecret []byte
	refreshTTL    time.Duration
}

// NewService creates a new auth service
func NewService(users repository.UserRepository, cfg *config.Config, logger *logger.Logger) service.AuthService {
	return &Service{
		users:         users,
		logger:        logger,
		accessSecret:  []byte(cfg.AccessTokenSecret),
		accessTTL:     cfg.AccessTokenTTL,
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		refreshTTL:    cfg.RefreshTokenTTL,
	}
}

// IssueTokenPair signs a new access/refresh pair for the user and persists
// the refresh token onto the user record. This is the rotation point: any
// previously stored refresh token is superseded.
func (s *Service) IssueTokenPair(ctx context.Context, userID string) (*domain.TokenPair, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.NewInternalError("Could not generate tokens", err)
	}
	if user == nil {
		return nil, errors.NewInternalError("Could not generate tokens", fmt.Errorf("user %s not found", userID))
	}

	accessToken, err := s.signToken(userID, s.accessSecret, s.accessTTL)
	if err != nil {
		return nil, errors.NewInternalError("Could not generate tokens", err)
	}

	refreshToken, err := s.signToken(userID, s.refreshSecret, s.refreshTTL)
	if err != nil {
		return nil, errors.NewInternalError("Could not generate tokens", err)
	}

	if err := s.users.UpdateRefreshToken(ctx, userID, &refreshToken); err != nil {
		return nil, errors.NewInternalError("Could not generate tokens", err)
	}

	s.logger.WithField("user_id", userID).Debug("Issued token pair")

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Login authenticates by username or email plus password and issues tokens
func (s *Service) Login(ctx context.Context, identifier, password string) (*domain.PublicUser, *domain.TokenPair, error) {
	if identifier == "" || password == "" {
		return nil, nil, errors.NewValidationError("Username or email and password are required")
	}

	user, err := s.users.GetByUsernameOrEmail(ctx, identifier)
	if err != nil {
		return nil, nil, errors.NewInternalError("Could not load user", err)
	}
	if user == nil {
		return nil, nil, errors.NewNotFoundError("User does not exist")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.WithField("user_id", user.ID).Debug("Password mismatch on login")
		return nil, nil, errors.NewAuthenticationError("Incorrect password")
	}

	pair, err := s.IssueTokenPair(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.WithField("user_id", user.ID).Info("User logged in")

	return user.Public(), pair, nil
}

// Refresh exchanges a valid, current refresh token for a new pair. Presenting
// a superseded token is reported as a mismatch and forces re-authentication.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	if refreshToken == "" {
		return nil, errors.NewAuthenticationError("Refresh token is required")
	}

	userID, err := s.verifyToken(refreshToken, s.refreshSecret)
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.NewAuthenticationError("Refresh token expired")
		}
		return nil, errors.NewAuthenticationError("Invalid refresh token")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.NewInternalError("Could not load user", err)
	}
	if user == nil {
		return nil, errors.NewAuthenticationError("Invalid user")
	}

	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		// The token verified but is not the one currently stored: it was
		// superseded by a later rotation. Reuse of a stale token ends here.
		s.logger.WithField("user_id", userID).Warn("Refresh token mismatch")
		return nil, errors.NewAuthenticationError("Refresh token mismatch")
	}

	return s.IssueTokenPair(ctx, user.ID)
}

// Logout clears the stored refresh token, ending the session family
func (s *Service) Logout(ctx context.Context, userID string) error {
	if err := s.users.UpdateRefreshToken(ctx, userID, nil); err != nil {
		return errors.NewInternalError("Could not log out", err)
	}

	s.logger.WithField("user_id", userID).Info("User logged out")
	return nil
}

// Authenticate verifies an access token and loads its user. Only signature
// and expiry are checked; no stored value is consulted.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	if accessToken == "" {
		return nil, errors.NewAuthenticationError("Access token is required")
	}

	userID, err := s.verifyToken(accessToken, s.accessSecret)
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.NewAuthenticationError("Access token expired")
		}
		return nil, errors.NewAuthenticationError("Invalid access token")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.NewInternalError("Could not load user", err)
	}
	if user == nil {
		return nil, errors.NewAuthenticationError("Invalid user")
	}

	return user, nil
}

// signToken signs an HS256 token carrying the user id. The jti claim keeps
// tokens issued within the same second distinct.
func (s *Service) signToken(userID string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// verifyToken checks signature and expiry and returns the subject user id
func (s *Service) verifyToken(tokenString string, secret []byte) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("invalid token")
	}
	return claims.Subject, nil
}
