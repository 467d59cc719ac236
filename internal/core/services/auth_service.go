package services

import (
	"context"
	"errors"
	"sync"

	"census-backend/internal/adapters/persistence/models"
	"census-backend/internal/adapters/persistence/repositories"
	"census-backend/internal/config"
	"census-backend/internal/core/domain"
	"census-backend/internal/pkg/jwt"
	"census-backend/internal/pkg/metrics"
	"census-backend/internal/pkg/password"
	"census-backend/internal/pkg/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// dummyHash is verified against when the username is unknown so both failure
// paths cost one bcrypt comparison.
var (
	dummyHashOnce sync.Once
	dummyHash     string
)

func burnPasswordCheck(plain string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = password.Hash(uuid.NewString())
	})
	password.Verify(plain, dummyHash)
}

// AuthService handles authentication business logic
type AuthService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	revocations      session.RevocationStore
	cfg              *config.Config
	log              *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	revocations session.RevocationStore,
	cfg *config.Config,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		revocations:      revocations,
		cfg:              cfg,
		log:              log,
	}
}

// LoginInput represents login input
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *models.UserResponse `json:"user"`
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
	TokenType    string               `json:"token_type"`
}

// Login authenticates a user. Unknown usernames and wrong passwords fail the
// same way. Inactive users may log in; the response reports the flag.
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			burnPasswordCheck(input.Password)
			metrics.RecordLogin(false)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(input.Password, user.Password) {
		metrics.RecordLogin(false)
		return nil, domain.ErrInvalidCredentials
	}

	resp, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}

	metrics.RecordLogin(true)
	s.log.Info("✅ User logged in", zap.String("username", user.Username), zap.Bool("active", user.Active))
	return resp, nil
}

// RefreshToken rotates a refresh token: the old one is revoked and a new pair issued.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		return nil, tokenError(err)
	}

	tokenHash := password.HashToken(refreshToken)
	stored, err := s.refreshTokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		return nil, err
	}
	if stored.IsRevoked() {
		return nil, domain.ErrTokenRevoked
	}
	if stored.IsExpired() {
		return nil, domain.ErrTokenExpired
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}

	if err := s.refreshTokenRepo.RevokeByTokenHash(ctx, tokenHash); err != nil {
		return nil, err
	}

	resp, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info("✅ Token refreshed", zap.String("username", user.Username))
	return resp, nil
}

// Logout revokes the refresh token (if any) and blocks the access token for
// the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, refreshToken string, access *jwt.Claims) error {
	if refreshToken != "" {
		if err := s.refreshTokenRepo.RevokeByTokenHash(ctx, password.HashToken(refreshToken)); err != nil {
			return err
		}
	}
	if access != nil && access.ID != "" {
		if err := s.revocations.Revoke(ctx, access.ID, access.RemainingLifetime()); err != nil {
			return err
		}
		s.log.Info("✅ User logged out", zap.String("username", access.Username))
	}
	return nil
}

// ValidateAccessToken validates an access token and checks the revocation list.
func (s *AuthService) ValidateAccessToken(ctx context.Context, accessToken string) (*jwt.Claims, error) {
	claims, err := jwt.ValidateAccessToken(accessToken, s.cfg.JWT.Secret)
	if err != nil {
		return nil, tokenError(err)
	}
	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, domain.ErrTokenRevoked
	}
	return claims, nil
}

// Me returns the profile of the authenticated user.
func (s *AuthService) Me(ctx context.Context, username string) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return user.ToResponse(), nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*AuthResponse, error) {
	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}
	if err := s.storeRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}
	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    "bearer",
	}, nil
}

// generateTokens generates access and refresh tokens
func (s *AuthService) generateTokens(user *models.User) (*TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(
		user.Username,
		user.Role,
		s.cfg.JWT.Secret,
		s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	refreshToken, err := jwt.GenerateRefreshToken(
		user.ID,
		uuid.NewString(),
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// storeRefreshToken stores a refresh token hash in the database
func (s *AuthService) storeRefreshToken(ctx context.Context, userID uint, refreshToken string) error {
	token := &models.RefreshToken{
		UserID:    userID,
		TokenHash: password.HashToken(refreshToken),
		ExpiresAt: jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays),
	}
	return s.refreshTokenRepo.Create(ctx, token)
}

func tokenError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return domain.ErrTokenExpired
	}
	return domain.ErrTokenInvalid
}
