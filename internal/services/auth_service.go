package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/yukikurage/learnflow-api/internal/auth"
	"github.com/yukikurage/learnflow-api/internal/constants"
	"github.com/yukikurage/learnflow-api/internal/metrics"
	"github.com/yukikurage/learnflow-api/internal/models"
	"github.com/yukikurage/learnflow-api/internal/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	tokens      *auth.TokenManager
	denylist    auth.Denylist
	refreshTTL  time.Duration
	now         func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, tokens *auth.TokenManager, denylist auth.Denylist, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		tokens:      tokens,
		denylist:    denylist,
		refreshTTL:  refreshTTL,
		now:         time.Now,
	}
}

// TokenPair is returned on every successful login, registration or refresh.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResult is an authenticated user together with fresh tokens.
type AuthResult struct {
	User   *models.User
	Tokens TokenPair
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	UserAgent       string
}

// Register creates a new user and logs them in.
func (s *AuthService) Register(input RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	if name == "" || email == "" || input.Password == "" || input.ConfirmPassword == "" {
		return nil, ErrMissingFields
	}
	if !auth.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if input.Password != input.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	if len(input.Password) > constants.MaxPasswordLength {
		return nil, ErrPasswordTooLong
	}
	if strength := auth.CheckPasswordStrength(input.Password); !strength.Acceptable() {
		return nil, ErrWeakPassword.WithDetails(strength)
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		metrics.AuthEvents.WithLabelValues("register", "conflict").Inc()
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := auth.HashPassword(input.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, ErrPasswordTooLong
	} else if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Timezone:     constants.DefaultTimezone,
		Preferences:  datatypes.NewJSONType(models.DefaultPreferences()),
		CreatedAt:    s.now(),
	}
	if err := s.userRepo.Create(user); err != nil {
		// lost a race with a concurrent registration of the same email
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			metrics.AuthEvents.WithLabelValues("register", "conflict").Inc()
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	metrics.AuthEvents.WithLabelValues("register", "ok").Inc()

	return s.startSession(user, input.UserAgent)
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email     string
	Password  string
	UserAgent string
}

// Login verifies credentials and issues a token pair. A failed attempt
// leaves existing sessions untouched.
func (s *AuthService) Login(input LoginInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, ErrCredentialsRequired
	}
	if !auth.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.AuthEvents.WithLabelValues("login", "unknown_user").Inc()
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, input.Password) {
		metrics.AuthEvents.WithLabelValues("login", "bad_password").Inc()
		return nil, ErrIncorrectPassword
	}
	metrics.AuthEvents.WithLabelValues("login", "ok").Inc()

	return s.startSession(user, input.UserAgent)
}

func (s *AuthService) startSession(user *models.User, userAgent string) (*AuthResult, error) {
	now := s.now()
	tokens, err := s.issueTokens(user, userAgent, now)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateLastLogin(user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}
	user.LastLoginAt = &now
	return &AuthResult{User: user, Tokens: *tokens}, nil
}

func (s *AuthService) issueTokens(user *models.User, userAgent string, now time.Time) (*TokenPair, error) {
	access, claims, err := s.tokens.NewAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refresh, err := auth.NewRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	if len(userAgent) > 255 {
		userAgent = userAgent[:255]
	}
	session := &models.RefreshSession{
		UserID:    user.ID,
		TokenHash: auth.HashToken(refresh),
		UserAgent: userAgent,
		ExpiresAt: now.Add(s.refreshTTL),
		CreatedAt: now,
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, fmt.Errorf("failed to store refresh session: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresAt:    claims.ExpiresAt.Time,
	}, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// revoked, so each refresh token can be used once.
func (s *AuthService) Refresh(refreshToken, userAgent string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}

	session, err := s.sessionRepo.FindByHash(auth.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.AuthEvents.WithLabelValues("refresh", "invalid").Inc()
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to find refresh session: %w", err)
	}

	now := s.now()
	if !session.Active(now) {
		metrics.AuthEvents.WithLabelValues("refresh", "invalid").Inc()
		return nil, ErrInvalidRefreshToken
	}
	// Only the first of concurrent refreshes with one token revokes it.
	if err := s.sessionRepo.Revoke(session.ID, now); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.AuthEvents.WithLabelValues("refresh", "invalid").Inc()
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to revoke refresh session: %w", err)
	}

	user, err := s.GetUser(session.UserID)
	if err != nil {
		return nil, err
	}

	tokens, err := s.issueTokens(user, userAgent, now)
	if err != nil {
		return nil, err
	}
	metrics.AuthEvents.WithLabelValues("refresh", "ok").Inc()
	return &AuthResult{User: user, Tokens: *tokens}, nil
}

// Logout revokes every refresh session of the user and blocks the presented
// access token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, userID uint64, claims *auth.Claims) error {
	if err := s.sessionRepo.RevokeAllForUser(userID, s.now()); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	if claims != nil && claims.ID != "" && claims.ExpiresAt != nil {
		if err := s.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
			return fmt.Errorf("failed to revoke access token: %w", err)
		}
	}
	metrics.AuthEvents.WithLabelValues("logout", "ok").Inc()
	return nil
}

// Authenticate validates a bearer token. Expired, malformed and revoked
// tokens are all reported as auth errors.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		return nil, ErrNotAuthenticated
	}

	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, ErrSessionExpired
	}
	return claims, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// UpdateProfileInput holds optional profile changes; nil fields are kept.
type UpdateProfileInput struct {
	Name        *string
	Email       *string
	Bio         *string
	AvatarURL   *string
	Timezone    *string
	Preferences *models.UserPreferences
}

// UpdateProfile merges the given changes into the user's profile.
func (s *AuthService) UpdateProfile(userID uint64, input UpdateProfileInput) (*models.User, error) {
	if userID == 0 {
		return nil, ErrNotAuthenticated
	}
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrProfileNameRequired
		}
		user.Name = name
	}

	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if !auth.IsValidEmail(email) {
			return nil, ErrInvalidEmail
		}
		if email != user.Email {
			existing, err := s.userRepo.FindByEmail(email)
			switch {
			case err == nil && existing.ID != user.ID:
				return nil, ErrEmailTaken
			case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			user.Email = email
		}
	}

	if input.Timezone != nil {
		tz := strings.TrimSpace(*input.Timezone)
		if _, err := time.LoadLocation(tz); err != nil || tz == "" {
			return nil, ErrUnknownTimezone
		}
		user.Timezone = tz
	}
	if input.Bio != nil {
		user.Bio = strings.TrimSpace(*input.Bio)
	}
	if input.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*input.AvatarURL)
	}
	if input.Preferences != nil {
		user.Preferences = datatypes.NewJSONType(*input.Preferences)
	}

	user.UpdatedAt = s.now()
	if err := s.userRepo.Update(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
