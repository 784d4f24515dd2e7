package dto

import (
	"time"

	"github.com/yukikurage/learnflow-api/internal/models"
	"github.com/yukikurage/learnflow-api/internal/services"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID          uint64                 `json:"id"`
	Name        string                 `json:"name"`
	Email       string                 `json:"email"`
	Bio         string                 `json:"bio"`
	AvatarURL   string                 `json:"avatar_url"`
	Timezone    string                 `json:"timezone"`
	Preferences models.UserPreferences `json:"preferences"`
	LastLoginAt *time.Time             `json:"last_login_at"`
	CreatedAt   time.Time              `json:"created_at"`
}

// AuthResponse is returned by register, login and refresh
type AuthResponse struct {
	User         UserDTO   `json:"user"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

// RefreshRequest may be empty when the refresh token is held in the session cookie
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UpdateProfileRequest holds optional profile changes
type UpdateProfileRequest struct {
	Name        *string                 `json:"name"`
	Email       *string                 `json:"email"`
	Bio         *string                 `json:"bio"`
	AvatarURL   *string                 `json:"avatar_url"`
	Timezone    *string                 `json:"timezone"`
	Preferences *models.UserPreferences `json:"preferences"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Bio:         user.Bio,
		AvatarURL:   user.AvatarURL,
		Timezone:    user.Timezone,
		Preferences: user.Preferences.Data(),
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}

// ToAuthResponse converts a service result into the token response
func ToAuthResponse(result *services.AuthResult) AuthResponse {
	return AuthResponse{
		User:         ToUserDTO(*result.User),
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		TokenType:    result.Tokens.TokenType,
		ExpiresAt:    result.Tokens.ExpiresAt,
	}
}

// ToUpdateProfileInput converts the request into service input
func (r UpdateProfileRequest) ToUpdateProfileInput() services.UpdateProfileInput {
	return services.UpdateProfileInput{
		Name:        r.Name,
		Email:       r.Email,
		Bio:         r.Bio,
		AvatarURL:   r.AvatarURL,
		Timezone:    r.Timezone,
		Preferences: r.Preferences,
	}
}
