package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/learnflow-api/internal/constants"
	"github.com/yukikurage/learnflow-api/internal/dto"
	apierrors "github.com/yukikurage/learnflow-api/internal/errors"
	"github.com/yukikurage/learnflow-api/internal/logger"
	"github.com/yukikurage/learnflow-api/internal/middleware"
	"github.com/yukikurage/learnflow-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService      *services.AuthService
	analyticsService *services.AnalyticsService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, analyticsService *services.AnalyticsService) *AuthHandler {
	return &AuthHandler{
		authService:      authService,
		analyticsService: analyticsService,
	}
}

// Register creates an account and logs it in.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req, false) {
		return
	}

	result, err := h.authService.Register(services.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		UserAgent:       c.Request.UserAgent(),
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToAuthResponse(result))
}

// Login authenticates a user. With remember_me the refresh token is also
// kept in the session cookie so the client can refresh without storing it.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req, false) {
		return
	}

	result, err := h.authService.Login(services.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	session := sessions.Default(c)
	if req.RememberMe {
		session.Set(constants.SessionKeyRefreshToken, result.Tokens.RefreshToken)
	} else {
		session.Delete(constants.SessionKeyRefreshToken)
	}
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, dto.ToAuthResponse(result))
}

// Refresh rotates a refresh token taken from the body or, failing that,
// from the remember-me session.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !bindJSON(c, &req, true) {
		return
	}

	session := sessions.Default(c)
	token := req.RefreshToken
	fromSession := false
	if token == "" {
		if stored, ok := session.Get(constants.SessionKeyRefreshToken).(string); ok {
			token = stored
			fromSession = true
		}
	}

	result, err := h.authService.Refresh(token, c.Request.UserAgent())
	if err != nil {
		if fromSession {
			session.Delete(constants.SessionKeyRefreshToken)
			if saveErr := session.Save(); saveErr != nil {
				logger.Warn("failed to clear session", "err", saveErr)
			}
		}
		apierrors.Respond(c, err)
		return
	}

	if fromSession {
		session.Set(constants.SessionKeyRefreshToken, result.Tokens.RefreshToken)
		if err := session.Save(); err != nil {
			apierrors.InternalError(c, "Failed to save session")
			return
		}
	}

	c.JSON(http.StatusOK, dto.ToAuthResponse(result))
}

// Logout revokes the user's sessions and the presented access token.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.authService.Logout(c.Request.Context(), userID, middleware.GetClaims(c)); err != nil {
		apierrors.Respond(c, err)
		return
	}

	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Logged out successfully"})
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UpdateProfile merges profile changes into the authenticated user.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !bindJSON(c, &req, false) {
		return
	}

	user, err := h.authService.UpdateProfile(userID, req.ToUpdateProfileInput())
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// GetStats returns profile statistics derived from the user's data.
func (h *AuthHandler) GetStats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := h.analyticsService.UserStats(userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
