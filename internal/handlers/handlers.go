package handlers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/learnflow-api/internal/errors"
	"github.com/yukikurage/learnflow-api/internal/middleware"
)

// bindJSON decodes the request body into req and reports a 400 on failure.
// An empty body leaves req at its zero value when allowEmpty is set.
func bindJSON(c *gin.Context, req interface{}, allowEmpty bool) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return true
		}
		apierrors.BadRequest(c, "Invalid request body")
		return false
	}
	return true
}

// currentUser returns the authenticated user's id or writes a 401
func currentUser(c *gin.Context) (uint64, bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return 0, false
	}
	return userID, true
}
