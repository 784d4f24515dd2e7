package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/learnflow-api/internal/constants"
	apierrors "github.com/yukikurage/learnflow-api/internal/errors"
	"github.com/yukikurage/learnflow-api/internal/models"
	"github.com/yukikurage/learnflow-api/internal/utils"
)

// GoalLoader finds a goal owned by a user.
type GoalLoader interface {
	GetGoal(userID, goalID uint64) (*models.Goal, error)
}

// RequireGoalAccess loads the goal named by the :id parameter.
// Goals of other users are reported as not found so their existence is not leaked.
func RequireGoalAccess(goals GoalLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		goalID, err := utils.ParseIDParam(c, "id")
		if err != nil {
			apierrors.BadRequest(c, "Invalid goal ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		goal, err := goals.GetGoal(userID, goalID)
		if err != nil {
			apierrors.Respond(c, err)
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyGoal, goal)
		c.Next()
	}
}

// GetGoal returns the goal stored by RequireGoalAccess
func GetGoal(c *gin.Context) (*models.Goal, bool) {
	value, exists := c.Get(constants.ContextKeyGoal)
	if !exists {
		return nil, false
	}
	goal, ok := value.(*models.Goal)
	return goal, ok
}
