package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/learnflow-api/internal/dto"
	apierrors "github.com/yukikurage/learnflow-api/internal/errors"
	"github.com/yukikurage/learnflow-api/internal/models"
	"github.com/yukikurage/learnflow-api/internal/services"
	"github.com/yukikurage/learnflow-api/internal/utils"
)

type ActivityHandler struct {
	activityService *services.ActivityService
}

func NewActivityHandler(activityService *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
	}
}

// ListActivities returns a page of the user's activity log
// Can filter by type, goal_id, since and until
func (h *ActivityHandler) ListActivities(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	goalID, err := utils.ParseOptionalIDQuery(c, "goal_id")
	if err != nil {
		apierrors.BadRequest(c, "Invalid goal_id")
		return
	}
	since, err := parseTimeQuery(c, "since")
	if err != nil {
		apierrors.BadRequest(c, "Invalid since")
		return
	}
	until, err := parseTimeQuery(c, "until")
	if err != nil {
		apierrors.BadRequest(c, "Invalid until")
		return
	}

	params := utils.GetPaginationParams(c)
	input := services.ListActivitiesInput{
		UserID:     userID,
		GoalID:     goalID,
		Since:      since,
		Until:      until,
		Pagination: &params,
	}
	if t := c.Query("type"); t != "" {
		activityType := models.ActivityType(t)
		input.Type = &activityType
	}

	activities, total, err := h.activityService.List(input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ActivityListResponse{
		Activities: activities,
		Pagination: utils.NewPaginationResponse(params, total),
	})
}

func parseTimeQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := utils.ParseTime(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
