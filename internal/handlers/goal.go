package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/learnflow-api/internal/dto"
	apierrors "github.com/yukikurage/learnflow-api/internal/errors"
	"github.com/yukikurage/learnflow-api/internal/middleware"
	"github.com/yukikurage/learnflow-api/internal/models"
	"github.com/yukikurage/learnflow-api/internal/services"
	"github.com/yukikurage/learnflow-api/internal/utils"
)

type GoalHandler struct {
	goalService *services.GoalService
	now         func() time.Time
}

func NewGoalHandler(goalService *services.GoalService) *GoalHandler {
	return &GoalHandler{
		goalService: goalService,
		now:         time.Now,
	}
}

// ListGoals returns the user's goals
// Supports search, status, category, priority, sort and order query filters
func (h *GoalHandler) ListGoals(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	input := services.ListGoalsInput{
		UserID:   userID,
		Search:   strings.TrimSpace(c.Query("search")),
		Status:   c.Query("status"),
		Category: c.Query("category"),
		SortBy:   c.Query("sort"),
		SortDesc: strings.EqualFold(c.Query("order"), "desc"),
	}
	if priority := c.Query("priority"); priority != "" {
		p := models.Priority(priority)
		input.Priority = &p
	}

	goals, err := h.goalService.ListGoals(input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToGoalListResponse(goals, h.now()))
}

// GetGoal returns a specific goal
// Goal is already loaded by RequireGoalAccess middleware
func (h *GoalHandler) GetGoal(c *gin.Context) {
	goal, ok := middleware.GetGoal(c)
	if !ok {
		apierrors.InternalError(c, "Goal not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToGoalDTO(*goal, h.now()))
}

// CreateGoal creates a goal with optional milestones
func (h *GoalHandler) CreateGoal(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateGoalRequest
	if !bindJSON(c, &req, false) {
		return
	}
	input, err := req.ToCreateGoalInput(userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	goal, err := h.goalService.CreateGoal(input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToGoalDTO(*goal, h.now()))
}

// UpdateGoal updates an existing goal
func (h *GoalHandler) UpdateGoal(c *gin.Context) {
	goal, ok := middleware.GetGoal(c)
	if !ok {
		apierrors.InternalError(c, "Goal not found in context")
		return
	}

	var req dto.UpdateGoalRequest
	if !bindJSON(c, &req, false) {
		return
	}
	input, err := req.ToUpdateGoalInput()
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	updated, err := h.goalService.UpdateGoal(goal.UserID, goal.ID, input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToGoalDTO(*updated, h.now()))
}

// DeleteGoal deletes a goal together with everything attached to it
func (h *GoalHandler) DeleteGoal(c *gin.Context) {
	goal, ok := middleware.GetGoal(c)
	if !ok {
		apierrors.InternalError(c, "Goal not found in context")
		return
	}

	if err := h.goalService.DeleteGoal(goal.UserID, goal.ID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Goal deleted successfully"})
}

// Categories lists the distinct categories of the user's goals
func (h *GoalHandler) Categories(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	categories, err := h.goalService.Categories(userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// LogProgress records a study session on the goal
func (h *GoalHandler) LogProgress(c *gin.Context) {
	goal, ok := middleware.GetGoal(c)
	if !ok {
		apierrors.InternalError(c, "Goal not found in context")
		return
	}

	var req dto.StudySessionRequest
	if !bindJSON(c, &req, false) {
		return
	}

	activity, err := h.goalService.LogStudySession(goal.UserID, goal.ID, req.Minutes, req.Notes)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, activity)
}

// AddMilestone appends a milestone to the goal
func (h *GoalHandler) AddMilestone(c *gin.Context) {
	goal, ok := middleware.GetGoal(c)
	if !ok {
		apierrors.InternalError(c, "Goal not found in context")
		return
	}

	var req dto.MilestoneRequest
	if !bindJSON(c, &req, false) {
		return
	}

	updated, err := h.goalService.AddMilestone(goal.UserID, goal.ID, req.Title)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToGoalDTO(*updated, h.now()))
}

// UpdateMilestone changes a milestone and returns the recalculated goal
func (h *GoalHandler) UpdateMilestone(c *gin.Context) {
	goal, ok := middleware.GetGoal(c)
	if !ok {
		apierrors.InternalError(c, "Goal not found in context")
		return
	}
	milestoneID, err := utils.ParseIDParam(c, "milestone_id")
	if err != nil {
		apierrors.BadRequest(c, "Invalid milestone ID")
		return
	}

	var req dto.UpdateMilestoneRequest
	if !bindJSON(c, &req, false) {
		return
	}

	updated, err := h.goalService.UpdateMilestone(goal.UserID, goal.ID, milestoneID, services.UpdateMilestoneInput{
		Title:       req.Title,
		OrderIndex:  req.OrderIndex,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToGoalDTO(*updated, h.now()))
}

// DeleteMilestone removes a milestone and returns the recalculated goal
func (h *GoalHandler) DeleteMilestone(c *gin.Context) {
	goal, ok := middleware.GetGoal(c)
	if !ok {
		apierrors.InternalError(c, "Goal not found in context")
		return
	}
	milestoneID, err := utils.ParseIDParam(c, "milestone_id")
	if err != nil {
		apierrors.BadRequest(c, "Invalid milestone ID")
		return
	}

	updated, err := h.goalService.DeleteMilestone(goal.UserID, goal.ID, milestoneID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToGoalDTO(*updated, h.now()))
}

// SuggestMilestones generates milestone ideas for a goal using AI
func (h *GoalHandler) SuggestMilestones(c *gin.Context) {
	var req dto.SuggestMilestonesRequest
	if !bindJSON(c, &req, false) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	suggestions, err := h.goalService.SuggestMilestones(ctx, req.Title, req.Description)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"milestones": suggestions})
}
