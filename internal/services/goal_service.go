package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/learnflow-api/internal/analytics"
	"github.com/yukikurage/learnflow-api/internal/constants"
	"github.com/yukikurage/learnflow-api/internal/logger"
	"github.com/yukikurage/learnflow-api/internal/models"
	"github.com/yukikurage/learnflow-api/internal/repository"
	"gorm.io/gorm"
)

// GoalService handles goal and milestone business logic
type GoalService struct {
	goalRepo      repository.GoalRepository
	resourceRepo  repository.ResourceRepository
	activities    *ActivityService
	notifications *NotificationService
	aiService     *AIService
	now           func() time.Time
}

// NewGoalService creates a new GoalService. aiService may be nil.
func NewGoalService(goalRepo repository.GoalRepository, resourceRepo repository.ResourceRepository, activities *ActivityService, notifications *NotificationService, aiService *AIService) *GoalService {
	return &GoalService{
		goalRepo:      goalRepo,
		resourceRepo:  resourceRepo,
		activities:    activities,
		notifications: notifications,
		aiService:     aiService,
		now:           time.Now,
	}
}

// ListGoalsInput represents filters for listing goals
type ListGoalsInput struct {
	UserID   uint64
	Search   string
	Status   string
	Category string
	Priority *models.Priority
	SortBy   string
	SortDesc bool
}

// ListGoals returns the user's goals in insertion order unless a sort is requested
func (s *GoalService) ListGoals(input ListGoalsInput) ([]models.Goal, error) {
	if input.Priority != nil && !input.Priority.Valid() {
		return nil, ErrInvalidPriority
	}
	goals, err := s.goalRepo.List(repository.GoalFilter{
		UserID:   input.UserID,
		Search:   input.Search,
		Status:   input.Status,
		Category: input.Category,
		Priority: input.Priority,
		SortBy:   input.SortBy,
		SortDesc: input.SortDesc,
		Now:      s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	return goals, nil
}

// GetGoal returns a goal owned by userID with its milestones
func (s *GoalService) GetGoal(userID, goalID uint64) (*models.Goal, error) {
	goal, err := s.goalRepo.FindByID(userID, goalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, fmt.Errorf("failed to find goal: %w", err)
	}
	return goal, nil
}

// Categories lists the distinct goal categories of a user
func (s *GoalService) Categories(userID uint64) ([]string, error) {
	categories, err := s.goalRepo.Categories(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// CreateGoalInput represents input for creating a goal
type CreateGoalInput struct {
	UserID      uint64
	Title       string
	Description string
	Category    string
	Priority    models.Priority
	TargetDate  *time.Time
	Tags        []string
	Milestones  []string
}

// CreateGoal creates a goal with its milestones in order and logs a goal_created activity
func (s *GoalService) CreateGoal(input CreateGoalInput) (*models.Goal, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrGoalTitleRequired
	}
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	if !input.Priority.Valid() {
		return nil, ErrInvalidPriority
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = constants.DefaultGoalCategory
	}

	now := s.now()
	goal := &models.Goal{
		UserID:      input.UserID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Category:    category,
		Priority:    input.Priority,
		TargetDate:  input.TargetDate,
		Tags:        cleanTags(input.Tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, m := range input.Milestones {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		goal.Milestones = append(goal.Milestones, models.Milestone{
			UserID:     input.UserID,
			Title:      m,
			OrderIndex: len(goal.Milestones),
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	goal.Progress = analytics.MilestoneProgress(goal.Milestones)

	if err := s.goalRepo.Create(goal); err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	if err := s.activities.Record(&models.Activity{
		UserID:      goal.UserID,
		Type:        models.ActivityGoalCreated,
		Title:       "Created new goal",
		Description: fmt.Sprintf("Started %q", goal.Title),
		GoalID:      &goal.ID,
		OccurredAt:  now,
	}); err != nil {
		return nil, err
	}

	return goal, nil
}

// UpdateGoalInput represents input for updating a goal; nil fields are kept
type UpdateGoalInput struct {
	Title           *string
	Description     *string
	Category        *string
	Priority        *models.Priority
	TargetDate      *time.Time
	ClearTargetDate bool
	Tags            *[]string
	IsCompleted     *bool
}

// UpdateGoal merges the patch into a goal. Completing a goal stamps
// completed_at and logs exactly one goal_completed activity; reopening it
// clears completed_at and logs nothing.
func (s *GoalService) UpdateGoal(userID, goalID uint64, input UpdateGoalInput) (*models.Goal, error) {
	goal, err := s.GetGoal(userID, goalID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrGoalTitleRequired
		}
		goal.Title = title
	}
	if input.Description != nil {
		goal.Description = strings.TrimSpace(*input.Description)
	}
	if input.Category != nil {
		goal.Category = strings.TrimSpace(*input.Category)
		if goal.Category == "" {
			goal.Category = constants.DefaultGoalCategory
		}
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, ErrInvalidPriority
		}
		goal.Priority = *input.Priority
	}
	if input.ClearTargetDate {
		goal.TargetDate = nil
	} else if input.TargetDate != nil {
		goal.TargetDate = input.TargetDate
	}
	if input.Tags != nil {
		goal.Tags = cleanTags(*input.Tags)
	}

	now := s.now()
	completedNow := false
	if input.IsCompleted != nil && *input.IsCompleted != goal.IsCompleted {
		goal.IsCompleted = *input.IsCompleted
		if goal.IsCompleted {
			goal.CompletedAt = &now
			completedNow = true
		} else {
			goal.CompletedAt = nil
		}
	}

	goal.Progress = analytics.MilestoneProgress(goal.Milestones)
	goal.UpdatedAt = now
	if err := s.goalRepo.Update(goal); err != nil {
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}

	if completedNow {
		if err := s.activities.Record(&models.Activity{
			UserID:      userID,
			Type:        models.ActivityGoalCompleted,
			Title:       "Completed goal",
			Description: fmt.Sprintf("Finished %q", goal.Title),
			GoalID:      &goal.ID,
			OccurredAt:  now,
		}); err != nil {
			return nil, err
		}
		s.checkAchievements(userID)
	}

	return goal, nil
}

// DeleteGoal removes a goal together with its resources, activities,
// milestones and reminders. Stored files of removed resources are deleted
// best-effort afterwards.
func (s *GoalService) DeleteGoal(userID, goalID uint64) error {
	files, err := s.resourceRepo.List(repository.ResourceFilter{UserID: userID, GoalID: &goalID})
	if err != nil {
		return fmt.Errorf("failed to list goal resources: %w", err)
	}

	if err := s.goalRepo.Delete(userID, goalID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGoalNotFound
		}
		return fmt.Errorf("failed to delete goal: %w", err)
	}

	for _, r := range files {
		removeStoredFile(r.FilePath)
	}
	return nil
}

// LogStudySession records minutes spent on a goal as a study_session activity
func (s *GoalService) LogStudySession(userID, goalID uint64, minutes int, notes string) (*models.Activity, error) {
	if minutes <= 0 {
		return nil, ErrInvalidStudyLength
	}
	goal, err := s.GetGoal(userID, goalID)
	if err != nil {
		return nil, err
	}

	description := strings.TrimSpace(notes)
	if description == "" {
		description = fmt.Sprintf("Studied %q", goal.Title)
	}
	activity := &models.Activity{
		UserID:      userID,
		Type:        models.ActivityStudySession,
		Title:       "Study session",
		Description: description,
		GoalID:      &goal.ID,
		Duration:    minutes,
		OccurredAt:  s.now(),
	}
	if err := s.activities.Record(activity); err != nil {
		return nil, err
	}
	s.checkAchievements(userID)
	return activity, nil
}

// AddMilestone appends a milestone to the end of a goal and recalculates progress
func (s *GoalService) AddMilestone(userID, goalID uint64, title string) (*models.Goal, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrMilestoneTitle
	}
	goal, err := s.GetGoal(userID, goalID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	order := 0
	for _, m := range goal.Milestones {
		if m.OrderIndex >= order {
			order = m.OrderIndex + 1
		}
	}
	milestone := &models.Milestone{
		GoalID:     goal.ID,
		UserID:     userID,
		Title:      title,
		OrderIndex: order,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.goalRepo.AddMilestone(milestone); err != nil {
		return nil, fmt.Errorf("failed to add milestone: %w", err)
	}
	return s.recalculate(goal, now)
}

// UpdateMilestoneInput represents input for updating a milestone
type UpdateMilestoneInput struct {
	Title       *string
	OrderIndex  *int
	IsCompleted *bool
}

// UpdateMilestone applies the patch and recalculates goal progress. Only a
// false->true completion logs a milestone_completed activity.
func (s *GoalService) UpdateMilestone(userID, goalID, milestoneID uint64, input UpdateMilestoneInput) (*models.Goal, error) {
	goal, err := s.GetGoal(userID, goalID)
	if err != nil {
		return nil, err
	}
	milestone, err := s.goalRepo.FindMilestone(goal.ID, milestoneID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMilestoneNotFound
		}
		return nil, fmt.Errorf("failed to find milestone: %w", err)
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrMilestoneTitle
		}
		milestone.Title = title
	}
	if input.OrderIndex != nil {
		milestone.OrderIndex = *input.OrderIndex
	}

	now := s.now()
	completedNow := false
	if input.IsCompleted != nil && *input.IsCompleted != milestone.IsCompleted {
		milestone.IsCompleted = *input.IsCompleted
		if milestone.IsCompleted {
			milestone.CompletedAt = &now
			completedNow = true
		} else {
			milestone.CompletedAt = nil
		}
	}
	milestone.UpdatedAt = now
	if err := s.goalRepo.UpdateMilestone(milestone); err != nil {
		return nil, fmt.Errorf("failed to update milestone: %w", err)
	}

	goal, err = s.recalculate(goal, now)
	if err != nil {
		return nil, err
	}

	if completedNow {
		if err := s.activities.Record(&models.Activity{
			UserID:      userID,
			Type:        models.ActivityMilestoneCompleted,
			Title:       "Completed milestone",
			Description: fmt.Sprintf("Finished %q", milestone.Title),
			GoalID:      &goal.ID,
			MilestoneID: &milestone.ID,
			Duration:    constants.MilestoneActivityMinutes,
			OccurredAt:  now,
		}); err != nil {
			return nil, err
		}
		if err := s.notifications.Notify(&models.Notification{
			UserID:      userID,
			Type:        models.NotificationMilestone,
			Title:       "✅ Milestone Complete",
			Message:     fmt.Sprintf("You finished %q in %q.", milestone.Title, goal.Title),
			GoalID:      &goal.ID,
			MilestoneID: &milestone.ID,
			CreatedAt:   now,
		}); err != nil {
			return nil, err
		}
		s.checkAchievements(userID)
	}

	return goal, nil
}

// DeleteMilestone removes a milestone and recalculates progress
func (s *GoalService) DeleteMilestone(userID, goalID, milestoneID uint64) (*models.Goal, error) {
	goal, err := s.GetGoal(userID, goalID)
	if err != nil {
		return nil, err
	}
	if err := s.goalRepo.DeleteMilestone(goal.ID, milestoneID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMilestoneNotFound
		}
		return nil, fmt.Errorf("failed to delete milestone: %w", err)
	}
	return s.recalculate(goal, s.now())
}

// recalculate reloads the milestones of goal and persists the derived progress.
func (s *GoalService) recalculate(goal *models.Goal, now time.Time) (*models.Goal, error) {
	milestones, err := s.goalRepo.ListMilestones(goal.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones: %w", err)
	}
	goal.Milestones = milestones
	goal.Progress = analytics.MilestoneProgress(milestones)
	goal.UpdatedAt = now
	if err := s.goalRepo.Update(goal); err != nil {
		return nil, fmt.Errorf("failed to update goal progress: %w", err)
	}
	return goal, nil
}

// SuggestMilestones asks the AI service for milestone titles for a goal idea
func (s *GoalService) SuggestMilestones(ctx context.Context, title, description string) ([]string, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrGoalTitleRequired
	}
	if s.aiService == nil {
		return nil, ErrAINotConfigured
	}
	suggestions, err := s.aiService.SuggestMilestones(ctx, title, description)
	if err != nil {
		return nil, err
	}
	if len(suggestions) == 0 {
		return nil, ErrAINoSuggestions
	}
	return suggestions, nil
}

// checkAchievements never fails the calling operation.
func (s *GoalService) checkAchievements(userID uint64) {
	if s.notifications == nil {
		return
	}
	if err := s.notifications.CheckAchievements(userID); err != nil {
		logger.Warn("achievement check failed", "user_id", userID, "err", err)
	}
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[strings.ToLower(t)] {
			continue
		}
		seen[strings.ToLower(t)] = true
		out = append(out, t)
	}
	return out
}
