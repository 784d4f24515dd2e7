package services

import (
	"fmt"
	"time"

	"github.com/yukikurage/learnflow-api/internal/models"
	"github.com/yukikurage/learnflow-api/internal/repository"
	"github.com/yukikurage/learnflow-api/internal/utils"
)

// ActivityService appends to and reads the per-user activity log.
type ActivityService struct {
	activityRepo repository.ActivityRepository
	now          func() time.Time
}

func NewActivityService(activityRepo repository.ActivityRepository) *ActivityService {
	return &ActivityService{activityRepo: activityRepo, now: time.Now}
}

// Record appends an activity, stamping it with the current time when unset.
func (s *ActivityService) Record(activity *models.Activity) error {
	if activity.OccurredAt.IsZero() {
		activity.OccurredAt = s.now()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = activity.OccurredAt
	}
	if err := s.activityRepo.Create(activity); err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

// ListActivitiesInput represents filters for listing activities
type ListActivitiesInput struct {
	UserID     uint64
	Type       *models.ActivityType
	GoalID     *uint64
	Since      *time.Time
	Until      *time.Time
	Pagination *utils.PaginationParams
}

// List returns matching activities oldest first and the total match count.
func (s *ActivityService) List(input ListActivitiesInput) ([]models.Activity, int64, error) {
	activities, total, err := s.activityRepo.List(repository.ActivityFilter{
		UserID:     input.UserID,
		Type:       input.Type,
		GoalID:     input.GoalID,
		Since:      input.Since,
		Until:      input.Until,
		Pagination: input.Pagination,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, total, nil
}

// All returns the user's whole retained log.
func (s *ActivityService) All(userID uint64) ([]models.Activity, error) {
	activities, _, err := s.List(ListActivitiesInput{UserID: userID})
	return activities, err
}
