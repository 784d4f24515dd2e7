package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/learnflow-api/internal/analytics"
	"github.com/yukikurage/learnflow-api/internal/constants"
	"github.com/yukikurage/learnflow-api/internal/logger"
	"github.com/yukikurage/learnflow-api/internal/metrics"
	"github.com/yukikurage/learnflow-api/internal/models"
	"github.com/yukikurage/learnflow-api/internal/repository"
	"gorm.io/gorm"
)

type achievement struct {
	key       string
	threshold int
	title     string
	message   string
}

var (
	goalAchievements = []achievement{
		{"goals_1", 1, "🎯 First Goal Complete!", "Congratulations on completing your first learning goal!"},
		{"goals_5", 5, "🏆 Goal Master!", "Amazing! You've completed 5 learning goals!"},
		{"goals_10", 10, "🌟 Learning Champion!", "Incredible! You've completed 10 learning goals!"},
	}
	streakAchievements = []achievement{
		{"streak_7", 7, "🔥 Week Streak!", "You've maintained a 7-day learning streak!"},
		{"streak_30", 30, "💪 Month Streak!", "Outstanding! You've maintained a 30-day learning streak!"},
	}
	resourceAchievements = []achievement{
		{"resources_10", 10, "📚 Resource Collector!", "You've added 10 learning resources to your library!"},
		{"resources_50", 50, "🗃️ Resource Master!", "Impressive! You've built a library of 50 learning resources!"},
	}
)

// NotificationService creates and manages in-app notifications.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	goalRepo         repository.GoalRepository
	resourceRepo     repository.ResourceRepository
	activityRepo     repository.ActivityRepository
	userRepo         repository.UserRepository
	now              func() time.Time
}

func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	goalRepo repository.GoalRepository,
	resourceRepo repository.ResourceRepository,
	activityRepo repository.ActivityRepository,
	userRepo repository.UserRepository,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		goalRepo:         goalRepo,
		resourceRepo:     resourceRepo,
		activityRepo:     activityRepo,
		userRepo:         userRepo,
		now:              time.Now,
	}
}

// Notify stores a notification for its owner.
func (s *NotificationService) Notify(n *models.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}
	if err := s.notificationRepo.Create(n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	metrics.NotificationsCreated.WithLabelValues(string(n.Type)).Inc()
	return nil
}

// NotifyOnce stores n unless a notification with the same title (and goal)
// was already created since the given time. A daily notice therefore
// dedupes on the title and goal only, not on the message text.
func (s *NotificationService) NotifyOnce(n *models.Notification, since time.Time) (bool, error) {
	exists, err := s.notificationRepo.ExistsSince(n.UserID, n.GoalID, n.Title, since)
	if err != nil {
		return false, fmt.Errorf("failed to check notifications: %w", err)
	}
	if exists {
		return false, nil
	}
	return true, s.Notify(n)
}

// NotificationList is the newest page of notifications plus the unread count.
type NotificationList struct {
	Notifications []models.Notification
	Unread        int64
}

func (s *NotificationService) List(userID uint64) (*NotificationList, error) {
	notifications, err := s.notificationRepo.List(userID, constants.NotificationListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	unread, err := s.notificationRepo.CountUnread(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}
	return &NotificationList{Notifications: notifications, Unread: unread}, nil
}

func (s *NotificationService) MarkRead(userID, id uint64) (*models.Notification, error) {
	if err := s.notificationRepo.MarkRead(userID, id, s.now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}
	n, err := s.notificationRepo.FindByID(userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload notification: %w", err)
	}
	return n, nil
}

func (s *NotificationService) MarkAllRead(userID uint64) (int64, error) {
	n, err := s.notificationRepo.MarkAllRead(userID, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return n, nil
}

func (s *NotificationService) ClearAll(userID uint64) (int64, error) {
	n, err := s.notificationRepo.ClearAll(userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear notifications: %w", err)
	}
	return n, nil
}

// CheckAchievements awards each goal, streak and resource achievement once
// the user's counts reach its threshold. Awards are recorded apart from the
// notifications, so clearing notifications does not award them again.
func (s *NotificationService) CheckAchievements(userID uint64) error {
	completed, err := s.goalRepo.CountCompleted(userID)
	if err != nil {
		return fmt.Errorf("failed to count completed goals: %w", err)
	}
	resources, err := s.resourceRepo.Count(userID)
	if err != nil {
		return fmt.Errorf("failed to count resources: %w", err)
	}
	activities, _, err := s.activityRepo.List(repository.ActivityFilter{UserID: userID})
	if err != nil {
		return fmt.Errorf("failed to list activities: %w", err)
	}

	now := s.now()
	if user, err := s.userRepo.FindByID(userID); err == nil {
		now = now.In(user.Location())
	}
	streak := analytics.Streak(activities, now)

	for _, group := range []struct {
		value int
		list  []achievement
	}{
		{int(completed), goalAchievements},
		{streak, streakAchievements},
		{int(resources), resourceAchievements},
	} {
		for _, a := range group.list {
			if group.value < a.threshold {
				continue
			}
			awarded, err := s.notificationRepo.Award(userID, a.key, now)
			if err != nil {
				return fmt.Errorf("failed to record achievement: %w", err)
			}
			if !awarded {
				continue
			}
			created, err := s.NotifyOnce(&models.Notification{
				UserID:  userID,
				Type:    models.NotificationAchievement,
				Title:   a.title,
				Message: a.message,
			}, time.Time{})
			if err != nil {
				return err
			}
			if created {
				logger.Debug("achievement unlocked", "user_id", userID, "title", a.title)
			}
		}
	}
	return nil
}
