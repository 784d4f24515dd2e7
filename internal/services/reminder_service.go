package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yukikurage/learnflow-api/internal/constants"
	"github.com/yukikurage/learnflow-api/internal/logger"
	"github.com/yukikurage/learnflow-api/internal/mailer"
	"github.com/yukikurage/learnflow-api/internal/metrics"
	"github.com/yukikurage/learnflow-api/internal/models"
	"github.com/yukikurage/learnflow-api/internal/repository"
	"gorm.io/gorm"
)

// deadlineNotice is the notification sent when a goal is a given number of days from its target date.
type deadlineNotice struct {
	days    int
	title   string
	message string
}

var deadlineNotices = []deadlineNotice{
	{7, "⏰ Deadline Approaching", "%q is due in 1 week"},
	{1, "🚨 Deadline Tomorrow", "%q is due tomorrow!"},
	{0, "⚠️ Deadline Today", "%q is due today!"},
}

const dailyStudyTitle = "📚 Daily Study Reminder"

// ReminderService manages user reminders and fires the due ones.
type ReminderService struct {
	reminderRepo  repository.ReminderRepository
	goalRepo      repository.GoalRepository
	userRepo      repository.UserRepository
	notifications *NotificationService
	mail          mailer.Mailer
	now           func() time.Time
}

func NewReminderService(
	reminderRepo repository.ReminderRepository,
	goalRepo repository.GoalRepository,
	userRepo repository.UserRepository,
	notifications *NotificationService,
	mail mailer.Mailer,
) *ReminderService {
	if mail == nil {
		mail = mailer.LogMailer{}
	}
	return &ReminderService{
		reminderRepo:  reminderRepo,
		goalRepo:      goalRepo,
		userRepo:      userRepo,
		notifications: notifications,
		mail:          mail,
		now:           time.Now,
	}
}

func (s *ReminderService) ListReminders(userID uint64) ([]models.Reminder, error) {
	reminders, err := s.reminderRepo.List(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return reminders, nil
}

func (s *ReminderService) GetReminder(userID, id uint64) (*models.Reminder, error) {
	reminder, err := s.reminderRepo.FindByID(userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReminderNotFound
		}
		return nil, fmt.Errorf("failed to find reminder: %w", err)
	}
	return reminder, nil
}

// CreateReminderInput represents input for creating a reminder
type CreateReminderInput struct {
	UserID       uint64
	GoalID       *uint64
	Title        string
	Message      string
	Type         models.ReminderType
	NextReminder time.Time
	EmailEnabled bool
	InAppEnabled bool
}

// CreateReminder stores an active reminder. The title is required and the
// first firing must lie in the future.
func (s *ReminderService) CreateReminder(input CreateReminderInput) (*models.Reminder, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrReminderTitle
	}
	if input.Type == "" {
		input.Type = models.ReminderCustom
	}
	if !input.Type.Valid() {
		return nil, ErrReminderType
	}
	now := s.now()
	if !input.NextReminder.After(now) {
		return nil, ErrReminderInPast
	}
	if input.GoalID != nil {
		if _, err := s.goalRepo.FindByID(input.UserID, *input.GoalID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrLinkedGoalNotFound
			}
			return nil, fmt.Errorf("failed to find goal: %w", err)
		}
	}

	message := strings.TrimSpace(input.Message)
	if message == "" {
		message = constants.DefaultReminderMessage
	}

	reminder := &models.Reminder{
		UserID:       input.UserID,
		GoalID:       input.GoalID,
		Title:        title,
		Message:      message,
		Type:         input.Type,
		NextReminder: input.NextReminder,
		IsActive:     true,
		EmailEnabled: input.EmailEnabled,
		InAppEnabled: input.InAppEnabled,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.reminderRepo.Create(reminder); err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}
	return reminder, nil
}

// UpdateReminderInput represents input for updating a reminder; nil fields are kept
type UpdateReminderInput struct {
	Title        *string
	Message      *string
	Type         *models.ReminderType
	NextReminder *time.Time
	IsActive     *bool
	EmailEnabled *bool
	InAppEnabled *bool
}

func (s *ReminderService) UpdateReminder(userID, id uint64, input UpdateReminderInput) (*models.Reminder, error) {
	reminder, err := s.GetReminder(userID, id)
	if err != nil {
		return nil, err
	}
	now := s.now()

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrReminderTitle
		}
		reminder.Title = title
	}
	if input.Message != nil {
		reminder.Message = strings.TrimSpace(*input.Message)
		if reminder.Message == "" {
			reminder.Message = constants.DefaultReminderMessage
		}
	}
	if input.Type != nil {
		if !input.Type.Valid() {
			return nil, ErrReminderType
		}
		reminder.Type = *input.Type
	}
	if input.NextReminder != nil {
		if !input.NextReminder.After(now) {
			return nil, ErrReminderInPast
		}
		reminder.NextReminder = *input.NextReminder
	}
	if input.IsActive != nil {
		reminder.IsActive = *input.IsActive
	}
	if input.EmailEnabled != nil {
		reminder.EmailEnabled = *input.EmailEnabled
	}
	if input.InAppEnabled != nil {
		reminder.InAppEnabled = *input.InAppEnabled
	}

	reminder.UpdatedAt = now
	if err := s.reminderRepo.Update(reminder); err != nil {
		return nil, fmt.Errorf("failed to update reminder: %w", err)
	}
	return reminder, nil
}

func (s *ReminderService) DeleteReminder(userID, id uint64) error {
	if err := s.reminderRepo.Delete(userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReminderNotFound
		}
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	return nil
}

// ProcessDueReminders fires every active reminder whose next firing is at or
// before now and advances it. It returns the number of reminders fired.
// A failure on one reminder is logged and does not stop the others.
func (s *ReminderService) ProcessDueReminders(ctx context.Context, now time.Time) (int, error) {
	due, err := s.reminderRepo.ListDue(now)
	if err != nil {
		return 0, fmt.Errorf("failed to list due reminders: %w", err)
	}

	fired := 0
	for i := range due {
		if err := ctx.Err(); err != nil {
			return fired, err
		}
		reminder := &due[i]
		if err := s.fire(ctx, reminder, now); err != nil {
			logger.Error("failed to fire reminder", "reminder_id", reminder.ID, "err", err)
			continue
		}
		fired++
	}
	return fired, nil
}

func (s *ReminderService) fire(ctx context.Context, reminder *models.Reminder, now time.Time) error {
	if reminder.InAppEnabled {
		if err := s.notifications.Notify(&models.Notification{
			UserID:    reminder.UserID,
			Type:      models.NotificationReminder,
			Title:     reminder.Title,
			Message:   reminder.Message,
			GoalID:    reminder.GoalID,
			CreatedAt: now,
		}); err != nil {
			return err
		}
	}

	if reminder.EmailEnabled {
		s.email(ctx, reminder)
	}

	reminder.Advance(now)
	reminder.UpdatedAt = now
	if err := s.reminderRepo.Update(reminder); err != nil {
		return fmt.Errorf("failed to advance reminder: %w", err)
	}
	metrics.RemindersFired.WithLabelValues(string(reminder.Type)).Inc()
	return nil
}

// email delivery is best-effort; the in-app notification is the record of a firing.
func (s *ReminderService) email(ctx context.Context, reminder *models.Reminder) {
	user, err := s.userRepo.FindByID(reminder.UserID)
	if err != nil {
		logger.Warn("reminder owner not found", "reminder_id", reminder.ID, "err", err)
		return
	}
	if !user.Preferences.Data().EmailNotifications {
		return
	}
	if err := s.mail.Send(ctx, mailer.Message{
		To:      user.Email,
		Subject: reminder.Title,
		Body:    reminder.Message,
	}); err != nil {
		logger.Warn("failed to send reminder email", "reminder_id", reminder.ID, "err", err)
	}
}

// GenerateDeadlineNotifications sends one reminder notification for each
// incomplete goal due in 7, 1 or 0 days, and a daily study reminder to each
// user with incomplete goals. Running it again on the same day sends nothing new.
func (s *ReminderService) GenerateDeadlineNotifications(ctx context.Context, now time.Time) (int, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	sent := 0

	for _, notice := range deadlineNotices {
		from := today.AddDate(0, 0, notice.days)
		goals, err := s.goalRepo.ListIncompleteWithTargetBetween(from, from.AddDate(0, 0, 1))
		if err != nil {
			return sent, fmt.Errorf("failed to list goals due: %w", err)
		}
		for i := range goals {
			if err := ctx.Err(); err != nil {
				return sent, err
			}
			goal := &goals[i]
			created, err := s.notifications.NotifyOnce(&models.Notification{
				UserID:    goal.UserID,
				Type:      models.NotificationReminder,
				Title:     notice.title,
				Message:   fmt.Sprintf(notice.message, goal.Title),
				GoalID:    &goal.ID,
				CreatedAt: now,
			}, today)
			if err != nil {
				return sent, err
			}
			if created {
				sent++
			}
		}
	}

	userIDs, err := s.goalRepo.ListActiveUserIDs()
	if err != nil {
		return sent, fmt.Errorf("failed to list active users: %w", err)
	}
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		created, err := s.studyReminder(userID, today, now)
		if err != nil {
			logger.Warn("failed to send study reminder", "user_id", userID, "err", err)
			continue
		}
		if created {
			sent++
		}
	}
	return sent, nil
}

// studyReminder nudges the user toward the incomplete goal with the least progress.
func (s *ReminderService) studyReminder(userID uint64, today, now time.Time) (bool, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return false, err
	}
	if !user.Preferences.Data().InAppNotifications {
		return false, nil
	}
	goals, err := s.goalRepo.List(repository.GoalFilter{UserID: userID, Status: models.GoalStatusActive, Now: now})
	if err != nil {
		return false, err
	}
	if len(goals) == 0 {
		return false, nil
	}
	sort.SliceStable(goals, func(i, j int) bool { return goals[i].Progress < goals[j].Progress })
	goal := goals[0]

	return s.notifications.NotifyOnce(&models.Notification{
		UserID:    userID,
		Type:      models.NotificationReminder,
		Title:     dailyStudyTitle,
		Message:   fmt.Sprintf("Time to make progress on %q!", goal.Title),
		GoalID:    &goal.ID,
		CreatedAt: now,
	}, today)
}
