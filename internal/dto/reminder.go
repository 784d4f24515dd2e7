package dto

import (
	"github.com/yukikurage/learnflow-api/internal/models"
	"github.com/yukikurage/learnflow-api/internal/services"
)

// ReminderListResponse represents the list of a user's reminders
type ReminderListResponse struct {
	Reminders []models.Reminder `json:"reminders"`
	Total     int               `json:"total"`
}

// CreateReminderRequest creates a reminder. Both channels default to on.
type CreateReminderRequest struct {
	GoalID       *uint64             `json:"goal_id"`
	Title        string              `json:"title"`
	Message      string              `json:"message"`
	Type         models.ReminderType `json:"type"`
	NextReminder string              `json:"next_reminder"`
	EmailEnabled *bool               `json:"email_enabled"`
	InAppEnabled *bool               `json:"in_app_enabled"`
}

type UpdateReminderRequest struct {
	Title        *string              `json:"title"`
	Message      *string              `json:"message"`
	Type         *models.ReminderType `json:"type"`
	NextReminder *string              `json:"next_reminder"`
	IsActive     *bool                `json:"is_active"`
	EmailEnabled *bool                `json:"email_enabled"`
	InAppEnabled *bool                `json:"in_app_enabled"`
}

// ToCreateReminderInput converts the request into service input
func (r CreateReminderRequest) ToCreateReminderInput(userID uint64) (services.CreateReminderInput, error) {
	next, err := parseOptionalTime(&r.NextReminder)
	if err != nil {
		return services.CreateReminderInput{}, err
	}
	input := services.CreateReminderInput{
		UserID:       userID,
		GoalID:       r.GoalID,
		Title:        r.Title,
		Message:      r.Message,
		Type:         r.Type,
		EmailEnabled: r.EmailEnabled == nil || *r.EmailEnabled,
		InAppEnabled: r.InAppEnabled == nil || *r.InAppEnabled,
	}
	// a missing time is left zero and rejected as not in the future
	if next != nil {
		input.NextReminder = *next
	}
	return input, nil
}

// ToUpdateReminderInput converts the request into service input
func (r UpdateReminderRequest) ToUpdateReminderInput() (services.UpdateReminderInput, error) {
	next, err := parseOptionalTime(r.NextReminder)
	if err != nil {
		return services.UpdateReminderInput{}, err
	}
	return services.UpdateReminderInput{
		Title:        r.Title,
		Message:      r.Message,
		Type:         r.Type,
		NextReminder: next,
		IsActive:     r.IsActive,
		EmailEnabled: r.EmailEnabled,
		InAppEnabled: r.InAppEnabled,
	}, nil
}
