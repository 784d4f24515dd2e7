package models

import "time"

type ReminderType string

const (
	ReminderDaily  ReminderType = "daily"
	ReminderWeekly ReminderType = "weekly"
	ReminderCustom ReminderType = "custom"
)

// Valid reports whether t is one of the known reminder types.
func (t ReminderType) Valid() bool {
	switch t {
	case ReminderDaily, ReminderWeekly, ReminderCustom:
		return true
	}
	return false
}

type Reminder struct {
	ID           uint64       `gorm:"primarykey" json:"id"`
	UserID       uint64       `gorm:"not null;index" json:"user_id"`
	GoalID       *uint64      `gorm:"index" json:"goal_id"`
	Title        string       `gorm:"type:varchar(200);not null" json:"title"`
	Message      string       `gorm:"type:text" json:"message"`
	Type         ReminderType `gorm:"type:varchar(20);not null" json:"type"`
	NextReminder time.Time    `gorm:"not null;index" json:"next_reminder"`
	IsActive     bool         `gorm:"not null" json:"is_active"`
	EmailEnabled bool         `gorm:"not null" json:"email_enabled"`
	InAppEnabled bool         `gorm:"not null" json:"in_app_enabled"`
	LastFiredAt  *time.Time   `json:"last_fired_at"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Advance moves the reminder past a firing at now. Recurring reminders are
// rescheduled; custom reminders fire once and are deactivated.
func (r *Reminder) Advance(now time.Time) {
	r.LastFiredAt = &now
	switch r.Type {
	case ReminderDaily:
		r.NextReminder = r.NextReminder.AddDate(0, 0, 1)
	case ReminderWeekly:
		r.NextReminder = r.NextReminder.AddDate(0, 0, 7)
	default:
		r.IsActive = false
	}
}
