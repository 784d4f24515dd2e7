package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Goal statuses derived at read time.
const (
	GoalStatusActive    = "active"
	GoalStatusCompleted = "completed"
	GoalStatusOverdue   = "overdue"
)

type Goal struct {
	ID          uint64                      `gorm:"primarykey" json:"id"`
	UserID      uint64                      `gorm:"not null;index" json:"user_id"`
	Title       string                      `gorm:"type:varchar(200);not null" json:"title"`
	Description string                      `gorm:"type:text" json:"description"`
	Category    string                      `gorm:"type:varchar(100);not null" json:"category"`
	Priority    Priority                    `gorm:"type:varchar(20);not null" json:"priority"`
	TargetDate  *time.Time                  `json:"target_date"`
	IsCompleted bool                        `gorm:"not null" json:"is_completed"`
	CompletedAt *time.Time                  `json:"completed_at"`
	Progress    int                         `gorm:"not null" json:"progress"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
	DeletedAt   gorm.DeletedAt              `gorm:"index" json:"-"`

	// Relations
	Milestones []Milestone `gorm:"foreignKey:GoalID" json:"milestones,omitempty"`
}

// IsOverdue reports whether the goal is incomplete and past its target date.
func (g *Goal) IsOverdue(now time.Time) bool {
	return !g.IsCompleted && g.TargetDate != nil && g.TargetDate.Before(now)
}

// Status returns the derived status of the goal at now.
func (g *Goal) Status(now time.Time) string {
	switch {
	case g.IsCompleted:
		return GoalStatusCompleted
	case g.IsOverdue(now):
		return GoalStatusOverdue
	default:
		return GoalStatusActive
	}
}
