package models

import "time"

type ActivityType string

const (
	ActivityGoalCreated        ActivityType = "goal_created"
	ActivityGoalCompleted      ActivityType = "goal_completed"
	ActivityMilestoneCompleted ActivityType = "milestone_completed"
	ActivityResourceAdded      ActivityType = "resource_added"
	ActivityStudySession       ActivityType = "study_session"
)

// Activity is an append-only log entry. Rows are never updated.
type Activity struct {
	ID          uint64       `gorm:"primarykey" json:"id"`
	UserID      uint64       `gorm:"not null;index" json:"user_id"`
	Type        ActivityType `gorm:"type:varchar(40);not null" json:"type"`
	Title       string       `gorm:"type:varchar(255);not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	GoalID      *uint64      `gorm:"index" json:"goal_id"`
	MilestoneID *uint64      `json:"milestone_id"`
	ResourceID  *uint64      `json:"resource_id"`
	Duration    int          `gorm:"not null" json:"duration"`
	OccurredAt  time.Time    `gorm:"not null;index" json:"occurred_at"`
	CreatedAt   time.Time    `json:"created_at"`
}
