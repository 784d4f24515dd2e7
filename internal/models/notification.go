package models

import (
	"time"

	"gorm.io/datatypes"
)

type NotificationType string

const (
	NotificationReminder    NotificationType = "reminder"
	NotificationMilestone   NotificationType = "milestone"
	NotificationAchievement NotificationType = "achievement"
	NotificationSystem      NotificationType = "system"
)

type Notification struct {
	ID          uint64            `gorm:"primarykey" json:"id"`
	UserID      uint64            `gorm:"not null;index" json:"user_id"`
	Type        NotificationType  `gorm:"type:varchar(20);not null" json:"type"`
	Title       string            `gorm:"type:varchar(255);not null" json:"title"`
	Message     string            `gorm:"type:text" json:"message"`
	IsRead      bool              `gorm:"not null" json:"is_read"`
	ReadAt      *time.Time        `json:"read_at"`
	GoalID      *uint64           `gorm:"index" json:"goal_id"`
	MilestoneID *uint64           `json:"milestone_id"`
	ActionURL   string            `gorm:"type:varchar(500)" json:"action_url"`
	Metadata    datatypes.JSONMap `json:"metadata"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Achievement records that a user unlocked an achievement. Rows outlive the
// notification announcing them.
type Achievement struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	UserID    uint64    `gorm:"not null;uniqueIndex:idx_achievements_user_key" json:"user_id"`
	Key       string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_achievements_user_key" json:"key"`
	AwardedAt time.Time `json:"awarded_at"`
}
