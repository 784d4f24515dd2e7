package models

import "time"

type Milestone struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	GoalID      uint64     `gorm:"not null;index" json:"goal_id"`
	UserID      uint64     `gorm:"not null;index" json:"user_id"`
	Title       string     `gorm:"type:varchar(200);not null" json:"title"`
	OrderIndex  int        `gorm:"not null" json:"order_index"`
	IsCompleted bool       `gorm:"not null" json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
