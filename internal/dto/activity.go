package dto

import (
	"github.com/yukikurage/learnflow-api/internal/models"
	"github.com/yukikurage/learnflow-api/internal/utils"
)

// ActivityListResponse represents a paginated page of the activity log
type ActivityListResponse struct {
	Activities []models.Activity        `json:"activities"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// NotificationListResponse is the newest page of notifications with the unread count
type NotificationListResponse struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unread_count"`
}
