package repository

import (
	"time"

	"github.com/yukikurage/learnflow-api/internal/models"
	"github.com/yukikurage/learnflow-api/internal/utils"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email address
	FindByEmail(email string) (*models.User, error)

	// Update saves all fields of a user
	Update(user *models.User) error

	// UpdateLastLogin stamps the user's last login time
	UpdateLastLogin(id uint64, at time.Time) error
}

// SessionRepository stores refresh token sessions
type SessionRepository interface {
	// Create persists a new refresh session
	Create(session *models.RefreshSession) error

	// FindByHash finds a session by the hash of its refresh token
	FindByHash(hash string) (*models.RefreshSession, error)

	// Revoke marks a single session as revoked
	Revoke(id uint64, at time.Time) error

	// RevokeAllForUser revokes every active session of a user
	RevokeAllForUser(userID uint64, at time.Time) error
}

// GoalFilter holds filtering options for listing goals
type GoalFilter struct {
	UserID   uint64
	Search   string
	Status   string
	Category string
	Priority *models.Priority
	// CreatedFrom limits results to goals created at or after the given time
	CreatedFrom *time.Time
	SortBy      string
	SortDesc    bool
	Now         time.Time
}

// GoalRepository defines the interface for goal and milestone data access
type GoalRepository interface {
	// Create creates a goal together with its milestones
	Create(goal *models.Goal) error

	// FindByID finds a goal owned by userID, with milestones in order
	FindByID(userID, id uint64) (*models.Goal, error)

	// List retrieves goals with filtering, milestones preloaded
	List(filter GoalFilter) ([]models.Goal, error)

	// Update saves goal fields without touching milestones
	Update(goal *models.Goal) error

	// Delete removes a goal and everything that references it
	Delete(userID, id uint64) error

	// Categories lists the distinct categories used by a user
	Categories(userID uint64) ([]string, error)

	// CountCompleted counts a user's completed goals
	CountCompleted(userID uint64) (int64, error)

	// ListIncompleteWithTargetBetween lists incomplete goals of all users due in [from, to)
	ListIncompleteWithTargetBetween(from, to time.Time) ([]models.Goal, error)

	// ListActiveUserIDs lists users with at least one incomplete goal
	ListActiveUserIDs() ([]uint64, error)

	// AddMilestone appends a milestone to a goal
	AddMilestone(milestone *models.Milestone) error

	// FindMilestone finds a milestone of a goal
	FindMilestone(goalID, milestoneID uint64) (*models.Milestone, error)

	// UpdateMilestone saves a milestone
	UpdateMilestone(milestone *models.Milestone) error

	// DeleteMilestone removes a milestone
	DeleteMilestone(goalID, milestoneID uint64) error

	// ListMilestones lists the milestones of a goal in order
	ListMilestones(goalID uint64) ([]models.Milestone, error)
}

// ResourceFilter holds filtering options for listing resources
type ResourceFilter struct {
	UserID      uint64
	Search      string
	Category    string
	Type        *models.ResourceType
	GoalID      *uint64
	Tag         string
	Favorite    *bool
	CreatedFrom *time.Time
}

// ResourceRepository defines the interface for resource data access
type ResourceRepository interface {
	Create(resource *models.Resource) error
	FindByID(userID, id uint64) (*models.Resource, error)
	List(filter ResourceFilter) ([]models.Resource, error)
	Update(resource *models.Resource) error
	Delete(userID, id uint64) error
	Categories(userID uint64) ([]string, error)
	Count(userID uint64) (int64, error)
}

// ActivityFilter holds filtering options for listing activities
type ActivityFilter struct {
	UserID uint64
	Type   *models.ActivityType
	GoalID *uint64
	Since  *time.Time
	Until  *time.Time
	// Pagination is optional; nil lists everything
	Pagination *utils.PaginationParams
}

// ActivityRepository defines the interface for the activity log
type ActivityRepository interface {
	// Create appends an activity and trims the owner's log to the retention limit
	Create(activity *models.Activity) error

	// List retrieves activities in insertion order
	List(filter ActivityFilter) ([]models.Activity, int64, error)
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	Create(notification *models.Notification) error
	FindByID(userID, id uint64) (*models.Notification, error)
	// List returns the newest notifications first
	List(userID uint64, limit int) ([]models.Notification, error)
	CountUnread(userID uint64) (int64, error)
	MarkRead(userID, id uint64, at time.Time) error
	MarkAllRead(userID uint64, at time.Time) (int64, error)
	ClearAll(userID uint64) (int64, error)
	// ExistsSince reports whether a notification with the same title was sent for a goal since t
	ExistsSince(userID uint64, goalID *uint64, title string, since time.Time) (bool, error)
	// Award records an achievement and reports false when the user already had it
	Award(userID uint64, key string, at time.Time) (bool, error)
}

// ReminderRepository defines the interface for reminder data access
type ReminderRepository interface {
	Create(reminder *models.Reminder) error
	FindByID(userID, id uint64) (*models.Reminder, error)
	List(userID uint64) ([]models.Reminder, error)
	Update(reminder *models.Reminder) error
	Delete(userID, id uint64) error
	// ListDue lists active reminders of all users whose next firing is at or before now
	ListDue(now time.Time) ([]models.Reminder, error)
}
