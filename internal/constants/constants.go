package constants

import "time"

// Context and session keys
const (
	ContextKeyUserID = "user_id"
	ContextKeyClaims = "claims"
	ContextKeyGoal   = "goal"

	SessionCookieName      = "learnflow_session"
	SessionKeyRefreshToken = "refresh_token"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Auth
const (
	MinPasswordLength   = 8
	MaxPasswordLength   = 72
	MinPasswordStrength = 3
	DefaultTimezone     = "UTC"
)

// Domain limits
const (
	MaxActivitiesPerUser      = 100
	NotificationListLimit     = 50
	MaxAISuggestedMilestones  = 8
	MilestoneActivityMinutes  = 60
	MaxUploadSize             = 10 << 20
	RecentWindow              = 7 * 24 * time.Hour
	DefaultGoalCategory       = "general"
	DefaultResourceCategory   = "general"
	DefaultReminderMessage    = "Time for your scheduled reminder!"
	ShortSessionThresholdMins = 30
)

// AllowedUploadExtensions lists the file types accepted by the resource upload endpoint.
var AllowedUploadExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".mp4":  true,
	".mp3":  true,
	".webm": true,
}
