package services

import apierrors "github.com/yukikurage/learnflow-api/internal/errors"

// Auth
var (
	ErrMissingFields       = apierrors.Validation("All fields are required")
	ErrInvalidEmail        = apierrors.Validation("Please enter a valid email address")
	ErrPasswordMismatch    = apierrors.Validation("Passwords do not match")
	ErrPasswordTooLong     = apierrors.Validation("Password must be at most 72 bytes")
	ErrWeakPassword        = &apierrors.DomainError{Kind: apierrors.KindValidation, Code: apierrors.ErrCodeWeakPassword, Message: "Password is too weak. Please include uppercase, lowercase, numbers, and special characters."}
	ErrEmailTaken          = apierrors.Conflict("An account with this email already exists")
	ErrCredentialsRequired = apierrors.Validation("Email and password are required")
	ErrUserNotFound        = apierrors.NotFoundError("No account found with this email address")
	ErrIncorrectPassword   = apierrors.Auth(apierrors.ErrCodeInvalidCredentials, "Incorrect password")
	ErrNotAuthenticated    = apierrors.Auth("", "Authentication required")
	ErrSessionExpired      = apierrors.Auth(apierrors.ErrCodeSessionExpired, "Your session has expired. Please log in again.")
	ErrInvalidRefreshToken = apierrors.Auth(apierrors.ErrCodeSessionExpired, "Invalid or expired refresh token")
	ErrUnknownTimezone     = apierrors.Validation("Unknown timezone")
	ErrProfileNameRequired = apierrors.Validation("Name cannot be empty")
	ErrAccountNotFound     = apierrors.NotFoundError("User not found")
)

// Goals and milestones
var (
	ErrGoalNotFound       = apierrors.NotFoundError("Goal not found")
	ErrGoalTitleRequired  = apierrors.Validation("Goal title is required")
	ErrInvalidPriority    = apierrors.Validation("Priority must be low, medium or high")
	ErrMilestoneNotFound  = apierrors.NotFoundError("Milestone not found")
	ErrMilestoneTitle     = apierrors.Validation("Milestone title is required")
	ErrInvalidStudyLength = apierrors.Validation("Study time must be a positive number of minutes")
)

// Resources
var (
	ErrResourceNotFound    = apierrors.NotFoundError("Resource not found")
	ErrResourceTitle       = apierrors.Validation("Resource title is required")
	ErrResourceContent     = apierrors.Validation("Resource content does not match its type")
	ErrInvalidResourceType = apierrors.Validation("Resource type must be link, note or file")
	ErrInvalidURL          = apierrors.Validation("Please enter a valid URL")
	ErrInvalidRating       = apierrors.Validation("Rating must be between 0 and 5")
	ErrUploadMissing       = apierrors.Validation("No file uploaded")
	ErrUploadTooLarge      = apierrors.Validation("File is too large (max 10MB)")
	ErrUploadExtension     = apierrors.Validation("File type is not allowed")
	ErrLinkedGoalNotFound  = apierrors.NotFoundError("Linked goal not found")
)

// Notifications and reminders
var (
	ErrNotificationNotFound = apierrors.NotFoundError("Notification not found")
	ErrReminderNotFound     = apierrors.NotFoundError("Reminder not found")
	ErrReminderTitle        = apierrors.Validation("Reminder title is required")
	ErrReminderType         = apierrors.Validation("Reminder type must be daily, weekly or custom")
	ErrReminderInPast       = apierrors.Validation("Reminder time must be in the future")
)

// Reports and AI
var (
	ErrInvalidPeriod      = apierrors.Validation("Period must be week, month, quarter, year or all")
	ErrInvalidReportType  = apierrors.Validation("Report type must be comprehensive, goals, progress, resources or analytics")
	ErrInvalidFormat      = apierrors.Validation("Format must be json, csv or html")
	ErrInvalidExportType  = apierrors.Validation("Export type must be all, goals, resources or progress")
	ErrCSVNeedsSingleType = apierrors.Validation("CSV export requires specifying a single data type (goals, resources, or progress)")
	ErrNothingToExport    = apierrors.Validation("No data to export")
	ErrAINotConfigured    = apierrors.Unavailable("AI service is not configured")
	ErrAINoSuggestions    = apierrors.Unavailable("AI did not suggest any milestones")
)
