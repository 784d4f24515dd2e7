package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/learnflow-api/internal/middleware"
)

// Handlers bundles the API handlers mounted by RegisterRoutes.
type Handlers struct {
	Auth      *AuthHandler
	Goal      *GoalHandler
	Resource  *ResourceHandler
	Activity  *ActivityHandler
	Reminder  *ReminderHandler
	Analytics *AnalyticsHandler
}

// RegisterRoutes mounts the v1 API on api. Everything except register,
// login and refresh requires a bearer token.
func RegisterRoutes(api *gin.RouterGroup, h Handlers, authenticator middleware.Authenticator) {
	requireAuth := middleware.RequireAuth(authenticator)
	goalAccess := middleware.RequireGoalAccess(h.Goal.goalService)

	// Auth routes
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", requireAuth, h.Auth.Logout)
		auth.GET("/me", requireAuth, h.Auth.GetCurrentUser)
		auth.PUT("/me", requireAuth, h.Auth.UpdateProfile)
		auth.GET("/stats", requireAuth, h.Auth.GetStats)
	}

	// Goal routes
	goals := api.Group("/goals")
	goals.Use(requireAuth)
	{
		goals.GET("", h.Goal.ListGoals)
		goals.POST("", h.Goal.CreateGoal)
		goals.GET("/categories", h.Goal.Categories)
		goals.POST("/suggest-milestones", h.Goal.SuggestMilestones)
		goals.GET("/:id", goalAccess, h.Goal.GetGoal)
		goals.PUT("/:id", goalAccess, h.Goal.UpdateGoal)
		goals.DELETE("/:id", goalAccess, h.Goal.DeleteGoal)
		goals.POST("/:id/progress", goalAccess, h.Goal.LogProgress)
		goals.POST("/:id/milestones", goalAccess, h.Goal.AddMilestone)
		goals.PUT("/:id/milestones/:milestone_id", goalAccess, h.Goal.UpdateMilestone)
		goals.DELETE("/:id/milestones/:milestone_id", goalAccess, h.Goal.DeleteMilestone)
	}

	// Resource routes
	resources := api.Group("/resources")
	resources.Use(requireAuth)
	{
		resources.GET("", h.Resource.ListResources)
		resources.POST("", h.Resource.CreateResource)
		resources.GET("/categories", h.Resource.Categories)
		resources.POST("/upload", h.Resource.UploadResource)
		resources.GET("/:id", h.Resource.GetResource)
		resources.PUT("/:id", h.Resource.UpdateResource)
		resources.DELETE("/:id", h.Resource.DeleteResource)
	}

	api.GET("/activities", requireAuth, h.Activity.ListActivities)

	// Reminder and notification routes
	reminders := api.Group("/reminders")
	reminders.Use(requireAuth)
	{
		reminders.GET("", h.Reminder.ListReminders)
		reminders.POST("", h.Reminder.CreateReminder)
		reminders.GET("/notifications", h.Reminder.ListNotifications)
		reminders.PUT("/notifications/bulk", h.Reminder.MarkAllNotificationsRead)
		reminders.DELETE("/notifications/bulk", h.Reminder.ClearNotifications)
		reminders.PUT("/notifications/:id", h.Reminder.MarkNotificationRead)
		reminders.GET("/:id", h.Reminder.GetReminder)
		reminders.PUT("/:id", h.Reminder.UpdateReminder)
		reminders.DELETE("/:id", h.Reminder.DeleteReminder)
	}

	// Analytics and report routes
	api.GET("/analytics", requireAuth, h.Analytics.Overview)
	api.GET("/analytics/summary", requireAuth, h.Analytics.Summary)
	reports := api.Group("/reports")
	reports.Use(requireAuth)
	{
		reports.GET("/analytics", h.Analytics.Report)
		reports.GET("/export", h.Analytics.Export)
	}
}
