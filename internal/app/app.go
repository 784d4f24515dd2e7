// Package app wires repositories and services for the server and learnctl.
package app

import (
	"time"

	"github.com/yukikurage/learnflow-api/internal/auth"
	"github.com/yukikurage/learnflow-api/internal/config"
	"github.com/yukikurage/learnflow-api/internal/mailer"
	"github.com/yukikurage/learnflow-api/internal/repository"
	"github.com/yukikurage/learnflow-api/internal/services"
	"gorm.io/gorm"
)

// Services holds every service built over one database.
type Services struct {
	Auth          *services.AuthService
	Activities    *services.ActivityService
	Notifications *services.NotificationService
	Goals         *services.GoalService
	Resources     *services.ResourceService
	Reminders     *services.ReminderService
	Analytics     *services.AnalyticsService
	Reports       *services.ReportService
}

// NewServices builds the service graph. A nil denylist keeps revoked access
// tokens in memory; a nil mail sender is chosen from the SMTP settings.
func NewServices(db *gorm.DB, cfg *config.Config, denylist auth.Denylist, mail mailer.Mailer) *Services {
	if denylist == nil {
		denylist = auth.NewMemoryDenylist()
	}
	if mail == nil {
		mail = mailer.New(cfg)
	}

	userRepo := repository.NewUserRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL)

	s := &Services{}
	s.Auth = services.NewAuthService(userRepo, repository.NewSessionRepository(db), tokens, denylist, cfg.RefreshTokenTTL)
	s.Activities = services.NewActivityService(activityRepo)
	s.Notifications = services.NewNotificationService(notificationRepo, goalRepo, resourceRepo, activityRepo, userRepo)
	s.Goals = services.NewGoalService(goalRepo, resourceRepo, s.Activities, s.Notifications, aiService)
	s.Resources = services.NewResourceService(resourceRepo, goalRepo, s.Activities, s.Notifications, cfg.UploadDir)
	s.Reminders = services.NewReminderService(repository.NewReminderRepository(db), goalRepo, userRepo, s.Notifications, mail)
	s.Analytics = services.NewAnalyticsService(userRepo, goalRepo, resourceRepo, activityRepo)
	s.Reports = services.NewReportService(s.Analytics)
	return s
}

// SessionMaxAge is the lifetime of the remember-me cookie.
func SessionMaxAge(cfg *config.Config) int {
	return int(cfg.RefreshTokenTTL / time.Second)
}
