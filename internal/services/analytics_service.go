package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/learnflow-api/internal/analytics"
	"github.com/yukikurage/learnflow-api/internal/models"
	"github.com/yukikurage/learnflow-api/internal/repository"
	"gorm.io/gorm"
)

// dailyStudyDays is the length of the daily progress series on the analytics page.
const dailyStudyDays = 30

// AnalyticsService recomputes dashboard statistics from the stored records on every read.
type AnalyticsService struct {
	userRepo     repository.UserRepository
	goalRepo     repository.GoalRepository
	resourceRepo repository.ResourceRepository
	activityRepo repository.ActivityRepository
	now          func() time.Time
}

func NewAnalyticsService(
	userRepo repository.UserRepository,
	goalRepo repository.GoalRepository,
	resourceRepo repository.ResourceRepository,
	activityRepo repository.ActivityRepository,
) *AnalyticsService {
	return &AnalyticsService{
		userRepo:     userRepo,
		goalRepo:     goalRepo,
		resourceRepo: resourceRepo,
		activityRepo: activityRepo,
		now:          time.Now,
	}
}

// Snapshot is everything a user owns at one instant, with now expressed in
// the user's time zone.
type Snapshot struct {
	User       models.User
	Goals      []models.Goal
	Resources  []models.Resource
	Activities []models.Activity
	Now        time.Time
}

// Snapshot loads all goals (with milestones), resources and activities of a user.
func (s *AnalyticsService) Snapshot(userID uint64) (*Snapshot, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	now := s.now().In(user.Location())

	goals, err := s.goalRepo.List(repository.GoalFilter{UserID: userID, Now: now})
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	resources, err := s.resourceRepo.List(repository.ResourceFilter{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	activities, _, err := s.activityRepo.List(repository.ActivityFilter{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	return &Snapshot{
		User:       *user,
		Goals:      goals,
		Resources:  resources,
		Activities: activities,
		Now:        now,
	}, nil
}

// Summary returns the dashboard headline statistics.
func (s *AnalyticsService) Summary(userID uint64) (*analytics.Summary, error) {
	snap, err := s.Snapshot(userID)
	if err != nil {
		return nil, err
	}
	summary := analytics.Summarize(snap.Goals, snap.Resources, snap.Activities, snap.Now)
	return &summary, nil
}

// Overview is the analytics page: summary, breakdowns, daily series and trends.
type Overview struct {
	Summary             analytics.Summary   `json:"summary"`
	GoalsByCategory     map[string]int      `json:"goals_by_category"`
	GoalsByPriority     map[string]int      `json:"goals_by_priority"`
	GoalsByStatus       map[string]int      `json:"goals_by_status"`
	ResourcesByType     map[string]int      `json:"resources_by_type"`
	ResourcesByCategory map[string]int      `json:"resources_by_category"`
	ActivitiesByType    map[string]int      `json:"activities_by_type"`
	DailyStudy          []analytics.DayStat `json:"daily_study"`
	AverageProgress     int                 `json:"average_progress"`
	MostActiveDay       string              `json:"most_active_day"`
	GoalTrend           int                 `json:"goal_trend"`
	ResourceTrend       int                 `json:"resource_trend"`
	ActivityTrend       int                 `json:"activity_trend"`
}

func (s *AnalyticsService) Overview(userID uint64) (*Overview, error) {
	snap, err := s.Snapshot(userID)
	if err != nil {
		return nil, err
	}
	now := snap.Now

	return &Overview{
		Summary:             analytics.Summarize(snap.Goals, snap.Resources, snap.Activities, now),
		GoalsByCategory:     analytics.CategoryBreakdown(snap.Goals),
		GoalsByPriority:     analytics.PriorityBreakdown(snap.Goals),
		GoalsByStatus:       analytics.StatusBreakdown(snap.Goals, now),
		ResourcesByType:     analytics.ResourceTypeBreakdown(snap.Resources),
		ResourcesByCategory: analytics.ResourceCategoryBreakdown(snap.Resources),
		ActivitiesByType:    analytics.ActivityTypeBreakdown(snap.Activities),
		DailyStudy:          analytics.DailyStudy(snap.Activities, now, dailyStudyDays),
		AverageProgress:     analytics.AverageProgress(snap.Goals),
		MostActiveDay:       analytics.MostActiveWeekday(snap.Activities, now.Location()),
		GoalTrend:           analytics.Trend(analytics.GoalCreationDates(snap.Goals), now),
		ResourceTrend:       analytics.Trend(analytics.ResourceCreationDates(snap.Resources), now),
		ActivityTrend:       analytics.Trend(analytics.ActivityDates(snap.Activities), now),
	}, nil
}

// UserStats is the profile statistics block derived on request.
type UserStats struct {
	TotalGoals     int        `json:"total_goals"`
	CompletedGoals int        `json:"completed_goals"`
	TotalResources int        `json:"total_resources"`
	StudyHours     float64    `json:"study_hours"`
	CurrentStreak  int        `json:"current_streak"`
	MemberSince    time.Time  `json:"member_since"`
	LastLoginAt    *time.Time `json:"last_login_at"`
}

func (s *AnalyticsService) UserStats(userID uint64) (*UserStats, error) {
	snap, err := s.Snapshot(userID)
	if err != nil {
		return nil, err
	}
	summary := analytics.Summarize(snap.Goals, snap.Resources, snap.Activities, snap.Now)
	return &UserStats{
		TotalGoals:     summary.TotalGoals,
		CompletedGoals: summary.CompletedGoals,
		TotalResources: summary.TotalResources,
		StudyHours:     summary.StudyHours,
		CurrentStreak:  summary.Streak,
		MemberSince:    snap.User.CreatedAt,
		LastLoginAt:    snap.User.LastLoginAt,
	}, nil
}
