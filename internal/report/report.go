// Package report assembles time-windowed learning reports from a user's
// goals, resources and activities and renders them as JSON, CSV or HTML.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/learnflow-api/internal/analytics"
	"github.com/yukikurage/learnflow-api/internal/constants"
	"github.com/yukikurage/learnflow-api/internal/models"
)

// Epoch is the lower bound of the "all" period.
var Epoch = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

type Period string

const (
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
	PeriodAll     Period = "all"
)

// ParsePeriod accepts the period names used by the API. An empty string selects a month.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PeriodMonth, nil
	case PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear, PeriodAll:
		return p, nil
	default:
		return "", fmt.Errorf("unknown period %q", s)
	}
}

// Start returns the inclusive lower bound of the window ending at now.
func (p Period) Start(now time.Time) time.Time {
	switch p {
	case PeriodWeek:
		return now.AddDate(0, 0, -7)
	case PeriodQuarter:
		return now.AddDate(0, -3, 0)
	case PeriodYear:
		return now.AddDate(-1, 0, 0)
	case PeriodAll:
		return Epoch
	default:
		return now.AddDate(0, -1, 0)
	}
}

// Type selects which sections a rendered report shows.
type Type string

const (
	TypeComprehensive Type = "comprehensive"
	TypeGoals         Type = "goals"
	TypeProgress      Type = "progress"
	TypeResources     Type = "resources"
	TypeAnalytics     Type = "analytics"
)

// ParseType accepts the report types used by the API. An empty string selects a comprehensive report.
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return TypeComprehensive, nil
	case TypeComprehensive, TypeGoals, TypeProgress, TypeResources, TypeAnalytics:
		return t, nil
	default:
		return "", fmt.Errorf("unknown report type %q", s)
	}
}

// Includes reports whether a section is part of reports of type t.
func (t Type) Includes(section Type) bool {
	return t == TypeComprehensive || t == section
}

// Input is a snapshot of everything a report is built from. Goals must
// carry their milestones.
type Input struct {
	User       models.User
	Goals      []models.Goal
	Resources  []models.Resource
	Activities []models.Activity
	Period     Period
	Type       Type
	Now        time.Time
}

type UserInfo struct {
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	MemberSince time.Time `json:"member_since"`
}

type PeriodInfo struct {
	Type        Period    `json:"type"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	GeneratedAt time.Time `json:"generated_at"`
}

type GoalItem struct {
	ID          uint64     `json:"id"`
	Title       string     `json:"title"`
	Category    string     `json:"category"`
	Priority    string     `json:"priority"`
	Progress    int        `json:"progress"`
	Status      string     `json:"status"`
	TargetDate  *time.Time `json:"target_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type GoalSection struct {
	Total             int            `json:"total"`
	ByCategory        map[string]int `json:"by_category"`
	ByPriority        map[string]int `json:"by_priority"`
	ByStatus          map[string]int `json:"by_status"`
	AverageProgress   int            `json:"average_progress"`
	RecentlyCompleted []GoalItem     `json:"recently_completed"`
	Items             []GoalItem     `json:"items"`
}

type ResourceItem struct {
	ID         uint64    `json:"id"`
	Title      string    `json:"title"`
	Type       string    `json:"type"`
	Category   string    `json:"category"`
	IsFavorite bool      `json:"is_favorite"`
	CreatedAt  time.Time `json:"created_at"`
}

type ResourceSection struct {
	Total         int            `json:"total"`
	ByCategory    map[string]int `json:"by_category"`
	ByType        map[string]int `json:"by_type"`
	Favorites     int            `json:"favorites"`
	RecentlyAdded []ResourceItem `json:"recently_added"`
}

type ActivitySection struct {
	Total           int                 `json:"total"`
	ByType          map[string]int      `json:"by_type"`
	ByDay           map[string]int      `json:"by_day"`
	Streak          int                 `json:"streak"`
	MostActiveDay   string              `json:"most_active_day"`
	AverageDuration int                 `json:"average_duration"`
	DailyStudy      []analytics.DayStat `json:"daily_study"`
}

type Trends struct {
	Goals      int `json:"goals"`
	Resources  int `json:"resources"`
	Activities int `json:"activities"`
}

type AnalyticsSection struct {
	Trends          Trends   `json:"trends"`
	Insights        []string `json:"insights"`
	Recommendations []string `json:"recommendations"`
}

// Note is a note resource included verbatim in rendered reports.
type Note struct {
	Title    string `json:"title"`
	Markdown string `json:"markdown"`
}

// Report is the nested document every renderer works from.
type Report struct {
	Type       Type              `json:"type"`
	User       UserInfo          `json:"user"`
	Period     PeriodInfo        `json:"period"`
	Summary    analytics.Summary `json:"summary"`
	Goals      GoalSection       `json:"goals"`
	Resources  ResourceSection   `json:"resources"`
	Activities ActivitySection   `json:"activities"`
	Analytics  AnalyticsSection  `json:"analytics"`
	Notes      []Note            `json:"notes,omitempty"`
}

// Build filters the snapshot to the period window and aggregates it.
// Goals and resources are windowed by creation time, activities by occurrence.
func Build(in Input) *Report {
	if in.Period == "" {
		in.Period = PeriodMonth
	}
	if in.Type == "" {
		in.Type = TypeComprehensive
	}
	now := in.Now.In(in.User.Location())
	start := in.Period.Start(now)

	goals := filterGoals(in.Goals, start, now)
	resources := filterResources(in.Resources, start, now)
	activities := filterActivities(in.Activities, start, now)

	r := &Report{
		Type: in.Type,
		User: UserInfo{
			Name:        in.User.Name,
			Email:       in.User.Email,
			MemberSince: in.User.CreatedAt,
		},
		Period: PeriodInfo{
			Type:        in.Period,
			StartDate:   start,
			EndDate:     now,
			GeneratedAt: now,
		},
		Summary:    analytics.Summarize(goals, resources, activities, now),
		Goals:      goalSection(goals, now),
		Resources:  resourceSection(resources, now),
		Activities: activitySection(activities, now),
	}
	r.Analytics = AnalyticsSection{
		Trends: Trends{
			Goals:      analytics.Trend(analytics.GoalCreationDates(goals), now),
			Resources:  analytics.Trend(analytics.ResourceCreationDates(resources), now),
			Activities: analytics.Trend(analytics.ActivityDates(activities), now),
		},
		Insights:        Insights(r.Summary, len(goals), len(resources)),
		Recommendations: Recommendations(goals, activities, now),
	}
	for _, res := range resources {
		if res.Type == models.ResourceTypeNote && strings.TrimSpace(res.NoteText) != "" {
			r.Notes = append(r.Notes, Note{Title: res.Title, Markdown: res.NoteText})
		}
	}
	return r
}

func within(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

func filterGoals(goals []models.Goal, start, end time.Time) []models.Goal {
	out := make([]models.Goal, 0, len(goals))
	for _, g := range goals {
		if within(g.CreatedAt, start, end) {
			out = append(out, g)
		}
	}
	return out
}

func filterResources(resources []models.Resource, start, end time.Time) []models.Resource {
	out := make([]models.Resource, 0, len(resources))
	for _, r := range resources {
		if within(r.CreatedAt, start, end) {
			out = append(out, r)
		}
	}
	return out
}

func filterActivities(activities []models.Activity, start, end time.Time) []models.Activity {
	out := make([]models.Activity, 0, len(activities))
	for _, a := range activities {
		if within(a.OccurredAt, start, end) {
			out = append(out, a)
		}
	}
	return out
}

func goalItem(g *models.Goal, now time.Time) GoalItem {
	return GoalItem{
		ID:          g.ID,
		Title:       g.Title,
		Category:    g.Category,
		Priority:    string(g.Priority),
		Progress:    g.Progress,
		Status:      g.Status(now),
		TargetDate:  g.TargetDate,
		CompletedAt: g.CompletedAt,
		CreatedAt:   g.CreatedAt,
	}
}

func goalSection(goals []models.Goal, now time.Time) GoalSection {
	s := GoalSection{
		Total:             len(goals),
		ByCategory:        analytics.CategoryBreakdown(goals),
		ByPriority:        analytics.PriorityBreakdown(goals),
		ByStatus:          analytics.StatusBreakdown(goals, now),
		AverageProgress:   analytics.AverageProgress(goals),
		RecentlyCompleted: []GoalItem{},
		Items:             make([]GoalItem, 0, len(goals)),
	}
	recent := now.Add(-constants.RecentWindow)
	for i := range goals {
		g := &goals[i]
		item := goalItem(g, now)
		s.Items = append(s.Items, item)
		if g.CompletedAt != nil && !g.CompletedAt.Before(recent) {
			s.RecentlyCompleted = append(s.RecentlyCompleted, item)
		}
	}
	return s
}

func resourceSection(resources []models.Resource, now time.Time) ResourceSection {
	s := ResourceSection{
		Total:         len(resources),
		ByCategory:    analytics.ResourceCategoryBreakdown(resources),
		ByType:        analytics.ResourceTypeBreakdown(resources),
		RecentlyAdded: []ResourceItem{},
	}
	recent := now.Add(-constants.RecentWindow)
	for _, r := range resources {
		if r.IsFavorite {
			s.Favorites++
		}
		if !r.CreatedAt.Before(recent) {
			s.RecentlyAdded = append(s.RecentlyAdded, ResourceItem{
				ID:         r.ID,
				Title:      r.Title,
				Type:       string(r.Type),
				Category:   r.Category,
				IsFavorite: r.IsFavorite,
				CreatedAt:  r.CreatedAt,
			})
		}
	}
	return s
}

func activitySection(activities []models.Activity, now time.Time) ActivitySection {
	return ActivitySection{
		Total:           len(activities),
		ByType:          analytics.ActivityTypeBreakdown(activities),
		ByDay:           analytics.ActivityByDay(activities, now.Location()),
		Streak:          analytics.Streak(activities, now),
		MostActiveDay:   analytics.MostActiveWeekday(activities, now.Location()),
		AverageDuration: analytics.AverageDuration(activities),
		DailyStudy:      analytics.DailyStudy(activities, now, 7),
	}
}

// Insights returns the rule-based observations for a summary. Exactly one
// completion insight and one streak insight are always produced.
func Insights(summary analytics.Summary, goals, resources int) []string {
	insights := make([]string, 0, 3)

	switch {
	case summary.CompletionRate > 80:
		insights = append(insights, "Excellent goal completion rate! You're staying on track with your learning objectives.")
	case summary.CompletionRate > 50:
		insights = append(insights, "Good progress on your goals. Consider breaking down larger goals into smaller milestones.")
	default:
		insights = append(insights, "Focus on completing existing goals before adding new ones to improve your success rate.")
	}

	switch {
	case summary.Streak >= 7:
		insights = append(insights, fmt.Sprintf("Amazing! You've maintained a %d-day learning streak. Keep up the momentum!", summary.Streak))
	case summary.Streak >= 3:
		insights = append(insights, "You're building a good learning habit. Try to maintain consistency for better results.")
	default:
		insights = append(insights, "Consider setting daily learning reminders to build a consistent study habit.")
	}

	perGoal := 0.0
	if goals > 0 {
		perGoal = float64(resources) / float64(goals)
	}
	if perGoal < 2 {
		insights = append(insights, "Consider adding more learning resources to support your goals effectively.")
	}
	return insights
}

// Recommendations returns suggested next steps for the windowed snapshot.
func Recommendations(goals []models.Goal, activities []models.Activity, now time.Time) []string {
	recs := []string{}

	if top := analytics.Sorted(analytics.CategoryBreakdown(goals)); len(top) > 0 {
		recs = append(recs, fmt.Sprintf("You're focusing heavily on %s. Consider exploring related areas to broaden your skills.", top[0].Key))
	}

	for i := range goals {
		if goals[i].IsOverdue(now) {
			recs = append(recs, "Review your overdue goals and consider adjusting deadlines or breaking them into smaller tasks.")
			break
		}
	}

	if len(activities) > 0 && analytics.AverageDuration(activities) < constants.ShortSessionThresholdMins {
		recs = append(recs, "Try longer study sessions (45-60 minutes) for better focus and retention.")
	}
	return recs
}
