// Package analytics derives statistics from snapshots of a user's goals,
// resources and activities. Every function is pure and takes the current
// time explicitly; calendar days are evaluated in now's location.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/yukikurage/learnflow-api/internal/constants"
	"github.com/yukikurage/learnflow-api/internal/models"
)

const dayLayout = "2006-01-02"

// Progress returns round(100*completed/total), or 0 when total is 0.
func Progress(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) * 100 / float64(total)))
}

// MilestoneProgress computes goal progress from its milestones.
func MilestoneProgress(milestones []models.Milestone) int {
	completed := 0
	for _, m := range milestones {
		if m.IsCompleted {
			completed++
		}
	}
	return Progress(completed, len(milestones))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Streak counts consecutive calendar days with at least one activity,
// ending today or yesterday. A missing day ends the run.
func Streak(activities []models.Activity, now time.Time) int {
	if len(activities) == 0 {
		return 0
	}

	loc := now.Location()
	days := make(map[string]struct{}, len(activities))
	for _, a := range activities {
		days[a.OccurredAt.In(loc).Format(dayLayout)] = struct{}{}
	}

	today := startOfDay(now)
	expected := today
	if _, ok := days[today.Format(dayLayout)]; !ok {
		expected = today.AddDate(0, 0, -1)
		if _, ok := days[expected.Format(dayLayout)]; !ok {
			return 0
		}
	}

	streak := 0
	for {
		if _, ok := days[expected.Format(dayLayout)]; !ok {
			return streak
		}
		streak++
		expected = expected.AddDate(0, 0, -1)
	}
}

// Trend compares the number of dates inside the last seven days with the
// number before that, as a rounded percentage change.
func Trend(dates []time.Time, now time.Time) int {
	cutoff := now.Add(-constants.RecentWindow)
	recent, older := 0, 0
	for _, d := range dates {
		if d.Before(cutoff) {
			older++
		} else {
			recent++
		}
	}

	if older == 0 {
		if recent > 0 {
			return 100
		}
		return 0
	}
	return int(math.Round(float64(recent-older) / float64(older) * 100))
}

// GoalCreationDates extracts creation times for Trend.
func GoalCreationDates(goals []models.Goal) []time.Time {
	dates := make([]time.Time, len(goals))
	for i, g := range goals {
		dates[i] = g.CreatedAt
	}
	return dates
}

// ResourceCreationDates extracts creation times for Trend.
func ResourceCreationDates(resources []models.Resource) []time.Time {
	dates := make([]time.Time, len(resources))
	for i, r := range resources {
		dates[i] = r.CreatedAt
	}
	return dates
}

// ActivityDates extracts occurrence times for Trend.
func ActivityDates(activities []models.Activity) []time.Time {
	dates := make([]time.Time, len(activities))
	for i, a := range activities {
		dates[i] = a.OccurredAt
	}
	return dates
}

// Summary is the headline statistics block shown on the dashboard.
type Summary struct {
	TotalGoals            int     `json:"total_goals"`
	CompletedGoals        int     `json:"completed_goals"`
	ActiveGoals           int     `json:"active_goals"`
	OverdueGoals          int     `json:"overdue_goals"`
	CompletionRate        int     `json:"completion_rate"`
	TotalMilestones       int     `json:"total_milestones"`
	CompletedMilestones   int     `json:"completed_milestones"`
	TotalResources        int     `json:"total_resources"`
	TotalActivities       int     `json:"total_activities"`
	StudyMinutes          int     `json:"study_minutes"`
	StudyHours            float64 `json:"study_hours"`
	StudySessions         int     `json:"study_sessions"`
	AverageSessionMinutes int     `json:"average_session_minutes"`
	ActivitiesThisMonth   int     `json:"activities_this_month"`
	Streak                int     `json:"streak"`
}

// Summarize computes the dashboard summary.
func Summarize(goals []models.Goal, resources []models.Resource, activities []models.Activity, now time.Time) Summary {
	s := Summary{
		TotalGoals:      len(goals),
		TotalResources:  len(resources),
		TotalActivities: len(activities),
		Streak:          Streak(activities, now),
	}

	for i := range goals {
		g := &goals[i]
		if g.IsCompleted {
			s.CompletedGoals++
		} else {
			s.ActiveGoals++
		}
		if g.IsOverdue(now) {
			s.OverdueGoals++
		}
		for _, m := range g.Milestones {
			s.TotalMilestones++
			if m.IsCompleted {
				s.CompletedMilestones++
			}
		}
	}
	s.CompletionRate = Progress(s.CompletedGoals, s.TotalGoals)

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for _, a := range activities {
		if a.Type == models.ActivityStudySession {
			s.StudyMinutes += a.Duration
			s.StudySessions++
		}
		if !a.OccurredAt.Before(monthStart) {
			s.ActivitiesThisMonth++
		}
	}
	s.StudyHours = math.Round(float64(s.StudyMinutes)/60*10) / 10
	if s.StudySessions > 0 {
		s.AverageSessionMinutes = int(math.Round(float64(s.StudyMinutes) / float64(s.StudySessions)))
	}
	return s
}

// CategoryBreakdown counts goals per observed category.
func CategoryBreakdown(goals []models.Goal) map[string]int {
	counts := make(map[string]int)
	for _, g := range goals {
		counts[g.Category]++
	}
	return counts
}

// PriorityBreakdown counts goals per observed priority.
func PriorityBreakdown(goals []models.Goal) map[string]int {
	counts := make(map[string]int)
	for _, g := range goals {
		counts[string(g.Priority)]++
	}
	return counts
}

// StatusBreakdown counts active (incomplete), completed and overdue goals.
// Overdue goals are also counted as active.
func StatusBreakdown(goals []models.Goal, now time.Time) map[string]int {
	counts := map[string]int{
		models.GoalStatusActive:    0,
		models.GoalStatusCompleted: 0,
		models.GoalStatusOverdue:   0,
	}
	for i := range goals {
		g := &goals[i]
		if g.IsCompleted {
			counts[models.GoalStatusCompleted]++
			continue
		}
		counts[models.GoalStatusActive]++
		if g.IsOverdue(now) {
			counts[models.GoalStatusOverdue]++
		}
	}
	return counts
}

// ResourceCategoryBreakdown counts resources per observed category.
func ResourceCategoryBreakdown(resources []models.Resource) map[string]int {
	counts := make(map[string]int)
	for _, r := range resources {
		counts[r.Category]++
	}
	return counts
}

// ResourceTypeBreakdown counts resources per kind.
func ResourceTypeBreakdown(resources []models.Resource) map[string]int {
	counts := make(map[string]int)
	for _, r := range resources {
		counts[string(r.Type)]++
	}
	return counts
}

// ActivityTypeBreakdown counts activities per type.
func ActivityTypeBreakdown(activities []models.Activity) map[string]int {
	counts := make(map[string]int)
	for _, a := range activities {
		counts[string(a.Type)]++
	}
	return counts
}

// ActivityByDay counts activities per calendar day (YYYY-MM-DD) in loc.
func ActivityByDay(activities []models.Activity, loc *time.Location) map[string]int {
	counts := make(map[string]int)
	for _, a := range activities {
		counts[a.OccurredAt.In(loc).Format(dayLayout)]++
	}
	return counts
}

// MostActiveWeekday returns the weekday name with the most activities, or
// an empty string when there are none. Ties go to the earlier weekday.
func MostActiveWeekday(activities []models.Activity, loc *time.Location) string {
	if len(activities) == 0 {
		return ""
	}
	var counts [7]int
	for _, a := range activities {
		counts[a.OccurredAt.In(loc).Weekday()]++
	}
	best := time.Sunday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if counts[d] > counts[best] {
			best = d
		}
	}
	return best.String()
}

// AverageProgress is the rounded mean goal progress, 0 for no goals.
func AverageProgress(goals []models.Goal) int {
	if len(goals) == 0 {
		return 0
	}
	total := 0
	for _, g := range goals {
		total += g.Progress
	}
	return int(math.Round(float64(total) / float64(len(goals))))
}

// AverageDuration is the rounded mean activity duration in minutes.
func AverageDuration(activities []models.Activity) int {
	if len(activities) == 0 {
		return 0
	}
	total := 0
	for _, a := range activities {
		total += a.Duration
	}
	return int(math.Round(float64(total) / float64(len(activities))))
}

// Count is one entry of a sorted breakdown.
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Sorted orders a breakdown by descending count, then key.
func Sorted(counts map[string]int) []Count {
	out := make([]Count, 0, len(counts))
	for k, v := range counts {
		out = append(out, Count{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// DayStat is the study activity of one calendar day.
type DayStat struct {
	Date     string `json:"date"`
	Minutes  int    `json:"minutes"`
	Sessions int    `json:"sessions"`
}

// DailyStudy returns one entry per day for the last days days, oldest first.
func DailyStudy(activities []models.Activity, now time.Time, days int) []DayStat {
	loc := now.Location()
	index := make(map[string]int, days)
	stats := make([]DayStat, days)
	today := startOfDay(now)
	for i := 0; i < days; i++ {
		d := today.AddDate(0, 0, i-days+1).Format(dayLayout)
		stats[i] = DayStat{Date: d}
		index[d] = i
	}
	for _, a := range activities {
		if a.Type != models.ActivityStudySession {
			continue
		}
		if i, ok := index[a.OccurredAt.In(loc).Format(dayLayout)]; ok {
			stats[i].Minutes += a.Duration
			stats[i].Sessions++
		}
	}
	return stats
}
