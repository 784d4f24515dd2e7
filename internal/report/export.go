package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/yukikurage/learnflow-api/internal/models"
)

var (
	ErrExportNeedsType = errors.New("csv export requires a single data type (goals, resources, or progress)")
	ErrNothingToExport = errors.New("no data to export")
)

type ExportType string

const (
	ExportAll       ExportType = "all"
	ExportGoals     ExportType = "goals"
	ExportResources ExportType = "resources"
	ExportProgress  ExportType = "progress"
)

func ParseExportType(s string) (ExportType, error) {
	switch t := ExportType(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return ExportAll, nil
	case ExportAll, ExportGoals, ExportResources, ExportProgress:
		return t, nil
	default:
		return "", fmt.Errorf("unknown export type %q", s)
	}
}

type ExportedGoal struct {
	ID          uint64     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	Progress    int        `json:"progress"`
	IsCompleted bool       `json:"is_completed"`
	TargetDate  *time.Time `json:"target_date"`
	Tags        []string   `json:"tags"`
	Milestones  []string   `json:"milestones"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

type ExportedResource struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	URL         string    `json:"url,omitempty"`
	Content     string    `json:"content,omitempty"`
	FileName    string    `json:"file_name,omitempty"`
	Tags        []string  `json:"tags"`
	Rating      int       `json:"rating"`
	IsFavorite  bool      `json:"is_favorite"`
	GoalID      *uint64   `json:"goal_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type ExportedActivity struct {
	ID         uint64    `json:"id"`
	Type       string    `json:"type"`
	Title      string    `json:"title"`
	GoalID     *uint64   `json:"goal_id"`
	Minutes    int       `json:"minutes"`
	Notes      string    `json:"notes"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Export is the complete data dump of one user.
type Export struct {
	ExportedAt time.Time          `json:"exported_at"`
	UserID     uint64             `json:"user_id"`
	Goals      []ExportedGoal     `json:"goals"`
	Resources  []ExportedResource `json:"resources"`
	Progress   []ExportedActivity `json:"progress_logs"`
}

// NewExport keeps only the collections selected by t.
func NewExport(userID uint64, t ExportType, goals []models.Goal, resources []models.Resource, activities []models.Activity, now time.Time) *Export {
	e := &Export{
		ExportedAt: now,
		UserID:     userID,
		Goals:      []ExportedGoal{},
		Resources:  []ExportedResource{},
		Progress:   []ExportedActivity{},
	}
	if t == ExportAll || t == ExportGoals {
		for i := range goals {
			g := &goals[i]
			milestones := make([]string, len(g.Milestones))
			for j, m := range g.Milestones {
				milestones[j] = m.Title
			}
			e.Goals = append(e.Goals, ExportedGoal{
				ID:          g.ID,
				Title:       g.Title,
				Description: g.Description,
				Category:    g.Category,
				Priority:    string(g.Priority),
				Status:      g.Status(now),
				Progress:    g.Progress,
				IsCompleted: g.IsCompleted,
				TargetDate:  g.TargetDate,
				Tags:        nonNil(g.Tags),
				Milestones:  milestones,
				CreatedAt:   g.CreatedAt,
				CompletedAt: g.CompletedAt,
			})
		}
	}
	if t == ExportAll || t == ExportResources {
		for _, r := range resources {
			e.Resources = append(e.Resources, ExportedResource{
				ID:          r.ID,
				Title:       r.Title,
				Description: r.Description,
				Type:        string(r.Type),
				Category:    r.Category,
				URL:         r.URL,
				Content:     r.NoteText,
				FileName:    r.FileName,
				Tags:        nonNil(r.Tags),
				Rating:      r.Rating,
				IsFavorite:  r.IsFavorite,
				GoalID:      r.GoalID,
				CreatedAt:   r.CreatedAt,
			})
		}
	}
	if t == ExportAll || t == ExportProgress {
		// newest first
		for i := len(activities) - 1; i >= 0; i-- {
			a := activities[i]
			e.Progress = append(e.Progress, ExportedActivity{
				ID:         a.ID,
				Type:       string(a.Type),
				Title:      a.Title,
				GoalID:     a.GoalID,
				Minutes:    a.Duration,
				Notes:      a.Description,
				OccurredAt: a.OccurredAt,
			})
		}
	}
	return e
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// ExportFileName names an export download.
func ExportFileName(t ExportType, f Format, now time.Time) string {
	if t == ExportAll {
		return fmt.Sprintf("learnflow-complete-data-%s.%s", now.Format("2006-01-02"), f)
	}
	return fmt.Sprintf("learnflow-%s-%s.%s", t, now.Format("2006-01-02"), f)
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func formatOptionalID(id *uint64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatUint(*id, 10)
}

// WriteExportCSV writes one collection of e as CSV. CSV carries a single
// collection, so t must not be ExportAll.
func WriteExportCSV(w io.Writer, e *Export, t ExportType) error {
	var rows [][]string
	switch t {
	case ExportGoals:
		if len(e.Goals) == 0 {
			return ErrNothingToExport
		}
		rows = append(rows, []string{"Title", "Description", "Category", "Priority", "Status", "Progress", "Target Date", "Created At"})
		for _, g := range e.Goals {
			rows = append(rows, []string{
				g.Title, g.Description, g.Category, g.Priority, g.Status,
				strconv.Itoa(g.Progress) + "%", formatOptionalTime(g.TargetDate), g.CreatedAt.Format(time.RFC3339),
			})
		}
	case ExportResources:
		if len(e.Resources) == 0 {
			return ErrNothingToExport
		}
		rows = append(rows, []string{"Title", "Description", "Type", "Category", "URL", "Created At"})
		for _, r := range e.Resources {
			rows = append(rows, []string{r.Title, r.Description, r.Type, r.Category, r.URL, r.CreatedAt.Format(time.RFC3339)})
		}
	case ExportProgress:
		if len(e.Progress) == 0 {
			return ErrNothingToExport
		}
		rows = append(rows, []string{"Type", "Title", "Goal ID", "Minutes", "Notes", "Occurred At"})
		for _, a := range e.Progress {
			rows = append(rows, []string{a.Type, a.Title, formatOptionalID(a.GoalID), strconv.Itoa(a.Minutes), a.Notes, a.OccurredAt.Format(time.RFC3339)})
		}
	default:
		return ErrExportNeedsType
	}

	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
