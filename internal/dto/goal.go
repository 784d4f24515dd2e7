package dto

import (
	"time"

	"github.com/yukikurage/learnflow-api/internal/models"
	"github.com/yukikurage/learnflow-api/internal/services"
)

// MilestoneDTO represents a milestone in API responses
type MilestoneDTO struct {
	ID          uint64     `json:"id"`
	Title       string     `json:"title"`
	OrderIndex  int        `json:"order_index"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at"`
}

// GoalDTO represents a goal in API responses. Status is derived at read time.
type GoalDTO struct {
	ID          uint64          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Priority    models.Priority `json:"priority"`
	TargetDate  *time.Time      `json:"target_date"`
	IsCompleted bool            `json:"is_completed"`
	CompletedAt *time.Time      `json:"completed_at"`
	Progress    int             `json:"progress"`
	Status      string          `json:"status"`
	Tags        []string        `json:"tags"`
	Milestones  []MilestoneDTO  `json:"milestones"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// GoalListResponse represents the list of a user's goals
type GoalListResponse struct {
	Goals []GoalDTO `json:"goals"`
	Total int       `json:"total"`
}

type CreateGoalRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Priority    models.Priority `json:"priority"`
	TargetDate  *string         `json:"target_date"`
	Tags        []string        `json:"tags"`
	Milestones  []string        `json:"milestones"`
}

// UpdateGoalRequest holds optional goal changes. A JSON null target_date
// cannot be told apart from an absent one, so clear_target_date removes it.
type UpdateGoalRequest struct {
	Title           *string          `json:"title"`
	Description     *string          `json:"description"`
	Category        *string          `json:"category"`
	Priority        *models.Priority `json:"priority"`
	TargetDate      *string          `json:"target_date"`
	ClearTargetDate bool             `json:"clear_target_date"`
	Tags            *[]string        `json:"tags"`
	IsCompleted     *bool            `json:"is_completed"`
}

type MilestoneRequest struct {
	Title string `json:"title"`
}

type UpdateMilestoneRequest struct {
	Title       *string `json:"title"`
	OrderIndex  *int    `json:"order_index"`
	IsCompleted *bool   `json:"is_completed"`
}

type StudySessionRequest struct {
	Minutes int    `json:"minutes"`
	Notes   string `json:"notes"`
}

type SuggestMilestonesRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ToMilestoneDTO converts a Milestone model to MilestoneDTO
func ToMilestoneDTO(m models.Milestone) MilestoneDTO {
	return MilestoneDTO{
		ID:          m.ID,
		Title:       m.Title,
		OrderIndex:  m.OrderIndex,
		IsCompleted: m.IsCompleted,
		CompletedAt: m.CompletedAt,
	}
}

// ToGoalDTO converts a Goal model to GoalDTO
func ToGoalDTO(goal models.Goal, now time.Time) GoalDTO {
	dto := GoalDTO{
		ID:          goal.ID,
		Title:       goal.Title,
		Description: goal.Description,
		Category:    goal.Category,
		Priority:    goal.Priority,
		TargetDate:  goal.TargetDate,
		IsCompleted: goal.IsCompleted,
		CompletedAt: goal.CompletedAt,
		Progress:    goal.Progress,
		Status:      goal.Status(now),
		Tags:        []string(goal.Tags),
		Milestones:  make([]MilestoneDTO, len(goal.Milestones)),
		CreatedAt:   goal.CreatedAt,
		UpdatedAt:   goal.UpdatedAt,
	}
	if dto.Tags == nil {
		dto.Tags = []string{}
	}
	for i, m := range goal.Milestones {
		dto.Milestones[i] = ToMilestoneDTO(m)
	}
	return dto
}

// ToGoalListResponse converts a slice of goals to GoalListResponse
func ToGoalListResponse(goals []models.Goal, now time.Time) GoalListResponse {
	items := make([]GoalDTO, len(goals))
	for i, goal := range goals {
		items[i] = ToGoalDTO(goal, now)
	}
	return GoalListResponse{Goals: items, Total: len(items)}
}

// ToCreateGoalInput converts the request into service input
func (r CreateGoalRequest) ToCreateGoalInput(userID uint64) (services.CreateGoalInput, error) {
	targetDate, err := parseOptionalTime(r.TargetDate)
	if err != nil {
		return services.CreateGoalInput{}, err
	}
	return services.CreateGoalInput{
		UserID:      userID,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Priority:    r.Priority,
		TargetDate:  targetDate,
		Tags:        r.Tags,
		Milestones:  r.Milestones,
	}, nil
}

// ToUpdateGoalInput converts the request into service input
func (r UpdateGoalRequest) ToUpdateGoalInput() (services.UpdateGoalInput, error) {
	targetDate, err := parseOptionalTime(r.TargetDate)
	if err != nil {
		return services.UpdateGoalInput{}, err
	}
	return services.UpdateGoalInput{
		Title:           r.Title,
		Description:     r.Description,
		Category:        r.Category,
		Priority:        r.Priority,
		TargetDate:      targetDate,
		ClearTargetDate: r.ClearTargetDate,
		Tags:            r.Tags,
		IsCompleted:     r.IsCompleted,
	}, nil
}
