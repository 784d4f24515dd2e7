package repository

import (
	"time"

	"github.com/yukikurage/learnflow-api/internal/database"
	"github.com/yukikurage/learnflow-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormGoalRepository is a GORM implementation of GoalRepository
type GormGoalRepository struct {
	db *gorm.DB
}

// NewGoalRepository creates a new GoalRepository
func NewGoalRepository(db *gorm.DB) GoalRepository {
	return &GormGoalRepository{db: db}
}

var goalSortColumns = map[string]string{
	"created_at":  "goals.created_at",
	"target_date": "goals.target_date",
	"title":       "goals.title",
	"priority":    "goals.priority",
	"progress":    "goals.progress",
}

func orderedMilestones(db *gorm.DB) *gorm.DB {
	return db.Order("milestones.order_index ASC, milestones.id ASC")
}

// Create creates a goal together with its milestones
func (r *GormGoalRepository) Create(goal *models.Goal) error {
	return r.db.Create(goal).Error
}

// FindByID finds a goal owned by userID, with milestones in order
func (r *GormGoalRepository) FindByID(userID, id uint64) (*models.Goal, error) {
	var goal models.Goal
	if err := r.db.Scopes(database.OwnedBy(userID)).
		Preload("Milestones", orderedMilestones).
		First(&goal, id).Error; err != nil {
		return nil, err
	}
	return &goal, nil
}

// List retrieves goals with filtering, milestones preloaded
func (r *GormGoalRepository) List(filter GoalFilter) ([]models.Goal, error) {
	query := r.db.Model(&models.Goal{}).Where("goals.user_id = ?", filter.UserID)

	query = query.Scopes(database.Search(filter.Search, "goals.title", "goals.description", "goals.category"))
	if filter.Category != "" {
		query = query.Where("goals.category = ?", filter.Category)
	}
	if filter.Priority != nil {
		query = query.Where("goals.priority = ?", *filter.Priority)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("goals.created_at >= ?", *filter.CreatedFrom)
	}

	now := filter.Now
	if now.IsZero() {
		now = time.Now()
	}
	switch filter.Status {
	case models.GoalStatusCompleted:
		query = query.Where("goals.is_completed = ?", true)
	case models.GoalStatusActive:
		query = query.Where("goals.is_completed = ?", false)
	case models.GoalStatusOverdue:
		query = query.Where("goals.is_completed = ? AND goals.target_date IS NOT NULL AND goals.target_date < ?", false, now)
	}

	if column, ok := goalSortColumns[filter.SortBy]; ok {
		query = query.Order(clause.OrderByColumn{Column: clause.Column{Name: column, Raw: true}, Desc: filter.SortDesc})
	}
	query = query.Order("goals.id ASC")

	var goals []models.Goal
	if err := query.Preload("Milestones", orderedMilestones).Find(&goals).Error; err != nil {
		return nil, err
	}
	return goals, nil
}

// Update saves goal fields without touching milestones
func (r *GormGoalRepository) Update(goal *models.Goal) error {
	return r.db.Omit(clause.Associations).Save(goal).Error
}

// Delete removes a goal and, in the same transaction, the resources,
// activities, milestones and reminders that reference it. Notifications
// keep their history but lose the goal reference.
func (r *GormGoalRepository) Delete(userID, id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var goal models.Goal
		if err := tx.Scopes(database.OwnedBy(userID)).First(&goal, id).Error; err != nil {
			return err
		}

		if err := tx.Where("goal_id = ? AND user_id = ?", id, userID).Delete(&models.Resource{}).Error; err != nil {
			return err
		}
		if err := tx.Where("goal_id = ? AND user_id = ?", id, userID).Delete(&models.Activity{}).Error; err != nil {
			return err
		}
		if err := tx.Where("goal_id = ?", id).Delete(&models.Milestone{}).Error; err != nil {
			return err
		}
		if err := tx.Where("goal_id = ? AND user_id = ?", id, userID).Delete(&models.Reminder{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Notification{}).
			Where("goal_id = ? AND user_id = ?", id, userID).
			Updates(map[string]interface{}{"goal_id": nil, "milestone_id": nil}).Error; err != nil {
			return err
		}

		return tx.Delete(&goal).Error
	})
}

// Categories lists the distinct categories used by a user
func (r *GormGoalRepository) Categories(userID uint64) ([]string, error) {
	var categories []string
	err := r.db.Model(&models.Goal{}).
		Scopes(database.OwnedBy(userID)).
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error
	return categories, err
}

// CountCompleted counts a user's completed goals
func (r *GormGoalRepository) CountCompleted(userID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Goal{}).
		Scopes(database.OwnedBy(userID)).
		Where("is_completed = ?", true).
		Count(&count).Error
	return count, err
}

// ListIncompleteWithTargetBetween lists incomplete goals of all users due in [from, to)
func (r *GormGoalRepository) ListIncompleteWithTargetBetween(from, to time.Time) ([]models.Goal, error) {
	var goals []models.Goal
	err := r.db.Where("is_completed = ? AND target_date >= ? AND target_date < ?", false, from, to).
		Order("target_date ASC, id ASC").
		Find(&goals).Error
	return goals, err
}

// ListActiveUserIDs lists users with at least one incomplete goal
func (r *GormGoalRepository) ListActiveUserIDs() ([]uint64, error) {
	var ids []uint64
	err := r.db.Model(&models.Goal{}).
		Where("is_completed = ?", false).
		Distinct("user_id").
		Order("user_id").
		Pluck("user_id", &ids).Error
	return ids, err
}

// AddMilestone appends a milestone to a goal
func (r *GormGoalRepository) AddMilestone(milestone *models.Milestone) error {
	return r.db.Create(milestone).Error
}

// FindMilestone finds a milestone of a goal
func (r *GormGoalRepository) FindMilestone(goalID, milestoneID uint64) (*models.Milestone, error) {
	var milestone models.Milestone
	if err := r.db.Where("goal_id = ?", goalID).First(&milestone, milestoneID).Error; err != nil {
		return nil, err
	}
	return &milestone, nil
}

// UpdateMilestone saves a milestone
func (r *GormGoalRepository) UpdateMilestone(milestone *models.Milestone) error {
	return r.db.Save(milestone).Error
}

// DeleteMilestone removes a milestone
func (r *GormGoalRepository) DeleteMilestone(goalID, milestoneID uint64) error {
	result := r.db.Where("goal_id = ?", goalID).Delete(&models.Milestone{}, milestoneID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListMilestones lists the milestones of a goal in order
func (r *GormGoalRepository) ListMilestones(goalID uint64) ([]models.Milestone, error) {
	var milestones []models.Milestone
	err := r.db.Where("goal_id = ?", goalID).Scopes(orderedMilestones).Find(&milestones).Error
	return milestones, err
}
