package repository

import (
	"github.com/yukikurage/learnflow-api/internal/constants"
	"github.com/yukikurage/learnflow-api/internal/database"
	"github.com/yukikurage/learnflow-api/internal/models"
	"gorm.io/gorm"
)

// GormActivityRepository is a GORM implementation of ActivityRepository
type GormActivityRepository struct {
	db     *gorm.DB
	retain int
}

// NewActivityRepository creates a new ActivityRepository that keeps the
// most recent constants.MaxActivitiesPerUser entries per user.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &GormActivityRepository{db: db, retain: constants.MaxActivitiesPerUser}
}

// Create appends an activity and drops the owner's oldest entries beyond the retention limit.
func (r *GormActivityRepository) Create(activity *models.Activity) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(activity).Error; err != nil {
			return err
		}

		var ids []uint64
		if err := tx.Model(&models.Activity{}).
			Scopes(database.OwnedBy(activity.UserID)).
			Order("id DESC").
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) <= r.retain {
			return nil
		}

		return tx.Where("id IN ?", ids[r.retain:]).Delete(&models.Activity{}).Error
	})
}

// List retrieves activities in insertion order
func (r *GormActivityRepository) List(filter ActivityFilter) ([]models.Activity, int64, error) {
	query := r.db.Model(&models.Activity{}).Scopes(database.OwnedBy(filter.UserID))

	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.GoalID != nil {
		query = query.Where("goal_id = ?", *filter.GoalID)
	}
	query = query.Scopes(database.Since("occurred_at", filter.Since))
	if filter.Until != nil {
		query = query.Where("occurred_at <= ?", *filter.Until)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("id ASC")
	if filter.Pagination != nil {
		listQuery = listQuery.Scopes(database.Paginate(*filter.Pagination))
	}

	var activities []models.Activity
	if err := listQuery.Find(&activities).Error; err != nil {
		return nil, 0, err
	}
	return activities, total, nil
}
