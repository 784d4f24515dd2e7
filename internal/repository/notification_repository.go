package repository

import (
	"time"

	"github.com/yukikurage/learnflow-api/internal/database"
	"github.com/yukikurage/learnflow-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormNotificationRepository is a GORM implementation of NotificationRepository
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) Create(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

func (r *GormNotificationRepository) FindByID(userID, id uint64) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.Scopes(database.OwnedBy(userID)).First(&notification, id).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *GormNotificationRepository) List(userID uint64, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	query := r.db.Scopes(database.OwnedBy(userID)).Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *GormNotificationRepository) CountUnread(userID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Scopes(database.OwnedBy(userID)).
		Where("is_read = ?", false).
		Count(&count).Error
	return count, err
}

func (r *GormNotificationRepository) MarkRead(userID, id uint64, at time.Time) error {
	result := r.db.Model(&models.Notification{}).
		Scopes(database.OwnedBy(userID)).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_read": true, "read_at": at})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormNotificationRepository) MarkAllRead(userID uint64, at time.Time) (int64, error) {
	result := r.db.Model(&models.Notification{}).
		Scopes(database.OwnedBy(userID)).
		Where("is_read = ?", false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at})
	return result.RowsAffected, result.Error
}

func (r *GormNotificationRepository) ClearAll(userID uint64) (int64, error) {
	result := r.db.Scopes(database.OwnedBy(userID)).Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}

func (r *GormNotificationRepository) ExistsSince(userID uint64, goalID *uint64, title string, since time.Time) (bool, error) {
	query := r.db.Model(&models.Notification{}).
		Scopes(database.OwnedBy(userID)).
		Where("title = ? AND created_at >= ?", title, since)
	if goalID != nil {
		query = query.Where("goal_id = ?", *goalID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormNotificationRepository) Award(userID uint64, key string, at time.Time) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Achievement{UserID: userID, Key: key, AwardedAt: at})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
