package repository

import (
	"time"

	"github.com/yukikurage/learnflow-api/internal/database"
	"github.com/yukikurage/learnflow-api/internal/models"
	"gorm.io/gorm"
)

// GormReminderRepository is a GORM implementation of ReminderRepository
type GormReminderRepository struct {
	db *gorm.DB
}

// NewReminderRepository creates a new ReminderRepository
func NewReminderRepository(db *gorm.DB) ReminderRepository {
	return &GormReminderRepository{db: db}
}

func (r *GormReminderRepository) Create(reminder *models.Reminder) error {
	return r.db.Create(reminder).Error
}

func (r *GormReminderRepository) FindByID(userID, id uint64) (*models.Reminder, error) {
	var reminder models.Reminder
	if err := r.db.Scopes(database.OwnedBy(userID)).First(&reminder, id).Error; err != nil {
		return nil, err
	}
	return &reminder, nil
}

// List returns a user's reminders ordered by next firing time
func (r *GormReminderRepository) List(userID uint64) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := r.db.Scopes(database.OwnedBy(userID)).
		Order("next_reminder ASC, id ASC").
		Find(&reminders).Error
	return reminders, err
}

func (r *GormReminderRepository) Update(reminder *models.Reminder) error {
	return r.db.Save(reminder).Error
}

func (r *GormReminderRepository) Delete(userID, id uint64) error {
	result := r.db.Scopes(database.OwnedBy(userID)).Delete(&models.Reminder{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormReminderRepository) ListDue(now time.Time) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := r.db.Where("is_active = ? AND next_reminder <= ?", true, now).
		Order("next_reminder ASC, id ASC").
		Find(&reminders).Error
	return reminders, err
}
