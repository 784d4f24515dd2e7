package repository

import (
	"strings"

	"github.com/yukikurage/learnflow-api/internal/database"
	"github.com/yukikurage/learnflow-api/internal/models"
	"gorm.io/gorm"
)

// GormResourceRepository is a GORM implementation of ResourceRepository
type GormResourceRepository struct {
	db *gorm.DB
}

// NewResourceRepository creates a new ResourceRepository
func NewResourceRepository(db *gorm.DB) ResourceRepository {
	return &GormResourceRepository{db: db}
}

func (r *GormResourceRepository) Create(resource *models.Resource) error {
	return r.db.Create(resource).Error
}

func (r *GormResourceRepository) FindByID(userID, id uint64) (*models.Resource, error) {
	var resource models.Resource
	if err := r.db.Scopes(database.OwnedBy(userID)).First(&resource, id).Error; err != nil {
		return nil, err
	}
	return &resource, nil
}

// List retrieves resources in insertion order
func (r *GormResourceRepository) List(filter ResourceFilter) ([]models.Resource, error) {
	query := r.db.Model(&models.Resource{}).Scopes(database.OwnedBy(filter.UserID))

	query = query.Scopes(database.Search(filter.Search, "title", "description", "content"))
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.GoalID != nil {
		query = query.Where("goal_id = ?", *filter.GoalID)
	}
	if filter.Favorite != nil {
		query = query.Where("is_favorite = ?", *filter.Favorite)
	}
	query = query.Scopes(database.Since("created_at", filter.CreatedFrom))

	var resources []models.Resource
	if err := query.Order("id ASC").Find(&resources).Error; err != nil {
		return nil, err
	}

	// Tags live in a JSON column whose query syntax differs per driver.
	if filter.Tag != "" {
		filtered := resources[:0]
		for _, res := range resources {
			for _, tag := range res.Tags {
				if strings.EqualFold(tag, filter.Tag) {
					filtered = append(filtered, res)
					break
				}
			}
		}
		resources = filtered
	}
	return resources, nil
}

func (r *GormResourceRepository) Update(resource *models.Resource) error {
	return r.db.Save(resource).Error
}

func (r *GormResourceRepository) Delete(userID, id uint64) error {
	result := r.db.Scopes(database.OwnedBy(userID)).Delete(&models.Resource{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormResourceRepository) Categories(userID uint64) ([]string, error) {
	var categories []string
	err := r.db.Model(&models.Resource{}).
		Scopes(database.OwnedBy(userID)).
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error
	return categories, err
}

func (r *GormResourceRepository) Count(userID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Resource{}).Scopes(database.OwnedBy(userID)).Count(&count).Error
	return count, err
}
