package services

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yukikurage/learnflow-api/internal/constants"
	"github.com/yukikurage/learnflow-api/internal/logger"
	"github.com/yukikurage/learnflow-api/internal/models"
	"github.com/yukikurage/learnflow-api/internal/repository"
	"github.com/yukikurage/learnflow-api/internal/utils"
	"gorm.io/gorm"
)

// ResourceService handles learning resource business logic
type ResourceService struct {
	resourceRepo  repository.ResourceRepository
	goalRepo      repository.GoalRepository
	activities    *ActivityService
	notifications *NotificationService
	uploadDir     string
	now           func() time.Time
}

// NewResourceService creates a new ResourceService storing uploads under uploadDir
func NewResourceService(resourceRepo repository.ResourceRepository, goalRepo repository.GoalRepository, activities *ActivityService, notifications *NotificationService, uploadDir string) *ResourceService {
	return &ResourceService{
		resourceRepo:  resourceRepo,
		goalRepo:      goalRepo,
		activities:    activities,
		notifications: notifications,
		uploadDir:     uploadDir,
		now:           time.Now,
	}
}

// ListResourcesInput represents filters for listing resources
type ListResourcesInput struct {
	UserID   uint64
	Search   string
	Category string
	Type     *models.ResourceType
	GoalID   *uint64
	Tag      string
	Favorite *bool
}

func (s *ResourceService) ListResources(input ListResourcesInput) ([]models.Resource, error) {
	resources, err := s.resourceRepo.List(repository.ResourceFilter{
		UserID:   input.UserID,
		Search:   input.Search,
		Category: input.Category,
		Type:     input.Type,
		GoalID:   input.GoalID,
		Tag:      input.Tag,
		Favorite: input.Favorite,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	return resources, nil
}

func (s *ResourceService) GetResource(userID, id uint64) (*models.Resource, error) {
	resource, err := s.resourceRepo.FindByID(userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, fmt.Errorf("failed to find resource: %w", err)
	}
	return resource, nil
}

func (s *ResourceService) Categories(userID uint64) ([]string, error) {
	categories, err := s.resourceRepo.Categories(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// CreateResourceInput represents input for creating a link or note resource
type CreateResourceInput struct {
	UserID      uint64
	GoalID      *uint64
	Title       string
	Description string
	Category    string
	Tags        []string
	Rating      int
	IsFavorite  bool
	Content     models.ResourceContent
}

// CreateResource validates and stores a resource and logs a resource_added activity
func (s *ResourceService) CreateResource(input CreateResourceInput) (*models.Resource, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrResourceTitle
	}
	if input.Rating < 0 || input.Rating > 5 {
		return nil, ErrInvalidRating
	}
	if err := validateContent(input.Content); err != nil {
		return nil, err
	}
	if err := s.ensureGoal(input.UserID, input.GoalID); err != nil {
		return nil, err
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = constants.DefaultResourceCategory
	}

	now := s.now()
	resource := &models.Resource{
		UserID:      input.UserID,
		GoalID:      input.GoalID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Category:    category,
		Tags:        cleanTags(input.Tags),
		Rating:      input.Rating,
		IsFavorite:  input.IsFavorite,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	resource.SetContent(input.Content)

	if err := s.resourceRepo.Create(resource); err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if err := s.activities.Record(&models.Activity{
		UserID:      resource.UserID,
		Type:        models.ActivityResourceAdded,
		Title:       "Added new resource",
		Description: fmt.Sprintf("Added %q", resource.Title),
		GoalID:      resource.GoalID,
		ResourceID:  &resource.ID,
		OccurredAt:  now,
	}); err != nil {
		return nil, err
	}
	if s.notifications != nil {
		if err := s.notifications.CheckAchievements(resource.UserID); err != nil {
			logger.Warn("achievement check failed", "user_id", resource.UserID, "err", err)
		}
	}

	return resource, nil
}

// UploadInput carries an uploaded file and the metadata of the resource to create
type UploadInput struct {
	UserID      uint64
	GoalID      *uint64
	Title       string
	Description string
	Category    string
	Tags        []string
	FileName    string
	Size        int64
	MIMEType    string
	File        io.Reader
}

// UploadResource stores the file under the upload directory with a
// timestamped name and creates a file resource pointing at it
func (s *ResourceService) UploadResource(input UploadInput) (*models.Resource, error) {
	if input.File == nil || input.FileName == "" {
		return nil, ErrUploadMissing
	}
	if input.Size > constants.MaxUploadSize {
		return nil, ErrUploadTooLarge
	}
	ext := strings.ToLower(filepath.Ext(input.FileName))
	if !constants.AllowedUploadExtensions[ext] {
		return nil, ErrUploadExtension
	}
	if err := s.ensureGoal(input.UserID, input.GoalID); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	path := filepath.Join(s.uploadDir, utils.UploadFileName(input.FileName, s.now()))

	written, err := writeFile(path, input.File, constants.MaxUploadSize)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = input.FileName
	}
	resource, err := s.CreateResource(CreateResourceInput{
		UserID:      input.UserID,
		GoalID:      input.GoalID,
		Title:       title,
		Description: input.Description,
		Category:    input.Category,
		Tags:        input.Tags,
		Content: models.FileContent{
			Name:     utils.SanitizeFilename(input.FileName),
			Size:     written,
			MIMEType: input.MIMEType,
			Path:     path,
		},
	})
	if err != nil {
		removeStoredFile(path)
		return nil, err
	}
	return resource, nil
}

func writeFile(path string, src io.Reader, limit int64) (int64, error) {
	dst, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	written, err := io.Copy(dst, io.LimitReader(src, limit+1))
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		removeStoredFile(path)
		return 0, fmt.Errorf("failed to store file: %w", err)
	}
	if written > limit {
		removeStoredFile(path)
		return 0, ErrUploadTooLarge
	}
	return written, nil
}

// UpdateResourceInput represents input for updating a resource; nil fields are kept
type UpdateResourceInput struct {
	Title       *string
	Description *string
	Category    *string
	Tags        *[]string
	Rating      *int
	IsFavorite  *bool
	GoalID      *uint64
	ClearGoal   bool
	Content     models.ResourceContent
}

func (s *ResourceService) UpdateResource(userID, id uint64, input UpdateResourceInput) (*models.Resource, error) {
	resource, err := s.GetResource(userID, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrResourceTitle
		}
		resource.Title = title
	}
	if input.Description != nil {
		resource.Description = strings.TrimSpace(*input.Description)
	}
	if input.Category != nil {
		resource.Category = strings.TrimSpace(*input.Category)
		if resource.Category == "" {
			resource.Category = constants.DefaultResourceCategory
		}
	}
	if input.Tags != nil {
		resource.Tags = cleanTags(*input.Tags)
	}
	if input.Rating != nil {
		if *input.Rating < 0 || *input.Rating > 5 {
			return nil, ErrInvalidRating
		}
		resource.Rating = *input.Rating
	}
	if input.IsFavorite != nil {
		resource.IsFavorite = *input.IsFavorite
	}
	if input.ClearGoal {
		resource.GoalID = nil
	} else if input.GoalID != nil {
		if err := s.ensureGoal(userID, input.GoalID); err != nil {
			return nil, err
		}
		resource.GoalID = input.GoalID
	}

	var staleFile string
	if input.Content != nil {
		if err := validateContent(input.Content); err != nil {
			return nil, err
		}
		if _, isFile := input.Content.(models.FileContent); isFile {
			return nil, ErrResourceContent
		}
		if resource.Type == models.ResourceTypeFile {
			staleFile = resource.FilePath
		}
		resource.SetContent(input.Content)
	}

	resource.UpdatedAt = s.now()
	if err := s.resourceRepo.Update(resource); err != nil {
		return nil, fmt.Errorf("failed to update resource: %w", err)
	}
	removeStoredFile(staleFile)
	return resource, nil
}

// DeleteResource removes a resource and, best-effort, its stored file
func (s *ResourceService) DeleteResource(userID, id uint64) error {
	resource, err := s.GetResource(userID, id)
	if err != nil {
		return err
	}
	if err := s.resourceRepo.Delete(userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResourceNotFound
		}
		return fmt.Errorf("failed to delete resource: %w", err)
	}
	removeStoredFile(resource.FilePath)
	return nil
}

func (s *ResourceService) ensureGoal(userID uint64, goalID *uint64) error {
	if goalID == nil {
		return nil
	}
	if _, err := s.goalRepo.FindByID(userID, *goalID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLinkedGoalNotFound
		}
		return fmt.Errorf("failed to find goal: %w", err)
	}
	return nil
}

func validateContent(content models.ResourceContent) error {
	switch c := content.(type) {
	case models.LinkContent:
		u, err := url.Parse(strings.TrimSpace(c.URL))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return ErrInvalidURL
		}
	case models.NoteContent:
		if strings.TrimSpace(c.Text) == "" {
			return ErrResourceContent
		}
	case models.FileContent:
		if c.Path == "" {
			return ErrResourceContent
		}
	default:
		return ErrInvalidResourceType
	}
	return nil
}

func removeStoredFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to remove stored file", "path", path, "err", err)
	}
}
