package dto

import (
	"strings"
	"time"

	"github.com/yukikurage/learnflow-api/internal/models"
	"github.com/yukikurage/learnflow-api/internal/services"
)

// FileDTO describes the stored file of a file resource
type FileDTO struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MIMEType string `json:"mime_type"`
}

// ResourceDTO represents a resource in API responses. Only the fields of
// the resource's type are set: url for links, content for notes, file for files.
type ResourceDTO struct {
	ID          uint64              `json:"id"`
	GoalID      *uint64             `json:"goal_id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Category    string              `json:"category"`
	Tags        []string            `json:"tags"`
	Rating      int                 `json:"rating"`
	IsFavorite  bool                `json:"is_favorite"`
	Type        models.ResourceType `json:"type"`
	URL         string              `json:"url,omitempty"`
	Content     string              `json:"content,omitempty"`
	File        *FileDTO            `json:"file,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// ResourceListResponse represents the list of a user's resources
type ResourceListResponse struct {
	Resources []ResourceDTO `json:"resources"`
	Total     int           `json:"total"`
}

type CreateResourceRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Category    string              `json:"category"`
	Type        models.ResourceType `json:"type"`
	URL         string              `json:"url"`
	Content     string              `json:"content"`
	GoalID      *uint64             `json:"goal_id"`
	Tags        []string            `json:"tags"`
	Rating      int                 `json:"rating"`
	IsFavorite  bool                `json:"is_favorite"`
}

// UpdateResourceRequest holds optional resource changes. Setting url or
// content without a type switches the resource to a link or a note.
type UpdateResourceRequest struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Category    *string              `json:"category"`
	Type        *models.ResourceType `json:"type"`
	URL         *string              `json:"url"`
	Content     *string              `json:"content"`
	GoalID      *uint64              `json:"goal_id"`
	ClearGoal   bool                 `json:"clear_goal"`
	Tags        *[]string            `json:"tags"`
	Rating      *int                 `json:"rating"`
	IsFavorite  *bool                `json:"is_favorite"`
}

// ToResourceDTO converts a Resource model to ResourceDTO
func ToResourceDTO(resource models.Resource) ResourceDTO {
	dto := ResourceDTO{
		ID:          resource.ID,
		GoalID:      resource.GoalID,
		Title:       resource.Title,
		Description: resource.Description,
		Category:    resource.Category,
		Tags:        []string(resource.Tags),
		Rating:      resource.Rating,
		IsFavorite:  resource.IsFavorite,
		Type:        resource.Type,
		CreatedAt:   resource.CreatedAt,
		UpdatedAt:   resource.UpdatedAt,
	}
	if dto.Tags == nil {
		dto.Tags = []string{}
	}

	switch c := resource.Content().(type) {
	case models.LinkContent:
		dto.URL = c.URL
	case models.NoteContent:
		dto.Content = c.Text
	case models.FileContent:
		dto.File = &FileDTO{Name: c.Name, Size: c.Size, MIMEType: c.MIMEType}
	}
	return dto
}

// ToResourceListResponse converts a slice of resources to ResourceListResponse
func ToResourceListResponse(resources []models.Resource) ResourceListResponse {
	items := make([]ResourceDTO, len(resources))
	for i, resource := range resources {
		items[i] = ToResourceDTO(resource)
	}
	return ResourceListResponse{Resources: items, Total: len(items)}
}

// resourceContent builds the content variant named by type. Files are only
// created through upload, so a file type yields nil and fails validation.
func resourceContent(resourceType models.ResourceType, url, text string) models.ResourceContent {
	switch resourceType {
	case models.ResourceTypeLink:
		return models.LinkContent{URL: strings.TrimSpace(url)}
	case models.ResourceTypeNote:
		return models.NoteContent{Text: text}
	}
	return nil
}

// ToCreateResourceInput converts the request into service input
func (r CreateResourceRequest) ToCreateResourceInput(userID uint64) services.CreateResourceInput {
	return services.CreateResourceInput{
		UserID:      userID,
		GoalID:      r.GoalID,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Tags:        r.Tags,
		Rating:      r.Rating,
		IsFavorite:  r.IsFavorite,
		Content:     resourceContent(r.Type, r.URL, r.Content),
	}
}

// ToUpdateResourceInput converts the request into service input
func (r UpdateResourceRequest) ToUpdateResourceInput() (services.UpdateResourceInput, error) {
	input := services.UpdateResourceInput{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Tags:        r.Tags,
		Rating:      r.Rating,
		IsFavorite:  r.IsFavorite,
		GoalID:      r.GoalID,
		ClearGoal:   r.ClearGoal,
	}

	var resourceType models.ResourceType
	switch {
	case r.Type != nil:
		resourceType = *r.Type
	case r.URL != nil:
		resourceType = models.ResourceTypeLink
	case r.Content != nil:
		resourceType = models.ResourceTypeNote
	default:
		return input, nil
	}

	var url, text string
	if r.URL != nil {
		url = *r.URL
	}
	if r.Content != nil {
		text = *r.Content
	}
	input.Content = resourceContent(resourceType, url, text)
	if input.Content == nil {
		if resourceType == models.ResourceTypeFile {
			return input, services.ErrResourceContent
		}
		return input, services.ErrInvalidResourceType
	}
	return input, nil
}
