package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/learnflow-api/internal/constants"
	"github.com/yukikurage/learnflow-api/internal/dto"
	apierrors "github.com/yukikurage/learnflow-api/internal/errors"
	"github.com/yukikurage/learnflow-api/internal/models"
	"github.com/yukikurage/learnflow-api/internal/services"
	"github.com/yukikurage/learnflow-api/internal/utils"
)

type ResourceHandler struct {
	resourceService *services.ResourceService
}

func NewResourceHandler(resourceService *services.ResourceService) *ResourceHandler {
	return &ResourceHandler{
		resourceService: resourceService,
	}
}

// ListResources returns the user's resources
// Supports search, category, type, goal_id, tag and favorite query filters
func (h *ResourceHandler) ListResources(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	goalID, err := utils.ParseOptionalIDQuery(c, "goal_id")
	if err != nil {
		apierrors.BadRequest(c, "Invalid goal_id")
		return
	}

	input := services.ListResourcesInput{
		UserID:   userID,
		Search:   strings.TrimSpace(c.Query("search")),
		Category: c.Query("category"),
		GoalID:   goalID,
		Tag:      c.Query("tag"),
	}
	if t := c.Query("type"); t != "" {
		resourceType := models.ResourceType(t)
		input.Type = &resourceType
	}
	if raw := c.Query("favorite"); raw != "" {
		favorite, err := strconv.ParseBool(raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid favorite")
			return
		}
		input.Favorite = &favorite
	}

	resources, err := h.resourceService.ListResources(input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToResourceListResponse(resources))
}

// GetResource returns a specific resource
func (h *ResourceHandler) GetResource(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, "Invalid resource ID")
		return
	}

	resource, err := h.resourceService.GetResource(userID, id)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToResourceDTO(*resource))
}

// CreateResource creates a link or note resource
func (h *ResourceHandler) CreateResource(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateResourceRequest
	if !bindJSON(c, &req, false) {
		return
	}

	resource, err := h.resourceService.CreateResource(req.ToCreateResourceInput(userID))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToResourceDTO(*resource))
}

// UploadResource stores a multipart "file" field as a file resource
func (h *ResourceHandler) UploadResource(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, constants.MaxUploadSize+1<<20)
	header, err := c.FormFile("file")
	if err != nil {
		apierrors.Respond(c, services.ErrUploadMissing)
		return
	}
	goalID, err := parseOptionalID(c.PostForm("goal_id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid goal_id")
		return
	}

	file, err := header.Open()
	if err != nil {
		apierrors.InternalError(c, "Failed to read upload")
		return
	}
	defer file.Close()

	var tags []string
	if raw := c.PostForm("tags"); raw != "" {
		tags = strings.Split(raw, ",")
	}

	resource, err := h.resourceService.UploadResource(services.UploadInput{
		UserID:      userID,
		GoalID:      goalID,
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
		Tags:        tags,
		FileName:    header.Filename,
		Size:        header.Size,
		MIMEType:    header.Header.Get("Content-Type"),
		File:        file,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToResourceDTO(*resource))
}

// UpdateResource updates an existing resource
func (h *ResourceHandler) UpdateResource(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, "Invalid resource ID")
		return
	}

	var req dto.UpdateResourceRequest
	if !bindJSON(c, &req, false) {
		return
	}
	input, err := req.ToUpdateResourceInput()
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	resource, err := h.resourceService.UpdateResource(userID, id, input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToResourceDTO(*resource))
}

// DeleteResource deletes a resource and its stored file
func (h *ResourceHandler) DeleteResource(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, "Invalid resource ID")
		return
	}

	if err := h.resourceService.DeleteResource(userID, id); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Resource deleted successfully"})
}

// Categories lists the distinct categories of the user's resources
func (h *ResourceHandler) Categories(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	categories, err := h.resourceService.Categories(userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func parseOptionalID(raw string) (*uint64, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, strconv.ErrRange
	}
	return &id, nil
}
