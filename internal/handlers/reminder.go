package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/learnflow-api/internal/dto"
	apierrors "github.com/yukikurage/learnflow-api/internal/errors"
	"github.com/yukikurage/learnflow-api/internal/services"
	"github.com/yukikurage/learnflow-api/internal/utils"
)

// ReminderHandler serves reminders and the notification inbox.
type ReminderHandler struct {
	reminderService     *services.ReminderService
	notificationService *services.NotificationService
}

func NewReminderHandler(reminderService *services.ReminderService, notificationService *services.NotificationService) *ReminderHandler {
	return &ReminderHandler{
		reminderService:     reminderService,
		notificationService: notificationService,
	}
}

func (h *ReminderHandler) ListReminders(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	reminders, err := h.reminderService.ListReminders(userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ReminderListResponse{Reminders: reminders, Total: len(reminders)})
}

func (h *ReminderHandler) GetReminder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, "Invalid reminder ID")
		return
	}

	reminder, err := h.reminderService.GetReminder(userID, id)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, reminder)
}

func (h *ReminderHandler) CreateReminder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateReminderRequest
	if !bindJSON(c, &req, false) {
		return
	}
	input, err := req.ToCreateReminderInput(userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	reminder, err := h.reminderService.CreateReminder(input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, reminder)
}

func (h *ReminderHandler) UpdateReminder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, "Invalid reminder ID")
		return
	}

	var req dto.UpdateReminderRequest
	if !bindJSON(c, &req, false) {
		return
	}
	input, err := req.ToUpdateReminderInput()
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	reminder, err := h.reminderService.UpdateReminder(userID, id, input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, reminder)
}

func (h *ReminderHandler) DeleteReminder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, "Invalid reminder ID")
		return
	}

	if err := h.reminderService.DeleteReminder(userID, id); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Reminder deleted successfully"})
}

// ListNotifications returns the newest notifications and the unread count
func (h *ReminderHandler) ListNotifications(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	list, err := h.notificationService.List(userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NotificationListResponse{
		Notifications: list.Notifications,
		UnreadCount:   list.Unread,
	})
}

// MarkNotificationRead marks one notification as read
func (h *ReminderHandler) MarkNotificationRead(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, "Invalid notification ID")
		return
	}

	notification, err := h.notificationService.MarkRead(userID, id)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, notification)
}

// MarkAllNotificationsRead marks every unread notification as read
func (h *ReminderHandler) MarkAllNotificationsRead(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	count, err := h.notificationService.MarkAllRead(userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CountResponse{Message: "All notifications marked as read", Count: count})
}

// ClearNotifications deletes all of the user's notifications
func (h *ReminderHandler) ClearNotifications(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	count, err := h.notificationService.ClearAll(userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CountResponse{Message: "All notifications cleared", Count: count})
}
