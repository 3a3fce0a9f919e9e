package http

import (
	"net/http"
	"strconv"

	"storynest/pkg/apperr"
	"storynest/pkg/middleware"
	"storynest/pkg/models"
	"storynest/services/notification/internal/entity"
	"storynest/services/notification/internal/usecase"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationUseCase usecase.NotificationUseCase
}

func NewNotificationHandler(notificationUseCase usecase.NotificationUseCase) *NotificationHandler {
	return &NotificationHandler{notificationUseCase: notificationUseCase}
}

type CreateNotificationRequest struct {
	UserID  string                  `json:"user_id" binding:"required"`
	Title   string                  `json:"title" binding:"required,max=300"`
	Message string                  `json:"message" binding:"required,max=2000"`
	Type    models.NotificationType `json:"type" binding:"omitempty,notification_type"`
}

type BroadcastRequest struct {
	UserIDs []string                `json:"user_ids" binding:"omitempty,dive,required"`
	All     bool                    `json:"all"`
	Title   string                  `json:"title" binding:"required,max=300"`
	Message string                  `json:"message" binding:"required,max=2000"`
	Type    models.NotificationType `json:"type" binding:"omitempty,notification_type"`
}

func bindError(c *gin.Context, err error) {
	apperr.Respond(c, apperr.Wrap(err, apperr.KindInvalidInput, err.Error()))
}

// GetNotifications godoc
// @Summary      Get user notifications
// @Description  The caller's notifications, newest first, with total and unread counts
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query int  false "Number of notifications to return (max 100)"
// @Param        offset query int  false "Offset for pagination"
// @Param        unread query bool false "Only unread notifications"
// @Success      200  {object}  entity.NotificationPage
// @Failure      401  {object}  apperr.Error
// @Router       /notifications [get]
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	query := entity.NotificationQuery{Limit: usecase.DefaultPageSize}
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= usecase.MaxPageSize {
			query.Limit = parsedLimit
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if parsedOffset, err := strconv.Atoi(offsetStr); err == nil && parsedOffset >= 0 {
			query.Offset = parsedOffset
		}
	}
	query.UnreadOnly, _ = strconv.ParseBool(c.Query("unread"))

	page, err := h.notificationUseCase.List(c.Request.Context(), c.GetString(middleware.ContextUserID), query)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// MarkAsRead godoc
// @Summary      Mark a notification as read
// @Description  Idempotent; marking an already read notification succeeds
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Notification ID"
// @Success      200  {object}  entity.Notification
// @Failure      404  {object}  apperr.Error
// @Router       /notifications/{id}/read [post]
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	notification, err := h.notificationUseCase.MarkRead(c.Request.Context(), c.GetString(middleware.ContextUserID), c.Param("id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, notification)
}

// MarkAllAsRead godoc
// @Summary      Mark all notifications as read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]int64
// @Router       /notifications/read-all [post]
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	updated, err := h.notificationUseCase.MarkAllRead(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// CreateNotification godoc
// @Summary      Send a notification
// @Description  Admins only
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateNotificationRequest true "Notification"
// @Success      201  {object}  entity.Notification
// @Failure      400  {object}  apperr.Error
// @Failure      403  {object}  apperr.Error
// @Router       /notifications [post]
func (h *NotificationHandler) CreateNotification(c *gin.Context) {
	var req CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	notification, err := h.notificationUseCase.Create(c.Request.Context(), entity.NewNotification{
		UserID:  req.UserID,
		Title:   req.Title,
		Message: req.Message,
		Type:    req.Type,
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, notification)
}

// BroadcastNotification godoc
// @Summary      Broadcast a notification
// @Description  Admins only. Explicit recipients are delivered immediately (201); a broadcast to everyone is queued (202).
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body BroadcastRequest true "Broadcast"
// @Success      201  {object}  entity.BroadcastResult
// @Success      202  {object}  entity.BroadcastResult
// @Failure      400  {object}  apperr.Error
// @Failure      403  {object}  apperr.Error
// @Router       /notifications/broadcast [post]
func (h *NotificationHandler) BroadcastNotification(c *gin.Context) {
	var req BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.notificationUseCase.Broadcast(c.Request.Context(), entity.Broadcast{
		UserIDs: req.UserIDs,
		All:     req.All,
		Title:   req.Title,
		Message: req.Message,
		Type:    req.Type,
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	status := http.StatusCreated
	if result.Queued {
		status = http.StatusAccepted
	}
	c.JSON(status, result)
}
