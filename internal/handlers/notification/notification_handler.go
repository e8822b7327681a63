// internal/handlers/notification/notification_handler.go
package notification

import (
	"net/http"
	"strconv"

	"salescrm-service/internal/domain/notification"
	"salescrm-service/internal/middleware"
	"salescrm-service/internal/pkg/response"
	service "salescrm-service/internal/service/notification"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// GetNotifications retrieves paginated notifications for the current user
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	var filters notification.NotificationListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	result, err := h.notificationService.GetUserNotifications(
		c.Request.Context(), middleware.MustGetTenantID(c), middleware.MustGetIdentityID(c), &filters,
	)
	if err != nil {
		response.FromError(c, "failed to get notifications", err)
		return
	}

	response.Success(c, http.StatusOK, "notifications retrieved", result)
}

// MarkAsRead marks a notification as read
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid notification ID", err)
		return
	}

	count, err := h.notificationService.MarkAsRead(
		c.Request.Context(), middleware.MustGetTenantID(c), id, middleware.MustGetIdentityID(c),
	)
	if err != nil {
		response.FromError(c, "failed to mark notification as read", err)
		return
	}

	response.Success(c, http.StatusOK, "notification marked as read", gin.H{"unread_count": count})
}
