// internal/websocket/handler/notification.go
package handler

import (
	"context"
	"fmt"

	wstypes "salescrm-service/internal/domain/websocket"
	ws "salescrm-service/internal/websocket"

	"github.com/google/uuid"
)

// NotificationReader is the notification service as seen by socket clients.
type NotificationReader interface {
	MarkAsRead(ctx context.Context, tenantID uuid.UUID, id, identityID int64) (int, error)
	GetUnreadCount(ctx context.Context, tenantID uuid.UUID, identityID int64) (int, error)
}

type NotificationHandler struct {
	notifications NotificationReader
}

func NewNotificationHandler(notifications NotificationReader) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// SupportedEvents returns events this handler supports
func (h *NotificationHandler) SupportedEvents() []wstypes.EventType {
	return []wstypes.EventType{
		wstypes.EventTypeNotificationRead,
		wstypes.EventTypeNotificationCount,
	}
}

// HandleMessage processes notification-related messages
func (h *NotificationHandler) HandleMessage(ctx context.Context, client *ws.Client, msg *wstypes.WSMessage) error {
	switch msg.Type {
	case wstypes.EventTypeNotificationRead:
		return h.handleMarkAsRead(ctx, client, msg)
	case wstypes.EventTypeNotificationCount:
		return h.handleGetCount(ctx, client)
	default:
		return fmt.Errorf("unsupported event type: %s", msg.Type)
	}
}

func (h *NotificationHandler) handleMarkAsRead(ctx context.Context, client *ws.Client, msg *wstypes.WSMessage) error {
	var req wstypes.MarkReadRequest
	if err := ws.MapToStruct(msg.Data, &req); err != nil {
		return err
	}
	if req.NotificationID <= 0 {
		return fmt.Errorf("notification_id is required")
	}

	to := client.Recipient()
	count, err := h.notifications.MarkAsRead(ctx, to.TenantID, req.NotificationID, to.IdentityID)
	if err != nil {
		return err
	}

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeNotificationRead, map[string]interface{}{
		"notification_id": req.NotificationID,
		"success":         true,
		"unread_count":    count,
	}))
	return nil
}

func (h *NotificationHandler) handleGetCount(ctx context.Context, client *ws.Client) error {
	to := client.Recipient()
	count, err := h.notifications.GetUnreadCount(ctx, to.TenantID, to.IdentityID)
	if err != nil {
		return err
	}

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeNotificationCount, map[string]interface{}{
		"unread_count": count,
	}))
	return nil
}
