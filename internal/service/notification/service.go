// internal/service/notification/service.go
package notification

import (
	"context"
	"strings"

	"salescrm-service/internal/domain/notification"
	wstypes "salescrm-service/internal/domain/websocket"
	xerrors "salescrm-service/internal/pkg/errors"
	ws "salescrm-service/internal/websocket"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Repository interface {
	Create(ctx context.Context, n *notification.Notification) error
	GetUserNotifications(ctx context.Context, tenantID uuid.UUID, identityID int64, filters *notification.NotificationListFilters) ([]notification.Notification, int64, error)
	MarkAsRead(ctx context.Context, tenantID uuid.UUID, id, identityID int64) error
	GetUnreadCount(ctx context.Context, tenantID uuid.UUID, identityID int64) (int, error)
}

// Pusher delivers real-time events to connected users.
type Pusher interface {
	PushNotification(to ws.Recipient, data *wstypes.NotificationData) bool
	PushUnreadCount(to ws.Recipient, count int) bool
}

// NotificationService handles notification business logic
type NotificationService struct {
	repo   Repository
	pusher Pusher
	logger *zap.Logger
}

func NewNotificationService(repo Repository, pusher Pusher, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, pusher: pusher, logger: logger}
}

// Notify stores a notification and pushes it to the user's open sessions.
func (s *NotificationService) Notify(ctx context.Context, req notification.CreateNotificationRequest) error {
	_, err := s.CreateAndPush(ctx, req)
	return err
}

// CreateAndPush creates a notification and pushes it via WebSocket
func (s *NotificationService) CreateAndPush(ctx context.Context, req notification.CreateNotificationRequest) (*notification.Notification, error) {
	if req.IdentityID <= 0 {
		return nil, xerrors.New(xerrors.KindMissingRequiredField, "notification requires a recipient")
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, xerrors.New(xerrors.KindMissingRequiredField, "notification requires a title")
	}

	n := &notification.Notification{
		TenantID:   req.TenantID,
		IdentityID: req.IdentityID,
		Title:      req.Title,
		Message:    req.Message,
		Category:   req.Category,
		Priority:   req.Priority,
		Metadata:   req.Metadata,
	}
	if n.Category == "" {
		n.Category = notification.CategorySystem
	}
	if n.Priority == "" {
		n.Priority = notification.PriorityMedium
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, xerrors.WithCause(xerrors.KindInternal, "failed to create notification", err)
	}

	s.push(ctx, n)
	return n, nil
}

// GetUserNotifications retrieves notifications for a user with filters
func (s *NotificationService) GetUserNotifications(ctx context.Context, tenantID uuid.UUID, identityID int64, filters *notification.NotificationListFilters) (*notification.NotificationListResponse, error) {
	if filters == nil {
		filters = &notification.NotificationListFilters{}
	}
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = defaultPageSize
	}
	if filters.PageSize > maxPageSize {
		filters.PageSize = maxPageSize
	}

	notifications, total, err := s.repo.GetUserNotifications(ctx, tenantID, identityID, filters)
	if err != nil {
		return nil, xerrors.WithCause(xerrors.KindInternal, "failed to get notifications", err)
	}

	unread, err := s.repo.GetUnreadCount(ctx, tenantID, identityID)
	if err != nil {
		return nil, xerrors.WithCause(xerrors.KindInternal, "failed to get unread count", err)
	}

	totalPages := int(total) / filters.PageSize
	if int(total)%filters.PageSize > 0 {
		totalPages++
	}

	return &notification.NotificationListResponse{
		Notifications: notifications,
		Unread:        unread,
		Total:         total,
		Page:          filters.Page,
		PageSize:      filters.PageSize,
		TotalPages:    totalPages,
	}, nil
}

// MarkAsRead marks a notification as read and returns the new unread count
func (s *NotificationService) MarkAsRead(ctx context.Context, tenantID uuid.UUID, id, identityID int64) (int, error) {
	if err := s.repo.MarkAsRead(ctx, tenantID, id, identityID); err != nil {
		if xerrors.KindOf(err) == xerrors.KindNotFound {
			return 0, err
		}
		return 0, xerrors.WithCause(xerrors.KindInternal, "failed to mark as read", err)
	}

	count, err := s.repo.GetUnreadCount(ctx, tenantID, identityID)
	if err != nil {
		s.logger.Warn("failed to get unread count", zap.Int64("identity_id", identityID), zap.Error(err))
		return 0, nil
	}
	if s.pusher != nil {
		s.pusher.PushUnreadCount(ws.Recipient{TenantID: tenantID, IdentityID: identityID}, count)
	}
	return count, nil
}

// GetUnreadCount gets the count of unread notifications
func (s *NotificationService) GetUnreadCount(ctx context.Context, tenantID uuid.UUID, identityID int64) (int, error) {
	count, err := s.repo.GetUnreadCount(ctx, tenantID, identityID)
	if err != nil {
		return 0, xerrors.WithCause(xerrors.KindInternal, "failed to get unread count", err)
	}
	return count, nil
}

// push is best effort; the stored notification is the source of truth.
func (s *NotificationService) push(ctx context.Context, n *notification.Notification) {
	if s.pusher == nil {
		return
	}
	to := ws.Recipient{TenantID: n.TenantID, IdentityID: n.IdentityID}

	s.pusher.PushNotification(to, &wstypes.NotificationData{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Category:  string(n.Category),
		Priority:  string(n.Priority),
		IsRead:    n.IsRead,
		Metadata:  n.Metadata,
		CreatedAt: n.CreatedAt,
	})

	count, err := s.repo.GetUnreadCount(ctx, n.TenantID, n.IdentityID)
	if err != nil {
		s.logger.Warn("failed to get unread count", zap.Int64("identity_id", n.IdentityID), zap.Error(err))
		return
	}
	s.pusher.PushUnreadCount(to, count)
}
