// internal/repository/postgres/notification_repo.go
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"salescrm-service/internal/domain/notification"
	xerrors "salescrm-service/internal/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const notificationColumns = `id, tenant_id, identity_id, title, message, category, priority, metadata, is_read, created_at, read_at`

type NotificationRepository struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func scanNotification(row rowScanner) (*notification.Notification, error) {
	var n notification.Notification
	var metadataJSON []byte

	err := row.Scan(
		&n.ID, &n.TenantID, &n.IdentityID, &n.Title, &n.Message, &n.Category, &n.Priority,
		&metadataJSON, &n.IsRead, &n.CreatedAt, &n.ReadAt,
	)
	if err != nil {
		return nil, err
	}

	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &n.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	return &n, nil
}

// Create creates a new notification
func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	query := `
		INSERT INTO notifications (tenant_id, identity_id, title, message, category, priority, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	var metadataJSON []byte
	var err error
	if n.Metadata != nil {
		metadataJSON, err = json.Marshal(n.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
	}

	return r.db.QueryRow(
		ctx, query,
		n.TenantID, n.IdentityID, n.Title, n.Message, n.Category, n.Priority, metadataJSON,
	).Scan(&n.ID, &n.CreatedAt)
}

// GetUserNotifications retrieves notifications for a user with filters
func (r *NotificationRepository) GetUserNotifications(ctx context.Context, tenantID uuid.UUID, identityID int64, filters *notification.NotificationListFilters) ([]notification.Notification, int64, error) {
	conditions := []string{"tenant_id = $1", "identity_id = $2"}
	args := []interface{}{tenantID, identityID}
	argPos := 3

	if filters.IsRead != nil {
		conditions = append(conditions, fmt.Sprintf("is_read = $%d", argPos))
		args = append(args, *filters.IsRead)
		argPos++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM notifications WHERE %s", whereClause)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	offset := (filters.Page - 1) * filters.PageSize
	query := fmt.Sprintf(`
		SELECT %s
		FROM notifications
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, notificationColumns, whereClause, argPos, argPos+1)
	args = append(args, filters.PageSize, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []notification.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, *n)
	}

	return notifications, total, rows.Err()
}

// MarkAsRead marks a notification as read
func (r *NotificationRepository) MarkAsRead(ctx context.Context, tenantID uuid.UUID, id, identityID int64) error {
	query := `
		UPDATE notifications
		SET is_read = true, read_at = $1
		WHERE id = $2 AND tenant_id = $3 AND identity_id = $4 AND is_read = false
	`

	result, err := r.db.Exec(ctx, query, time.Now(), id, tenantID, identityID)
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.Newf(xerrors.KindNotFound, "notification %d not found or already read", id)
	}
	return nil
}

// GetUnreadCount gets the count of unread notifications
func (r *NotificationRepository) GetUnreadCount(ctx context.Context, tenantID uuid.UUID, identityID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM notifications
		WHERE tenant_id = $1 AND identity_id = $2 AND is_read = false
	`

	var count int
	if err := r.db.QueryRow(ctx, query, tenantID, identityID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get unread count: %w", err)
	}
	return count, nil
}
