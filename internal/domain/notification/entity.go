// internal/domain/notification/entity.go
package notification

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Category string

const (
	CategorySales    Category = "sales"
	CategoryCampaign Category = "campaign"
	CategorySystem   Category = "system"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Notification struct {
	ID         int64                  `json:"id" db:"id"`
	TenantID   uuid.UUID              `json:"tenant_id" db:"tenant_id"`
	IdentityID int64                  `json:"identity_id" db:"identity_id"`
	Title      string                 `json:"title" db:"title"`
	Message    string                 `json:"message" db:"message"`
	Category   Category               `json:"category" db:"category"`
	Priority   Priority               `json:"priority" db:"priority"`
	Metadata   map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	IsRead     bool                   `json:"is_read" db:"is_read"`
	CreatedAt  time.Time              `json:"created_at" db:"created_at"`
	ReadAt     sql.NullTime           `json:"read_at,omitempty" db:"read_at"`
}

// DTOs

type CreateNotificationRequest struct {
	TenantID   uuid.UUID
	IdentityID int64
	Title      string
	Message    string
	Category   Category
	Priority   Priority
	Metadata   map[string]interface{}
}

type NotificationListFilters struct {
	IsRead   *bool `form:"is_read"`
	Page     int   `form:"page"`
	PageSize int   `form:"page_size" binding:"omitempty,max=100"`
}

type NotificationListResponse struct {
	Notifications []Notification `json:"notifications"`
	Unread        int            `json:"unread"`
	Total         int64          `json:"total"`
	Page          int            `json:"page"`
	PageSize      int            `json:"page_size"`
	TotalPages    int            `json:"total_pages"`
}
