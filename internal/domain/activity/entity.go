// internal/domain/activity/entity.go
package activity

import (
	"time"

	"github.com/google/uuid"
)

type EntityType string

const (
	EntityLead        EntityType = "lead"
	EntityCustomer    EntityType = "customer"
	EntityOpportunity EntityType = "opportunity"
	EntityCampaign    EntityType = "campaign"
)

type EventType string

const (
	EventStatusChanged   EventType = "status_changed"
	EventStageChanged    EventType = "stage_changed"
	EventCreatedFromLead EventType = "created_from_lead"
	EventLeadScored      EventType = "lead_scored"
)

// Activity is an immutable timeline event.
type Activity struct {
	ID           int64      `json:"id" db:"id"`
	TenantID     uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	EntityType   EntityType `json:"entity_type" db:"entity_type"`
	EntityID     int64      `json:"entity_id" db:"entity_id"`
	EventType    EventType  `json:"event_type" db:"event_type"`
	Description  string     `json:"description" db:"description"`
	ActingUserID int64      `json:"acting_user_id" db:"acting_user_id"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

type LogRequest struct {
	TenantID     uuid.UUID
	EntityType   EntityType
	EntityID     int64
	EventType    EventType
	Description  string
	ActingUserID int64
}

type ListFilters struct {
	EntityType EntityType `form:"entity_type" binding:"required"`
	EntityID   int64      `form:"entity_id" binding:"required"`
	Limit      int        `form:"limit"`
}
