// internal/domain/customer/entity.go
package customer

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Status string

const (
	StatusProspect Status = "prospect"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

type Customer struct {
	ID       int64     `json:"id" db:"id"`
	TenantID uuid.UUID `json:"tenant_id" db:"tenant_id"`

	// Customer details
	Name        string         `json:"name" db:"name"`
	ContactName sql.NullString `json:"contact_name,omitempty" db:"contact_name"`
	Email       sql.NullString `json:"email,omitempty" db:"email"`
	Phone       sql.NullString `json:"phone,omitempty" db:"phone"`
	Mobile      sql.NullString `json:"mobile,omitempty" db:"mobile"`
	Industry    sql.NullString `json:"industry,omitempty" db:"industry"`

	// Status and ownership
	Status         Status        `json:"status" db:"status"`
	AssignedUserID sql.NullInt64 `json:"assigned_user_id,omitempty" db:"assigned_user_id"`
	SourceID       sql.NullInt64 `json:"source_id,omitempty" db:"source_id"`

	// Lineage
	ConvertedFromLeadID sql.NullInt64 `json:"converted_from_lead_id,omitempty" db:"converted_from_lead_id"`

	Tags pq.StringArray `json:"tags,omitempty" db:"tags"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
