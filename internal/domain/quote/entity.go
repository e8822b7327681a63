// internal/domain/quote/entity.go
package quote

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

type Quote struct {
	ID              int64          `json:"id" db:"id"`
	TenantID        uuid.UUID      `json:"tenant_id" db:"tenant_id"`
	QuoteNumber     string         `json:"quote_number" db:"quote_number"`
	CustomerID      int64          `json:"customer_id" db:"customer_id"`
	OpportunityID   sql.NullInt64  `json:"opportunity_id,omitempty" db:"opportunity_id"`
	Title           string         `json:"title" db:"title"`
	Description     sql.NullString `json:"description,omitempty" db:"description"`
	Currency        string         `json:"currency" db:"currency"`
	Status          Status         `json:"status" db:"status"`
	CreatedByUserID int64          `json:"created_by_user_id" db:"created_by_user_id"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" db:"updated_at"`
}

type DraftRequest struct {
	TenantID      uuid.UUID
	CustomerID    int64
	OpportunityID int64
	Title         string
	Description   string
	Currency      string
	ActingUserID  int64
}

// Ref identifies a created quote.
type Ref struct {
	ID          int64  `json:"id"`
	QuoteNumber string `json:"quote_number"`
}
