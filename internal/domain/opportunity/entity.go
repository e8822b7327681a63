// internal/domain/opportunity/entity.go
package opportunity

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusOpen      Status = "open"
	StatusWon       Status = "won"
	StatusLost      Status = "lost"
	StatusAbandoned Status = "abandoned"
)

var hundred = decimal.NewFromInt(100)

type Opportunity struct {
	ID         int64     `json:"id" db:"id"`
	TenantID   uuid.UUID `json:"tenant_id" db:"tenant_id"`
	CustomerID int64     `json:"customer_id" db:"customer_id"`

	Name        string         `json:"name" db:"name"`
	Description sql.NullString `json:"description,omitempty" db:"description"`

	// Value
	Amount         decimal.Decimal `json:"amount" db:"amount"`
	Currency       string          `json:"currency" db:"currency"`
	Probability    int             `json:"probability" db:"probability"`
	WeightedAmount decimal.Decimal `json:"weighted_amount" db:"-"`

	// Pipeline
	Status          Status        `json:"status" db:"status"`
	PipelineStageID sql.NullInt64 `json:"pipeline_stage_id,omitempty" db:"pipeline_stage_id"`
	SourceID        sql.NullInt64 `json:"source_id,omitempty" db:"source_id"`
	AssignedUserID  sql.NullInt64 `json:"assigned_user_id,omitempty" db:"assigned_user_id"`

	// Closing
	ExpectedCloseDate sql.NullTime   `json:"expected_close_date,omitempty" db:"expected_close_date"`
	ActualCloseDate   sql.NullTime   `json:"actual_close_date,omitempty" db:"actual_close_date"`
	WonAt             sql.NullTime   `json:"won_at,omitempty" db:"won_at"`
	LostAt            sql.NullTime   `json:"lost_at,omitempty" db:"lost_at"`
	WinReason         sql.NullString `json:"win_reason,omitempty" db:"win_reason"`
	LostReason        sql.NullString `json:"lost_reason,omitempty" db:"lost_reason"`

	// Lineage
	ConvertedFromLeadID sql.NullInt64 `json:"converted_from_lead_id,omitempty" db:"converted_from_lead_id"`
	CreatedByUserID     sql.NullInt64 `json:"created_by_user_id,omitempty" db:"created_by_user_id"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// WeightedAmountOf returns amount × probability / 100.
func WeightedAmountOf(amount decimal.Decimal, probability int) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(int64(probability))).Div(hundred)
}

// Recalculate refreshes the derived WeightedAmount. Call after every mutation of Amount or Probability.
func (o *Opportunity) Recalculate() {
	o.WeightedAmount = WeightedAmountOf(o.Amount, o.Probability)
}

// IsClosed reports whether the opportunity is in a terminal status.
func (o *Opportunity) IsClosed() bool {
	return o.Status == StatusWon || o.Status == StatusLost
}
