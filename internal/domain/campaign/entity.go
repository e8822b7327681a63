// internal/domain/campaign/entity.go
package campaign

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CampaignStatus string

const (
	CampaignStatusPlanned   CampaignStatus = "planned"
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusCompleted CampaignStatus = "completed"
	CampaignStatusCancelled CampaignStatus = "cancelled"
)

type Campaign struct {
	ID          int64          `json:"id" db:"id"`
	TenantID    uuid.UUID      `json:"tenant_id" db:"tenant_id"`
	Name        string         `json:"name" db:"name"`
	Description sql.NullString `json:"description,omitempty" db:"description"`
	Type        sql.NullString `json:"type,omitempty" db:"type"`
	Status      CampaignStatus `json:"status" db:"status"`

	// Validity
	StartDate sql.NullTime `json:"start_date,omitempty" db:"start_date"`
	EndDate   sql.NullTime `json:"end_date,omitempty" db:"end_date"`

	// Targets and derived rollups. Actual* are only written by metrics recomputation.
	Budget          decimal.NullDecimal `json:"budget" db:"budget"`
	ExpectedLeads   int                 `json:"expected_leads" db:"expected_leads"`
	ActualLeads     int                 `json:"actual_leads" db:"actual_leads"`
	ExpectedRevenue decimal.Decimal     `json:"expected_revenue" db:"expected_revenue"`
	ActualRevenue   decimal.Decimal     `json:"actual_revenue" db:"actual_revenue"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ApplyMetrics overwrites the derived rollups.
func (c *Campaign) ApplyMetrics(m Metrics) {
	c.ActualLeads = m.ActualLeads
	c.ActualRevenue = m.ActualRevenue
}
