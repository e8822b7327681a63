// internal/domain/lead/entity.go
package lead

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusNew         Status = "new"
	StatusContacted   Status = "contacted"
	StatusQualified   Status = "qualified"
	StatusUnqualified Status = "unqualified"
	StatusConverted   Status = "converted"
	StatusLost        Status = "lost"
)

type Rating string

const (
	RatingHot  Rating = "hot"
	RatingWarm Rating = "warm"
	RatingCold Rating = "cold"
)

type Lead struct {
	ID       int64     `json:"id" db:"id"`
	TenantID uuid.UUID `json:"tenant_id" db:"tenant_id"`

	// Contact details
	FirstName   string         `json:"first_name" db:"first_name"`
	LastName    string         `json:"last_name" db:"last_name"`
	CompanyName sql.NullString `json:"company_name,omitempty" db:"company_name"`
	JobTitle    sql.NullString `json:"job_title,omitempty" db:"job_title"`
	Email       sql.NullString `json:"email,omitempty" db:"email"`
	Phone       sql.NullString `json:"phone,omitempty" db:"phone"`
	Mobile      sql.NullString `json:"mobile,omitempty" db:"mobile"`
	Industry    sql.NullString `json:"industry,omitempty" db:"industry"`

	// Qualification
	EstimatedValue decimal.NullDecimal `json:"estimated_value" db:"estimated_value"`
	Currency       string              `json:"currency" db:"currency"`
	Status         Status              `json:"status" db:"status"`
	Rating         Rating              `json:"rating,omitempty" db:"rating"`
	LeadScore      sql.NullInt32       `json:"lead_score,omitempty" db:"lead_score"`
	SourceID       sql.NullInt64       `json:"source_id,omitempty" db:"source_id"`
	AssignedUserID sql.NullInt64       `json:"assigned_user_id,omitempty" db:"assigned_user_id"`
	Tags           pq.StringArray      `json:"tags,omitempty" db:"tags"`

	// Conversion back-references
	ConvertedToCustomerID    sql.NullInt64 `json:"converted_to_customer_id,omitempty" db:"converted_to_customer_id"`
	ConvertedToOpportunityID sql.NullInt64 `json:"converted_to_opportunity_id,omitempty" db:"converted_to_opportunity_id"`
	ConvertedByUserID        sql.NullInt64 `json:"converted_by_user_id,omitempty" db:"converted_by_user_id"`
	ConvertedAt              sql.NullTime  `json:"converted_at,omitempty" db:"converted_at"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// FullName joins first and last name, skipping empty parts.
func (l *Lead) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(l.FirstName) + " " + strings.TrimSpace(l.LastName))
}

// DisplayName prefers the company name and falls back to the full name.
func (l *Lead) DisplayName() string {
	if l.CompanyName.Valid && strings.TrimSpace(l.CompanyName.String) != "" {
		return strings.TrimSpace(l.CompanyName.String)
	}
	return l.FullName()
}

// IsConverted reports whether the lead reached its terminal status.
func (l *Lead) IsConverted() bool {
	return l.Status == StatusConverted
}
