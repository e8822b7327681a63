// internal/domain/campaign/member.go
package campaign

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MemberType string

const (
	MemberTypeLead     MemberType = "lead"
	MemberTypeCustomer MemberType = "customer"
	MemberTypeContact  MemberType = "contact"
)

type MemberStatus string

const (
	MemberStatusPlanned      MemberStatus = "planned"
	MemberStatusSent         MemberStatus = "sent"
	MemberStatusOpened       MemberStatus = "opened"
	MemberStatusResponded    MemberStatus = "responded"
	MemberStatusConverted    MemberStatus = "converted"
	MemberStatusUnsubscribed MemberStatus = "unsubscribed"
)

func (s MemberStatus) IsValid() bool {
	switch s {
	case MemberStatusPlanned, MemberStatusSent, MemberStatusOpened,
		MemberStatusResponded, MemberStatusConverted, MemberStatusUnsubscribed:
		return true
	}
	return false
}

// Member links a campaign to exactly one lead, customer or contact.
type Member struct {
	ID          int64         `json:"id" db:"id"`
	TenantID    uuid.UUID     `json:"tenant_id" db:"tenant_id"`
	CampaignID  int64         `json:"campaign_id" db:"campaign_id"`
	LeadID      sql.NullInt64 `json:"lead_id,omitempty" db:"lead_id"`
	CustomerID  sql.NullInt64 `json:"customer_id,omitempty" db:"customer_id"`
	ContactID   sql.NullInt64 `json:"contact_id,omitempty" db:"contact_id"`
	Status      MemberStatus  `json:"status" db:"status"`
	RespondedAt sql.NullTime  `json:"responded_at,omitempty" db:"responded_at"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`

	// Read-side join on the member's lead; not a column of campaign_members.
	LeadEstimatedValue decimal.NullDecimal `json:"lead_estimated_value,omitempty" db:"-"`
}

// Ref identifies the entity a member points at.
type Ref struct {
	Type     MemberType
	EntityID int64
}

// Type derives the member type from whichever reference is set.
func (m *Member) Type() MemberType {
	switch {
	case m.LeadID.Valid:
		return MemberTypeLead
	case m.CustomerID.Valid:
		return MemberTypeCustomer
	case m.ContactID.Valid:
		return MemberTypeContact
	}
	return ""
}

// Ref returns the member's entity reference.
func (m *Member) Ref() Ref {
	switch m.Type() {
	case MemberTypeLead:
		return Ref{Type: MemberTypeLead, EntityID: m.LeadID.Int64}
	case MemberTypeCustomer:
		return Ref{Type: MemberTypeCustomer, EntityID: m.CustomerID.Int64}
	case MemberTypeContact:
		return Ref{Type: MemberTypeContact, EntityID: m.ContactID.Int64}
	}
	return Ref{}
}
