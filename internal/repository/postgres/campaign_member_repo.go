// internal/repository/postgres/campaign_member_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"salescrm-service/internal/domain/campaign"
	xerrors "salescrm-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const memberColumns = `
	m.id, m.tenant_id, m.campaign_id, m.lead_id, m.customer_id, m.contact_id,
	m.status, m.responded_at, m.created_at, m.updated_at`

func scanMember(row rowScanner, extra ...any) (*campaign.Member, error) {
	var m campaign.Member
	dest := []any{
		&m.ID, &m.TenantID, &m.CampaignID, &m.LeadID, &m.CustomerID, &m.ContactID,
		&m.Status, &m.RespondedAt, &m.CreatedAt, &m.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &m, nil
}

// refColumn maps a member type to its reference column.
func refColumn(t campaign.MemberType) (string, error) {
	switch t {
	case campaign.MemberTypeLead:
		return "lead_id", nil
	case campaign.MemberTypeCustomer:
		return "customer_id", nil
	case campaign.MemberTypeContact:
		return "contact_id", nil
	}
	return "", xerrors.Newf(xerrors.KindInvalidInput, "unknown member type %q", t)
}

// FindCampaignMember retrieves a member by ID
func (s *Store) FindCampaignMember(ctx context.Context, id int64) (*campaign.Member, error) {
	query := s.forUpdate(`SELECT ` + memberColumns + ` FROM campaign_members m WHERE m.id = $1`)

	m, err := scanMember(s.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.Newf(xerrors.KindNotFound, "campaign member %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find campaign member: %w", err)
	}
	return m, nil
}

// FindCampaignMemberByRef retrieves the member row pointing at an entity
func (s *Store) FindCampaignMemberByRef(ctx context.Context, campaignID int64, ref campaign.Ref) (*campaign.Member, error) {
	column, err := refColumn(ref.Type)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM campaign_members m WHERE m.campaign_id = $1 AND m.%s = $2`, memberColumns, column)

	m, err := scanMember(s.q.QueryRow(ctx, query, campaignID, ref.EntityID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.Newf(xerrors.KindNotFound, "%s %d is not a member of campaign %d", ref.Type, ref.EntityID, campaignID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find campaign member: %w", err)
	}
	return m, nil
}

// ListCampaignMembers lists every member with the estimated value of lead members
func (s *Store) ListCampaignMembers(ctx context.Context, campaignID int64) ([]campaign.Member, error) {
	query := `
		SELECT ` + memberColumns + `, l.estimated_value
		FROM campaign_members m
		LEFT JOIN leads l ON l.id = m.lead_id
		WHERE m.campaign_id = $1
		ORDER BY m.id
	`

	rows, err := s.q.Query(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaign members: %w", err)
	}
	defer rows.Close()

	members := []campaign.Member{}
	for rows.Next() {
		var value decimal.NullDecimal
		m, err := scanMember(rows, &value)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaign member: %w", err)
		}
		m.LeadEstimatedValue = value
		members = append(members, *m)
	}
	return members, rows.Err()
}

// CreateCampaignMember inserts a member. A second row for the same entity
// violates the per-campaign unique index and yields ErrDuplicateMembership.
func (s *Store) CreateCampaignMember(ctx context.Context, m *campaign.Member) error {
	query := `
		INSERT INTO campaign_members (tenant_id, campaign_id, lead_id, customer_id, contact_id, status, responded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := s.q.QueryRow(ctx, query,
		m.TenantID, m.CampaignID, m.LeadID, m.CustomerID, m.ContactID, m.Status, m.RespondedAt,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if isUniqueViolation(err) {
		return xerrors.ErrDuplicateMembership
	}
	return err
}

// UpdateCampaignMember persists a member's status
func (s *Store) UpdateCampaignMember(ctx context.Context, m *campaign.Member) error {
	query := `
		UPDATE campaign_members
		SET status = $1, responded_at = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at
	`

	err := s.q.QueryRow(ctx, query, m.Status, m.RespondedAt, m.ID).Scan(&m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return xerrors.Newf(xerrors.KindNotFound, "campaign member %d not found", m.ID)
	}
	return err
}

// DeleteCampaignMember removes a member
func (s *Store) DeleteCampaignMember(ctx context.Context, id int64) error {
	result, err := s.q.Exec(ctx, `DELETE FROM campaign_members WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete campaign member: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.Newf(xerrors.KindNotFound, "campaign member %d not found", id)
	}
	return nil
}
