// internal/repository/postgres/campaign_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"salescrm-service/internal/domain/campaign"
	xerrors "salescrm-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
)

const campaignColumns = `
	id, tenant_id, name, description, type, status, start_date, end_date,
	budget, expected_leads, actual_leads, expected_revenue, actual_revenue, created_at, updated_at`

// FindCampaign retrieves a campaign by ID. Inside a transaction the row lock
// serializes concurrent membership changes of the campaign.
func (s *Store) FindCampaign(ctx context.Context, id int64) (*campaign.Campaign, error) {
	query := s.forUpdate(`SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`)

	var c campaign.Campaign
	err := s.q.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.TenantID, &c.Name, &c.Description, &c.Type, &c.Status, &c.StartDate, &c.EndDate,
		&c.Budget, &c.ExpectedLeads, &c.ActualLeads, &c.ExpectedRevenue, &c.ActualRevenue, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.Newf(xerrors.KindNotFound, "campaign %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find campaign: %w", err)
	}
	return &c, nil
}

// UpdateCampaignMetrics overwrites the derived rollups
func (s *Store) UpdateCampaignMetrics(ctx context.Context, id int64, m campaign.Metrics) error {
	query := `
		UPDATE campaigns
		SET actual_leads = $1, actual_revenue = $2, updated_at = NOW()
		WHERE id = $3
	`

	result, err := s.q.Exec(ctx, query, m.ActualLeads, m.ActualRevenue, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return xerrors.Newf(xerrors.KindNotFound, "campaign %d not found", id)
	}
	return nil
}
