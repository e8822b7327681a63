// internal/repository/postgres/opportunity_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"salescrm-service/internal/domain/opportunity"
	xerrors "salescrm-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
)

const opportunityColumns = `
	id, tenant_id, customer_id, name, description, amount, currency, probability,
	status, pipeline_stage_id, source_id, assigned_user_id,
	expected_close_date, actual_close_date, won_at, lost_at, win_reason, lost_reason,
	converted_from_lead_id, created_by_user_id, created_at, updated_at`

func scanOpportunity(row rowScanner) (*opportunity.Opportunity, error) {
	var o opportunity.Opportunity
	err := row.Scan(
		&o.ID, &o.TenantID, &o.CustomerID, &o.Name, &o.Description, &o.Amount, &o.Currency, &o.Probability,
		&o.Status, &o.PipelineStageID, &o.SourceID, &o.AssignedUserID,
		&o.ExpectedCloseDate, &o.ActualCloseDate, &o.WonAt, &o.LostAt, &o.WinReason, &o.LostReason,
		&o.ConvertedFromLeadID, &o.CreatedByUserID, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Recalculate()
	return &o, nil
}

// FindOpportunity retrieves an opportunity by ID
func (s *Store) FindOpportunity(ctx context.Context, id int64) (*opportunity.Opportunity, error) {
	query := s.forUpdate(`SELECT ` + opportunityColumns + ` FROM opportunities WHERE id = $1`)

	o, err := scanOpportunity(s.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.Newf(xerrors.KindNotFound, "opportunity %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find opportunity: %w", err)
	}
	return o, nil
}

// CreateOpportunity inserts an opportunity
func (s *Store) CreateOpportunity(ctx context.Context, o *opportunity.Opportunity) error {
	query := `
		INSERT INTO opportunities (
			tenant_id, customer_id, name, description, amount, currency, probability,
			status, pipeline_stage_id, source_id, assigned_user_id, expected_close_date,
			converted_from_lead_id, created_by_user_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`

	err := s.q.QueryRow(ctx, query,
		o.TenantID, o.CustomerID, o.Name, o.Description, o.Amount, o.Currency, o.Probability,
		o.Status, o.PipelineStageID, o.SourceID, o.AssignedUserID, o.ExpectedCloseDate,
		o.ConvertedFromLeadID, o.CreatedByUserID,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return err
	}
	o.Recalculate()
	return nil
}

// UpdateOpportunity persists status, stage and closing fields
func (s *Store) UpdateOpportunity(ctx context.Context, o *opportunity.Opportunity) error {
	query := `
		UPDATE opportunities SET
			status = $1,
			pipeline_stage_id = $2,
			probability = $3,
			actual_close_date = $4,
			won_at = $5,
			lost_at = $6,
			win_reason = $7,
			lost_reason = $8,
			assigned_user_id = $9,
			updated_at = NOW()
		WHERE id = $10
		RETURNING updated_at
	`

	err := s.q.QueryRow(ctx, query,
		o.Status, o.PipelineStageID, o.Probability,
		o.ActualCloseDate, o.WonAt, o.LostAt, o.WinReason, o.LostReason,
		o.AssignedUserID, o.ID,
	).Scan(&o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return xerrors.Newf(xerrors.KindNotFound, "opportunity %d not found", o.ID)
	}
	if err != nil {
		return err
	}
	o.Recalculate()
	return nil
}

// QuoteExistsForOpportunity reports whether any quote references the opportunity
func (s *Store) QuoteExistsForOpportunity(ctx context.Context, opportunityID int64) (bool, error) {
	var exists bool
	err := s.q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM quotes WHERE opportunity_id = $1)`, opportunityID,
	).Scan(&exists)
	return exists, err
}
