// internal/repository/postgres/lead_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"salescrm-service/internal/domain/lead"
	xerrors "salescrm-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
)

const leadColumns = `
	id, tenant_id, first_name, last_name, company_name, job_title, email, phone, mobile, industry,
	estimated_value, currency, status, COALESCE(rating, ''), lead_score, source_id, assigned_user_id, tags,
	converted_to_customer_id, converted_to_opportunity_id, converted_by_user_id, converted_at,
	created_at, updated_at`

func scanLead(row rowScanner) (*lead.Lead, error) {
	var l lead.Lead
	err := row.Scan(
		&l.ID, &l.TenantID, &l.FirstName, &l.LastName, &l.CompanyName, &l.JobTitle, &l.Email, &l.Phone, &l.Mobile, &l.Industry,
		&l.EstimatedValue, &l.Currency, &l.Status, &l.Rating, &l.LeadScore, &l.SourceID, &l.AssignedUserID, &l.Tags,
		&l.ConvertedToCustomerID, &l.ConvertedToOpportunityID, &l.ConvertedByUserID, &l.ConvertedAt,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// FindLead retrieves a lead by ID
func (s *Store) FindLead(ctx context.Context, id int64) (*lead.Lead, error) {
	query := s.forUpdate(`SELECT ` + leadColumns + ` FROM leads WHERE id = $1`)

	l, err := scanLead(s.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.Newf(xerrors.KindNotFound, "lead %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find lead: %w", err)
	}
	return l, nil
}

// UpdateLead persists the mutable workflow fields of a lead
func (s *Store) UpdateLead(ctx context.Context, l *lead.Lead) error {
	query := `
		UPDATE leads SET
			status = $1,
			lead_score = $2,
			converted_to_customer_id = $3,
			converted_to_opportunity_id = $4,
			converted_by_user_id = $5,
			converted_at = $6,
			updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at
	`

	err := s.q.QueryRow(ctx, query,
		l.Status, l.LeadScore,
		l.ConvertedToCustomerID, l.ConvertedToOpportunityID, l.ConvertedByUserID, l.ConvertedAt,
		l.ID,
	).Scan(&l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return xerrors.Newf(xerrors.KindNotFound, "lead %d not found", l.ID)
	}
	return err
}
