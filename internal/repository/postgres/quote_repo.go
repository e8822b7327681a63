// internal/repository/postgres/quote_repo.go
package postgres

import (
	"context"

	"salescrm-service/internal/domain/quote"
	xerrors "salescrm-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

type QuoteRepository struct {
	db *pgxpool.Pool
}

func NewQuoteRepository(db *pgxpool.Pool) *QuoteRepository {
	return &QuoteRepository{db: db}
}

// Create inserts a quote
func (r *QuoteRepository) Create(ctx context.Context, q *quote.Quote) error {
	query := `
		INSERT INTO quotes (
			tenant_id, quote_number, customer_id, opportunity_id, title, description,
			currency, status, created_by_user_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		q.TenantID, q.QuoteNumber, q.CustomerID, q.OpportunityID, q.Title, q.Description,
		q.Currency, q.Status, q.CreatedByUserID,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
	if isUniqueViolation(err) {
		return xerrors.Newf(xerrors.KindConflict, "quote number %s already exists", q.QuoteNumber)
	}
	return err
}
