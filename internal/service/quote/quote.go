// internal/service/quote/quote.go
package quote

import (
	"context"
	"database/sql"
	"strings"

	"salescrm-service/internal/domain/quote"
	xerrors "salescrm-service/internal/pkg/errors"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

const defaultCurrency = "USD"

type Repository interface {
	Create(ctx context.Context, q *quote.Quote) error
}

type QuoteService struct {
	repo      Repository
	logger    *zap.Logger
	newNumber func() string
}

func NewQuoteService(repo Repository, logger *zap.Logger) *QuoteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuoteService{repo: repo, logger: logger, newNumber: quoteNumber}
}

// quoteNumber returns a sortable unique number such as Q-01J9Z3....
func quoteNumber() string {
	return "Q-" + ulid.Make().String()
}

// CreateDraft opens a draft quote for an opportunity's customer.
func (s *QuoteService) CreateDraft(ctx context.Context, req quote.DraftRequest) (*quote.Ref, error) {
	if req.CustomerID <= 0 {
		return nil, xerrors.New(xerrors.KindMissingRequiredField, "quote requires a customer")
	}
	if req.OpportunityID <= 0 {
		return nil, xerrors.New(xerrors.KindMissingRequiredField, "quote requires an opportunity")
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	q := &quote.Quote{
		TenantID:        req.TenantID,
		QuoteNumber:     s.newNumber(),
		CustomerID:      req.CustomerID,
		OpportunityID:   sql.NullInt64{Int64: req.OpportunityID, Valid: true},
		Title:           req.Title,
		Description:     sql.NullString{String: req.Description, Valid: req.Description != ""},
		Currency:        currency,
		Status:          quote.StatusDraft,
		CreatedByUserID: req.ActingUserID,
	}
	if err := s.repo.Create(ctx, q); err != nil {
		return nil, xerrors.WithCause(xerrors.KindInternal, "failed to create draft quote", err)
	}

	s.logger.Info("draft quote created",
		zap.Int64("quote_id", q.ID),
		zap.String("quote_number", q.QuoteNumber),
		zap.Int64("opportunity_id", req.OpportunityID),
	)
	return &quote.Ref{ID: q.ID, QuoteNumber: q.QuoteNumber}, nil
}
