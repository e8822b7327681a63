package quote

import (
	"context"
	"errors"
	"strings"
	"testing"

	"salescrm-service/internal/domain/quote"
	xerrors "salescrm-service/internal/pkg/errors"

	"github.com/google/uuid"
)

type fakeRepo struct {
	quotes []quote.Quote
	err    error
}

func (r *fakeRepo) Create(ctx context.Context, q *quote.Quote) error {
	if r.err != nil {
		return r.err
	}
	q.ID = int64(len(r.quotes) + 1)
	r.quotes = append(r.quotes, *q)
	return nil
}

func TestCreateDraft(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewQuoteService(repo, nil)

	ref, err := svc.CreateDraft(context.Background(), quote.DraftRequest{
		TenantID:      uuid.New(),
		CustomerID:    3,
		OpportunityID: 9,
		Title:         "Quote for Renewal",
		Currency:      "eur",
		ActingUserID:  4,
	})
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	if ref.ID != 1 || !strings.HasPrefix(ref.QuoteNumber, "Q-") || len(ref.QuoteNumber) != 28 {
		t.Fatalf("unexpected ref %+v", ref)
	}

	q := repo.quotes[0]
	if q.Status != quote.StatusDraft || q.Currency != "EUR" || q.OpportunityID.Int64 != 9 || q.Description.Valid {
		t.Fatalf("unexpected quote %+v", q)
	}
}

func TestCreateDraftNumbersAreUnique(t *testing.T) {
	svc := NewQuoteService(&fakeRepo{}, nil)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		ref, err := svc.CreateDraft(context.Background(), quote.DraftRequest{CustomerID: 1, OpportunityID: 1})
		if err != nil {
			t.Fatalf("create draft: %v", err)
		}
		if seen[ref.QuoteNumber] {
			t.Fatalf("duplicate quote number %s", ref.QuoteNumber)
		}
		seen[ref.QuoteNumber] = true
	}
}

func TestCreateDraftErrors(t *testing.T) {
	svc := NewQuoteService(&fakeRepo{}, nil)
	if _, err := svc.CreateDraft(context.Background(), quote.DraftRequest{OpportunityID: 1}); !errors.Is(err, xerrors.ErrMissingRequiredField) {
		t.Fatalf("expected missing customer, got %v", err)
	}

	failing := NewQuoteService(&fakeRepo{err: errors.New("db down")}, nil)
	if _, err := failing.CreateDraft(context.Background(), quote.DraftRequest{CustomerID: 1, OpportunityID: 1}); xerrors.KindOf(err) != xerrors.KindInternal {
		t.Fatalf("expected internal, got %v", err)
	}
}
