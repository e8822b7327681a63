package opportunity

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"salescrm-service/internal/domain/activity"
	"salescrm-service/internal/domain/customer"
	"salescrm-service/internal/domain/notification"
	"salescrm-service/internal/domain/opportunity"
	"salescrm-service/internal/domain/pipeline"
	xerrors "salescrm-service/internal/pkg/errors"
	"salescrm-service/internal/service/effects"
	"salescrm-service/internal/testkit"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type fixture struct {
	tenant   uuid.UUID
	store    *testkit.MemStore
	activity *testkit.ActivityLog
	notifier *testkit.Notifier
	quotes   *testkit.Quotes
	svc      *OpportunityService
	customer *customer.Customer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testkit.NewMemStore()
	f := &fixture{
		tenant:   uuid.New(),
		store:    store,
		activity: &testkit.ActivityLog{},
		notifier: &testkit.Notifier{},
		quotes:   &testkit.Quotes{Store: store},
	}
	f.svc = NewOpportunityService(store, f.activity, f.notifier, f.quotes, nil).
		WithClock(func() time.Time { return fixedNow })
	f.customer = store.AddCustomer(customer.Customer{
		TenantID: f.tenant,
		Name:     "Acme Ltd",
		Status:   customer.StatusProspect,
	})
	return f
}

func (f *fixture) addOpportunity(status opportunity.Status) *opportunity.Opportunity {
	return f.store.AddOpportunity(opportunity.Opportunity{
		TenantID:       f.tenant,
		CustomerID:     f.customer.ID,
		Name:           "Fleet renewal",
		Description:    sql.NullString{String: "Three year renewal", Valid: true},
		Amount:         decimal.NewFromInt(12000),
		Currency:       "KES",
		Probability:    40,
		Status:         status,
		AssignedUserID: sql.NullInt64{Int64: 7, Valid: true},
	})
}

func TestTransitionTableIsExact(t *testing.T) {
	allowed := map[opportunity.Status]map[opportunity.Status]bool{
		opportunity.StatusOpen:      {opportunity.StatusWon: true, opportunity.StatusLost: true, opportunity.StatusAbandoned: true},
		opportunity.StatusWon:       {},
		opportunity.StatusLost:      {},
		opportunity.StatusAbandoned: {opportunity.StatusOpen: true},
	}

	for _, reason := range []string{"budget cut", ""} {
		for from, targets := range allowed {
			for _, to := range opportunity.Statuses() {
				f := newFixture(t)
				o := f.addOpportunity(from)

				res, err := f.svc.Transition(context.Background(), TransitionCommand{
					TenantID:      f.tenant,
					OpportunityID: o.ID,
					Status:        to,
					Reason:        reason,
					ActingUserID:  3,
				})

				stored, _ := f.store.Opportunity(o.ID)
				if targets[to] {
					if to == opportunity.StatusLost && reason == "" {
						if !errors.Is(err, xerrors.ErrMissingRequiredField) {
							t.Fatalf("%s -> %s without reason: expected missing field, got %v", from, to, err)
						}
						continue
					}
					if err != nil {
						t.Fatalf("%s -> %s (reason %q): unexpected error %v", from, to, reason, err)
					}
					if res.Opportunity.Status != to || stored.Status != to {
						t.Fatalf("%s -> %s: status not applied", from, to)
					}
					continue
				}
				if !errors.Is(err, xerrors.ErrInvalidTransition) {
					t.Fatalf("%s -> %s (reason %q): expected invalid transition, got %v", from, to, reason, err)
				}
				if stored.Status != from {
					t.Fatalf("%s -> %s: stored status changed to %s", from, to, stored.Status)
				}
				if len(f.activity.Entries) != 0 || len(f.notifier.Sent) != 0 {
					t.Fatalf("%s -> %s: side effects fired on rejected transition", from, to)
				}
			}
		}
	}
}

func TestClosedToLostWithoutReasonIsInvalidTransition(t *testing.T) {
	for _, from := range []opportunity.Status{opportunity.StatusWon, opportunity.StatusLost} {
		f := newFixture(t)
		o := f.addOpportunity(from)

		_, err := f.svc.Transition(context.Background(), TransitionCommand{
			TenantID: f.tenant, OpportunityID: o.ID, Status: opportunity.StatusLost, ActingUserID: 3,
		})
		if !errors.Is(err, xerrors.ErrInvalidTransition) {
			t.Fatalf("%s -> lost: expected invalid transition, got %v", from, err)
		}
	}
}

func TestTransitionUnknownStatus(t *testing.T) {
	f := newFixture(t)
	o := f.addOpportunity(opportunity.StatusOpen)

	_, err := f.svc.Transition(context.Background(), TransitionCommand{
		TenantID: f.tenant, OpportunityID: o.ID, Status: "pending",
	})
	if !errors.Is(err, xerrors.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestLostRequiresReason(t *testing.T) {
	for _, reason := range []string{"", "   "} {
		f := newFixture(t)
		o := f.addOpportunity(opportunity.StatusOpen)

		_, err := f.svc.Transition(context.Background(), TransitionCommand{
			TenantID: f.tenant, OpportunityID: o.ID, Status: opportunity.StatusLost, Reason: reason,
		})
		if !errors.Is(err, xerrors.ErrMissingRequiredField) {
			t.Fatalf("reason %q: expected missing required field, got %v", reason, err)
		}
		stored, _ := f.store.Opportunity(o.ID)
		if stored.Status != opportunity.StatusOpen || stored.LostAt.Valid {
			t.Fatalf("reason %q: opportunity mutated: %+v", reason, stored)
		}
		if len(f.activity.Entries) != 0 {
			t.Fatalf("reason %q: activity logged", reason)
		}
	}
}

func TestLostSetsDatesAndReason(t *testing.T) {
	f := newFixture(t)
	o := f.addOpportunity(opportunity.StatusOpen)

	res, err := f.svc.Transition(context.Background(), TransitionCommand{
		TenantID: f.tenant, OpportunityID: o.ID, Status: opportunity.StatusLost, Reason: "went with competitor", ActingUserID: 3,
	})
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if !res.Opportunity.LostAt.Valid || !res.Opportunity.LostAt.Time.Equal(fixedNow) {
		t.Fatalf("expected LostAt %v, got %+v", fixedNow, res.Opportunity.LostAt)
	}
	if !res.Opportunity.ActualCloseDate.Valid {
		t.Fatal("expected actual close date")
	}
	if res.Opportunity.LostReason.String != "went with competitor" {
		t.Fatalf("unexpected lost reason %q", res.Opportunity.LostReason.String)
	}
	if res.Quote != nil || f.store.QuoteCount(o.ID) != 0 {
		t.Fatal("lost opportunity must not draft a quote")
	}
	if len(f.notifier.Sent) != 1 || f.notifier.Sent[0].Priority != notification.PriorityMedium {
		t.Fatalf("expected one medium notification, got %+v", f.notifier.Sent)
	}
}

func TestWonDraftsQuoteAndActivatesCustomer(t *testing.T) {
	f := newFixture(t)
	o := f.addOpportunity(opportunity.StatusOpen)

	res, err := f.svc.Transition(context.Background(), TransitionCommand{
		TenantID: f.tenant, OpportunityID: o.ID, Status: opportunity.StatusWon, Reason: "best price", ActingUserID: 3,
	})
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings %v", res.Warnings)
	}
	if !res.Opportunity.WonAt.Time.Equal(fixedNow) || !res.Opportunity.ActualCloseDate.Time.Equal(fixedNow) {
		t.Fatalf("won dates not set: %+v", res.Opportunity.Opportunity)
	}
	if res.Opportunity.WinReason.String != "best price" {
		t.Fatalf("unexpected win reason %q", res.Opportunity.WinReason.String)
	}

	if res.Quote == nil || f.store.QuoteCount(o.ID) != 1 {
		t.Fatalf("expected exactly one draft quote, got %d", f.store.QuoteCount(o.ID))
	}
	draft := f.quotes.Drafts[0]
	if draft.CustomerID != f.customer.ID || draft.Currency != "KES" || draft.Description != "Three year renewal" {
		t.Fatalf("draft not populated from opportunity: %+v", draft)
	}

	c, _ := f.store.Customer(f.customer.ID)
	if c.Status != customer.StatusActive {
		t.Fatalf("expected customer active, got %s", c.Status)
	}

	if got := f.activity.Events(activity.EntityOpportunity, o.ID); len(got) != 1 || got[0] != activity.EventStatusChanged {
		t.Fatalf("expected one status event, got %v", got)
	}
	if len(f.notifier.Sent) != 1 {
		t.Fatalf("expected one notification, got %d", len(f.notifier.Sent))
	}
	n := f.notifier.Sent[0]
	if n.IdentityID != 7 || n.Priority != notification.PriorityHigh {
		t.Fatalf("unexpected notification %+v", n)
	}
}

func TestWonSkipsQuoteWhenOneExists(t *testing.T) {
	f := newFixture(t)
	o := f.addOpportunity(opportunity.StatusOpen)
	f.store.AddQuote(o.ID)

	res, err := f.svc.Transition(context.Background(), TransitionCommand{
		TenantID: f.tenant, OpportunityID: o.ID, Status: opportunity.StatusWon,
	})
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if res.Quote != nil || len(f.quotes.Drafts) != 0 || f.store.QuoteCount(o.ID) != 1 {
		t.Fatalf("expected no new quote, drafts=%d", len(f.quotes.Drafts))
	}

	_, err = f.svc.Transition(context.Background(), TransitionCommand{
		TenantID: f.tenant, OpportunityID: o.ID, Status: opportunity.StatusWon,
	})
	if !errors.Is(err, xerrors.ErrInvalidTransition) {
		t.Fatalf("expected second win to be rejected, got %v", err)
	}
	if f.store.QuoteCount(o.ID) != 1 {
		t.Fatal("second win created a quote")
	}
}

func TestSideEffectFailuresBecomeWarnings(t *testing.T) {
	f := newFixture(t)
	f.activity.Err = errors.New("timeline unavailable")
	f.notifier.Err = errors.New("push gateway down")
	f.quotes.Err = errors.New("numbering exhausted")
	o := f.addOpportunity(opportunity.StatusOpen)

	res, err := f.svc.Transition(context.Background(), TransitionCommand{
		TenantID: f.tenant, OpportunityID: o.ID, Status: opportunity.StatusWon,
	})
	if err != nil {
		t.Fatalf("side-effect failure must not fail the transition: %v", err)
	}

	stored, _ := f.store.Opportunity(o.ID)
	if stored.Status != opportunity.StatusWon {
		t.Fatalf("primary write rolled back: %s", stored.Status)
	}

	want := map[effects.Name]bool{effects.DraftQuote: true, effects.ActivityLog: true, effects.Notification: true}
	if len(res.Warnings) != len(want) {
		t.Fatalf("expected %d warnings, got %v", len(want), res.Warnings)
	}
	for _, w := range res.Warnings {
		if !want[w.Effect] {
			t.Fatalf("unexpected warning %v", w)
		}
	}
}

func TestPrimaryWriteFailureFiresNoSideEffects(t *testing.T) {
	f := newFixture(t)
	o := f.addOpportunity(opportunity.StatusOpen)
	f.store.FailOn("UpdateCustomer", errors.New("deadlock detected"))

	_, err := f.svc.Transition(context.Background(), TransitionCommand{
		TenantID: f.tenant, OpportunityID: o.ID, Status: opportunity.StatusWon,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if xerrors.KindOf(err) != xerrors.KindInternal {
		t.Fatalf("expected internal kind, got %s", xerrors.KindOf(err))
	}

	stored, _ := f.store.Opportunity(o.ID)
	if stored.Status != opportunity.StatusOpen || stored.WonAt.Valid {
		t.Fatalf("status write not rolled back: %+v", stored)
	}
	if len(f.activity.Entries) != 0 || len(f.notifier.Sent) != 0 || len(f.quotes.Drafts) != 0 {
		t.Fatal("side effects fired after failed write")
	}
}

func TestReopenAbandoned(t *testing.T) {
	f := newFixture(t)
	o := f.addOpportunity(opportunity.StatusAbandoned)

	res, err := f.svc.Transition(context.Background(), TransitionCommand{
		TenantID: f.tenant, OpportunityID: o.ID, Status: opportunity.StatusOpen,
	})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if res.Opportunity.ActualCloseDate.Valid {
		t.Fatal("reopened opportunity must not carry a close date")
	}
	if len(res.Opportunity.AllowedTransitions) != 3 {
		t.Fatalf("expected open transitions, got %v", res.Opportunity.AllowedTransitions)
	}
}

func TestTransitionWithoutAssignedUserSkipsNotification(t *testing.T) {
	f := newFixture(t)
	o := f.addOpportunity(opportunity.StatusOpen)
	stored, _ := f.store.Opportunity(o.ID)
	stored.AssignedUserID = sql.NullInt64{}
	f.store.AddOpportunity(stored)

	res, err := f.svc.Transition(context.Background(), TransitionCommand{
		TenantID: f.tenant, OpportunityID: o.ID, Status: opportunity.StatusAbandoned,
	})
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if len(f.notifier.Sent) != 0 || len(res.Warnings) != 0 {
		t.Fatalf("expected no notification, got %v", f.notifier.Sent)
	}
}

func TestOtherTenantOpportunityIsNotFound(t *testing.T) {
	f := newFixture(t)
	o := f.addOpportunity(opportunity.StatusOpen)

	_, err := f.svc.Transition(context.Background(), TransitionCommand{
		TenantID: uuid.New(), OpportunityID: o.ID, Status: opportunity.StatusWon,
	})
	if !errors.Is(err, xerrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := f.svc.GetOpportunity(context.Background(), uuid.New(), o.ID); !errors.Is(err, xerrors.ErrNotFound) {
		t.Fatalf("expected not found on read, got %v", err)
	}
}

func TestMoveToStageOverwritesProbability(t *testing.T) {
	f := newFixture(t)
	o := f.addOpportunity(opportunity.StatusOpen)
	stage := f.store.AddStage(pipeline.Stage{TenantID: f.tenant, Name: "Proposal", SortOrder: 3, DefaultProbability: 25, IsActive: true})

	res, err := f.svc.MoveToStage(context.Background(), f.tenant, o.ID, stage.ID, 3)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if res.Opportunity.Probability != 25 {
		t.Fatalf("expected probability 25, got %d", res.Opportunity.Probability)
	}
	if !res.Opportunity.WeightedAmount.Equal(decimal.NewFromInt(3000)) {
		t.Fatalf("expected weighted amount 3000, got %s", res.Opportunity.WeightedAmount)
	}
	stored, _ := f.store.Opportunity(o.ID)
	if stored.PipelineStageID.Int64 != stage.ID || stored.Probability != 25 {
		t.Fatalf("stage not persisted: %+v", stored)
	}
	if got := f.activity.Events(activity.EntityOpportunity, o.ID); len(got) != 1 || got[0] != activity.EventStageChanged {
		t.Fatalf("expected stage event, got %v", got)
	}
}

func TestMoveToStageRejectsForeignStage(t *testing.T) {
	f := newFixture(t)
	o := f.addOpportunity(opportunity.StatusOpen)
	stage := f.store.AddStage(pipeline.Stage{TenantID: uuid.New(), Name: "Foreign", DefaultProbability: 90, IsActive: true})

	_, err := f.svc.MoveToStage(context.Background(), f.tenant, o.ID, stage.ID, 3)
	if !errors.Is(err, xerrors.ErrCrossTenantReference) {
		t.Fatalf("expected cross tenant reference, got %v", err)
	}
	stored, _ := f.store.Opportunity(o.ID)
	if stored.Probability != 40 || stored.PipelineStageID.Valid {
		t.Fatalf("opportunity mutated: %+v", stored)
	}
}

func TestMoveToStageRejectsClosedOpportunity(t *testing.T) {
	f := newFixture(t)
	o := f.addOpportunity(opportunity.StatusWon)
	stage := f.store.AddStage(pipeline.Stage{TenantID: f.tenant, Name: "Proposal", DefaultProbability: 25, IsActive: true})

	_, err := f.svc.MoveToStage(context.Background(), f.tenant, o.ID, stage.ID, 3)
	if !errors.Is(err, xerrors.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestMoveToStageRejectsInactiveStage(t *testing.T) {
	f := newFixture(t)
	o := f.addOpportunity(opportunity.StatusOpen)
	stage := f.store.AddStage(pipeline.Stage{TenantID: f.tenant, Name: "Retired", DefaultProbability: 80})

	_, err := f.svc.MoveToStage(context.Background(), f.tenant, o.ID, stage.ID, 3)
	if !errors.Is(err, xerrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	stored, _ := f.store.Opportunity(o.ID)
	if stored.Probability != 40 || stored.PipelineStageID.Valid {
		t.Fatalf("opportunity mutated: %+v", stored)
	}
	if len(f.activity.Entries) != 0 {
		t.Fatal("activity logged for rejected stage move")
	}
}
