package campaign

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"salescrm-service/internal/domain/campaign"
	"salescrm-service/internal/domain/contact"
	"salescrm-service/internal/domain/customer"
	"salescrm-service/internal/domain/lead"
	xerrors "salescrm-service/internal/pkg/errors"
	"salescrm-service/internal/testkit"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type fixture struct {
	tenant   uuid.UUID
	store    *testkit.MemStore
	svc      *CampaignService
	campaign *campaign.Campaign
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testkit.NewMemStore()
	f := &fixture{
		tenant: uuid.New(),
		store:  store,
		svc: NewCampaignService(store, nil).
			WithClock(func() time.Time { return time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC) }),
	}
	f.campaign = store.AddCampaign(campaign.Campaign{
		TenantID:      f.tenant,
		Name:          "Q1 webinar",
		Status:        campaign.CampaignStatusActive,
		ExpectedLeads: 50,
	})
	return f
}

func (f *fixture) addLead(value int64) *lead.Lead {
	l := lead.Lead{TenantID: f.tenant, FirstName: "Lead"}
	if value > 0 {
		l.EstimatedValue = decimal.NullDecimal{Decimal: decimal.NewFromInt(value), Valid: true}
	}
	return f.store.AddLead(l)
}

func ptr(v int64) *int64 { return &v }

func TestAddMemberRecomputes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l1 := f.addLead(1000)
	l2 := f.addLead(2500)
	c := f.store.AddCustomer(customer.Customer{TenantID: f.tenant, Name: "Acme"})

	if _, err := f.svc.AddMember(ctx, f.tenant, f.campaign.ID, &campaign.AddMemberRequest{LeadID: ptr(l1.ID), Status: campaign.MemberStatusConverted}); err != nil {
		t.Fatalf("add lead 1: %v", err)
	}
	if _, err := f.svc.AddMember(ctx, f.tenant, f.campaign.ID, &campaign.AddMemberRequest{CustomerID: ptr(c.ID)}); err != nil {
		t.Fatalf("add customer: %v", err)
	}
	view, err := f.svc.AddMember(ctx, f.tenant, f.campaign.ID, &campaign.AddMemberRequest{LeadID: ptr(l2.ID)})
	if err != nil {
		t.Fatalf("add lead 2: %v", err)
	}

	if view.Member.Status != campaign.MemberStatusSent {
		t.Fatalf("expected default status sent, got %s", view.Member.Status)
	}
	if view.Metrics.ActualLeads != 2 || !view.Metrics.ActualRevenue.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("unexpected metrics %+v", view.Metrics)
	}
	stored, _ := f.store.Campaign(f.campaign.ID)
	if stored.ActualLeads != 2 || !stored.ActualRevenue.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("metrics not persisted: %d %s", stored.ActualLeads, stored.ActualRevenue)
	}
}

func TestAddDuplicateMemberLeavesMetrics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.addLead(700)

	if _, err := f.svc.AddMember(ctx, f.tenant, f.campaign.ID, &campaign.AddMemberRequest{LeadID: ptr(l.ID), Status: campaign.MemberStatusConverted}); err != nil {
		t.Fatalf("add: %v", err)
	}
	before, _ := f.store.Campaign(f.campaign.ID)

	_, err := f.svc.AddMember(ctx, f.tenant, f.campaign.ID, &campaign.AddMemberRequest{LeadID: ptr(l.ID)})
	if !errors.Is(err, xerrors.ErrDuplicateMembership) {
		t.Fatalf("expected duplicate membership, got %v", err)
	}

	after, _ := f.store.Campaign(f.campaign.ID)
	if after.ActualLeads != before.ActualLeads || !after.ActualRevenue.Equal(before.ActualRevenue) {
		t.Fatalf("metrics changed: before %+v after %+v", before, after)
	}
	if f.store.CountMembers() != 1 {
		t.Fatalf("expected one member, got %d", f.store.CountMembers())
	}
}

func TestAddMemberValidation(t *testing.T) {
	f := newFixture(t)
	l := f.addLead(0)
	foreignLead := f.store.AddLead(lead.Lead{TenantID: uuid.New()})
	foreignContact := f.store.AddContact(contact.Contact{TenantID: uuid.New(), FirstName: "X"})
	otherCampaign := f.store.AddCampaign(campaign.Campaign{TenantID: uuid.New(), Name: "Theirs"})

	tests := []struct {
		name       string
		campaignID int64
		req        campaign.AddMemberRequest
		want       error
	}{
		{"no reference", f.campaign.ID, campaign.AddMemberRequest{}, xerrors.ErrMissingRequiredField},
		{"two references", f.campaign.ID, campaign.AddMemberRequest{LeadID: ptr(l.ID), ContactID: ptr(1)}, xerrors.ErrInvalidInput},
		{"bad status", f.campaign.ID, campaign.AddMemberRequest{LeadID: ptr(l.ID), Status: "bounced"}, xerrors.ErrInvalidInput},
		{"missing campaign", 424242, campaign.AddMemberRequest{LeadID: ptr(l.ID)}, xerrors.ErrNotFound},
		{"other tenant campaign", otherCampaign.ID, campaign.AddMemberRequest{LeadID: ptr(l.ID)}, xerrors.ErrNotFound},
		{"missing lead", f.campaign.ID, campaign.AddMemberRequest{LeadID: ptr(424242)}, xerrors.ErrNotFound},
		{"foreign lead", f.campaign.ID, campaign.AddMemberRequest{LeadID: ptr(foreignLead.ID)}, xerrors.ErrCrossTenantReference},
		{"foreign contact", f.campaign.ID, campaign.AddMemberRequest{ContactID: ptr(foreignContact.ID)}, xerrors.ErrCrossTenantReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.AddMember(context.Background(), f.tenant, tt.campaignID, &tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
	if f.store.CountMembers() != 0 {
		t.Fatal("rejected requests created members")
	}
}

func TestRemoveMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.addLead(300)
	view, err := f.svc.AddMember(ctx, f.tenant, f.campaign.ID, &campaign.AddMemberRequest{LeadID: ptr(l.ID), Status: campaign.MemberStatusConverted})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if ok, err := f.svc.RemoveMember(ctx, uuid.New(), view.Member.ID); ok || err != nil {
		t.Fatalf("other tenant removed member: ok=%v err=%v", ok, err)
	}

	ok, err := f.svc.RemoveMember(ctx, f.tenant, view.Member.ID)
	if err != nil || !ok {
		t.Fatalf("remove: ok=%v err=%v", ok, err)
	}
	stored, _ := f.store.Campaign(f.campaign.ID)
	if stored.ActualLeads != 0 || !stored.ActualRevenue.IsZero() {
		t.Fatalf("metrics not recomputed: %+v", stored)
	}

	if ok, err := f.svc.RemoveMember(ctx, f.tenant, view.Member.ID); ok || err != nil {
		t.Fatalf("second remove: ok=%v err=%v", ok, err)
	}
}

func TestRemoveMemberStoreFailureKeepsMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.addLead(300)
	view, err := f.svc.AddMember(ctx, f.tenant, f.campaign.ID, &campaign.AddMemberRequest{LeadID: ptr(l.ID)})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	f.store.FailOn("UpdateCampaignMetrics", errors.New("disk full"))

	if ok, err := f.svc.RemoveMember(ctx, f.tenant, view.Member.ID); ok || err == nil {
		t.Fatalf("expected failure, got ok=%v err=%v", ok, err)
	}
	if f.store.CountMembers() != 1 {
		t.Fatal("member deleted despite failed recompute")
	}
}

func TestUpdateMemberStatusRecomputes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.addLead(4200)
	view, err := f.svc.AddMember(ctx, f.tenant, f.campaign.ID, &campaign.AddMemberRequest{LeadID: ptr(l.ID), Status: campaign.MemberStatusResponded})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !view.Member.RespondedAt.Valid {
		t.Fatal("expected responded_at to be stamped")
	}
	if !view.Metrics.ActualRevenue.IsZero() {
		t.Fatalf("responded member must not count revenue: %s", view.Metrics.ActualRevenue)
	}

	updated, err := f.svc.UpdateMemberStatus(ctx, f.tenant, view.Member.ID, campaign.MemberStatusConverted)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.Metrics.ActualRevenue.Equal(decimal.NewFromInt(4200)) {
		t.Fatalf("expected revenue 4200, got %s", updated.Metrics.ActualRevenue)
	}

	if _, err := f.svc.UpdateMemberStatus(ctx, f.tenant, view.Member.ID, "bounced"); !errors.Is(err, xerrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestRecomputeMatchesReconstruction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(3))
	statuses := []campaign.MemberStatus{
		campaign.MemberStatusSent, campaign.MemberStatusResponded,
		campaign.MemberStatusConverted, campaign.MemberStatusUnsubscribed,
	}

	wantLeads, wantRevenue := 0, decimal.Zero
	for i := 0; i < 40; i++ {
		status := statuses[rng.Intn(len(statuses))]
		switch rng.Intn(3) {
		case 0:
			c := f.store.AddCustomer(customer.Customer{TenantID: f.tenant, Name: "C"})
			if _, err := f.svc.AddMember(ctx, f.tenant, f.campaign.ID, &campaign.AddMemberRequest{CustomerID: ptr(c.ID), Status: status}); err != nil {
				t.Fatalf("add customer: %v", err)
			}
		default:
			v := rng.Int63n(5000)
			l := f.addLead(v)
			if _, err := f.svc.AddMember(ctx, f.tenant, f.campaign.ID, &campaign.AddMemberRequest{LeadID: ptr(l.ID), Status: status}); err != nil {
				t.Fatalf("add lead: %v", err)
			}
			wantLeads++
			if status == campaign.MemberStatusConverted && v > 0 {
				wantRevenue = wantRevenue.Add(decimal.NewFromInt(v))
			}
		}
	}

	got, err := f.svc.RecomputeMetrics(ctx, f.tenant, f.campaign.ID)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if got.ActualLeads != wantLeads || !got.ActualRevenue.Equal(wantRevenue) {
		t.Fatalf("got %d/%s, want %d/%s", got.ActualLeads, got.ActualRevenue, wantLeads, wantRevenue)
	}

	again, err := f.svc.RecomputeMetrics(ctx, f.tenant, f.campaign.ID)
	if err != nil || again.ActualLeads != got.ActualLeads || !again.ActualRevenue.Equal(got.ActualRevenue) {
		t.Fatalf("recompute not idempotent: %+v vs %+v (%v)", again, got, err)
	}
}
