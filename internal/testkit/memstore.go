// Package testkit provides in-memory doubles for the record store and the
// workflow collaborators.
package testkit

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"salescrm-service/internal/domain/campaign"
	"salescrm-service/internal/domain/contact"
	"salescrm-service/internal/domain/customer"
	"salescrm-service/internal/domain/lead"
	"salescrm-service/internal/domain/opportunity"
	"salescrm-service/internal/domain/pipeline"
	xerrors "salescrm-service/internal/pkg/errors"
	"salescrm-service/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var _ repository.Store = (*MemStore)(nil)

type tables struct {
	leads         map[int64]lead.Lead
	customers     map[int64]customer.Customer
	contacts      map[int64]contact.Contact
	opportunities map[int64]opportunity.Opportunity
	stages        map[int64]pipeline.Stage
	campaigns     map[int64]campaign.Campaign
	members       map[int64]campaign.Member
	quotes        map[int64]int
}

func (t tables) clone() tables {
	return tables{
		leads:         maps.Clone(t.leads),
		customers:     maps.Clone(t.customers),
		contacts:      maps.Clone(t.contacts),
		opportunities: maps.Clone(t.opportunities),
		stages:        maps.Clone(t.stages),
		campaigns:     maps.Clone(t.campaigns),
		members:       maps.Clone(t.members),
		quotes:        maps.Clone(t.quotes),
	}
}

// MemStore is a repository.Store kept in maps. InTx snapshots every table
// and restores the snapshot when fn fails.
type MemStore struct {
	mu     sync.Mutex
	t      tables
	nextID int64
	inTx   bool
	fail   map[string]error

	Now func() time.Time
}

func NewMemStore() *MemStore {
	return &MemStore{
		t: tables{
			leads:         map[int64]lead.Lead{},
			customers:     map[int64]customer.Customer{},
			contacts:      map[int64]contact.Contact{},
			opportunities: map[int64]opportunity.Opportunity{},
			stages:        map[int64]pipeline.Stage{},
			campaigns:     map[int64]campaign.Campaign{},
			members:       map[int64]campaign.Member{},
			quotes:        map[int64]int{},
		},
		nextID: 100,
		fail:   map[string]error{},
		Now:    time.Now,
	}
}

// FailOn makes every later call to method return err.
func (s *MemStore) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[method] = err
}

func (s *MemStore) failure(method string) error {
	return s.fail[method]
}

func (s *MemStore) id() int64 {
	s.nextID++
	return s.nextID
}

func notFound(kind string, id int64) error {
	return xerrors.Newf(xerrors.KindNotFound, "%s %d not found", kind, id)
}

func (s *MemStore) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	s.mu.Lock()
	if s.inTx {
		s.mu.Unlock()
		return fn(s)
	}
	if err := s.failure("InTx"); err != nil {
		s.mu.Unlock()
		return err
	}
	snapshot := s.t.clone()
	s.inTx = true
	s.mu.Unlock()

	err := fn(s)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inTx = false
	if err != nil {
		s.t = snapshot
		return err
	}
	if cerr := s.failure("Commit"); cerr != nil {
		s.t = snapshot
		return cerr
	}
	return nil
}

// ========== Seeding ==========

func (s *MemStore) AddLead(l lead.Lead) *lead.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == 0 {
		l.ID = s.id()
	}
	if l.Status == "" {
		l.Status = lead.StatusNew
	}
	s.t.leads[l.ID] = l
	return &l
}

func (s *MemStore) AddCustomer(c customer.Customer) *customer.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.id()
	}
	s.t.customers[c.ID] = c
	return &c
}

func (s *MemStore) AddContact(c contact.Contact) *contact.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.id()
	}
	s.t.contacts[c.ID] = c
	return &c
}

func (s *MemStore) AddOpportunity(o opportunity.Opportunity) *opportunity.Opportunity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == 0 {
		o.ID = s.id()
	}
	if o.Status == "" {
		o.Status = opportunity.StatusOpen
	}
	o.Recalculate()
	s.t.opportunities[o.ID] = o
	return &o
}

func (s *MemStore) AddStage(st pipeline.Stage) *pipeline.Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.ID == 0 {
		st.ID = s.id()
	}
	s.t.stages[st.ID] = st
	return &st
}

func (s *MemStore) AddCampaign(c campaign.Campaign) *campaign.Campaign {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.id()
	}
	s.t.campaigns[c.ID] = c
	return &c
}

func (s *MemStore) AddMember(m campaign.Member) *campaign.Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == 0 {
		m.ID = s.id()
	}
	s.t.members[m.ID] = m
	return &m
}

// AddQuote records a quote for an opportunity.
func (s *MemStore) AddQuote(opportunityID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t.quotes[opportunityID]++
}

// ========== Inspection ==========

func (s *MemStore) Lead(id int64) (lead.Lead, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.t.leads[id]
	return l, ok
}

func (s *MemStore) Opportunity(id int64) (opportunity.Opportunity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.t.opportunities[id]
	return o, ok
}

func (s *MemStore) Customer(id int64) (customer.Customer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.t.customers[id]
	return c, ok
}

func (s *MemStore) Campaign(id int64) (campaign.Campaign, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.t.campaigns[id]
	return c, ok
}

func (s *MemStore) CountCustomers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.t.customers)
}

func (s *MemStore) CountOpportunities() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.t.opportunities)
}

func (s *MemStore) CountMembers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.t.members)
}

func (s *MemStore) QuoteCount(opportunityID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.t.quotes[opportunityID]
}

// ========== repository.Store ==========

func (s *MemStore) FindLead(ctx context.Context, id int64) (*lead.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("FindLead"); err != nil {
		return nil, err
	}
	l, ok := s.t.leads[id]
	if !ok {
		return nil, notFound("lead", id)
	}
	return &l, nil
}

func (s *MemStore) UpdateLead(ctx context.Context, l *lead.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("UpdateLead"); err != nil {
		return err
	}
	if _, ok := s.t.leads[l.ID]; !ok {
		return notFound("lead", l.ID)
	}
	l.UpdatedAt = s.Now()
	s.t.leads[l.ID] = *l
	return nil
}

func (s *MemStore) FindCustomer(ctx context.Context, id int64) (*customer.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("FindCustomer"); err != nil {
		return nil, err
	}
	c, ok := s.t.customers[id]
	if !ok {
		return nil, notFound("customer", id)
	}
	return &c, nil
}

func (s *MemStore) CreateCustomer(ctx context.Context, c *customer.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("CreateCustomer"); err != nil {
		return err
	}
	c.ID = s.id()
	c.CreatedAt = s.Now()
	c.UpdatedAt = c.CreatedAt
	s.t.customers[c.ID] = *c
	return nil
}

func (s *MemStore) UpdateCustomer(ctx context.Context, c *customer.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("UpdateCustomer"); err != nil {
		return err
	}
	if _, ok := s.t.customers[c.ID]; !ok {
		return notFound("customer", c.ID)
	}
	c.UpdatedAt = s.Now()
	s.t.customers[c.ID] = *c
	return nil
}

func (s *MemStore) FindContact(ctx context.Context, id int64) (*contact.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.t.contacts[id]
	if !ok {
		return nil, notFound("contact", id)
	}
	return &c, nil
}

func (s *MemStore) FindOpportunity(ctx context.Context, id int64) (*opportunity.Opportunity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("FindOpportunity"); err != nil {
		return nil, err
	}
	o, ok := s.t.opportunities[id]
	if !ok {
		return nil, notFound("opportunity", id)
	}
	o.Recalculate()
	return &o, nil
}

func (s *MemStore) CreateOpportunity(ctx context.Context, o *opportunity.Opportunity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("CreateOpportunity"); err != nil {
		return err
	}
	o.ID = s.id()
	o.CreatedAt = s.Now()
	o.UpdatedAt = o.CreatedAt
	o.Recalculate()
	s.t.opportunities[o.ID] = *o
	return nil
}

func (s *MemStore) UpdateOpportunity(ctx context.Context, o *opportunity.Opportunity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("UpdateOpportunity"); err != nil {
		return err
	}
	if _, ok := s.t.opportunities[o.ID]; !ok {
		return notFound("opportunity", o.ID)
	}
	o.UpdatedAt = s.Now()
	o.Recalculate()
	s.t.opportunities[o.ID] = *o
	return nil
}

func (s *MemStore) FindPipelineStage(ctx context.Context, id int64) (*pipeline.Stage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.t.stages[id]
	if !ok {
		return nil, notFound("pipeline stage", id)
	}
	return &st, nil
}

func (s *MemStore) ListPipelineStages(ctx context.Context, tenantID uuid.UUID) ([]pipeline.Stage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("ListPipelineStages"); err != nil {
		return nil, err
	}
	stages := []pipeline.Stage{}
	for _, st := range s.t.stages {
		if st.TenantID == tenantID && st.IsActive {
			stages = append(stages, st)
		}
	}
	pipeline.SortStages(stages)
	return stages, nil
}

func (s *MemStore) CreatePipelineStage(ctx context.Context, st *pipeline.Stage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("CreatePipelineStage"); err != nil {
		return err
	}
	st.ID = s.id()
	st.CreatedAt = s.Now()
	st.UpdatedAt = st.CreatedAt
	s.t.stages[st.ID] = *st
	return nil
}

func (s *MemStore) FindCampaign(ctx context.Context, id int64) (*campaign.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.t.campaigns[id]
	if !ok {
		return nil, notFound("campaign", id)
	}
	return &c, nil
}

func (s *MemStore) UpdateCampaignMetrics(ctx context.Context, id int64, m campaign.Metrics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("UpdateCampaignMetrics"); err != nil {
		return err
	}
	c, ok := s.t.campaigns[id]
	if !ok {
		return notFound("campaign", id)
	}
	c.ApplyMetrics(m)
	c.UpdatedAt = s.Now()
	s.t.campaigns[id] = c
	return nil
}

func (s *MemStore) FindCampaignMember(ctx context.Context, id int64) (*campaign.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.t.members[id]
	if !ok {
		return nil, notFound("campaign member", id)
	}
	return &m, nil
}

func (s *MemStore) FindCampaignMemberByRef(ctx context.Context, campaignID int64, ref campaign.Ref) (*campaign.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.t.members {
		if m.CampaignID == campaignID && m.Ref() == ref {
			return &m, nil
		}
	}
	return nil, xerrors.Newf(xerrors.KindNotFound, "%s %d is not a member of campaign %d", ref.Type, ref.EntityID, campaignID)
}

func (s *MemStore) ListCampaignMembers(ctx context.Context, campaignID int64) ([]campaign.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("ListCampaignMembers"); err != nil {
		return nil, err
	}
	members := []campaign.Member{}
	for _, m := range s.t.members {
		if m.CampaignID != campaignID {
			continue
		}
		if m.LeadID.Valid {
			if l, ok := s.t.leads[m.LeadID.Int64]; ok {
				m.LeadEstimatedValue = l.EstimatedValue
			}
		}
		members = append(members, m)
	}
	return members, nil
}

func (s *MemStore) CreateCampaignMember(ctx context.Context, m *campaign.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("CreateCampaignMember"); err != nil {
		return err
	}
	for _, existing := range s.t.members {
		if existing.CampaignID == m.CampaignID && existing.Ref() == m.Ref() {
			return xerrors.ErrDuplicateMembership
		}
	}
	m.ID = s.id()
	m.CreatedAt = s.Now()
	m.UpdatedAt = m.CreatedAt
	s.t.members[m.ID] = *m
	return nil
}

func (s *MemStore) UpdateCampaignMember(ctx context.Context, m *campaign.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.t.members[m.ID]; !ok {
		return notFound("campaign member", m.ID)
	}
	m.UpdatedAt = s.Now()
	stored := *m
	stored.LeadEstimatedValue = decimal.NullDecimal{}
	s.t.members[m.ID] = stored
	return nil
}

func (s *MemStore) DeleteCampaignMember(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("DeleteCampaignMember"); err != nil {
		return err
	}
	if _, ok := s.t.members[id]; !ok {
		return notFound("campaign member", id)
	}
	delete(s.t.members, id)
	return nil
}

func (s *MemStore) QuoteExistsForOpportunity(ctx context.Context, opportunityID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("QuoteExistsForOpportunity"); err != nil {
		return false, fmt.Errorf("quote lookup: %w", err)
	}
	return s.t.quotes[opportunityID] > 0, nil
}
