// Package repository declares the record store consumed by the sales workflow services.
//
// Finders are unscoped by tenant and return the row together with its TenantID;
// callers decide whether a mismatch means "not found" (primary entity) or
// "cross-tenant reference" (referenced entity). Missing rows yield an error
// matching xerrors.ErrNotFound.
package repository

import (
	"context"

	"salescrm-service/internal/domain/campaign"
	"salescrm-service/internal/domain/contact"
	"salescrm-service/internal/domain/customer"
	"salescrm-service/internal/domain/lead"
	"salescrm-service/internal/domain/opportunity"
	"salescrm-service/internal/domain/pipeline"

	"github.com/google/uuid"
)

type LeadRepository interface {
	FindLead(ctx context.Context, id int64) (*lead.Lead, error)
	UpdateLead(ctx context.Context, l *lead.Lead) error
}

type CustomerRepository interface {
	FindCustomer(ctx context.Context, id int64) (*customer.Customer, error)
	CreateCustomer(ctx context.Context, c *customer.Customer) error
	UpdateCustomer(ctx context.Context, c *customer.Customer) error
}

type ContactRepository interface {
	FindContact(ctx context.Context, id int64) (*contact.Contact, error)
}

type OpportunityRepository interface {
	FindOpportunity(ctx context.Context, id int64) (*opportunity.Opportunity, error)
	CreateOpportunity(ctx context.Context, o *opportunity.Opportunity) error
	UpdateOpportunity(ctx context.Context, o *opportunity.Opportunity) error
}

type PipelineStageRepository interface {
	FindPipelineStage(ctx context.Context, id int64) (*pipeline.Stage, error)
	// ListPipelineStages returns the tenant's stages ordered by ascending SortOrder.
	ListPipelineStages(ctx context.Context, tenantID uuid.UUID) ([]pipeline.Stage, error)
	CreatePipelineStage(ctx context.Context, s *pipeline.Stage) error
}

type CampaignRepository interface {
	FindCampaign(ctx context.Context, id int64) (*campaign.Campaign, error)
	UpdateCampaignMetrics(ctx context.Context, id int64, m campaign.Metrics) error
}

type CampaignMemberRepository interface {
	FindCampaignMember(ctx context.Context, id int64) (*campaign.Member, error)
	// FindCampaignMemberByRef returns ErrNotFound when the entity is not a member of the campaign.
	FindCampaignMemberByRef(ctx context.Context, campaignID int64, ref campaign.Ref) (*campaign.Member, error)
	// ListCampaignMembers returns every member with LeadEstimatedValue joined from the lead.
	ListCampaignMembers(ctx context.Context, campaignID int64) ([]campaign.Member, error)
	CreateCampaignMember(ctx context.Context, m *campaign.Member) error
	UpdateCampaignMember(ctx context.Context, m *campaign.Member) error
	DeleteCampaignMember(ctx context.Context, id int64) error
}

type QuoteLookup interface {
	QuoteExistsForOpportunity(ctx context.Context, opportunityID int64) (bool, error)
}

// Store is the transactional record store.
type Store interface {
	LeadRepository
	CustomerRepository
	ContactRepository
	OpportunityRepository
	PipelineStageRepository
	CampaignRepository
	CampaignMemberRepository
	QuoteLookup

	// InTx runs fn against a transactional Store. Rows read through tx are
	// locked until commit. fn's error rolls every write back.
	InTx(ctx context.Context, fn func(tx Store) error) error
}
