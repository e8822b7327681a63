// internal/service/campaign/campaign.go
package campaign

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"salescrm-service/internal/domain/campaign"
	xerrors "salescrm-service/internal/pkg/errors"
	"salescrm-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CampaignService manages campaign membership. Every membership change
// recomputes the campaign rollups in the same transaction.
type CampaignService struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewCampaignService(store repository.Store, logger *zap.Logger) *CampaignService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CampaignService{store: store, logger: logger, now: time.Now}
}

// WithClock replaces the time source.
func (s *CampaignService) WithClock(now func() time.Time) *CampaignService {
	s.now = now
	return s
}

// GetCampaign returns a campaign of the tenant.
func (s *CampaignService) GetCampaign(ctx context.Context, tenantID uuid.UUID, id int64) (*campaign.Campaign, error) {
	return findCampaign(ctx, s.store, tenantID, id)
}

// ========== Membership ==========

// AddMember enrolls a lead, customer or contact into a campaign.
func (s *CampaignService) AddMember(ctx context.Context, tenantID uuid.UUID, campaignID int64, req *campaign.AddMemberRequest) (*campaign.MemberView, error) {
	ref, err := memberRef(req)
	if err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = campaign.MemberStatusSent
	}
	if !status.IsValid() {
		return nil, xerrors.Newf(xerrors.KindInvalidInput, "unknown member status %q", status)
	}

	view := &campaign.MemberView{}
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		if _, err := findCampaign(ctx, tx, tenantID, campaignID); err != nil {
			return err
		}
		if err := checkReference(ctx, tx, tenantID, ref); err != nil {
			return err
		}

		existing, err := tx.FindCampaignMemberByRef(ctx, campaignID, ref)
		switch {
		case err == nil:
			return xerrors.Newf(xerrors.KindDuplicateMembership,
				"%s %d is already a member of campaign %d (member %d)", ref.Type, ref.EntityID, campaignID, existing.ID)
		case !errors.Is(err, xerrors.ErrNotFound):
			return fmt.Errorf("failed to check membership: %w", err)
		}

		m := &campaign.Member{
			TenantID:   tenantID,
			CampaignID: campaignID,
			Status:     status,
		}
		setRef(m, ref)
		s.stampResponse(m)
		if err := tx.CreateCampaignMember(ctx, m); err != nil {
			if errors.Is(err, xerrors.ErrDuplicateMembership) {
				return err
			}
			return fmt.Errorf("failed to create campaign member: %w", err)
		}

		metrics, err := recompute(ctx, tx, campaignID)
		if err != nil {
			return err
		}
		view.Member, view.Metrics = *m, metrics
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("campaign member added",
		zap.Int64("campaign_id", campaignID),
		zap.Int64("member_id", view.Member.ID),
		zap.String("member_type", string(ref.Type)),
		zap.Int("actual_leads", view.Metrics.ActualLeads),
	)
	return view, nil
}

// RemoveMember deletes a membership. It reports false when no such member
// exists in the tenant.
func (s *CampaignService) RemoveMember(ctx context.Context, tenantID uuid.UUID, memberID int64) (bool, error) {
	var campaignID int64
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		m, err := findMember(ctx, tx, tenantID, memberID)
		if err != nil {
			return err
		}
		campaignID = m.CampaignID
		if _, err := tx.FindCampaign(ctx, campaignID); err != nil {
			return err
		}
		if err := tx.DeleteCampaignMember(ctx, memberID); err != nil {
			return fmt.Errorf("failed to delete campaign member: %w", err)
		}
		_, err = recompute(ctx, tx, campaignID)
		return err
	})
	if errors.Is(err, xerrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.logger.Info("campaign member removed",
		zap.Int64("campaign_id", campaignID),
		zap.Int64("member_id", memberID),
	)
	return true, nil
}

// UpdateMemberStatus changes a member's status, e.g. responded to converted.
func (s *CampaignService) UpdateMemberStatus(ctx context.Context, tenantID uuid.UUID, memberID int64, status campaign.MemberStatus) (*campaign.MemberView, error) {
	if !status.IsValid() {
		return nil, xerrors.Newf(xerrors.KindInvalidInput, "unknown member status %q", status)
	}

	view := &campaign.MemberView{}
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		m, err := findMember(ctx, tx, tenantID, memberID)
		if err != nil {
			return err
		}
		if _, err := tx.FindCampaign(ctx, m.CampaignID); err != nil {
			return err
		}

		m.Status = status
		s.stampResponse(m)
		if err := tx.UpdateCampaignMember(ctx, m); err != nil {
			return fmt.Errorf("failed to update campaign member: %w", err)
		}

		metrics, err := recompute(ctx, tx, m.CampaignID)
		if err != nil {
			return err
		}
		view.Member, view.Metrics = *m, metrics
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("campaign member status changed",
		zap.Int64("member_id", memberID),
		zap.String("status", string(status)),
	)
	return view, nil
}

// RecomputeMetrics rebuilds a campaign's rollups from its membership.
func (s *CampaignService) RecomputeMetrics(ctx context.Context, tenantID uuid.UUID, campaignID int64) (*campaign.Metrics, error) {
	var metrics campaign.Metrics
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if _, err := findCampaign(ctx, tx, tenantID, campaignID); err != nil {
			return err
		}
		var err error
		metrics, err = recompute(ctx, tx, campaignID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &metrics, nil
}

// stampResponse records the first time a member responded.
func (s *CampaignService) stampResponse(m *campaign.Member) {
	if m.RespondedAt.Valid {
		return
	}
	if m.Status == campaign.MemberStatusResponded || m.Status == campaign.MemberStatusConverted {
		m.RespondedAt = sql.NullTime{Time: s.now().UTC(), Valid: true}
	}
}

// ========== Helpers ==========

func recompute(ctx context.Context, tx repository.Store, campaignID int64) (campaign.Metrics, error) {
	members, err := tx.ListCampaignMembers(ctx, campaignID)
	if err != nil {
		return campaign.Metrics{}, fmt.Errorf("failed to list campaign members: %w", err)
	}
	metrics := campaign.ComputeMetrics(members)
	if err := tx.UpdateCampaignMetrics(ctx, campaignID, metrics); err != nil {
		return campaign.Metrics{}, fmt.Errorf("failed to update campaign metrics: %w", err)
	}
	return metrics, nil
}

func memberRef(req *campaign.AddMemberRequest) (campaign.Ref, error) {
	var refs []campaign.Ref
	if req.LeadID != nil {
		refs = append(refs, campaign.Ref{Type: campaign.MemberTypeLead, EntityID: *req.LeadID})
	}
	if req.CustomerID != nil {
		refs = append(refs, campaign.Ref{Type: campaign.MemberTypeCustomer, EntityID: *req.CustomerID})
	}
	if req.ContactID != nil {
		refs = append(refs, campaign.Ref{Type: campaign.MemberTypeContact, EntityID: *req.ContactID})
	}

	switch len(refs) {
	case 0:
		return campaign.Ref{}, xerrors.New(xerrors.KindMissingRequiredField, "one of lead_id, customer_id or contact_id is required")
	case 1:
		return refs[0], nil
	default:
		return campaign.Ref{}, xerrors.New(xerrors.KindInvalidInput, "a campaign member references exactly one lead, customer or contact")
	}
}

func setRef(m *campaign.Member, ref campaign.Ref) {
	id := sql.NullInt64{Int64: ref.EntityID, Valid: true}
	switch ref.Type {
	case campaign.MemberTypeLead:
		m.LeadID = id
	case campaign.MemberTypeCustomer:
		m.CustomerID = id
	case campaign.MemberTypeContact:
		m.ContactID = id
	}
}

// checkReference resolves the member entity and rejects other tenants' records.
func checkReference(ctx context.Context, tx repository.Store, tenantID uuid.UUID, ref campaign.Ref) error {
	var owner uuid.UUID
	switch ref.Type {
	case campaign.MemberTypeLead:
		l, err := tx.FindLead(ctx, ref.EntityID)
		if err != nil {
			return err
		}
		owner = l.TenantID
	case campaign.MemberTypeCustomer:
		c, err := tx.FindCustomer(ctx, ref.EntityID)
		if err != nil {
			return err
		}
		owner = c.TenantID
	case campaign.MemberTypeContact:
		c, err := tx.FindContact(ctx, ref.EntityID)
		if err != nil {
			return err
		}
		owner = c.TenantID
	}
	if owner != tenantID {
		return xerrors.Newf(xerrors.KindCrossTenantReference, "%s %d belongs to a different tenant", ref.Type, ref.EntityID)
	}
	return nil
}

func findCampaign(ctx context.Context, store repository.CampaignRepository, tenantID uuid.UUID, id int64) (*campaign.Campaign, error) {
	c, err := store.FindCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.TenantID != tenantID {
		return nil, xerrors.Newf(xerrors.KindNotFound, "campaign %d not found", id)
	}
	return c, nil
}

func findMember(ctx context.Context, store repository.CampaignMemberRepository, tenantID uuid.UUID, id int64) (*campaign.Member, error) {
	m, err := store.FindCampaignMember(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.TenantID != tenantID {
		return nil, xerrors.Newf(xerrors.KindNotFound, "campaign member %d not found", id)
	}
	return m, nil
}
