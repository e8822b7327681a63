// internal/service/lead/conversion.go
package lead

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"salescrm-service/internal/domain/activity"
	"salescrm-service/internal/domain/customer"
	"salescrm-service/internal/domain/lead"
	"salescrm-service/internal/domain/opportunity"
	"salescrm-service/internal/domain/pipeline"
	xerrors "salescrm-service/internal/pkg/errors"
	"salescrm-service/internal/repository"
	"salescrm-service/internal/service/effects"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	convertProbability      = 50
	quickConvertProbability = 10
)

// LeadService converts leads and persists their scores.
type LeadService struct {
	store    repository.Store
	activity effects.ActivityLogger
	logger   *zap.Logger
	now      func() time.Time
}

func NewLeadService(store repository.Store, activityLogger effects.ActivityLogger, logger *zap.Logger) *LeadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadService{
		store:    store,
		activity: activityLogger,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the time source.
func (s *LeadService) WithClock(now func() time.Time) *LeadService {
	s.now = now
	return s
}

type ConvertCommand struct {
	TenantID     uuid.UUID
	LeadID       int64
	Options      lead.ConvertLeadRequest
	ActingUserID int64
}

type ConversionResult struct {
	Lead        *lead.Lead         `json:"lead"`
	Customer    *customer.Customer `json:"customer,omitempty"`
	Opportunity *opportunity.View  `json:"opportunity,omitempty"`
	Warnings    []effects.Warning  `json:"-"`
}

type ScoreResult struct {
	LeadID   int64             `json:"lead_id"`
	Score    int               `json:"score"`
	Warnings []effects.Warning `json:"-"`
}

// plan is a validated conversion request.
type plan struct {
	createCustomer    bool
	customerID        *int64
	createOpportunity bool
	opportunityID     *int64

	// linkedCustomerFallback creates a customer when the lead has none linked
	// and no customer option was given.
	linkedCustomerFallback bool
	probability            int
	stageRequired          bool
}

// Convert turns a lead into a customer and/or opportunity in one transaction.
func (s *LeadService) Convert(ctx context.Context, cmd ConvertCommand) (*ConversionResult, error) {
	opts := cmd.Options
	if opts.CreateCustomer && opts.CustomerID != nil {
		return nil, xerrors.New(xerrors.KindInvalidInput, "choose either create_customer or customer_id, not both")
	}
	if opts.CreateOpportunity && opts.OpportunityID != nil {
		return nil, xerrors.New(xerrors.KindInvalidInput, "choose either create_opportunity or opportunity_id, not both")
	}
	if !opts.CreateCustomer && opts.CustomerID == nil && !opts.CreateOpportunity && opts.OpportunityID == nil {
		return nil, xerrors.New(xerrors.KindInvalidInput, "conversion requires a customer or opportunity target")
	}

	return s.convert(ctx, cmd, plan{
		createCustomer:    opts.CreateCustomer,
		customerID:        opts.CustomerID,
		createOpportunity: opts.CreateOpportunity,
		opportunityID:     opts.OpportunityID,
		probability:       convertProbability,
		stageRequired:     true,
	})
}

// ConvertToCustomer converts a lead into a new customer only.
func (s *LeadService) ConvertToCustomer(ctx context.Context, tenantID uuid.UUID, leadID, actingUserID int64) (*ConversionResult, error) {
	return s.convert(ctx, ConvertCommand{TenantID: tenantID, LeadID: leadID, ActingUserID: actingUserID}, plan{
		createCustomer: true,
	})
}

// ConvertToOpportunity converts a lead into a new opportunity, creating a
// customer first when the lead has no linked one. The first pipeline stage
// is assigned when the tenant has any.
func (s *LeadService) ConvertToOpportunity(ctx context.Context, tenantID uuid.UUID, leadID, actingUserID int64) (*ConversionResult, error) {
	return s.convert(ctx, ConvertCommand{TenantID: tenantID, LeadID: leadID, ActingUserID: actingUserID}, plan{
		createOpportunity:      true,
		linkedCustomerFallback: true,
		probability:            quickConvertProbability,
	})
}

func (s *LeadService) convert(ctx context.Context, cmd ConvertCommand, p plan) (*ConversionResult, error) {
	var (
		l       *lead.Lead
		c       *customer.Customer
		o       *opportunity.Opportunity
		newCust bool
		newOpp  bool
	)

	err := s.store.InTx(ctx, func(tx repository.Store) error {
		var err error
		l, err = findLead(ctx, tx, cmd.TenantID, cmd.LeadID)
		if err != nil {
			return err
		}
		if l.IsConverted() {
			return xerrors.Newf(xerrors.KindAlreadyConverted, "lead %d has already been converted", l.ID)
		}

		// Resolve every reference before the first write.
		if p.customerID != nil {
			if c, err = findReferencedCustomer(ctx, tx, cmd.TenantID, *p.customerID); err != nil {
				return err
			}
		}
		if p.opportunityID != nil {
			if o, err = findReferencedOpportunity(ctx, tx, cmd.TenantID, *p.opportunityID); err != nil {
				return err
			}
		}

		createCustomer := p.createCustomer
		if p.createOpportunity && c == nil && !createCustomer {
			switch {
			case l.ConvertedToCustomerID.Valid:
				if c, err = findReferencedCustomer(ctx, tx, cmd.TenantID, l.ConvertedToCustomerID.Int64); err != nil {
					return err
				}
			case p.linkedCustomerFallback:
				createCustomer = true
			default:
				return xerrors.New(xerrors.KindMissingRequiredField, "an opportunity requires a customer: set create_customer or customer_id")
			}
		}

		var stage *pipeline.Stage
		if p.createOpportunity {
			stages, err := tx.ListPipelineStages(ctx, cmd.TenantID)
			if err != nil {
				return fmt.Errorf("failed to list pipeline stages: %w", err)
			}
			first, ok := pipeline.First(stages)
			switch {
			case ok:
				stage = &first
			case p.stageRequired:
				return xerrors.New(xerrors.KindNoPipelineStage, "tenant has no pipeline stages configured")
			}
		}

		if createCustomer {
			c = customerFromLead(l)
			if err := tx.CreateCustomer(ctx, c); err != nil {
				return fmt.Errorf("failed to create customer: %w", err)
			}
			newCust = true
		}

		if p.createOpportunity {
			o = opportunityFromLead(l, c.ID, stage, p.probability, cmd.ActingUserID)
			if err := tx.CreateOpportunity(ctx, o); err != nil {
				return fmt.Errorf("failed to create opportunity: %w", err)
			}
			newOpp = true
		}

		l.Status = lead.StatusConverted
		l.ConvertedAt = sql.NullTime{Time: s.now().UTC(), Valid: true}
		l.ConvertedByUserID = sql.NullInt64{Int64: cmd.ActingUserID, Valid: true}
		if c != nil {
			l.ConvertedToCustomerID = sql.NullInt64{Int64: c.ID, Valid: true}
		}
		if o != nil {
			l.ConvertedToOpportunityID = sql.NullInt64{Int64: o.ID, Valid: true}
		}
		if err := tx.UpdateLead(ctx, l); err != nil {
			return fmt.Errorf("failed to update lead: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("lead converted",
		zap.Int64("lead_id", l.ID),
		zap.String("tenant_id", cmd.TenantID.String()),
		zap.Int64("customer_id", l.ConvertedToCustomerID.Int64),
		zap.Int64("opportunity_id", l.ConvertedToOpportunityID.Int64),
		zap.Int64("acting_user_id", cmd.ActingUserID),
	)

	rec := effects.NewRecorder(s.logger.With(zap.Int64("lead_id", l.ID)))
	if newCust {
		s.logCreated(ctx, rec, cmd, activity.EntityCustomer, c.ID,
			fmt.Sprintf("Customer %s created from lead %s", c.Name, l.FullName()))
	}
	if newOpp {
		s.logCreated(ctx, rec, cmd, activity.EntityOpportunity, o.ID,
			fmt.Sprintf("Opportunity %s created from lead %s", o.Name, l.FullName()))
	}

	result := &ConversionResult{Lead: l, Customer: c, Warnings: rec.Warnings()}
	if o != nil {
		result.Opportunity = opportunity.NewView(o)
	}
	return result, nil
}

func (s *LeadService) logCreated(ctx context.Context, rec *effects.Recorder, cmd ConvertCommand, entity activity.EntityType, id int64, description string) {
	rec.Run(effects.ActivityLog, func() error {
		return s.activity.Log(ctx, activity.LogRequest{
			TenantID:     cmd.TenantID,
			EntityType:   entity,
			EntityID:     id,
			EventType:    activity.EventCreatedFromLead,
			Description:  description,
			ActingUserID: cmd.ActingUserID,
		})
	})
}

// ComputeLeadScore scores a lead and stores the result on it.
func (s *LeadService) ComputeLeadScore(ctx context.Context, tenantID uuid.UUID, leadID, actingUserID int64) (*ScoreResult, error) {
	var (
		score    int
		previous sql.NullInt32
	)
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		l, err := findLead(ctx, tx, tenantID, leadID)
		if err != nil {
			return err
		}
		score = Score(l)
		previous = l.LeadScore
		if previous.Valid && int(previous.Int32) == score {
			return nil
		}
		l.LeadScore = sql.NullInt32{Int32: int32(score), Valid: true}
		if err := tx.UpdateLead(ctx, l); err != nil {
			return fmt.Errorf("failed to store lead score: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rec := effects.NewRecorder(s.logger.With(zap.Int64("lead_id", leadID)))
	if !previous.Valid || int(previous.Int32) != score {
		s.logger.Info("lead scored", zap.Int64("lead_id", leadID), zap.Int("score", score))
		rec.Run(effects.ActivityLog, func() error {
			return s.activity.Log(ctx, activity.LogRequest{
				TenantID:     tenantID,
				EntityType:   activity.EntityLead,
				EntityID:     leadID,
				EventType:    activity.EventLeadScored,
				Description:  fmt.Sprintf("Lead score set to %d", score),
				ActingUserID: actingUserID,
			})
		})
	}

	return &ScoreResult{LeadID: leadID, Score: score, Warnings: rec.Warnings()}, nil
}

func customerFromLead(l *lead.Lead) *customer.Customer {
	c := &customer.Customer{
		TenantID:            l.TenantID,
		Name:                l.DisplayName(),
		Email:               l.Email,
		Phone:               l.Phone,
		Mobile:              l.Mobile,
		Industry:            l.Industry,
		Status:              customer.StatusProspect,
		AssignedUserID:      l.AssignedUserID,
		SourceID:            l.SourceID,
		ConvertedFromLeadID: sql.NullInt64{Int64: l.ID, Valid: true},
		Tags:                l.Tags,
	}
	if name := l.FullName(); name != "" {
		c.ContactName = sql.NullString{String: name, Valid: true}
	}
	return c
}

func opportunityFromLead(l *lead.Lead, customerID int64, stage *pipeline.Stage, probability int, actingUserID int64) *opportunity.Opportunity {
	amount := decimal.Zero
	if l.EstimatedValue.Valid {
		amount = l.EstimatedValue.Decimal
	}
	assignee := l.AssignedUserID
	if !assignee.Valid {
		assignee = sql.NullInt64{Int64: actingUserID, Valid: true}
	}

	o := &opportunity.Opportunity{
		TenantID:            l.TenantID,
		CustomerID:          customerID,
		Name:                l.DisplayName(),
		Amount:              amount,
		Currency:            l.Currency,
		Probability:         probability,
		Status:              opportunity.StatusOpen,
		SourceID:            l.SourceID,
		AssignedUserID:      assignee,
		ConvertedFromLeadID: sql.NullInt64{Int64: l.ID, Valid: true},
		CreatedByUserID:     sql.NullInt64{Int64: actingUserID, Valid: true},
	}
	if stage != nil {
		o.PipelineStageID = sql.NullInt64{Int64: stage.ID, Valid: true}
	}
	o.Recalculate()
	return o
}

func findLead(ctx context.Context, store repository.LeadRepository, tenantID uuid.UUID, id int64) (*lead.Lead, error) {
	l, err := store.FindLead(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.TenantID != tenantID {
		return nil, xerrors.Newf(xerrors.KindNotFound, "lead %d not found", id)
	}
	return l, nil
}

func findReferencedCustomer(ctx context.Context, store repository.CustomerRepository, tenantID uuid.UUID, id int64) (*customer.Customer, error) {
	c, err := store.FindCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.TenantID != tenantID {
		return nil, xerrors.Newf(xerrors.KindCrossTenantReference, "customer %d belongs to a different tenant", id)
	}
	return c, nil
}

func findReferencedOpportunity(ctx context.Context, store repository.OpportunityRepository, tenantID uuid.UUID, id int64) (*opportunity.Opportunity, error) {
	o, err := store.FindOpportunity(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.TenantID != tenantID {
		return nil, xerrors.Newf(xerrors.KindCrossTenantReference, "opportunity %d belongs to a different tenant", id)
	}
	return o, nil
}
