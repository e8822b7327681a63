// internal/service/opportunity/service.go
package opportunity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"salescrm-service/internal/domain/activity"
	"salescrm-service/internal/domain/customer"
	"salescrm-service/internal/domain/notification"
	"salescrm-service/internal/domain/opportunity"
	"salescrm-service/internal/domain/quote"
	xerrors "salescrm-service/internal/pkg/errors"
	"salescrm-service/internal/repository"
	"salescrm-service/internal/service/effects"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OpportunityService is the opportunity status machine. It also moves
// opportunities between pipeline stages.
type OpportunityService struct {
	store    repository.Store
	activity effects.ActivityLogger
	notifier effects.Notifier
	quotes   effects.QuoteInitiator
	logger   *zap.Logger
	now      func() time.Time
}

func NewOpportunityService(
	store repository.Store,
	activityLogger effects.ActivityLogger,
	notifier effects.Notifier,
	quotes effects.QuoteInitiator,
	logger *zap.Logger,
) *OpportunityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpportunityService{
		store:    store,
		activity: activityLogger,
		notifier: notifier,
		quotes:   quotes,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the time source.
func (s *OpportunityService) WithClock(now func() time.Time) *OpportunityService {
	s.now = now
	return s
}

type TransitionCommand struct {
	TenantID      uuid.UUID
	OpportunityID int64
	Status        opportunity.Status
	Reason        string
	ActingUserID  int64
}

// Result is the outcome of a committed change plus any side-effect warnings.
type Result struct {
	Opportunity *opportunity.View `json:"opportunity"`
	Quote       *quote.Ref        `json:"quote,omitempty"`
	Warnings    []effects.Warning `json:"-"`
}

// GetOpportunity returns the opportunity with its allowed next statuses.
func (s *OpportunityService) GetOpportunity(ctx context.Context, tenantID uuid.UUID, id int64) (*opportunity.View, error) {
	o, err := findOpportunity(ctx, s.store, tenantID, id)
	if err != nil {
		return nil, err
	}
	return opportunity.NewView(o), nil
}

// Transition moves an opportunity to a new status. Validation happens before
// any write; side effects run after commit and surface as warnings.
func (s *OpportunityService) Transition(ctx context.Context, cmd TransitionCommand) (*Result, error) {
	reason := strings.TrimSpace(cmd.Reason)
	if !cmd.Status.IsValid() {
		return nil, xerrors.Newf(xerrors.KindInvalidTransition, "unknown opportunity status %q", cmd.Status)
	}

	var (
		o    *opportunity.Opportunity
		from opportunity.Status
	)
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		var err error
		o, err = findOpportunity(ctx, tx, cmd.TenantID, cmd.OpportunityID)
		if err != nil {
			return err
		}
		from = o.Status
		if !opportunity.CanTransition(from, cmd.Status) {
			return xerrors.Newf(xerrors.KindInvalidTransition,
				"cannot change opportunity status from %s to %s", from, cmd.Status)
		}
		if cmd.Status == opportunity.StatusLost && reason == "" {
			return xerrors.New(xerrors.KindMissingRequiredField, "Lost reason is required when marking opportunity as lost")
		}

		now := s.now().UTC()
		o.Status = cmd.Status
		switch cmd.Status {
		case opportunity.StatusWon:
			o.WonAt = sql.NullTime{Time: now, Valid: true}
			o.ActualCloseDate = sql.NullTime{Time: now, Valid: true}
			if reason != "" {
				o.WinReason = sql.NullString{String: reason, Valid: true}
			}
		case opportunity.StatusLost:
			o.LostAt = sql.NullTime{Time: now, Valid: true}
			o.ActualCloseDate = sql.NullTime{Time: now, Valid: true}
			o.LostReason = sql.NullString{String: reason, Valid: true}
		}
		o.Recalculate()

		if err := tx.UpdateOpportunity(ctx, o); err != nil {
			return fmt.Errorf("failed to update opportunity: %w", err)
		}
		if cmd.Status == opportunity.StatusWon {
			return activateCustomer(ctx, tx, o)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("opportunity status changed",
		zap.Int64("opportunity_id", o.ID),
		zap.String("tenant_id", cmd.TenantID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(o.Status)),
		zap.Int64("acting_user_id", cmd.ActingUserID),
	)

	rec := effects.NewRecorder(s.logger.With(zap.Int64("opportunity_id", o.ID)))
	result := &Result{}

	if o.Status == opportunity.StatusWon {
		result.Quote = s.draftQuote(ctx, rec, o, cmd.ActingUserID)
	}

	description := fmt.Sprintf("Status changed from %s to %s", from, o.Status)
	if reason != "" {
		description += ": " + reason
	}
	rec.Run(effects.ActivityLog, func() error {
		return s.activity.Log(ctx, activity.LogRequest{
			TenantID:     cmd.TenantID,
			EntityType:   activity.EntityOpportunity,
			EntityID:     o.ID,
			EventType:    activity.EventStatusChanged,
			Description:  description,
			ActingUserID: cmd.ActingUserID,
		})
	})

	if o.AssignedUserID.Valid {
		priority := notification.PriorityMedium
		if o.Status == opportunity.StatusWon {
			priority = notification.PriorityHigh
		}
		rec.Run(effects.Notification, func() error {
			return s.notifier.Notify(ctx, notification.CreateNotificationRequest{
				TenantID:   cmd.TenantID,
				IdentityID: o.AssignedUserID.Int64,
				Title:      fmt.Sprintf("Opportunity %s", strings.ToLower(string(o.Status))),
				Message:    fmt.Sprintf("%q is now %s", o.Name, o.Status),
				Category:   notification.CategorySales,
				Priority:   priority,
				Metadata: map[string]interface{}{
					"opportunity_id": o.ID,
					"from":           string(from),
					"to":             string(o.Status),
				},
			})
		})
	}

	result.Opportunity = opportunity.NewView(o)
	result.Warnings = rec.Warnings()
	return result, nil
}

// draftQuote creates a draft quote unless one already exists for o.
func (s *OpportunityService) draftQuote(ctx context.Context, rec *effects.Recorder, o *opportunity.Opportunity, actingUserID int64) *quote.Ref {
	var ref *quote.Ref
	rec.Run(effects.DraftQuote, func() error {
		exists, err := s.store.QuoteExistsForOpportunity(ctx, o.ID)
		if err != nil {
			return fmt.Errorf("failed to check existing quotes: %w", err)
		}
		if exists {
			return nil
		}
		ref, err = s.quotes.CreateDraft(ctx, quote.DraftRequest{
			TenantID:      o.TenantID,
			CustomerID:    o.CustomerID,
			OpportunityID: o.ID,
			Title:         "Quote for " + o.Name,
			Description:   o.Description.String,
			Currency:      o.Currency,
			ActingUserID:  actingUserID,
		})
		return err
	})
	return ref
}

// MoveToStage assigns a pipeline stage and takes its default probability.
func (s *OpportunityService) MoveToStage(ctx context.Context, tenantID uuid.UUID, opportunityID, stageID, actingUserID int64) (*Result, error) {
	var (
		o         *opportunity.Opportunity
		stageName string
	)
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		var err error
		o, err = findOpportunity(ctx, tx, tenantID, opportunityID)
		if err != nil {
			return err
		}
		if o.IsClosed() {
			return xerrors.Newf(xerrors.KindInvalidTransition, "opportunity %d is %s and can no longer change stage", o.ID, o.Status)
		}

		stage, err := tx.FindPipelineStage(ctx, stageID)
		if err != nil {
			return err
		}
		if stage.TenantID != tenantID {
			return xerrors.Newf(xerrors.KindCrossTenantReference, "pipeline stage %d belongs to a different tenant", stageID)
		}
		if !stage.IsActive {
			return xerrors.Newf(xerrors.KindInvalidInput, "pipeline stage %d is inactive", stageID)
		}

		stageName = stage.Name
		o.PipelineStageID = sql.NullInt64{Int64: stage.ID, Valid: true}
		o.Probability = stage.DefaultProbability
		o.Recalculate()

		if err := tx.UpdateOpportunity(ctx, o); err != nil {
			return fmt.Errorf("failed to update opportunity: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("opportunity moved to stage",
		zap.Int64("opportunity_id", o.ID),
		zap.Int64("stage_id", stageID),
		zap.Int("probability", o.Probability),
	)

	rec := effects.NewRecorder(s.logger.With(zap.Int64("opportunity_id", o.ID)))
	rec.Run(effects.ActivityLog, func() error {
		return s.activity.Log(ctx, activity.LogRequest{
			TenantID:     tenantID,
			EntityType:   activity.EntityOpportunity,
			EntityID:     o.ID,
			EventType:    activity.EventStageChanged,
			Description:  fmt.Sprintf("Moved to stage %s (probability %d%%)", stageName, o.Probability),
			ActingUserID: actingUserID,
		})
	})

	return &Result{Opportunity: opportunity.NewView(o), Warnings: rec.Warnings()}, nil
}

func findOpportunity(ctx context.Context, store repository.OpportunityRepository, tenantID uuid.UUID, id int64) (*opportunity.Opportunity, error) {
	o, err := store.FindOpportunity(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.TenantID != tenantID {
		return nil, xerrors.Newf(xerrors.KindNotFound, "opportunity %d not found", id)
	}
	return o, nil
}

func activateCustomer(ctx context.Context, tx repository.Store, o *opportunity.Opportunity) error {
	c, err := tx.FindCustomer(ctx, o.CustomerID)
	if errors.Is(err, xerrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if c.TenantID != o.TenantID || c.Status == customer.StatusActive {
		return nil
	}
	c.Status = customer.StatusActive
	if err := tx.UpdateCustomer(ctx, c); err != nil {
		return fmt.Errorf("failed to activate customer: %w", err)
	}
	return nil
}
