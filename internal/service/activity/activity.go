// internal/service/activity/activity.go
package activity

import (
	"context"
	"strings"
	"time"

	"salescrm-service/internal/domain/activity"
	xerrors "salescrm-service/internal/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Repository persists timeline events.
type Repository interface {
	Create(ctx context.Context, a *activity.Activity) error
	ListForEntity(ctx context.Context, tenantID uuid.UUID, entityType activity.EntityType, entityID int64, limit int) ([]activity.Activity, error)
}

type ActivityService struct {
	repo   Repository
	logger *zap.Logger
}

func NewActivityService(repo Repository, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{repo: repo, logger: logger}
}

// Log appends an event to an entity's timeline.
func (s *ActivityService) Log(ctx context.Context, req activity.LogRequest) error {
	if req.EntityID <= 0 || req.EntityType == "" || req.EventType == "" {
		return xerrors.New(xerrors.KindInvalidInput, "activity requires entity and event type")
	}

	a := &activity.Activity{
		TenantID:     req.TenantID,
		EntityType:   req.EntityType,
		EntityID:     req.EntityID,
		EventType:    req.EventType,
		Description:  strings.TrimSpace(req.Description),
		ActingUserID: req.ActingUserID,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return xerrors.WithCause(xerrors.KindInternal, "failed to log activity", err)
	}

	s.logger.Debug("activity logged",
		zap.String("entity_type", string(a.EntityType)),
		zap.Int64("entity_id", a.EntityID),
		zap.String("event_type", string(a.EventType)),
	)
	return nil
}

// List returns an entity's timeline, newest first.
func (s *ActivityService) List(ctx context.Context, tenantID uuid.UUID, filters *activity.ListFilters) ([]activity.Activity, error) {
	if filters == nil || filters.EntityType == "" || filters.EntityID <= 0 {
		return nil, xerrors.New(xerrors.KindMissingRequiredField, "entity_type and entity_id are required")
	}
	switch filters.EntityType {
	case activity.EntityLead, activity.EntityCustomer, activity.EntityOpportunity, activity.EntityCampaign:
	default:
		return nil, xerrors.Newf(xerrors.KindInvalidInput, "unknown entity type %q", filters.EntityType)
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	activities, err := s.repo.ListForEntity(ctx, tenantID, filters.EntityType, filters.EntityID, limit)
	if err != nil {
		return nil, xerrors.WithCause(xerrors.KindInternal, "failed to list activities", err)
	}
	return activities, nil
}
