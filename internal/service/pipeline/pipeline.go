// internal/service/pipeline/pipeline.go
package pipeline

import (
	"context"
	"strings"

	"salescrm-service/internal/domain/pipeline"
	xerrors "salescrm-service/internal/pkg/errors"
	"salescrm-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PipelineService struct {
	repo   repository.PipelineStageRepository
	cache  StageCache
	logger *zap.Logger
}

// NewPipelineService builds the service. cache may be nil.
func NewPipelineService(repo repository.PipelineStageRepository, cache StageCache, logger *zap.Logger) *PipelineService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PipelineService{repo: repo, cache: cache, logger: logger}
}

// ListStages returns the tenant's active stages in ascending order.
// Cache failures fall through to the store.
func (s *PipelineService) ListStages(ctx context.Context, tenantID uuid.UUID) ([]pipeline.Stage, error) {
	if s.cache != nil {
		stages, ok, err := s.cache.Get(ctx, tenantID)
		if err != nil {
			s.logger.Warn("stage cache read failed", zap.String("tenant_id", tenantID.String()), zap.Error(err))
		}
		if ok {
			return stages, nil
		}
	}

	stages, err := s.repo.ListPipelineStages(ctx, tenantID)
	if err != nil {
		return nil, xerrors.WithCause(xerrors.KindInternal, "failed to list pipeline stages", err)
	}
	pipeline.SortStages(stages)

	if s.cache != nil {
		if err := s.cache.Set(ctx, tenantID, stages); err != nil {
			s.logger.Warn("stage cache write failed", zap.String("tenant_id", tenantID.String()), zap.Error(err))
		}
	}
	return stages, nil
}

// CreateStage adds an active stage to the tenant's pipeline.
func (s *PipelineService) CreateStage(ctx context.Context, tenantID uuid.UUID, req *pipeline.CreateStageRequest) (*pipeline.Stage, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, xerrors.New(xerrors.KindMissingRequiredField, "stage name is required")
	}
	if req.DefaultProbability < 0 || req.DefaultProbability > 100 {
		return nil, xerrors.Newf(xerrors.KindInvalidInput, "default probability %d must be between 0 and 100", req.DefaultProbability)
	}

	st := &pipeline.Stage{
		TenantID:           tenantID,
		Name:               name,
		SortOrder:          req.SortOrder,
		DefaultProbability: req.DefaultProbability,
		IsActive:           true,
	}
	if err := s.repo.CreatePipelineStage(ctx, st); err != nil {
		if xerrors.KindOf(err) == xerrors.KindConflict {
			return nil, err
		}
		return nil, xerrors.WithCause(xerrors.KindInternal, "failed to create pipeline stage", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, tenantID); err != nil {
			s.logger.Warn("stage cache invalidation failed", zap.String("tenant_id", tenantID.String()), zap.Error(err))
		}
	}

	s.logger.Info("pipeline stage created",
		zap.String("tenant_id", tenantID.String()),
		zap.Int64("stage_id", st.ID),
		zap.Int("sort_order", st.SortOrder),
	)
	return st, nil
}
