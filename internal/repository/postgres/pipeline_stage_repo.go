// internal/repository/postgres/pipeline_stage_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"salescrm-service/internal/domain/pipeline"
	xerrors "salescrm-service/internal/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const stageColumns = `id, tenant_id, name, sort_order, default_probability, is_active, created_at, updated_at`

func scanStage(row rowScanner) (*pipeline.Stage, error) {
	var st pipeline.Stage
	err := row.Scan(
		&st.ID, &st.TenantID, &st.Name, &st.SortOrder, &st.DefaultProbability, &st.IsActive, &st.CreatedAt, &st.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// FindPipelineStage retrieves a stage by ID
func (s *Store) FindPipelineStage(ctx context.Context, id int64) (*pipeline.Stage, error) {
	query := `SELECT ` + stageColumns + ` FROM pipeline_stages WHERE id = $1`

	st, err := scanStage(s.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.Newf(xerrors.KindNotFound, "pipeline stage %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find pipeline stage: %w", err)
	}
	return st, nil
}

// ListPipelineStages lists a tenant's active stages in pipeline order
func (s *Store) ListPipelineStages(ctx context.Context, tenantID uuid.UUID) ([]pipeline.Stage, error) {
	query := `
		SELECT ` + stageColumns + `
		FROM pipeline_stages
		WHERE tenant_id = $1 AND is_active = true
		ORDER BY sort_order ASC, id ASC
	`

	rows, err := s.q.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pipeline stages: %w", err)
	}
	defer rows.Close()

	stages := []pipeline.Stage{}
	for rows.Next() {
		st, err := scanStage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pipeline stage: %w", err)
		}
		stages = append(stages, *st)
	}
	return stages, rows.Err()
}

// CreatePipelineStage inserts a stage
func (s *Store) CreatePipelineStage(ctx context.Context, st *pipeline.Stage) error {
	query := `
		INSERT INTO pipeline_stages (tenant_id, name, sort_order, default_probability, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := s.q.QueryRow(ctx, query,
		st.TenantID, st.Name, st.SortOrder, st.DefaultProbability, st.IsActive,
	).Scan(&st.ID, &st.CreatedAt, &st.UpdatedAt)
	if isUniqueViolation(err) {
		return xerrors.Newf(xerrors.KindConflict, "pipeline stage %q already exists", st.Name)
	}
	return err
}
