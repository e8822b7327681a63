// internal/repository/postgres/activity_repo.go
package postgres

import (
	"context"
	"fmt"

	"salescrm-service/internal/domain/activity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ActivityRepository struct {
	db *pgxpool.Pool
}

func NewActivityRepository(db *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create appends an activity
func (r *ActivityRepository) Create(ctx context.Context, a *activity.Activity) error {
	query := `
		INSERT INTO activities (tenant_id, entity_type, entity_id, event_type, description, acting_user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	return r.db.QueryRow(ctx, query,
		a.TenantID, a.EntityType, a.EntityID, a.EventType, a.Description, a.ActingUserID,
	).Scan(&a.ID, &a.CreatedAt)
}

// ListForEntity returns an entity's timeline, newest first
func (r *ActivityRepository) ListForEntity(ctx context.Context, tenantID uuid.UUID, entityType activity.EntityType, entityID int64, limit int) ([]activity.Activity, error) {
	query := `
		SELECT id, tenant_id, entity_type, entity_id, event_type, description, acting_user_id, created_at
		FROM activities
		WHERE tenant_id = $1 AND entity_type = $2 AND entity_id = $3
		ORDER BY created_at DESC, id DESC
		LIMIT $4
	`

	rows, err := r.db.Query(ctx, query, tenantID, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	activities := []activity.Activity{}
	for rows.Next() {
		var a activity.Activity
		if err := rows.Scan(
			&a.ID, &a.TenantID, &a.EntityType, &a.EntityID, &a.EventType, &a.Description, &a.ActingUserID, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}
