// internal/domain/pipeline/entity.go
package pipeline

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Stage is an ordered step of a tenant's sales pipeline.
type Stage struct {
	ID                 int64     `json:"id" db:"id"`
	TenantID           uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Name               string    `json:"name" db:"name"`
	SortOrder          int       `json:"sort_order" db:"sort_order"`
	DefaultProbability int       `json:"default_probability" db:"default_probability"`
	IsActive           bool      `json:"is_active" db:"is_active"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// SortStages orders stages by SortOrder, then ID for a stable tie-break.
func SortStages(stages []Stage) {
	sort.SliceStable(stages, func(i, j int) bool {
		if stages[i].SortOrder != stages[j].SortOrder {
			return stages[i].SortOrder < stages[j].SortOrder
		}
		return stages[i].ID < stages[j].ID
	})
}

// First returns the lowest ordered stage.
func First(stages []Stage) (Stage, bool) {
	if len(stages) == 0 {
		return Stage{}, false
	}
	sorted := append([]Stage(nil), stages...)
	SortStages(sorted)
	return sorted[0], true
}

type CreateStageRequest struct {
	Name               string `json:"name" binding:"required,max=100"`
	SortOrder          int    `json:"sort_order"`
	DefaultProbability int    `json:"default_probability" binding:"min=0,max=100"`
}
