// internal/domain/contact/entity.go
package contact

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Contact struct {
	ID         int64          `json:"id" db:"id"`
	TenantID   uuid.UUID      `json:"tenant_id" db:"tenant_id"`
	CustomerID sql.NullInt64  `json:"customer_id,omitempty" db:"customer_id"`
	FirstName  string         `json:"first_name" db:"first_name"`
	LastName   string         `json:"last_name" db:"last_name"`
	Email      sql.NullString `json:"email,omitempty" db:"email"`
	Phone      sql.NullString `json:"phone,omitempty" db:"phone"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at" db:"updated_at"`
}
