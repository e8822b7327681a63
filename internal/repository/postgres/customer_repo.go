// internal/repository/postgres/customer_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"salescrm-service/internal/domain/contact"
	"salescrm-service/internal/domain/customer"
	xerrors "salescrm-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
)

const customerColumns = `
	id, tenant_id, name, contact_name, email, phone, mobile, industry,
	status, assigned_user_id, source_id, converted_from_lead_id, tags, created_at, updated_at`

func scanCustomer(row rowScanner) (*customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(
		&c.ID, &c.TenantID, &c.Name, &c.ContactName, &c.Email, &c.Phone, &c.Mobile, &c.Industry,
		&c.Status, &c.AssignedUserID, &c.SourceID, &c.ConvertedFromLeadID, &c.Tags, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindCustomer retrieves a customer by ID
func (s *Store) FindCustomer(ctx context.Context, id int64) (*customer.Customer, error) {
	query := s.forUpdate(`SELECT ` + customerColumns + ` FROM customers WHERE id = $1`)

	c, err := scanCustomer(s.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.Newf(xerrors.KindNotFound, "customer %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return c, nil
}

// CreateCustomer inserts a customer
func (s *Store) CreateCustomer(ctx context.Context, c *customer.Customer) error {
	query := `
		INSERT INTO customers (
			tenant_id, name, contact_name, email, phone, mobile, industry,
			status, assigned_user_id, source_id, converted_from_lead_id, tags
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`

	return s.q.QueryRow(ctx, query,
		c.TenantID, c.Name, c.ContactName, c.Email, c.Phone, c.Mobile, c.Industry,
		c.Status, c.AssignedUserID, c.SourceID, c.ConvertedFromLeadID, c.Tags,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// UpdateCustomer persists the status and ownership of a customer
func (s *Store) UpdateCustomer(ctx context.Context, c *customer.Customer) error {
	query := `
		UPDATE customers SET
			status = $1,
			assigned_user_id = $2,
			updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at
	`

	err := s.q.QueryRow(ctx, query, c.Status, c.AssignedUserID, c.ID).Scan(&c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return xerrors.Newf(xerrors.KindNotFound, "customer %d not found", c.ID)
	}
	return err
}

// FindContact retrieves a contact by ID
func (s *Store) FindContact(ctx context.Context, id int64) (*contact.Contact, error) {
	query := `
		SELECT id, tenant_id, customer_id, first_name, last_name, email, phone, created_at, updated_at
		FROM contacts
		WHERE id = $1
	`

	var c contact.Contact
	err := s.q.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.TenantID, &c.CustomerID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.Newf(xerrors.KindNotFound, "contact %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find contact: %w", err)
	}
	return &c, nil
}
