// internal/repository/postgres/store.go
package postgres

import (
	"context"
	"fmt"

	"salescrm-service/internal/repository"
)

var _ repository.Store = (*Store)(nil)

// Store implements repository.Store on PostgreSQL. Inside InTx every finder
// locks the row it returns until commit.
type Store struct {
	db   *DB
	q    querier
	lock string
}

func NewStore(db *DB) *Store {
	return &Store{db: db, q: db.Pool()}
}

func (s *Store) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.lock != "" {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&Store{db: s.db, q: tx, lock: " FOR UPDATE"}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// forUpdate appends the row lock clause when running inside a transaction.
func (s *Store) forUpdate(query string) string {
	return query + s.lock
}
