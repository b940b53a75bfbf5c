package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories that share one database handle.
type Store interface {
	Users() UserRepository
	Stresses() StressRepository
	Strengths() StrengthRepository
	// WithTransaction executes fn within a database transaction. The Store
	// handed to fn is bound to that transaction; returning an error rolls
	// every write back.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

type store struct {
	db *gorm.DB
}

// NewStore creates a GORM-backed Store.
func NewStore(db *gorm.DB) Store {
	return &store{db: db}
}

func (s *store) Users() UserRepository {
	return NewUserRepository(s.db)
}

func (s *store) Stresses() StressRepository {
	return NewStressRepository(s.db)
}

func (s *store) Strengths() StrengthRepository {
	return NewStrengthRepository(s.db)
}

func (s *store) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &store{db: tx})
	})
}
