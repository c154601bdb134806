package repository

import (
	"context"

	"storefront/internal/domain"
)

// Find* methods return (nil, nil) when nothing matches. Writes report a
// missing row with ErrNotFound and unique collisions with ErrDuplicateKey.
type CategoryRepository interface {
	FindAll(ctx context.Context) ([]domain.Category, error)
	FindByID(ctx context.Context, id uint64) (*domain.Category, error)
	FindBySlugOrName(ctx context.Context, ref string) (*domain.Category, error)
	Save(ctx context.Context, category *domain.Category) error
	Update(ctx context.Context, id uint64, changes domain.CategoryChanges) error
	// Delete fails with ErrHasDependents while any product references id.
	Delete(ctx context.Context, id uint64) error
}

type ProductRepository interface {
	FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	FindByID(ctx context.Context, id uint64) (*domain.Product, error)
	Save(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, id uint64, changes domain.ProductChanges) error
	Delete(ctx context.Context, id uint64) error
}

type UserRepository interface {
	FindByID(ctx context.Context, id uint64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Save(ctx context.Context, user *domain.User) error
}
