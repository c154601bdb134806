package repository

import (
	"context"
	"errors"

	"storefront/internal/domain"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicateKey  = errors.New("duplicate key")
	ErrHasDependents = errors.New("record has dependents")
)

// OrderRepository stores orders and their items. Save and SaveItem are meant
// to be called on the repository handed to WithinTransaction so that a header
// and its items commit or roll back together.
type OrderRepository interface {
	WithinTransaction(ctx context.Context, fn func(tx OrderRepository) error) error
	Save(ctx context.Context, order *domain.Order) error
	SaveItem(ctx context.Context, item *domain.OrderItem) error
	FindByID(ctx context.Context, id uint64) (*domain.Order, error)
	FindAll(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id uint64, status domain.OrderStatus) error
}
