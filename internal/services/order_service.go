package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"storefront/internal/domain"
	rabbit "storefront/internal/infra/rabbitmq"
	"storefront/internal/repository"

	"github.com/shopspring/decimal"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type OrderLine struct {
	ProductID uint64
	Quantity  int
	Price     decimal.Decimal
}

// CreateOrderInput is the checkout payload. Total and line prices are taken
// as sent by the client; they are not recomputed from the catalog.
type CreateOrderInput struct {
	Items           []OrderLine
	Total           decimal.Decimal
	CustomerName    string
	CustomerEmail   string
	CustomerContact string
}

// Validate runs every precondition in a fixed order and returns the first
// failure. It performs no I/O.
func (in CreateOrderInput) Validate() error {
	if len(in.Items) == 0 {
		return invalid("items", "Order items are required")
	}
	if !in.Total.IsPositive() {
		return invalid("total", "Valid total is required")
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		return invalid("customerName", "Customer name is required")
	}
	if strings.TrimSpace(in.CustomerEmail) == "" {
		return invalid("customerEmail", "Customer email is required")
	}
	if strings.TrimSpace(in.CustomerContact) == "" {
		return invalid("customerContact", "Customer contact is required")
	}
	// The format check sees the email as sent; only storage trims it.
	if !emailPattern.MatchString(in.CustomerEmail) {
		return invalid("customerEmail", "Invalid email format")
	}
	for _, line := range in.Items {
		if line.ProductID == 0 || line.Quantity <= 0 || line.Price.IsNegative() {
			return invalid("items", "Each order item requires a productId, a positive quantity and a non-negative price")
		}
	}
	return nil
}

type OrderService struct {
	repo      repository.OrderRepository
	publisher rabbit.PublisherInterface
	events    sync.WaitGroup
}

func NewOrderService(r repository.OrderRepository, pub rabbit.PublisherInterface) *OrderService {
	return &OrderService{
		repo:      r,
		publisher: pub,
	}
}

// CreateOrder writes the order header and every item in one transaction and
// returns the order as re-read after commit. Any failure inside the
// transaction rolls everything back and is reported as ErrOrderCreationFailed.
func (u *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	order := &domain.Order{
		Total:           in.Total,
		Status:          domain.StatusPending,
		CustomerName:    strings.TrimSpace(in.CustomerName),
		CustomerEmail:   strings.TrimSpace(in.CustomerEmail),
		CustomerContact: strings.TrimSpace(in.CustomerContact),
	}

	// Once started, the write runs to commit or rollback even if the client
	// disconnects. Driver timeouts still apply.
	txCtx := context.WithoutCancel(ctx)

	err := u.repo.WithinTransaction(txCtx, func(tx repository.OrderRepository) error {
		if err := tx.Save(txCtx, order); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		for i, line := range in.Items {
			item := &domain.OrderItem{
				OrderID:   order.ID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Price:     line.Price,
			}
			if err := tx.SaveItem(txCtx, item); err != nil {
				return fmt.Errorf("insert item %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("Order creation rolled back: %v", err)
		return nil, fmt.Errorf("%w: %w", ErrOrderCreationFailed, err)
	}

	created, err := u.repo.FindByID(txCtx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("reload order %d: %w", order.ID, err)
	}
	if created == nil {
		return nil, ErrOrderNotFound
	}

	u.publishAsync(rabbit.PatternOrderCreated, domain.OrderCreatedEvent{
		OrderID:       created.ID,
		Total:         created.Total,
		ItemCount:     len(created.Items),
		CustomerEmail: created.CustomerEmail,
		CreatedAt:     created.CreatedAt,
	})

	return created, nil
}

func (u *OrderService) GetOrderById(ctx context.Context, id uint64) (*domain.Order, error) {
	o, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (u *OrderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := u.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

// UpdateStatus sets any known status regardless of the current one.
func (u *OrderService) UpdateStatus(ctx context.Context, id uint64, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	if err := u.repo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	o, err := u.GetOrderById(ctx, id)
	if err != nil {
		return nil, err
	}

	u.publishAsync(rabbit.PatternOrderStatusUpdated, domain.OrderStatusUpdatedEvent{
		OrderID:   o.ID,
		Status:    o.Status,
		UpdatedAt: time.Now(),
	})
	return o, nil
}

func (u *OrderService) publishAsync(pattern string, evt any) {
	if u.publisher == nil {
		return
	}

	u.events.Add(1)
	go func() {
		defer u.events.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := u.publisher.Publish(ctx, pattern, evt); err != nil {
			log.Printf("Failed to publish %s event: %v", pattern, err)
		}
	}()
}

// Wait blocks until every event published so far has been handed to the broker
// or has failed.
func (u *OrderService) Wait() {
	u.events.Wait()
}
