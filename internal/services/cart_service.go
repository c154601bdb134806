package services

import (
	"context"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

type CartItem struct {
	ProductID uint64
	Quantity  int
}

// CartLine is a cart entry whose product still exists, carrying the product as
// it is stored now.
type CartLine struct {
	Product  domain.Product
	Quantity int
}

type CartService struct {
	products repository.ProductRepository
}

func NewCartService(p repository.ProductRepository) *CartService {
	return &CartService{products: p}
}

// Validate keeps the entries whose product exists, in input order. Unknown ids
// are dropped without an error. A nil slice means the caller sent no array.
func (s *CartService) Validate(ctx context.Context, items []CartItem) ([]CartLine, error) {
	if items == nil {
		return nil, ErrInvalidInput
	}

	out := make([]CartLine, 0, len(items))
	for _, item := range items {
		p, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			continue
		}
		out = append(out, CartLine{Product: *p, Quantity: item.Quantity})
	}
	return out, nil
}

// Add checks that a product can go into a cart. Nothing is persisted; the cart
// itself lives on the client.
func (s *CartService) Add(ctx context.Context, productID uint64, quantity int) (*CartLine, error) {
	if productID == 0 || quantity == 0 {
		return nil, invalid("productId", "Product ID and quantity are required")
	}

	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil || !p.InStock {
		return nil, ErrOutOfStock
	}
	return &CartLine{Product: *p, Quantity: quantity}, nil
}
