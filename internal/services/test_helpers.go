package services

import (
	"time"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func CreateMockOrder(id uint64, total string, status domain.OrderStatus, items ...domain.OrderItem) *domain.Order {
	for i := range items {
		items[i].OrderID = id
	}
	return &domain.Order{
		ID:              id,
		Total:           decimal.RequireFromString(total),
		Status:          status,
		CustomerName:    TestCustomerName,
		CustomerEmail:   TestCustomerEmail,
		CustomerContact: TestCustomerContact,
		CreatedAt:       time.Now(),
		Items:           items,
	}
}

func CreateMockProduct(id uint64, name, price string, inStock bool) *domain.Product {
	return &domain.Product{
		ID:        id,
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Image:     pngHeader,
		Category:  TestCategoryName,
		Rating:    decimal.Zero,
		InStock:   inStock,
		CreatedAt: time.Now(),
	}
}

func CreateMockCategory(id uint64, name, slug string) *domain.Category {
	return &domain.Category{
		ID:        id,
		Name:      name,
		Slug:      slug,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

const (
	TestOrderID         = uint64(1)
	TestProductID       = uint64(1)
	TestProductName     = "Test Product"
	TestCategoryName    = "Audio"
	TestCustomerName    = "Jane"
	TestCustomerEmail   = "jane@x.io"
	TestCustomerContact = "555"
)
