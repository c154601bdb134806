package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{
	StatusPending,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

// Valid reports whether s is one of the known statuses. Any valid status may
// follow any other; there is no transition graph.
func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type Order struct {
	ID              uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	Total           decimal.Decimal `json:"total" gorm:"type:decimal(10,2);not null"`
	Status          OrderStatus     `json:"status" gorm:"type:enum('pending','processing','shipped','delivered','cancelled');not null;default:'pending'"`
	CustomerName    string          `json:"customerName" gorm:"size:255;not null"`
	CustomerEmail   string          `json:"customerEmail" gorm:"size:255;not null"`
	CustomerContact string          `json:"customerContact" gorm:"size:50;not null"`
	CreatedAt       time.Time       `json:"createdAt" gorm:"autoCreateTime;index"`
	Items           []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
}

// OrderItem is a line of an order. Price is the unit price captured when the
// order was placed and is never re-read from the product.
type OrderItem struct {
	ID        uint64           `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID   uint64           `json:"orderId" gorm:"not null;index"`
	ProductID uint64           `json:"productId" gorm:"not null;index"`
	Quantity  int              `json:"quantity" gorm:"not null"`
	Price     decimal.Decimal  `json:"price" gorm:"type:decimal(10,2);not null"`
	Product   *ProductSnapshot `json:"product,omitempty" gorm:"foreignKey:ProductID;-:migration"`
}

// ProductSnapshot is the present-day view of the product an order item points
// at. It is nil when the product has since been deleted.
type ProductSnapshot struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Image []byte `json:"image"`
}

func (ProductSnapshot) TableName() string { return "products" }
