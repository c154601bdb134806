package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderCreatedEvent struct {
	OrderID       uint64          `json:"orderId"`
	Total         decimal.Decimal `json:"total"`
	ItemCount     int             `json:"itemCount"`
	CustomerEmail string          `json:"customerEmail"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type OrderStatusUpdatedEvent struct {
	OrderID   uint64      `json:"orderId"`
	Status    OrderStatus `json:"status"`
	UpdatedAt time.Time   `json:"updatedAt"`
}
