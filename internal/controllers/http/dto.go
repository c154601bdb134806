package http

import (
	"encoding/base64"
	"time"

	"storefront/internal/domain"
	"storefront/internal/services"

	"github.com/shopspring/decimal"
)

// Images are stored as raw bytes and always served as JPEG data URIs,
// whatever the uploaded format was.
const imageDataPrefix = "data:image/jpeg;base64,"

func imageDataURI(b []byte) *string {
	if len(b) == 0 {
		return nil
	}
	s := imageDataPrefix + base64.StdEncoding.EncodeToString(b)
	return &s
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type ProductResponse struct {
	ID           uint64          `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Image        *string         `json:"image"`
	Category     string          `json:"category"`
	CategoryID   *uint64         `json:"categoryId"`
	CategoryName *string         `json:"categoryName"`
	CategorySlug *string         `json:"categorySlug"`
	Rating       decimal.Decimal `json:"rating"`
	Reviews      int             `json:"reviews"`
	InStock      bool            `json:"inStock"`
	Featured     bool            `json:"featured"`
	Description  *string         `json:"description"`
	CreatedAt    time.Time       `json:"createdAt"`
}

func NewProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Price:        p.Price,
		Image:        imageDataURI(p.Image),
		Category:     p.Category,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
		CategorySlug: p.CategorySlug,
		Rating:       p.Rating,
		Reviews:      p.Reviews,
		InStock:      p.InStock,
		Featured:     p.Featured,
		Description:  p.Description,
		CreatedAt:    p.CreatedAt,
	}
}

type CategoryResponse struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description"`
	Image       *string   `json:"image"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func NewCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Image:       imageDataURI(c.Image),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// CartLineResponse flattens the product and adds the requested quantity.
type CartLineResponse struct {
	ProductResponse
	Quantity int `json:"quantity"`
}

type CartAddResponse struct {
	Message  string          `json:"message"`
	Product  ProductResponse `json:"product"`
	Quantity int             `json:"quantity"`
}

type CartItemRequest struct {
	ProductID uint64 `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type CartValidateRequest struct {
	Items []CartItemRequest `json:"items"`
}

type CreateOrderRequest struct {
	Items           []OrderItemRequest `json:"items"`
	Total           decimal.Decimal    `json:"total"`
	CustomerName    string             `json:"customerName"`
	CustomerEmail   string             `json:"customerEmail"`
	CustomerContact string             `json:"customerContact"`
}

type OrderItemRequest struct {
	ProductID uint64          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

func (r CreateOrderRequest) toInput() services.CreateOrderInput {
	in := services.CreateOrderInput{
		Total:           r.Total,
		CustomerName:    r.CustomerName,
		CustomerEmail:   r.CustomerEmail,
		CustomerContact: r.CustomerContact,
	}
	for _, it := range r.Items {
		in.Items = append(in.Items, services.OrderLine{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	return in
}

type UpdateStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

type OrderProductResponse struct {
	ID    uint64  `json:"id"`
	Name  string  `json:"name"`
	Image *string `json:"image"`
}

type OrderItemResponse struct {
	ID        uint64                `json:"id"`
	OrderID   uint64                `json:"orderId"`
	ProductID uint64                `json:"productId"`
	Quantity  int                   `json:"quantity"`
	Price     decimal.Decimal       `json:"price"`
	Product   *OrderProductResponse `json:"product"`
}

type OrderResponse struct {
	ID              uint64              `json:"id"`
	Total           decimal.Decimal     `json:"total"`
	Status          domain.OrderStatus  `json:"status"`
	CustomerName    string              `json:"customerName"`
	CustomerEmail   string              `json:"customerEmail"`
	CustomerContact string              `json:"customerContact"`
	CreatedAt       time.Time           `json:"createdAt"`
	Items           []OrderItemResponse `json:"items"`
}

func NewOrderResponse(o *domain.Order) OrderResponse {
	out := OrderResponse{
		ID:              o.ID,
		Total:           o.Total,
		Status:          o.Status,
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		CustomerContact: o.CustomerContact,
		CreatedAt:       o.CreatedAt,
		Items:           make([]OrderItemResponse, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		item := OrderItemResponse{
			ID:        it.ID,
			OrderID:   it.OrderID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		}
		if it.Product != nil {
			item.Product = &OrderProductResponse{
				ID:    it.Product.ID,
				Name:  it.Product.Name,
				Image: imageDataURI(it.Product.Image),
			}
		}
		out.Items = append(out.Items, item)
	}
	return out
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID       uint64      `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
}

func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}
