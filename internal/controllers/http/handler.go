package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type Handler struct {
	catalog       *services.CatalogService
	cart          *services.CartService
	orders        *services.OrderService
	auth          *services.AuthService
	maxImageBytes int64
}

func NewHandler(catalog *services.CatalogService, cart *services.CartService, orders *services.OrderService, auth *services.AuthService, maxImageBytes int64) *Handler {
	return &Handler{
		catalog:       catalog,
		cart:          cart,
		orders:        orders,
		auth:          auth,
		maxImageBytes: maxImageBytes,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	api.GET("/health", h.Health)

	auth := api.Group("/auth")
	auth.POST("/login", h.Login)
	auth.POST("/register", h.Register)
	auth.GET("/me", h.AuthRequired(), h.Me)

	products := api.Group("/products")
	products.GET("", h.ListProducts)
	products.GET("/:id", h.GetProduct)
	adminProducts := products.Group("", h.AuthRequired(), AdminOnly())
	adminProducts.POST("", h.CreateProduct)
	adminProducts.PUT("/:id", h.UpdateProduct)
	adminProducts.DELETE("/:id", h.DeleteProduct)

	categories := api.Group("/categories")
	categories.GET("", h.ListCategories)
	categories.GET("/:id", h.GetCategory)
	adminCategories := categories.Group("", h.AuthRequired(), AdminOnly())
	adminCategories.POST("", h.CreateCategory)
	adminCategories.PUT("/:id", h.UpdateCategory)
	adminCategories.DELETE("/:id", h.DeleteCategory)

	cart := api.Group("/cart")
	cart.POST("/add", h.AddToCart)
	cart.POST("/validate", h.ValidateCart)

	orders := api.Group("/orders")
	orders.POST("", h.CreateOrder)
	orders.GET("", h.ListOrders)
	orders.GET("/:id", h.GetOrder)
	orders.PUT("/:id/status", h.UpdateOrderStatus)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "API route not found"})
	})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK", "message": "Server is running"})
}

// idParam parses the :id path segment. A malformed id is reported as notFound,
// the same as an id that matches no row.
func idParam(c *gin.Context, notFound error) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		writeError(c, notFound, "")
		return 0, false
	}
	return id, true
}

// readImage returns the bytes of the "image" form file, or nil when the
// request carries none.
func (h *Handler) readImage(c *gin.Context) ([]byte, error) {
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, &services.ValidationError{Field: "image", Message: "Invalid image upload"}
	}
	if h.maxImageBytes > 0 && fh.Size > h.maxImageBytes {
		return nil, &services.ValidationError{
			Field:   "image",
			Message: fmt.Sprintf("Image must be at most %d bytes", h.maxImageBytes),
		}
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// Form helpers. A field that is absent yields nil so that partial updates can
// tell "not sent" from "sent empty".

func formString(c *gin.Context, key string) *string {
	v, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	return &v
}

// formText is like formString but treats an empty value as absent.
func formText(c *gin.Context, key string) *string {
	v := formString(c, key)
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	return v
}

// formBool reads "true" and "1" as true and any other sent value as false.
func formBool(c *gin.Context, key string) *bool {
	v, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		b = false
	}
	return &b
}

func formDecimal(c *gin.Context, key string) (*decimal.Decimal, error) {
	v := formText(c, key)
	if v == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(*v))
	if err != nil {
		return nil, &services.ValidationError{Field: key, Message: fmt.Sprintf("%s must be a number", key)}
	}
	return &d, nil
}

func formInt(c *gin.Context, key string) (*int, error) {
	v := formText(c, key)
	if v == nil {
		return nil, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(*v))
	if err != nil {
		return nil, &services.ValidationError{Field: key, Message: fmt.Sprintf("%s must be an integer", key)}
	}
	return &n, nil
}

func formUint(c *gin.Context, key string) (*uint64, error) {
	v := formText(c, key)
	if v == nil {
		return nil, nil
	}
	n, err := strconv.ParseUint(strings.TrimSpace(*v), 10, 64)
	if err != nil {
		return nil, &services.ValidationError{Field: key, Message: fmt.Sprintf("%s must be a positive integer", key)}
	}
	return &n, nil
}
