package http

import (
	"net/http"

	"storefront/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) AddToCart(c *gin.Context) {
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Product ID and quantity are required")
		return
	}

	line, err := h.cart.Add(c.Request.Context(), req.ProductID, req.Quantity)
	if err != nil {
		writeError(c, err, "Failed to add product to cart")
		return
	}
	c.JSON(http.StatusOK, CartAddResponse{
		Message:  "Product added to cart",
		Product:  NewProductResponse(&line.Product),
		Quantity: line.Quantity,
	})
}

func (h *Handler) ValidateCart(c *gin.Context) {
	var req CartValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, services.ErrInvalidInput, "")
		return
	}

	items := []services.CartItem(nil)
	if req.Items != nil {
		items = make([]services.CartItem, 0, len(req.Items))
		for _, it := range req.Items {
			items = append(items, services.CartItem{ProductID: it.ProductID, Quantity: it.Quantity})
		}
	}

	lines, err := h.cart.Validate(c.Request.Context(), items)
	if err != nil {
		writeError(c, err, "Failed to validate cart")
		return
	}

	out := make([]CartLineResponse, 0, len(lines))
	for i := range lines {
		out = append(out, CartLineResponse{
			ProductResponse: NewProductResponse(&lines[i].Product),
			Quantity:        lines[i].Quantity,
		})
	}
	c.JSON(http.StatusOK, out)
}
