package http

import (
	"net/http"

	"storefront/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), req.toInput())
	if err != nil {
		writeError(c, err, "Failed to create order")
		return
	}
	c.JSON(http.StatusCreated, NewOrderResponse(order))
}

func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context())
	if err != nil {
		writeError(c, err, "Failed to fetch orders")
		return
	}

	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrderResponse(&orders[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := idParam(c, services.ErrOrderNotFound)
	if !ok {
		return
	}

	order, err := h.orders.GetOrderById(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "Failed to fetch order")
		return
	}
	c.JSON(http.StatusOK, NewOrderResponse(order))
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := idParam(c, services.ErrOrderNotFound)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, services.ErrInvalidStatus, "")
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		writeError(c, err, "Failed to update order status")
		return
	}
	c.JSON(http.StatusOK, NewOrderResponse(order))
}
