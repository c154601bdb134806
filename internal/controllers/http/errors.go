package http

import (
	"errors"
	"log"
	"net/http"

	"storefront/internal/services"

	"github.com/gin-gonic/gin"
)

var errorTable = []struct {
	err     error
	status  int
	message string
}{
	{services.ErrInvalidInput, http.StatusBadRequest, "Items must be an array"},
	{services.ErrProductNotFound, http.StatusNotFound, "Product not found"},
	{services.ErrCategoryNotFound, http.StatusNotFound, "Category not found"},
	{services.ErrOrderNotFound, http.StatusNotFound, "Order not found"},
	{services.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{services.ErrOutOfStock, http.StatusNotFound, "Product not found or out of stock"},
	{services.ErrDuplicateKey, http.StatusBadRequest, "Category name or slug already exists"},
	{services.ErrDuplicateUser, http.StatusBadRequest, "Username or email already exists"},
	{services.ErrHasDependents, http.StatusBadRequest, "Cannot delete category with existing products. Please reassign products first."},
	{services.ErrMissingImage, http.StatusBadRequest, "Image file is required"},
	{services.ErrMissingCategory, http.StatusBadRequest, "Category is required. Please select a category or provide a category name."},
	{services.ErrInvalidStatus, http.StatusBadRequest, "Invalid status"},
	{services.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{services.ErrInvalidToken, http.StatusUnauthorized, "Invalid or expired token"},
}

// writeError maps a service error onto a status code and a client-safe
// message. Anything unrecognised is logged and reported as fallback with 500.
func writeError(c *gin.Context, err error, fallback string) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: verr.Message})
		return
	}

	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			c.JSON(e.status, ErrorResponse{Error: e.message})
			return
		}
	}

	log.Printf("[%s] %s %s: %s: %v", requestID(c), c.Request.Method, c.Request.URL.Path, fallback, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fallback})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}
