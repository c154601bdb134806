package services

import "errors"

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrOutOfStock          = errors.New("product not found or out of stock")
	ErrDuplicateKey        = errors.New("category name or slug already exists")
	ErrDuplicateUser       = errors.New("username or email already exists")
	ErrHasDependents       = errors.New("cannot delete category with existing products, reassign products first")
	ErrMissingImage        = errors.New("image file is required")
	ErrMissingCategory     = errors.New("category is required, select a category or provide a category name")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidInput        = errors.New("items must be an array")
	ErrOrderCreationFailed = errors.New("failed to create order")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidToken        = errors.New("invalid token")
)

// ValidationError reports a missing or malformed input field. Message is safe
// to show to the client.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
