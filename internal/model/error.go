package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeValidation        = "VALIDATION_FAILED"
	ErrCodeInvalidID         = "INVALID_ID"
	ErrCodeInvalidQuantity   = "INVALID_QUANTITY"
	ErrCodeInvalidStatus     = "INVALID_STATUS"
	ErrCodeUserNotFound      = "USER_NOT_FOUND"
	ErrCodeProductNotFound   = "PRODUCT_NOT_FOUND"
	ErrCodeColorNotFound     = "COLOR_NOT_FOUND"
	ErrCodeOrderNotFound     = "ORDER_NOT_FOUND"
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	ErrCodeEmailTaken        = "EMAIL_TAKEN"
	ErrCodeAlreadyInWishlist = "ALREADY_IN_WISHLIST"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code, so errors built with NewDomainError or
// NewValidationError compare equal to the sentinel carrying the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a request validation error with the given message.
func NewValidationError(message string) *DomainError {
	return NewDomainError(ErrCodeValidation, message)
}

// Common domain errors
var (
	ErrValidation        = &DomainError{Code: ErrCodeValidation}
	ErrInvalidQuantity   = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be between 1 and 2147483647")
	ErrInvalidStatus     = NewDomainError(ErrCodeInvalidStatus, "Status must be one of Pending, Processing, Shipped, Delivered")
	ErrUserNotFound      = NewDomainError(ErrCodeUserNotFound, "User not found")
	ErrProductNotFound   = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrColorNotFound     = NewDomainError(ErrCodeColorNotFound, "Color not found for product")
	ErrOrderNotFound     = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrInsufficientStock = NewDomainError(ErrCodeInsufficientStock, "Not enough stock available")
	ErrEmailTaken        = NewDomainError(ErrCodeEmailTaken, "Email is already registered")
	ErrAlreadyInWishlist = NewDomainError(ErrCodeAlreadyInWishlist, "Product already in wishlist")
	ErrUnauthorised      = NewDomainError(ErrCodeUnauthorised, "Not authorised")
	ErrForbidden         = NewDomainError(ErrCodeForbidden, "User does not have the required role")
)
