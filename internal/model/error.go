package model

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON      = "INVALID_JSON"
	ErrCodeMissingField     = "MISSING_FIELD"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeEmptyCart        = "EMPTY_CART"
	ErrCodeInvalidPromoCode = "INVALID_PROMO_CODE"
	ErrCodeOrderNotFound    = "ORDER_NOT_FOUND"
	ErrCodeOrderConflict    = "ORDER_NUMBER_CONFLICT"
	ErrCodeUnauthorised     = "UNAUTHORIZED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// DomainError is a business-rule violation with a machine-readable code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrEmptyCart = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	// ErrInvalidPromoCode is the single checkout-time promo failure: invalid,
	// expired, inactive and below-minimum codes are not distinguished here.
	ErrInvalidPromoCode = NewDomainError(ErrCodeInvalidPromoCode, "Invalid promo code")
	ErrOrderNotFound    = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	// ErrOrderNumberExhausted is surfaced only when order number generation
	// keeps colliding past the retry budget.
	ErrOrderNumberExhausted = NewDomainError(ErrCodeOrderConflict, "Could not allocate a unique order number")
)
