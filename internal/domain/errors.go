package domain

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidIdentifier is returned for ids that are not positive integers.
	ErrInvalidIdentifier = errors.New("invalid product id")
	// ErrInvalidQuantity is returned for quantities outside [1,100].
	ErrInvalidQuantity = errors.New("quantity must be an integer between 1 and 100")
	// ErrProductNotFound indicates a cart operation referenced an unknown product.
	ErrProductNotFound = errors.New("product not found")
	// ErrItemNotFound indicates the product is not in the subject's cart.
	ErrItemNotFound = errors.New("item not found in cart")
)

// ValidationError carries field-level messages for rejected input.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return "invalid input"
	}
	return "invalid input: " + strings.Join(e.Details, "; ")
}
