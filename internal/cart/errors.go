package cart

import (
	"errors"
	"fmt"
)

// ErrInvalidMenuItem is returned by AddItem for a menu item the cart cannot hold.
var ErrInvalidMenuItem = errors.New("invalid menu item")

// ErrQuantityLimit is returned by AddItem when the line already holds MaxQuantity units.
var ErrQuantityLimit = errors.New("quantity limit reached")

// Bounds keep every derived total far from int64 overflow.
const (
	MaxQuantity  = 999
	MaxUnitPrice = int64(1_000_000_000_000)
)

// Validation messages for AddItem.
const (
	ErrMsgMenuItemIDRequired   = "menu item id is required"
	ErrMsgRestaurantIDRequired = "restaurant id is required"
	ErrMsgNegativePrice        = "price cannot be negative"
	ErrMsgPriceTooHigh         = "price exceeds the allowed maximum"
)

// ValidationError describes which field of a MenuItem was rejected.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidMenuItem
}

func validateMenuItem(item MenuItem) error {
	if item.ID == "" {
		return &ValidationError{Field: "id", Message: ErrMsgMenuItemIDRequired}
	}
	if item.RestaurantID == "" {
		return &ValidationError{Field: "restaurant_id", Message: ErrMsgRestaurantIDRequired}
	}
	if item.Price < 0 {
		return &ValidationError{Field: "price", Message: ErrMsgNegativePrice}
	}
	if item.Price > MaxUnitPrice {
		return &ValidationError{Field: "price", Message: ErrMsgPriceTooHigh}
	}
	return nil
}
