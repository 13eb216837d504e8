package catalog

import (
	"context"
	"errors"

	"golang-food-cart/internal/cart"
)

// ErrNotFound is returned when a restaurant or menu item does not exist.
var ErrNotFound = errors.New("catalog: not found")

// Restaurant is the display data the cart needs for a group header.
type Restaurant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
}

// Catalog is the read-only source of menu items and restaurants.
type Catalog interface {
	GetRestaurant(ctx context.Context, restaurantID string) (*Restaurant, error)
	GetMenuItem(ctx context.Context, restaurantID, menuItemID string) (*cart.MenuItem, error)
	// Lookup resolves a menu item together with its restaurant.
	Lookup(ctx context.Context, restaurantID, menuItemID string) (*Restaurant, *cart.MenuItem, error)
}
