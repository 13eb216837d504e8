package handlers

import (
	"context"

	"golang-food-cart/internal/cart"
	"golang-food-cart/internal/checkout"
)

// CartStore defines the contract the HTTP layer needs from the cart store
type CartStore interface {
	Snapshot() cart.Cart
	Subscribe(fn cart.Subscriber) func()
	AddItem(item cart.MenuItem, restaurantName, restaurantLogo string) (cart.Cart, error)
	RemoveItem(lineItemID, restaurantID string) cart.Cart
	UpdateQuantity(lineItemID, restaurantID string, quantity int) cart.Cart
	ClearCart() cart.Cart
	ClearRestaurantCart(restaurantID string) cart.Cart
}

// CheckoutService defines the contract for the checkout collaborator
type CheckoutService interface {
	Summary(c cart.Cart) checkout.Summary
	PaymentMethods() []checkout.PaymentMethod
	Complete(ctx context.Context, userID, paymentMethod string) (*checkout.Receipt, error)
}
