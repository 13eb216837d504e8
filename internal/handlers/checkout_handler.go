package handlers

import (
	"errors"
	"net/http"

	"golang-food-cart/internal/checkout"
	"golang-food-cart/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CheckoutHandler struct {
	store    CartStore
	checkout CheckoutService
	logger   logrus.FieldLogger
}

func NewCheckoutHandler(store CartStore, checkout CheckoutService, logger logrus.FieldLogger) *CheckoutHandler {
	return &CheckoutHandler{
		store:    store,
		checkout: checkout,
		logger:   logger,
	}
}

// RegisterRoutes registers the routes for checkout
func (h *CheckoutHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	checkoutGroup := router.Group("/checkout")
	{
		checkoutGroup.GET("/summary", authMiddleware.AuthOptional(), h.GetSummary)
		checkoutGroup.GET("/payment-methods", h.GetPaymentMethods)
		// Orders are placed on behalf of a signed-in user
		checkoutGroup.POST("", authMiddleware.AuthRequired(), h.PlaceOrder)
	}
}

// GetSummary godoc
// @Summary Order summary
// @Description Cart totals plus delivery and service fees
// @Tags checkout
// @Produce json
// @Success 200 {object} checkout.Summary
// @Router /checkout/summary [get]
func (h *CheckoutHandler) GetSummary(c *gin.Context) {
	c.JSON(http.StatusOK, h.checkout.Summary(h.store.Snapshot()))
}

// GetPaymentMethods godoc
// @Summary Payment methods
// @Tags checkout
// @Produce json
// @Success 200 {array} checkout.PaymentMethod
// @Router /checkout/payment-methods [get]
func (h *CheckoutHandler) GetPaymentMethods(c *gin.Context) {
	c.JSON(http.StatusOK, h.checkout.PaymentMethods())
}

// PlaceOrder godoc
// @Summary Place order
// @Description Place an order for the whole cart and clear it
// @Tags checkout
// @Accept json
// @Produce json
// @Param order body PlaceOrderRequest true "Payment method"
// @Success 201 {object} checkout.Receipt
// @Security BearerAuth
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /checkout [post]
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	receipt, err := h.checkout.Complete(c.Request.Context(), middleware.GetUserID(c), req.PaymentMethod)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrUnknownPaymentMethod):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "Invalid payment method",
				Message: err.Error(),
			})
		case errors.Is(err, checkout.ErrEmptyCart):
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "Cart is empty",
				Message: "Add items to the cart before checking out",
			})
		default:
			h.logger.WithError(err).Error("checkout failed")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "Checkout failed",
				Message: err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusCreated, receipt)
}

type PlaceOrderRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
}
