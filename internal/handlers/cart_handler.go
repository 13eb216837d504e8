package handlers

import (
	"errors"
	"io"
	"net/http"

	"golang-food-cart/internal/cart"
	"golang-food-cart/internal/catalog"
	"golang-food-cart/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CartHandler struct {
	store   CartStore
	catalog catalog.Catalog
	logger  logrus.FieldLogger
}

func NewCartHandler(store CartStore, catalog catalog.Catalog, logger logrus.FieldLogger) *CartHandler {
	return &CartHandler{
		store:   store,
		catalog: catalog,
		logger:  logger,
	}
}

// RegisterRoutes registers the routes for cart management
func (h *CartHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	// The cart works for anonymous visitors as well as signed-in users
	cartGroup := router.Group("/cart", authMiddleware.AuthOptional())
	{
		// Get the current cart
		cartGroup.GET("", h.GetCart)
		// Stream cart changes
		cartGroup.GET("/events", h.StreamEvents)
		// Add one unit of a menu item
		cartGroup.POST("/items", h.AddItem)
		// Set the quantity of a line
		cartGroup.PUT("/items/:item_id", h.UpdateQuantity)
		// Remove a line
		cartGroup.DELETE("/items/:item_id", h.RemoveItem)
		// Clear one restaurant's section
		cartGroup.DELETE("/restaurants/:restaurant_id", h.ClearRestaurantCart)
		// Clear cart
		cartGroup.DELETE("", h.ClearCart)
	}
}

// GetCart godoc
// @Summary Get the cart
// @Description Get the cart grouped by restaurant with derived totals
// @Tags cart
// @Produce json
// @Success 200 {object} cart.Cart
// @Router /cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Snapshot())
}

// AddItem godoc
// @Summary Add item to cart
// @Description Resolve the menu item from the catalog and add one unit of it
// @Tags cart
// @Accept json
// @Produce json
// @Param item body AddItemRequest true "Menu item reference"
// @Success 200 {object} cart.Cart
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	ctx := c.Request.Context()

	restaurant, item, err := h.catalog.Lookup(ctx, req.RestaurantID, req.MenuItemID)
	if err != nil {
		h.catalogError(c, err)
		return
	}

	if !item.IsAvailable {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "Menu item unavailable",
			Message: item.Name + " cannot be ordered right now",
		})
		return
	}

	updated, err := h.store.AddItem(*item, restaurant.Name, restaurant.Logo)
	if errors.Is(err, cart.ErrQuantityLimit) {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "Quantity limit reached",
			Message: err.Error(),
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid menu item",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// UpdateQuantity godoc
// @Summary Update cart item quantity
// @Description Set the quantity of a line; zero or less removes it, more than 999 is rejected
// @Tags cart
// @Accept json
// @Produce json
// @Param item_id path string true "Line item ID"
// @Param item body UpdateQuantityRequest true "New quantity"
// @Success 200 {object} cart.Cart
// @Failure 400 {object} ErrorResponse
// @Router /cart/items/{item_id} [put]
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, h.store.UpdateQuantity(c.Param("item_id"), req.RestaurantID, *req.Quantity))
}

// RemoveItem godoc
// @Summary Remove item from cart
// @Description Remove a line; unknown lines are ignored
// @Tags cart
// @Produce json
// @Param item_id path string true "Line item ID"
// @Param restaurant_id query string true "Restaurant ID"
// @Success 200 {object} cart.Cart
// @Failure 400 {object} ErrorResponse
// @Router /cart/items/{item_id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	restaurantID := c.Query("restaurant_id")
	if restaurantID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Restaurant ID is required",
			Message: "Please provide restaurant_id parameter",
		})
		return
	}

	c.JSON(http.StatusOK, h.store.RemoveItem(c.Param("item_id"), restaurantID))
}

// ClearRestaurantCart godoc
// @Summary Clear one restaurant
// @Description Remove every line of one restaurant
// @Tags cart
// @Produce json
// @Param restaurant_id path string true "Restaurant ID"
// @Success 200 {object} cart.Cart
// @Router /cart/restaurants/{restaurant_id} [delete]
func (h *CartHandler) ClearRestaurantCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.ClearRestaurantCart(c.Param("restaurant_id")))
}

// ClearCart godoc
// @Summary Clear the cart
// @Tags cart
// @Produce json
// @Success 200 {object} cart.Cart
// @Router /cart [delete]
func (h *CartHandler) ClearCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.ClearCart())
}

// StreamEvents godoc
// @Summary Stream cart changes
// @Description Server-sent events: the current cart first, then the cart after every change.
// @Description A slow client skips intermediate states but always receives the latest one.
// @Tags cart
// @Produce text/event-stream
// @Router /cart/events [get]
func (h *CartHandler) StreamEvents(c *gin.Context) {
	updates := make(chan cart.Cart, 1)
	unsubscribe := h.store.Subscribe(func(ev cart.Event) {
		select {
		case updates <- ev.Cart:
			return
		default:
		}
		select {
		case <-updates:
		default:
		}
		updates <- ev.Cart
	})
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("cart", h.store.Snapshot())
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case latest := <-updates:
			c.SSEvent("cart", latest)
			return true
		}
	})
}

func (h *CartHandler) catalogError(c *gin.Context, err error) {
	if errors.Is(err, catalog.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "Not found",
			Message: err.Error(),
		})
		return
	}

	h.logger.WithError(err).Error("catalog lookup failed")
	c.JSON(http.StatusBadGateway, ErrorResponse{
		Error:   "Catalog unavailable",
		Message: "Could not load the menu item, please try again",
	})
}

// Request and Response structs
type AddItemRequest struct {
	MenuItemID   string `json:"menu_item_id" binding:"required"`
	RestaurantID string `json:"restaurant_id" binding:"required"`
}

type UpdateQuantityRequest struct {
	RestaurantID string `json:"restaurant_id" binding:"required"`
	// zero or less removes the line; the upper bound is cart.MaxQuantity
	Quantity *int `json:"quantity" binding:"required,max=999"`
}
