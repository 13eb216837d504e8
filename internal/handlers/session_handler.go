package handlers

import (
	"net/http"

	"golang-food-cart/internal/middleware"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	store CartStore
}

func NewSessionHandler(store CartStore) *SessionHandler {
	return &SessionHandler{store: store}
}

func (h *SessionHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	router.GET("/session", authMiddleware.AuthOptional(), h.GetSession)
}

type SessionUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type SessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *SessionUser `json:"user,omitempty"`
	CartItemCount int          `json:"cart_item_count"`
}

// GetSession godoc
// @Summary Current session
// @Description Who is signed in, plus the cart badge count
// @Tags session
// @Produce json
// @Success 200 {object} SessionResponse
// @Router /session [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	resp := SessionResponse{CartItemCount: h.store.Snapshot().ItemCount}
	if claims := middleware.GetClaims(c); claims != nil {
		resp.Authenticated = true
		resp.User = &SessionUser{
			ID:    claims.UserID,
			Name:  claims.Name,
			Email: claims.Email,
		}
	}
	c.JSON(http.StatusOK, resp)
}
