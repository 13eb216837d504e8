package middleware

import (
	"net/http"
	"strings"

	"golang-food-cart/pkg/auth"

	"github.com/gin-gonic/gin"
)

const claimsKey = "claims"

type AuthMiddleware struct {
	jwtManager *auth.JWTManager
}

func NewAuthMiddleware(jwtManager *auth.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager}
}

// AuthRequired middleware validates JWT token
func (a *AuthMiddleware) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		claims, ok := a.parse(authHeader)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// AuthOptional records the current user when a valid token is present and
// lets anonymous requests through. The cart works the same either way.
func (a *AuthMiddleware) AuthOptional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := a.parse(c.GetHeader("Authorization")); ok {
			setClaims(c, claims)
		}
		c.Next()
	}
}

func (a *AuthMiddleware) parse(authHeader string) (*auth.Claims, bool) {
	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		return nil, false
	}

	claims, err := a.jwtManager.ValidateToken(tokenParts[1])
	if err != nil {
		return nil, false
	}
	return claims, true
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(claimsKey, claims)
	c.Set("user_id", claims.UserID)
}

// GetUserID helper function to extract user ID from context
func GetUserID(c *gin.Context) string {
	if userID, exists := c.Get("user_id"); exists {
		return userID.(string)
	}
	return ""
}

// GetClaims returns the current user's claims, or nil for anonymous requests.
func GetClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(claimsKey); exists {
		return claims.(*auth.Claims)
	}
	return nil
}
