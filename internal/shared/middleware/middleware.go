package middleware

import (
	"net/http"
	"strings"

	"ticketly/internal/shared/config"
	"ticketly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

const (
	// Context keys set by JWTAuth and read by controllers.
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
)

// JWTAuth creates a JWT authentication middleware with config.
// User management lives in a separate service; this middleware only verifies
// access tokens and exposes the caller's identity to handlers.
func JWTAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "Authorization header is required", nil, nil)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "authorization header format must be Bearer {token}", nil, nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWT.Secret), nil
		})

		if err != nil || !token.Valid {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid or expired token", nil, nil)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid token claims", nil, nil)
			c.Abort()
			return
		}

		if tokenType, ok := claims["type"]; !ok || tokenType != "access" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid token type", nil, nil)
			c.Abort()
			return
		}

		// Numeric claims arrive as float64 from encoding/json.
		sub, ok := claims["user_id"].(float64)
		if !ok {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "token missing user id", nil, nil)
			c.Abort()
			return
		}

		c.Set(ContextUserID, int64(sub))
		if email, ok := claims["email"].(string); ok {
			c.Set(ContextUserEmail, email)
		}

		c.Next()
	}
}

// CurrentUserID returns the authenticated user's id from the gin context.
func CurrentUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(ContextUserID)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// CurrentUserEmail returns the authenticated user's email, if present in the token.
func CurrentUserEmail(c *gin.Context) string {
	v, exists := c.Get(ContextUserEmail)
	if !exists {
		return ""
	}
	email, _ := v.(string)
	return email
}
