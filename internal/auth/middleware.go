package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	buyerIDKey = "buyer_id"
	tokenKey   = "auth_token"
)

// Middleware rejects requests without a valid bearer token and stores the
// buyer id on the gin context. Websocket upgrades cannot set headers from a
// browser, so access_token in the query string is accepted as a fallback.
func Middleware(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok && header == "" {
			raw, ok = c.Query("access_token"), true
		}
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		_, buyerID, err := tokens.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(buyerIDKey, buyerID)
		c.Set(tokenKey, raw)
		c.Next()
	}
}

// BuyerID returns the authenticated buyer id
func BuyerID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(buyerIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// Token returns the raw bearer token of the request
func Token(c *gin.Context) string {
	return c.GetString(tokenKey)
}
