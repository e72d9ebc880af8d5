package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler exposes token endpoints. Token issuance is only registered in
// development; production tokens come from the identity provider.
type Handler struct {
	tokens *TokenManager
	ttl    time.Duration
}

func NewHandler(tokens *TokenManager, ttl time.Duration) *Handler {
	return &Handler{tokens: tokens, ttl: ttl}
}

// Ping endpoint
func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "auth service alive!"})
}

// Me returns the authenticated buyer
func (h *Handler) Me(c *gin.Context) {
	buyerID, ok := BuyerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"buyer_id": buyerID})
}

// IssueDevToken mints a token for a new or given buyer id
func (h *Handler) IssueDevToken(c *gin.Context) {
	var req struct {
		BuyerID      string `json:"buyer_id"`
		Organisation string `json:"organisation"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	buyerID := uuid.New()
	if req.BuyerID != "" {
		parsed, err := uuid.Parse(req.BuyerID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid buyer_id"})
			return
		}
		buyerID = parsed
	}

	token, err := h.tokens.Issue(buyerID, req.Organisation, h.ttl)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"buyer_id":   buyerID,
		"token":      token,
		"expires_in": int(h.ttl.Seconds()),
	})
}
