package procedures

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"buyer-portal/buyer-portal-backend/internal/auth"
)

// Handler exposes the procedure layer over HTTP
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new procedures handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers procedure routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	procs := router.Group("/procedures")
	{
		procs.GET("/steps/:step", h.getStepData)
		procs.POST("/steps/:step", h.submitStep)
		procs.POST("/complete", h.completeOnboarding)
	}
}

// getStepData handles GET /api/v1/procedures/steps/:step
func (h *Handler) getStepData(c *gin.Context) {
	buyerID, ok := auth.BuyerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	data, err := h.service.GetStepData(c.Request.Context(), buyerID, c.Param("step"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if data == nil {
		c.JSON(http.StatusOK, gin.H{"data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// submitStep handles POST /api/v1/procedures/steps/:step
func (h *Handler) submitStep(c *gin.Context) {
	buyerID, ok := auth.BuyerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	rec, err := h.service.Submit(c.Request.Context(), buyerID, c.Param("step"), body)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "saved",
		"step":         rec.Step,
		"revision":     rec.Revision,
		"submitted_at": rec.SubmittedAt,
	})
}

// completeOnboarding handles POST /api/v1/procedures/complete
func (h *Handler) completeOnboarding(c *gin.Context) {
	buyerID, ok := auth.BuyerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	completion, err := h.service.CompleteOnboarding(c.Request.Context(), buyerID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, completion)
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUnknownStep):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidPayload):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, ErrIncomplete):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Procedure call failed", zap.Error(err), zap.String("path", c.FullPath()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
