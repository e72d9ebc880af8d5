package onboarding

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"buyer-portal/buyer-portal-backend/internal/auth"
)

// Exporter renders a downloadable summary of a session
type Exporter interface {
	// ContentType returns the MIME type and file extension for format
	ContentType(format string) (mime string, ext string, ok bool)
	Render(format string, view View) ([]byte, error)
}

// EventStream serves live wizard events for one topic over a long-lived connection
type EventStream interface {
	Serve(w http.ResponseWriter, r *http.Request, topic string) error
}

// Handler exposes onboarding sessions over HTTP
type Handler struct {
	manager  *Manager
	exporter Exporter
	stream   EventStream
	logger   *zap.Logger
}

// NewHandler creates a new onboarding handler. exporter and stream may be nil.
func NewHandler(manager *Manager, exporter Exporter, stream EventStream, logger *zap.Logger) *Handler {
	return &Handler{
		manager:  manager,
		exporter: exporter,
		stream:   stream,
		logger:   logger,
	}
}

// RegisterRoutes registers onboarding routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	onboarding := router.Group("/onboarding")
	{
		onboarding.GET("/steps", h.listSteps)
		onboarding.POST("/sessions", h.openSession)
		onboarding.GET("/sessions/:key", h.getSession)
		onboarding.PATCH("/sessions/:key/draft", h.editDraft)
		onboarding.POST("/sessions/:key/continue", h.continueStep)
		onboarding.POST("/sessions/:key/back", h.back)
		onboarding.GET("/sessions/:key/summary", h.summary)
		onboarding.GET("/sessions/:key/events", h.events)
	}
}

type draftEditRequest struct {
	Section string          `json:"section"`
	Fields  json.RawMessage `json:"fields" binding:"required"`
}

// listSteps handles GET /api/v1/onboarding/steps
func (h *Handler) listSteps(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"steps": h.manager.Registry().Steps()})
}

// openSession handles POST /api/v1/onboarding/sessions
func (h *Handler) openSession(c *gin.Context) {
	buyerID, ok := auth.BuyerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req OpenRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if step := c.Query("step"); step != "" {
		req.InitialStep = StepID(step)
	}

	w, notices, err := h.manager.Open(c.Request.Context(), buyerID, auth.Token(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	view := w.View()
	view.Notices = notices
	c.JSON(http.StatusCreated, view)
}

// getSession handles GET /api/v1/onboarding/sessions/:key
func (h *Handler) getSession(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, w.View())
}

// editDraft handles PATCH /api/v1/onboarding/sessions/:key/draft
func (h *Handler) editDraft(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}

	var req draftEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := w.EditDraft(c.Request.Context(), req.Section, req.Fields)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// continueStep handles POST /api/v1/onboarding/sessions/:key/continue
func (h *Handler) continueStep(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	view, err := w.Continue(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if hydration := w.Hydrate(ctx); len(hydration) > 0 {
		notices := append(view.Notices, hydration...)
		view = w.View()
		view.Notices = notices
	}
	c.JSON(http.StatusOK, view)
}

// back handles POST /api/v1/onboarding/sessions/:key/back
func (h *Handler) back(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	w.Back(ctx)
	notices := w.Hydrate(ctx)
	view := w.View()
	view.Notices = notices
	c.JSON(http.StatusOK, view)
}

// summary handles GET /api/v1/onboarding/sessions/:key/summary
func (h *Handler) summary(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}
	if h.exporter == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "summary export is not configured"})
		return
	}

	format := c.DefaultQuery("format", "pdf")
	mime, ext, ok := h.exporter.ContentType(format)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported format: %s", format)})
		return
	}

	content, err := h.exporter.Render(format, w.View())
	if err != nil {
		h.logger.Error("Failed to render summary", zap.Error(err), zap.String("session", w.Key()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render summary"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="onboarding-summary.%s"`, ext))
	c.Data(http.StatusOK, mime, content)
}

// events handles GET /api/v1/onboarding/sessions/:key/events
func (h *Handler) events(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}
	if h.stream == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "event stream is not configured"})
		return
	}
	if err := h.stream.Serve(c.Writer, c.Request, w.Key()); err != nil {
		h.logger.Warn("Event stream closed", zap.Error(err), zap.String("session", w.Key()))
	}
}

func (h *Handler) wizard(c *gin.Context) (*Wizard, bool) {
	buyerID, ok := auth.BuyerID(c)
	if !ok || buyerID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return nil, false
	}
	w, err := h.manager.Get(c.Request.Context(), c.Param("key"), buyerID, auth.Token(c))
	if err != nil {
		h.respondError(c, err)
		return nil, false
	}
	return w, true
}

func (h *Handler) respondError(c *gin.Context, err error) {
	var verr *ValidationError
	var perr *ProcedureError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": verr.Message,
			"field": verr.Field,
			"step":  verr.Step,
		})
	case errors.As(err, &perr):
		c.JSON(http.StatusBadGateway, gin.H{"error": perr.Error(), "op": perr.Op, "step": perr.Step})
	case errors.Is(err, ErrStepBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrUnknownStep), errors.Is(err, ErrUnknownSection), errors.Is(err, ErrInvalidDraft):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Onboarding request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
