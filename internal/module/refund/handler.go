package refund

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/storefleet/server/internal/shared/errors"
)

// Handler handles HTTP requests for refunds.
type Handler struct {
	service *Service
}

// NewHandler creates a new refund handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the refund routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	orders := r.Group("/orders")
	{
		orders.POST("/:id/refunds", h.CreateRefund)
		orders.GET("/:id/refunds", h.ListRefunds)
	}
}

// CreateRefund creates a refund for an order.
func (h *Handler) CreateRefund(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
		return
	}

	var req CreateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.CreateRefund(c.Request.Context(), orderID, &req)
	if err != nil {
		handleRefundError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// ListRefunds returns an order's refunds, most recent first.
func (h *Handler) ListRefunds(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
		return
	}

	refunds, err := h.service.ListRefunds(c.Request.Context(), orderID)
	if err != nil {
		handleRefundError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"refunds": refunds})
}

func handleRefundError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.StatusCode, appErr.ToResponse())
		return
	}
	c.JSON(apperrors.GetStatusCode(err), gin.H{"error": err.Error()})
}
