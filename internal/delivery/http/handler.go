package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cartsaver/backend/internal/domain"
	"github.com/cartsaver/backend/internal/infrastructure/cache"
	"github.com/cartsaver/backend/internal/usecase"
)

// BasketComparer is the slice of the comparison service the handlers use.
type BasketComparer interface {
	CompareBasket(ctx context.Context, products []string, mode usecase.MatchMode) (*domain.ComparisonSummary, map[string]*domain.ProductMatchResult, error)
}

// CacheController exposes the cache operations served over HTTP.
type CacheController interface {
	Stats() cache.Stats
	Clear()
	Cleanup() int
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	comparer BasketComparer
	cache    CacheController
}

// NewHandler creates a new HTTP handler
func NewHandler(comparer BasketComparer, cacheCtl CacheController) *Handler {
	return &Handler{
		comparer: comparer,
		cache:    cacheCtl,
	}
}

// compareRequest is the POST /compare body
type compareRequest struct {
	Products []string `json:"products" binding:"required"`
	Mode     string   `json:"mode,omitempty"`
}

// compareResponse wraps the summary with the per-product match detail
type compareResponse struct {
	Summary *domain.ComparisonSummary             `json:"summary"`
	Results map[string]*domain.ProductMatchResult `json:"results"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "cartsaver-backend",
		"version": "1.0.0",
	})
}

// CompareBasket handles basket comparison requests
func (h *Handler) CompareBasket(c *gin.Context) {
	if h.comparer == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "comparison service not configured"})
		return
	}

	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	summary, results, err := h.comparer.CompareBasket(c.Request.Context(), req.Products, usecase.MatchMode(req.Mode))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrBasketTooLarge):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrFlyerAPIFailure), errors.Is(err, domain.ErrStoreUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, compareResponse{Summary: summary, Results: results})
}

// CacheStats reports result-cache counters
func (h *Handler) CacheStats(c *gin.Context) {
	if h.cache == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "cache not configured"})
		return
	}
	c.JSON(http.StatusOK, h.cache.Stats())
}

// ClearCache flushes the result cache
func (h *Handler) ClearCache(c *gin.Context) {
	if h.cache == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "cache not configured"})
		return
	}
	h.cache.Clear()
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}
