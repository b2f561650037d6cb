package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/podomarket/storefront-service/internal/middleware"
	"github.com/podomarket/storefront-service/internal/models"
)

// SearchProducts handles GET /api/products/search
func (h *Handlers) SearchProducts(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		badRequest(c, "q is required")
		return
	}

	products, err := h.catalog.SearchProducts(c.Request.Context(), query)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, productsResponse(products))
}

// RandomProducts handles GET /api/products/random
func (h *Handlers) RandomProducts(c *gin.Context) {
	products, err := h.catalog.RandomProducts(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, productsResponse(products))
}

// GetProduct handles GET /api/products/:id. A logged-in view is recorded
// in the user's recently viewed list.
func (h *Handlers) GetProduct(c *gin.Context) {
	product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	h.sessions.RecordView(c.Request.Context(), middleware.UserID(c), product.ID)

	c.JSON(http.StatusOK, product)
}

// Categories handles GET /api/categories
func (h *Handlers) Categories(c *gin.Context) {
	categories, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// RecentlyViewed handles GET /api/products/recent
func (h *Handlers) RecentlyViewed(c *gin.Context) {
	ids, err := h.sessions.RecentlyViewed(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}

	c.JSON(http.StatusOK, gin.H{"product_ids": ids})
}

// ClearRecentlyViewed handles DELETE /api/products/recent
func (h *Handlers) ClearRecentlyViewed(c *gin.Context) {
	if err := h.sessions.ClearRecentlyViewed(c.Request.Context(), middleware.UserID(c)); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

// ListOrders handles GET /api/orders
func (h *Handlers) ListOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

func productsResponse(products []models.Product) gin.H {
	if products == nil {
		products = []models.Product{}
	}
	return gin.H{
		"products": products,
		"count":    len(products),
	}
}
