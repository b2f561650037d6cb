package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/podomarket/storefront-service/internal/middleware"
	"github.com/podomarket/storefront-service/internal/models"
)

// GetCart handles GET /api/cart
func (h *Handlers) GetCart(c *gin.Context) {
	userID := middleware.UserID(c)

	userCart, err := h.carts.Get(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, cartResponse(userCart.Items, userCart.Subtotal()))
}

// RefreshCart handles POST /api/cart/refresh
func (h *Handlers) RefreshCart(c *gin.Context) {
	userID := middleware.UserID(c)

	userCart, err := h.carts.Refresh(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, cartResponse(userCart.Items, userCart.Subtotal()))
}

// AddCartItem handles POST /api/cart/items
func (h *Handlers) AddCartItem(c *gin.Context) {
	userID := middleware.UserID(c)

	var item models.CartItem
	if err := c.ShouldBindJSON(&item); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if item.ProductID == "" {
		badRequest(c, "product_id is required")
		return
	}

	userCart, err := h.carts.AddItem(c.Request.Context(), userID, item)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, cartResponse(userCart.Items, userCart.Subtotal()))
}

// UpdateCartItem handles PATCH /api/cart/items/:index
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	userID := middleware.UserID(c)

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, "invalid item index")
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	userCart, err := h.carts.UpdateItem(c.Request.Context(), userID, index, req.Quantity)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, cartResponse(userCart.Items, userCart.Subtotal()))
}

// RemoveCartItem handles DELETE /api/cart/items/:index
func (h *Handlers) RemoveCartItem(c *gin.Context) {
	userID := middleware.UserID(c)

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, "invalid item index")
		return
	}

	userCart, err := h.carts.RemoveItem(c.Request.Context(), userID, index)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, cartResponse(userCart.Items, userCart.Subtotal()))
}

func cartResponse(items []models.CartItem, subtotal int64) gin.H {
	if items == nil {
		items = []models.CartItem{}
	}
	return gin.H{
		"items":    items,
		"subtotal": subtotal,
		"count":    len(items),
	}
}
