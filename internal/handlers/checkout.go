package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/podomarket/storefront-service/internal/middleware"
	"github.com/podomarket/storefront-service/internal/models"
)

// BeginCheckout handles POST /api/checkout
func (h *Handlers) BeginCheckout(c *gin.Context) {
	var req struct {
		CartItemIDs []string `json:"cart_item_ids"`
		Method      string   `json:"method"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	user := &models.User{
		ID:    middleware.UserID(c),
		Email: c.GetString(middleware.ContextUserEmail),
		Name:  c.GetString(middleware.ContextUserName),
	}

	handoff, err := h.checkout.Begin(c.Request.Context(), user, req.CartItemIDs, req.Method)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"handoff":    handoff,
		"client_key": h.config.Payment.ClientKey,
	})
}

// ConfirmPayment handles POST /api/checkout/confirm
func (h *Handlers) ConfirmPayment(c *gin.Context) {
	var req struct {
		PaymentKey string `json:"payment_key"`
		OrderID    string `json:"order_id"`
		Amount     int64  `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	record, err := h.checkout.Confirm(c.Request.Context(), middleware.UserID(c), req.PaymentKey, req.OrderID, req.Amount)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// CheckoutSuccess handles GET /api/checkout/success, the widget's
// success redirect. Query parameter names are the provider's, not ours.
func (h *Handlers) CheckoutSuccess(c *gin.Context) {
	paymentKey := c.Query("paymentKey")
	orderID := c.Query("orderId")
	amount, err := strconv.ParseInt(c.Query("amount"), 10, 64)
	if err != nil {
		c.Redirect(http.StatusFound, "/cart?error="+url.QueryEscape("invalid payment redirect"))
		return
	}

	record, err := h.checkout.Confirm(c.Request.Context(), middleware.UserID(c), paymentKey, orderID, amount)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"order_id": orderID,
			"error":    err.Error(),
		}).Error("confirm on success redirect failed")
		c.Redirect(http.StatusFound, "/checkout/fail?orderId="+url.QueryEscape(orderID))
		return
	}

	c.Redirect(http.StatusFound, "/order-complete?orderId="+url.QueryEscape(record.OrderID))
}

// CheckoutFail handles GET /api/checkout/fail, the widget's fail
// redirect.
func (h *Handlers) CheckoutFail(c *gin.Context) {
	orderID := c.Query("orderId")
	reason := c.Query("message")
	if reason == "" {
		reason = c.Query("code")
	}

	h.checkout.Fail(c.Request.Context(), middleware.UserID(c), orderID, reason)

	c.Redirect(http.StatusFound, "/cart?error="+url.QueryEscape("payment was not completed"))
}

// GetReceipt handles GET /api/orders/:id/receipt
func (h *Handlers) GetReceipt(c *gin.Context) {
	receipt, err := h.receipts.GetByOrderID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, receipt)
}
