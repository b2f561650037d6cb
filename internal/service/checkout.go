package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/podomarket/storefront-service/internal/apperr"
	"github.com/podomarket/storefront-service/internal/cart"
	"github.com/podomarket/storefront-service/internal/clients"
	"github.com/podomarket/storefront-service/internal/config"
	"github.com/podomarket/storefront-service/internal/events"
	"github.com/podomarket/storefront-service/internal/models"
	"github.com/podomarket/storefront-service/internal/repository"
)

const (
	confirmRefreshAttempts = 3
	confirmRefreshBackoff  = 300 * time.Millisecond
)

// OrderBackend creates orders on the commerce backend.
type OrderBackend interface {
	CreateOrder(ctx context.Context, userID string, req *models.CreateOrderRequest) (*models.Order, error)
}

// CheckoutService turns a selection of cart rows into a confirmed
// payment: order creation, the handoff to the payment widget, and the
// confirmation when the widget redirects back.
type CheckoutService struct {
	commerce  OrderBackend
	payment   clients.PaymentClient
	carts     *cart.Service
	receipts  repository.ReceiptStore
	publisher events.Publisher
	config    *config.Config
	logger    *logrus.Entry
}

// NewCheckoutService creates a checkout service.
func NewCheckoutService(
	commerce OrderBackend,
	payment clients.PaymentClient,
	carts *cart.Service,
	receipts repository.ReceiptStore,
	publisher events.Publisher,
	cfg *config.Config,
	logger *logrus.Entry,
) *CheckoutService {
	return &CheckoutService{
		commerce:  commerce,
		payment:   payment,
		carts:     carts,
		receipts:  receipts,
		publisher: publisher,
		config:    cfg,
		logger:    logger,
	}
}

// Begin validates the selection, creates the server-side order and
// returns the handoff parameters for the payment widget. A failed order
// creation surfaces the backend's error as-is and is never retried;
// idempotency is the backend's responsibility.
func (s *CheckoutService) Begin(ctx context.Context, user *models.User, selectedIDs []string, method string) (*models.PaymentHandoff, error) {
	if user == nil || user.ID == "" {
		return nil, apperr.NewUnauthorized("login required")
	}
	if len(selectedIDs) == 0 {
		return nil, apperr.NewValidation("items", "select at least one item")
	}
	if s.config.Payment.SecretKey == "" {
		return nil, &apperr.Error{Kind: apperr.Unavailable, Message: "payment service is not ready"}
	}
	if method == "" {
		method = "card"
	}

	c, err := s.carts.Get(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	selected := c.Select(selectedIDs)
	if len(selected) == 0 {
		return nil, apperr.NewValidation("items", "selected items are no longer in the cart")
	}

	total := CalculateCheckoutTotal(selected)

	req := &models.CreateOrderRequest{
		Amount:       total.Total,
		OrderName:    BuildOrderName(selected),
		CustomerName: user.Name,
		Items:        selected,
		CartItemIDs:  selectedIDs,
	}

	order, err := s.commerce.CreateOrder(ctx, user.ID, req)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"user_id": user.ID,
			"amount":  total.Total,
			"error":   err.Error(),
		}).Error("order creation failed")
		return nil, err
	}

	if err := s.publisher.PublishCheckoutStarted(ctx, user.ID, order); err != nil {
		// Log but don't fail; the order exists either way.
		s.logger.WithFields(logrus.Fields{
			"order_id": order.OrderID,
			"error":    err.Error(),
		}).Error("failed to publish checkout started event")
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": order.OrderID,
		"amount":   order.Amount,
		"user_id":  user.ID,
	}).Info("checkout started")

	return &models.PaymentHandoff{
		OrderID:      order.OrderID,
		Amount:       order.Amount,
		OrderName:    order.OrderName,
		CustomerName: order.CustomerName,
		Method:       method,
		SuccessURL:   s.config.Server.PublicURL + s.config.Payment.SuccessPath,
		FailURL:      s.config.Server.PublicURL + s.config.Payment.FailPath,
	}, nil
}

// Confirm finalizes a payment after the widget's success redirect, then
// refreshes the cart so the purchased rows disappear from the working
// copy. The refresh is retried a few times with a short backoff because
// the backend may still be propagating the checkout when the redirect
// lands.
func (s *CheckoutService) Confirm(ctx context.Context, userID, paymentKey, orderID string, amount int64) (*models.PaymentRecord, error) {
	if paymentKey == "" || orderID == "" {
		return nil, apperr.NewValidation("payment", "missing payment reference")
	}
	if amount <= 0 {
		return nil, apperr.NewValidation("amount", "amount must be positive")
	}

	record, err := s.payment.Confirm(ctx, paymentKey, orderID, amount)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"order_id": orderID,
			"error":    err.Error(),
		}).Error("payment confirmation failed")
		return nil, err
	}

	if err := s.receipts.Save(ctx, userID, record); err != nil {
		// The payment is confirmed at the provider; losing the local
		// journal entry must not fail the user.
		s.logger.WithFields(logrus.Fields{
			"order_id": orderID,
			"error":    err.Error(),
		}).Error("failed to journal receipt")
	}

	if err := s.publisher.PublishPaymentConfirmed(ctx, userID, record); err != nil {
		s.logger.WithFields(logrus.Fields{
			"order_id": orderID,
			"error":    err.Error(),
		}).Error("failed to publish payment confirmed event")
	}

	s.refreshAfterConfirm(ctx, userID, orderID)

	return record, nil
}

// Fail records a failed payment redirect. Nothing is retried; the cart
// is untouched and the user lands back on the cart page.
func (s *CheckoutService) Fail(ctx context.Context, userID, orderID, reason string) {
	s.logger.WithFields(logrus.Fields{
		"order_id": orderID,
		"user_id":  userID,
		"reason":   reason,
	}).Warn("payment failed")

	if err := s.publisher.PublishPaymentFailed(ctx, userID, orderID, reason); err != nil {
		s.logger.WithFields(logrus.Fields{
			"order_id": orderID,
			"error":    err.Error(),
		}).Error("failed to publish payment failed event")
	}
}

func (s *CheckoutService) refreshAfterConfirm(ctx context.Context, userID, orderID string) {
	if userID == "" {
		// Anonymous success redirect; there is no working copy to
		// refresh and the receipt is journaled by order id.
		return
	}

	var err error
	for attempt := 1; attempt <= confirmRefreshAttempts; attempt++ {
		if _, err = s.carts.Refresh(ctx, userID); err == nil {
			return
		}
		s.logger.WithFields(logrus.Fields{
			"user_id":  userID,
			"order_id": orderID,
			"attempt":  attempt,
			"error":    err.Error(),
		}).Warn("post-payment cart refresh failed")

		if attempt == confirmRefreshAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(confirmRefreshBackoff * time.Duration(attempt)):
		}
	}

	// The payment stands; the working copy will reconcile on the next
	// cart read once the cached copy expires or is invalidated.
	s.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"order_id": orderID,
	}).Error("giving up on post-payment cart refresh")

	if err := s.carts.Invalidate(ctx, userID); err != nil {
		s.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"error":   err.Error(),
		}).Error("failed to invalidate cart after confirm")
	}
}
