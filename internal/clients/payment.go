package clients

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/podomarket/storefront-service/internal/apperr"
	"github.com/podomarket/storefront-service/internal/config"
	"github.com/podomarket/storefront-service/internal/models"
)

// PaymentClient confirms payments with the external widget provider.
type PaymentClient interface {
	Confirm(ctx context.Context, paymentKey, orderID string, amount int64) (*models.PaymentRecord, error)
}

// Ensure HTTPPaymentClient implements PaymentClient.
var _ PaymentClient = (*HTTPPaymentClient)(nil)

// HTTPPaymentClient implements PaymentClient against the provider's REST
// API. The provider authenticates with the secret key as a Basic auth
// username and an empty password.
type HTTPPaymentClient struct {
	baseURL    string
	httpClient *http.Client
	secretKey  string
	logger     *logrus.Entry
}

// NewHTTPPaymentClient creates a payment provider client.
func NewHTTPPaymentClient(cfg config.PaymentConfig, logger *logrus.Entry) *HTTPPaymentClient {
	return &HTTPPaymentClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		secretKey: cfg.SecretKey,
		logger:    logger,
	}
}

type confirmRequest struct {
	PaymentKey string `json:"paymentKey"`
	OrderID    string `json:"orderId"`
	Amount     int64  `json:"amount"`
}

// Confirm finalizes a payment using the reference the success redirect
// carried. The provider rejects amount mismatches.
func (c *HTTPPaymentClient) Confirm(ctx context.Context, paymentKey, orderID string, amount int64) (*models.PaymentRecord, error) {
	c.logger.WithFields(logrus.Fields{
		"order_id": orderID,
		"amount":   amount,
	}).Info("confirming payment")

	body, err := json.Marshal(confirmRequest{
		PaymentKey: paymentKey,
		OrderID:    orderID,
		Amount:     amount,
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1/payments/confirm", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(c.secretKey+":")))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"order_id": orderID,
			"error":    err.Error(),
		}).Error("payment confirm request failed")
		return nil, apperr.NewUnavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var provider struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&provider); err != nil || provider.Message == "" {
			return nil, apperr.NewUpstream(fmt.Sprintf("payment provider returned status %d", resp.StatusCode))
		}
		return nil, apperr.NewUpstream(provider.Message)
	}

	var raw struct {
		PaymentKey string    `json:"paymentKey"`
		OrderID    string    `json:"orderId"`
		Amount     int64     `json:"totalAmount"`
		Method     string    `json:"method"`
		Status     string    `json:"status"`
		ApprovedAt time.Time `json:"approvedAt"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode payment response: %w", err)
	}

	record := &models.PaymentRecord{
		PaymentKey: raw.PaymentKey,
		OrderID:    raw.OrderID,
		Amount:     raw.Amount,
		Method:     raw.Method,
		Status:     raw.Status,
		ApprovedAt: raw.ApprovedAt,
	}

	c.logger.WithFields(logrus.Fields{
		"order_id": record.OrderID,
		"status":   record.Status,
		"method":   record.Method,
	}).Info("payment confirmed")

	return record, nil
}

// MockPaymentClient is an in-memory implementation for tests.
type MockPaymentClient struct {
	Confirmed []models.PaymentRecord
	FailWith  error
}

// NewMockPaymentClient creates a mock payment client.
func NewMockPaymentClient() *MockPaymentClient {
	return &MockPaymentClient{}
}

func (m *MockPaymentClient) Confirm(ctx context.Context, paymentKey, orderID string, amount int64) (*models.PaymentRecord, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	record := models.PaymentRecord{
		PaymentKey: paymentKey,
		OrderID:    orderID,
		Amount:     amount,
		Method:     "card",
		Status:     "DONE",
		ApprovedAt: time.Now(),
	}
	m.Confirmed = append(m.Confirmed, record)
	return &record, nil
}
