package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"

	"github.com/podomarket/storefront-service/internal/apperr"
	"github.com/podomarket/storefront-service/internal/config"
	"github.com/podomarket/storefront-service/internal/models"
)

// HeaderUserID carries the authenticated user's id to the commerce
// backend on proxied calls.
const HeaderUserID = "X-User-ID"

// HTTPCommerceClient talks to the commerce backend: cart state, orders,
// catalog reads and session endpoints.
type HTTPCommerceClient struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
	logger     *logrus.Entry
}

// NewHTTPCommerceClient creates a commerce backend client.
func NewHTTPCommerceClient(cfg config.ServiceConfig, logger *logrus.Entry) *HTTPCommerceClient {
	return &HTTPCommerceClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		apiKey: cfg.APIKey,
		logger: logger,
	}
}

// FetchCart retrieves the server-held cart for a user.
func (c *HTTPCommerceClient) FetchCart(ctx context.Context, userID string) ([]models.CartItem, error) {
	c.logger.WithFields(logrus.Fields{"user_id": userID}).Debug("fetching server cart")

	var out struct {
		Items []models.CartItem `json:"items"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/cart", userID, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// CreateOrder creates a pending order for the selected cart rows. The
// backend owns idempotency; a failure here is surfaced as-is and never
// retried.
func (c *HTTPCommerceClient) CreateOrder(ctx context.Context, userID string, req *models.CreateOrderRequest) (*models.Order, error) {
	c.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"amount":     req.Amount,
		"item_count": len(req.Items),
	}).Info("creating order")

	var order models.Order
	if err := c.doJSON(ctx, http.MethodPost, "/api/payment/orders", userID, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders retrieves the user's order history.
func (c *HTTPCommerceClient) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	var out struct {
		Orders []models.Order `json:"orders"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/orders", userID, nil, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

// SearchProducts queries the catalog.
func (c *HTTPCommerceClient) SearchProducts(ctx context.Context, query string) ([]models.Product, error) {
	path := "/api/products/search?q=" + url.QueryEscape(query)
	var out struct {
		Products []models.Product `json:"products"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

// RandomProducts returns the backend's random product selection.
func (c *HTTPCommerceClient) RandomProducts(ctx context.Context) ([]models.Product, error) {
	var out struct {
		Products []models.Product `json:"products"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/products/random", "", nil, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

// GetProduct retrieves a single product by id.
func (c *HTTPCommerceClient) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := c.doJSON(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), "", nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Categories lists catalog categories.
func (c *HTTPCommerceClient) Categories(ctx context.Context) ([]string, error) {
	var out struct {
		Categories []string `json:"categories"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/products/categories", "", nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

// Login authenticates credentials against the backend.
func (c *HTTPCommerceClient) Login(ctx context.Context, creds *models.Credentials) (*models.User, error) {
	var user models.User
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", "", creds, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Register creates a backend account.
func (c *HTTPCommerceClient) Register(ctx context.Context, reg *models.Registration) (*models.User, error) {
	var user models.User
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", "", reg, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Me runs the backend session check for a user.
func (c *HTTPCommerceClient) Me(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/me", userID, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// doJSON issues one request and decodes the response. Transport failures
// map to apperr.Unavailable; error responses surface the backend's detail
// string verbatim when present.
func (c *HTTPCommerceClient) doJSON(ctx context.Context, method, path, userID string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	c.setHeaders(req, userID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"method": method,
			"path":   path,
			"error":  err.Error(),
		}).Error("commerce request failed")
		return apperr.NewUnavailable(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperr.ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		return apperr.NewUnauthorized("login required")
	case resp.StatusCode >= 400:
		return apperr.NewUpstream(decodeErrorDetail(resp))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode commerce response: %w", err)
	}
	return nil
}

func (c *HTTPCommerceClient) setHeaders(req *http.Request, userID string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if userID != "" {
		req.Header.Set(HeaderUserID, userID)
	}
}

// decodeErrorDetail pulls the backend's error string out of a failed
// response. The backend is inconsistent about the field name.
func decodeErrorDetail(resp *http.Response) string {
	var payload struct {
		Detail  string `json:"detail"`
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Sprintf("commerce backend returned status %d", resp.StatusCode)
	}
	for _, s := range []string{payload.Detail, payload.Error, payload.Message} {
		if s != "" {
			return s
		}
	}
	return fmt.Sprintf("commerce backend returned status %d", resp.StatusCode)
}
