package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podomarket/storefront-service/internal/apperr"
	"github.com/podomarket/storefront-service/internal/cart"
	"github.com/podomarket/storefront-service/internal/clients"
	"github.com/podomarket/storefront-service/internal/config"
	"github.com/podomarket/storefront-service/internal/middleware"
	"github.com/podomarket/storefront-service/internal/models"
	"github.com/podomarket/storefront-service/internal/service"
)

type fakeCartBackend struct {
	items []models.CartItem
}

func (b *fakeCartBackend) FetchCart(_ context.Context, _ string) ([]models.CartItem, error) {
	return b.items, nil
}

type fakeCartCache struct {
	data map[string][]models.CartItem
}

func (c *fakeCartCache) Get(_ context.Context, userID string) ([]models.CartItem, bool, error) {
	items, ok := c.data[userID]
	return items, ok, nil
}

func (c *fakeCartCache) Set(_ context.Context, userID string, items []models.CartItem) error {
	c.data[userID] = items
	return nil
}

func (c *fakeCartCache) Delete(_ context.Context, userID string) error {
	delete(c.data, userID)
	return nil
}

func quietLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(logger)
}

// fakeAuth stands in for the JWT middleware in handler tests.
func fakeAuth(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Next()
	}
}

func newTestHandlers(items []models.CartItem) (*Handlers, *gin.Engine) {
	gin.SetMode(gin.TestMode)

	backend := &fakeCartBackend{items: items}
	carts := cart.NewService(backend, &fakeCartCache{data: make(map[string][]models.CartItem)}, quietLogger())
	chat := service.NewChatService(clients.NewMockIntentClient(), nil, nil, quietLogger())

	h := &Handlers{
		carts:  carts,
		chat:   chat,
		config: &config.Config{},
		logger: quietLogger(),
	}

	router := gin.New()
	router.GET("/health", h.Health)
	router.GET("/version", h.Version)

	authed := router.Group("/api", fakeAuth("user-1"))
	authed.GET("/cart", h.GetCart)
	authed.POST("/cart/items", h.AddCartItem)
	authed.PATCH("/cart/items/:index", h.UpdateCartItem)
	authed.DELETE("/cart/items/:index", h.RemoveCartItem)
	authed.POST("/chat", h.PostChat)

	return h, router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	_, router := newTestHandlers(nil)

	w := doJSON(t, router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "storefront-service", resp["service"])
}

func TestGetCart(t *testing.T) {
	_, router := newTestHandlers([]models.CartItem{
		{ID: "row-1", ProductID: "p1", Price: 19000, Quantity: 2},
	})

	w := doJSON(t, router, http.MethodGet, "/api/cart", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Items    []models.CartItem `json:"items"`
		Subtotal int64             `json:"subtotal"`
		Count    int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Items, 1)
	assert.Equal(t, int64(38000), resp.Subtotal)
}

func TestAddCartItem(t *testing.T) {
	_, router := newTestHandlers(nil)

	w := doJSON(t, router, http.MethodPost, "/api/cart/items", models.CartItem{
		ProductID: "p1",
		Name:      "코트",
		Price:     19000,
		Quantity:  1,
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Items []models.CartItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "p1", resp.Items[0].ProductID)
}

func TestAddCartItem_RequiresProductID(t *testing.T) {
	_, router := newTestHandlers(nil)

	w := doJSON(t, router, http.MethodPost, "/api/cart/items", models.CartItem{Quantity: 1})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateCartItem_ZeroRemoves(t *testing.T) {
	_, router := newTestHandlers([]models.CartItem{
		{ID: "row-1", ProductID: "p1", Price: 19000, Quantity: 2},
	})

	w := doJSON(t, router, http.MethodPatch, "/api/cart/items/0", map[string]int{"quantity": 0})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Items []models.CartItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Items)
}

func TestUpdateCartItem_BadIndex(t *testing.T) {
	_, router := newTestHandlers(nil)

	w := doJSON(t, router, http.MethodPatch, "/api/cart/items/abc", map[string]int{"quantity": 1})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostChat(t *testing.T) {
	_, router := newTestHandlers(nil)

	w := doJSON(t, router, http.MethodPost, "/api/chat", map[string]string{"message": "안녕"})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp service.DispatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Reply)
	assert.Len(t, resp.Transcript, 2)
}

func TestPostChat_EmptyMessage(t *testing.T) {
	_, router := newTestHandlers(nil)

	w := doJSON(t, router, http.MethodPost, "/api/chat", map[string]string{"message": "   "})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleError_Mapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", apperr.NewValidation("items", "select at least one item"), http.StatusBadRequest},
		{"unauthorized", apperr.NewUnauthorized("login required"), http.StatusUnauthorized},
		{"not found", apperr.ErrNotFound, http.StatusNotFound},
		{"upstream", apperr.NewUpstream("재고가 부족합니다"), http.StatusBadGateway},
		{"unknown", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			handleError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
		})
	}
}
