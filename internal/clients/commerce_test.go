package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podomarket/storefront-service/internal/apperr"
	"github.com/podomarket/storefront-service/internal/config"
)

func newTestCommerceClient(baseURL string) *HTTPCommerceClient {
	return NewHTTPCommerceClient(config.ServiceConfig{
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
		APIKey:  "backend-key",
	}, paymentTestLogger())
}

func TestCommerceClient_FetchCart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "user-1", r.Header.Get(HeaderUserID))
		assert.Equal(t, "Bearer backend-key", r.Header.Get("Authorization"))

		w.Write([]byte(`{"items": [
			{"id": "row-1", "product_id": "p1", "name": "코트", "price": 19000, "quantity": 2}
		]}`))
	}))
	defer srv.Close()

	client := newTestCommerceClient(srv.URL)

	items, err := client.FetchCart(context.Background(), "user-1")

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "row-1", items[0].ID)
	assert.Equal(t, int64(19000), items[0].Price)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestCommerceClient_SearchProducts_EscapesQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "겨울 코트", r.URL.Query().Get("q"))
		w.Write([]byte(`{"products": [{"id": 1, "name": "겨울 코트", "price": 19000}]}`))
	}))
	defer srv.Close()

	client := newTestCommerceClient(srv.URL)

	products, err := client.SearchProducts(context.Background(), "겨울 코트")

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "1", products[0].ID)
}

func TestCommerceClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "not found",
			status: http.StatusNotFound,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, apperr.ErrNotFound)
			},
		},
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			check: func(t *testing.T, err error) {
				appErr, ok := apperr.As(err)
				require.True(t, ok)
				assert.Equal(t, apperr.Unauthorized, appErr.Kind)
			},
		},
		{
			name:   "detail surfaces verbatim",
			status: http.StatusBadRequest,
			body:   `{"detail": "재고가 부족합니다"}`,
			check: func(t *testing.T, err error) {
				appErr, ok := apperr.As(err)
				require.True(t, ok)
				assert.Equal(t, apperr.Upstream, appErr.Kind)
				assert.Contains(t, appErr.Error(), "재고가 부족합니다")
			},
		},
		{
			name:   "error field also accepted",
			status: http.StatusConflict,
			body:   `{"error": "이미 주문되었습니다"}`,
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "이미 주문되었습니다")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				if tt.body != "" {
					w.Write([]byte(tt.body))
				}
			}))
			defer srv.Close()

			client := newTestCommerceClient(srv.URL)
			_, err := client.GetProduct(context.Background(), "p1")

			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestCommerceClient_Unreachable(t *testing.T) {
	client := newTestCommerceClient("http://127.0.0.1:1")

	_, err := client.FetchCart(context.Background(), "user-1")

	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.Unavailable, appErr.Kind)
}
