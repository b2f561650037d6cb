package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podomarket/storefront-service/internal/apperr"
	"github.com/podomarket/storefront-service/internal/cart"
	"github.com/podomarket/storefront-service/internal/clients"
	"github.com/podomarket/storefront-service/internal/config"
	"github.com/podomarket/storefront-service/internal/events"
	"github.com/podomarket/storefront-service/internal/models"
	"github.com/podomarket/storefront-service/internal/repository"
)

type stubCartBackend struct {
	items   []models.CartItem
	fetches int
	err     error
}

func (b *stubCartBackend) FetchCart(_ context.Context, _ string) ([]models.CartItem, error) {
	b.fetches++
	if b.err != nil {
		return nil, b.err
	}
	return b.items, nil
}

type stubCartCache struct {
	data map[string][]models.CartItem
}

func newStubCartCache() *stubCartCache {
	return &stubCartCache{data: make(map[string][]models.CartItem)}
}

func (c *stubCartCache) Get(_ context.Context, userID string) ([]models.CartItem, bool, error) {
	items, ok := c.data[userID]
	return items, ok, nil
}

func (c *stubCartCache) Set(_ context.Context, userID string, items []models.CartItem) error {
	c.data[userID] = items
	return nil
}

func (c *stubCartCache) Delete(_ context.Context, userID string) error {
	delete(c.data, userID)
	return nil
}

type stubOrderBackend struct {
	created []*models.CreateOrderRequest
	err     error
}

func (b *stubOrderBackend) CreateOrder(_ context.Context, _ string, req *models.CreateOrderRequest) (*models.Order, error) {
	if b.err != nil {
		return nil, b.err
	}
	b.created = append(b.created, req)
	return &models.Order{
		OrderID:      "order-1",
		Amount:       req.Amount,
		OrderName:    req.OrderName,
		CustomerName: req.CustomerName,
		Items:        req.Items,
		Status:       models.OrderStatusPending,
	}, nil
}

func testEntry() *logrus.Entry {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(logger)
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{PublicURL: "http://localhost:8080"},
		Payment: config.PaymentConfig{
			SecretKey:   "test_sk",
			SuccessPath: "/api/checkout/success",
			FailPath:    "/api/checkout/fail",
		},
	}
}

type checkoutFixture struct {
	svc      *CheckoutService
	backend  *stubCartBackend
	orders   *stubOrderBackend
	payment  *clients.MockPaymentClient
	receipts *repository.MockReceiptStore
	events   *events.MockPublisher
	carts    *cart.Service
}

func newCheckoutFixture(items []models.CartItem) *checkoutFixture {
	backend := &stubCartBackend{items: items}
	carts := cart.NewService(backend, newStubCartCache(), testEntry())
	orders := &stubOrderBackend{}
	payment := clients.NewMockPaymentClient()
	receipts := repository.NewMockReceiptStore()
	publisher := events.NewMockPublisher()

	svc := NewCheckoutService(orders, payment, carts, receipts, publisher, testConfig(), testEntry())

	return &checkoutFixture{
		svc:      svc,
		backend:  backend,
		orders:   orders,
		payment:  payment,
		receipts: receipts,
		events:   publisher,
		carts:    carts,
	}
}

func buyer() *models.User {
	return &models.User{ID: "user-1", Name: "김포도", Email: "podo@example.com"}
}

func TestCheckout_Begin(t *testing.T) {
	f := newCheckoutFixture([]models.CartItem{
		{ID: "row-1", ProductID: "p1", Name: "겨울 코트", Price: 19000, Quantity: 2},
		{ID: "row-2", ProductID: "p2", Name: "니트", Price: 17000, Quantity: 1},
	})

	handoff, err := f.svc.Begin(context.Background(), buyer(), []string{"row-1", "row-2"}, "")

	require.NoError(t, err)
	assert.Equal(t, "order-1", handoff.OrderID)
	assert.Equal(t, int64(55000), handoff.Amount)
	assert.Equal(t, "겨울 코트, 니트", handoff.OrderName)
	assert.Equal(t, "card", handoff.Method)
	assert.Equal(t, "http://localhost:8080/api/checkout/success", handoff.SuccessURL)
	assert.Equal(t, "http://localhost:8080/api/checkout/fail", handoff.FailURL)

	require.Len(t, f.orders.created, 1)
	assert.Equal(t, int64(55000), f.orders.created[0].Amount)
}

func TestCheckout_Begin_AddsDeliveryFee(t *testing.T) {
	f := newCheckoutFixture([]models.CartItem{
		{ID: "row-1", ProductID: "p1", Name: "양말", Price: 5000, Quantity: 1},
	})

	handoff, err := f.svc.Begin(context.Background(), buyer(), []string{"row-1"}, "card")

	require.NoError(t, err)
	assert.Equal(t, int64(8000), handoff.Amount)
}

func TestCheckout_Begin_RequiresLogin(t *testing.T) {
	f := newCheckoutFixture(nil)

	_, err := f.svc.Begin(context.Background(), nil, []string{"row-1"}, "")

	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.Unauthorized, appErr.Kind)
}

func TestCheckout_Begin_RequiresSelection(t *testing.T) {
	f := newCheckoutFixture(nil)

	_, err := f.svc.Begin(context.Background(), buyer(), nil, "")

	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.Invalid, appErr.Kind)
}

func TestCheckout_Begin_SelectionGoneFromCart(t *testing.T) {
	f := newCheckoutFixture([]models.CartItem{
		{ID: "row-1", ProductID: "p1", Price: 5000, Quantity: 1},
	})

	_, err := f.svc.Begin(context.Background(), buyer(), []string{"row-gone"}, "")

	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.Invalid, appErr.Kind)
}

func TestCheckout_Begin_MissingSecretKey(t *testing.T) {
	f := newCheckoutFixture([]models.CartItem{
		{ID: "row-1", ProductID: "p1", Price: 5000, Quantity: 1},
	})
	f.svc.config.Payment.SecretKey = ""

	_, err := f.svc.Begin(context.Background(), buyer(), []string{"row-1"}, "")

	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.Unavailable, appErr.Kind)
	assert.Empty(t, f.orders.created)
}

func TestCheckout_Begin_OrderCreationFails(t *testing.T) {
	f := newCheckoutFixture([]models.CartItem{
		{ID: "row-1", ProductID: "p1", Price: 5000, Quantity: 1},
	})
	f.orders.err = errors.New("backend down")

	_, err := f.svc.Begin(context.Background(), buyer(), []string{"row-1"}, "")

	assert.Error(t, err)
}

func TestCheckout_Confirm_RemovesPurchasedRows(t *testing.T) {
	f := newCheckoutFixture([]models.CartItem{
		{ID: "row-1", ProductID: "p1", Name: "코트", Price: 40000, Quantity: 1},
		{ID: "row-2", ProductID: "p2", Name: "니트", Price: 17000, Quantity: 1},
	})

	_, err := f.svc.Begin(context.Background(), buyer(), []string{"row-1"}, "")
	require.NoError(t, err)

	// The backend removes the purchased row from the server cart.
	f.backend.items = []models.CartItem{
		{ID: "row-2", ProductID: "p2", Name: "니트", Price: 17000, Quantity: 1},
	}

	record, err := f.svc.Confirm(context.Background(), "user-1", "pay-key", "order-1", 40000)

	require.NoError(t, err)
	assert.Equal(t, "DONE", record.Status)
	require.Len(t, f.payment.Confirmed, 1)

	c, err := f.carts.Get(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "row-2", c.Items[0].ID)
}

func TestCheckout_Confirm_AnonymousRedirectSkipsCartRefresh(t *testing.T) {
	f := newCheckoutFixture(nil)

	// The widget's success redirect is a plain browser navigation, so
	// the user id may be absent. The receipt still lands; the cart is
	// left alone instead of retrying against an empty key.
	record, err := f.svc.Confirm(context.Background(), "", "pay-key", "order-1", 1000)

	require.NoError(t, err)
	assert.Equal(t, "DONE", record.Status)
	assert.Equal(t, 0, f.backend.fetches)
	require.Len(t, f.receipts.Saved, 1)
}

func TestCheckout_Confirm_ValidatesInput(t *testing.T) {
	f := newCheckoutFixture(nil)

	_, err := f.svc.Confirm(context.Background(), "user-1", "", "order-1", 1000)
	assert.Error(t, err)

	_, err = f.svc.Confirm(context.Background(), "user-1", "pay-key", "order-1", 0)
	assert.Error(t, err)
}

func TestCheckout_Confirm_ProviderDeclines(t *testing.T) {
	f := newCheckoutFixture(nil)
	f.payment.FailWith = apperr.NewUpstream("카드 한도를 초과했습니다")

	_, err := f.svc.Confirm(context.Background(), "user-1", "pay-key", "order-1", 1000)

	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.Upstream, appErr.Kind)
}
