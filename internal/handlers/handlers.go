package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/podomarket/storefront-service/internal/apperr"
	"github.com/podomarket/storefront-service/internal/cart"
	"github.com/podomarket/storefront-service/internal/config"
	"github.com/podomarket/storefront-service/internal/models"
	"github.com/podomarket/storefront-service/internal/repository"
	"github.com/podomarket/storefront-service/internal/service"
)

// CatalogAPI is the product browsing surface of the commerce backend.
type CatalogAPI interface {
	SearchProducts(ctx context.Context, query string) ([]models.Product, error)
	RandomProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

// OrdersAPI lists a user's orders from the commerce backend.
type OrdersAPI interface {
	ListOrders(ctx context.Context, userID string) ([]models.Order, error)
}

// Handlers holds all HTTP handlers for the storefront service.
type Handlers struct {
	carts    *cart.Service
	checkout *service.CheckoutService
	chat     *service.ChatService
	sessions *service.SessionService
	catalog  CatalogAPI
	orders   OrdersAPI
	receipts repository.ReceiptStore
	config   *config.Config
	logger   *logrus.Entry
}

// NewHandlers creates a new handlers instance.
func NewHandlers(
	carts *cart.Service,
	checkout *service.CheckoutService,
	chat *service.ChatService,
	sessions *service.SessionService,
	catalog CatalogAPI,
	orders OrdersAPI,
	receipts repository.ReceiptStore,
	cfg *config.Config,
	logger *logrus.Entry,
) *Handlers {
	return &Handlers{
		carts:    carts,
		checkout: checkout,
		chat:     chat,
		sessions: sessions,
		catalog:  catalog,
		orders:   orders,
		receipts: receipts,
		config:   cfg,
		logger:   logger,
	}
}

func handleError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	body := gin.H{"error": apperr.PublicMessage(err)}
	if appErr, ok := apperr.As(err); ok && appErr.Field != "" {
		body["field"] = appErr.Field
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}
