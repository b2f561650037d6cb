package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/podomarket/storefront-service/internal/auth"
	"github.com/podomarket/storefront-service/internal/cart"
	"github.com/podomarket/storefront-service/internal/clients"
	"github.com/podomarket/storefront-service/internal/config"
	"github.com/podomarket/storefront-service/internal/events"
	"github.com/podomarket/storefront-service/internal/handlers"
	"github.com/podomarket/storefront-service/internal/repository"
	"github.com/podomarket/storefront-service/internal/server"
	"github.com/podomarket/storefront-service/internal/service"

	_ "github.com/lib/pq"
)

func main() {
	// Missing .env is fine in deployed environments.
	_ = godotenv.Load()

	cfg := config.Load()

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logger := logrus.WithField("service", "storefront-service")

	logger.WithField("port", cfg.Server.Port).Info("Starting storefront-service")

	db, err := initDatabase(cfg, logger)
	if err != nil {
		logger.WithField("error", err.Error()).Fatal("Failed to connect to database")
	}
	defer db.Close()

	cartCache := repository.NewRedisCartCache(cfg.Redis, logger.WithField("component", "cart_cache"))
	defer cartCache.Close()
	recentStore := repository.NewRedisRecentStore(cartCache.Client(), cfg.Redis.TTL)
	receiptStore := repository.NewPostgresReceiptStore(db, logger.WithField("component", "receipts"))

	commerceClient := clients.NewHTTPCommerceClient(cfg.Commerce, logger.WithField("component", "commerce_client"))
	paymentClient := clients.NewHTTPPaymentClient(cfg.Payment, logger.WithField("component", "payment_client"))
	intentClient := clients.NewHTTPIntentClient(cfg.Intent, logger.WithField("component", "intent_client"))

	publisher := events.NewKafkaPublisher(cfg.Kafka, logger.WithField("component", "publisher"))
	defer publisher.Close()

	tokens := auth.NewJWTService(cfg.Session.JWTSecret, cfg.Session.TokenTTL)

	cartService := cart.NewService(commerceClient, cartCache, logger.WithField("component", "cart"))
	checkoutService := service.NewCheckoutService(
		commerceClient,
		paymentClient,
		cartService,
		receiptStore,
		publisher,
		cfg,
		logger.WithField("component", "checkout"),
	)
	chatService := service.NewChatService(
		intentClient,
		commerceClient,
		commerceClient,
		logger.WithField("component", "chat"),
	)
	sessionService := service.NewSessionService(
		commerceClient,
		tokens,
		recentStore,
		logger.WithField("component", "session"),
	)

	h := handlers.NewHandlers(
		cartService,
		checkoutService,
		chatService,
		sessionService,
		commerceClient,
		commerceClient,
		receiptStore,
		cfg,
		logger.WithField("component", "handlers"),
	)

	srv := server.New(h, tokens, cfg)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.WithField("error", err.Error()).Fatal("Server failed to start")
		}
	}()

	// Invalidate cached working copies when the commerce backend
	// announces cart changes.
	consumer := events.NewCartSyncConsumer(cfg.Kafka, cartCache, logger.WithField("component", "cart_sync"))
	go func() {
		if err := consumer.Start(context.Background()); err != nil {
			logger.WithField("error", err.Error()).Error("Cart sync consumer failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	consumer.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithField("error", err.Error()).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}

func initDatabase(cfg *config.Config, logger *logrus.Entry) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"host": cfg.Database.Host,
		"name": cfg.Database.Name,
	}).Info("Database connected")

	return db, nil
}
