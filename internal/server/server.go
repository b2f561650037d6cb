package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/podomarket/storefront-service/internal/auth"
	"github.com/podomarket/storefront-service/internal/config"
	"github.com/podomarket/storefront-service/internal/handlers"
	"github.com/podomarket/storefront-service/internal/middleware"
)

type Server struct {
	config   *config.Config
	router   *gin.Engine
	handlers *handlers.Handlers
	tokens   *auth.JWTService
	httpSrv  *http.Server
}

func New(h *handlers.Handlers, tokens *auth.JWTService, cfg *config.Config) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics())

	s := &Server{
		config:   cfg,
		router:   router,
		handlers: h,
		tokens:   tokens,
	}

	s.setupRoutes()

	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handlers.Health)
	s.router.GET("/ready", s.handlers.Ready)
	s.router.GET("/live", s.handlers.Live)
	s.router.GET("/version", s.handlers.Version)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api")

	authRequired := middleware.RequireAuth(s.tokens)
	authOptional := middleware.OptionalAuth(s.tokens)

	api.POST("/auth/login", s.handlers.Login)
	api.POST("/auth/register", s.handlers.Register)
	api.GET("/auth/me", authRequired, s.handlers.Me)
	api.POST("/auth/logout", authRequired, s.handlers.Logout)

	api.GET("/products/search", s.handlers.SearchProducts)
	api.GET("/products/random", s.handlers.RandomProducts)
	api.GET("/products/recent", authRequired, s.handlers.RecentlyViewed)
	api.DELETE("/products/recent", authRequired, s.handlers.ClearRecentlyViewed)
	api.GET("/products/:id", authOptional, s.handlers.GetProduct)
	api.GET("/categories", s.handlers.Categories)

	cart := api.Group("/cart", authRequired)
	{
		cart.GET("", s.handlers.GetCart)
		cart.POST("/refresh", s.handlers.RefreshCart)
		cart.POST("/items", s.handlers.AddCartItem)
		cart.PATCH("/items/:index", s.handlers.UpdateCartItem)
		cart.DELETE("/items/:index", s.handlers.RemoveCartItem)
	}

	api.POST("/checkout", authRequired, s.handlers.BeginCheckout)
	api.POST("/checkout/confirm", authRequired, s.handlers.ConfirmPayment)
	// Widget redirects come from the browser without an Authorization
	// header, so these are optional-auth.
	api.GET("/checkout/success", authOptional, s.handlers.CheckoutSuccess)
	api.GET("/checkout/fail", authOptional, s.handlers.CheckoutFail)

	api.GET("/orders", authRequired, s.handlers.ListOrders)
	api.GET("/orders/:id/receipt", authRequired, s.handlers.GetReceipt)

	chat := api.Group("/chat", authRequired)
	{
		chat.GET("", s.handlers.GetTranscript)
		chat.POST("", s.handlers.PostChat)
		chat.DELETE("", s.handlers.ResetChat)
	}
}

func (s *Server) Start() error {
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}
