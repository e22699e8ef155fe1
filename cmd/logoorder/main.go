package main

import (
	"context"
	"encoding/hex"
	"log"
	"net/http"

	"github.com/akormin/logoorder/config"
	"github.com/akormin/logoorder/internal/attach"
	"github.com/akormin/logoorder/internal/auth"
	handler "github.com/akormin/logoorder/internal/handler/http"
	"github.com/akormin/logoorder/internal/ident"
	"github.com/akormin/logoorder/internal/logger"
	"github.com/akormin/logoorder/internal/middleware"
	"github.com/akormin/logoorder/internal/payment"
	"github.com/akormin/logoorder/internal/repository"
	"github.com/akormin/logoorder/internal/repository/memory"
	"github.com/akormin/logoorder/internal/repository/postgres"
	"github.com/akormin/logoorder/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const authTokenKey = "9c1185a5c5e9fc54612808977ee8f548"

func main() {

	// create new config
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// initialize logger
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Log.Sync()

	// create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// select order store: postgres when a DSN is configured, in-memory otherwise
	var (
		orderRepo service.OrderRepository
		seqAlloc  ident.Allocator
	)
	if cfg.DatabaseDSN != "" {
		db, err := postgres.New(ctx, cfg.DatabaseDSN)
		if err != nil {
			logger.Log.Fatal("Error initializing database", zap.Error(err))
		}
		defer db.Close()

		// migrate database
		if err := db.Migrate(); err != nil {
			logger.Log.Fatal("Error migrating database", zap.Error(err))
		}

		orderRepo = repository.NewOrderRepository(db)
		seqAlloc = repository.NewSequenceAllocator(db)
	} else {
		logger.Log.Info("No database DSN configured, using in-memory store")
		orderRepo = memory.NewOrderRepository()
		seqAlloc = memory.NewSequenceAllocator()
	}

	// select identifier strategy
	var alloc ident.Allocator
	switch cfg.IDStrategy {
	case ident.StrategySequence:
		alloc = seqAlloc
	case ident.StrategyToken:
		alloc = ident.NewToken()
	default:
		logger.Log.Fatal("Unknown identifier strategy", zap.String("strategy", cfg.IDStrategy))
	}

	// dependency injection
	// order
	attachments := attach.NewManager(cfg.UploadsRoot)
	orderService := service.NewOrderService(orderRepo, attachments, alloc, payment.NewTrusting())
	orderHandler := handler.NewOrderHandler(orderService, cfg.IDStrategy)

	// payment
	paymentHandler := handler.NewPaymentHandler(orderService, cfg.OrderAmount, cfg.PayPalClientID)

	router := chi.NewRouter()

	router.Use(middleware.Logging(logger.Log))

	router.Post("/orders", orderHandler.CreateOrder())
	router.Get("/orders", orderHandler.ListOrders())
	router.Get("/orders/{id}", orderHandler.GetOrder())
	router.Get("/payment/{id}", paymentHandler.PaymentView())
	router.Post("/orders/{id}/capture", paymentHandler.CaptureOrder())
	router.Post("/orders/{id}/verify", paymentHandler.VerifyOrder())

	// attachments resolve through the static path convention
	router.Handle("/static/uploads/*",
		http.StripPrefix("/static/uploads/", http.FileServer(http.Dir(cfg.UploadsRoot))))

	// the status-update route is gated behind operator auth when an admin
	// login is configured
	if cfg.AdminLogin != "" {
		tokenKey, err := hex.DecodeString(authTokenKey)
		if err != nil {
			logger.Log.Fatal("Error extracting token key", zap.Error(err))
		}
		token := auth.NewAuthToken(tokenKey)

		authService, err := service.NewAuthService(cfg.AdminLogin, cfg.AdminPassword, token)
		if err != nil {
			logger.Log.Fatal("Error initializing auth service", zap.Error(err))
		}
		authHandler := handler.NewAuthHandler(authService)

		router.Post("/api/login", authHandler.LoginUser())

		router.Group(func(group chi.Router) {
			group.Use(middleware.Auth(token))
			group.Post("/orders/{id}/status", orderHandler.UpdateOrderStatus())
		})
	} else {
		router.Post("/orders/{id}/status", orderHandler.UpdateOrderStatus())
	}

	logger.Log.Info("Running server", zap.String("addr", cfg.ServerAddr))

	if err := http.ListenAndServe(cfg.ServerAddr, router); err != nil {
		logger.Log.Fatal("Error starting server", zap.Error(err))
	}
}
