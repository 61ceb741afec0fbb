package main

import (
	"context"
	"encoding/hex"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/vendormart/ledger/config"
	"github.com/vendormart/ledger/internal/auth"
	handler "github.com/vendormart/ledger/internal/handler/http"
	"github.com/vendormart/ledger/internal/logger"
	"github.com/vendormart/ledger/internal/middleware"
	"github.com/vendormart/ledger/internal/notify"
	"github.com/vendormart/ledger/internal/repository"
	"github.com/vendormart/ledger/internal/repository/postgres"
	"github.com/vendormart/ledger/internal/service"
	"github.com/vendormart/ledger/internal/worker"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultAuthTokenKey = "f53ac685bbceebd75043e6be2e06ee07"

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

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// initialize database
	db, err := postgres.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Log.Fatal("Error initializing database", zap.Error(err))
	}
	defer db.Close()

	// migrate database
	if err := db.Migrate(); err != nil {
		logger.Log.Fatal("Error migrating database", zap.Error(err))
	}

	tokenKeyHex := cfg.AuthTokenKey
	if tokenKeyHex == "" {
		tokenKeyHex = defaultAuthTokenKey
	}
	tokenKey, err := hex.DecodeString(tokenKeyHex)
	if err != nil {
		logger.Log.Fatal("Error extracting token key", zap.Error(err))
	}
	token := auth.NewAuthToken(tokenKey)

	// dependency injection
	// repositories
	earningRepo := repository.NewEarningRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	vendorRepo := repository.NewVendorRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// notifications
	notifier := notify.NewNotifier(notificationRepo)

	// ledger engine
	ledgerService := service.NewLedgerService(earningRepo, orderRepo, vendorRepo, notifier)

	// order lifecycle
	orderService := service.NewOrderService(orderRepo, ledgerService)
	orderHandler := handler.NewOrderHandler(orderService)

	// balance
	balanceService := service.NewBalanceService(vendorRepo, earningRepo)
	balanceHandler := handler.NewBalanceHandler(balanceService)

	// auth
	authService := service.NewAuthService(vendorRepo, token)
	authHandler := handler.NewAuthHandler(authService)

	// reconciliation worker
	reconciler := worker.NewReconciler(vendorRepo, earningRepo, cfg.ReconcileInterval)

	router := chi.NewRouter()

	router.Use(middleware.Logging(logger.Log))

	router.Post("/api/vendor/login", authHandler.LoginVendor())

	// routes that require authentication
	router.Group(func(group chi.Router) {
		group.Use(handler.AuthMiddleware(token))
		group.Get("/api/vendor/balance", balanceHandler.GetVendorBalance())
		group.Get("/api/vendor/earnings", balanceHandler.GetVendorEarnings())
		group.Post("/api/orders/{number}/status", orderHandler.UpdateOrderStatus())
		group.Post("/api/orders/{number}/refund", orderHandler.RefundOrder())
	})

	server := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: router,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Log.Info("Running server", zap.String("addr", cfg.ServerAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		notifier.Run(gCtx)
		return nil
	})

	g.Go(func() error {
		reconciler.Run(gCtx)
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		return server.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		logger.Log.Fatal("Error running server", zap.Error(err))
	}
}
