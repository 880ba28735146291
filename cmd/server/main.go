package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"irokart-be/internal/api"
	"irokart-be/internal/auth"
	"irokart-be/internal/cart"
	"irokart-be/internal/category"
	"irokart-be/internal/config"
	"irokart-be/internal/dashboard"
	"irokart-be/internal/db"
	"irokart-be/internal/inventory"
	"irokart-be/internal/logger"
	"irokart-be/internal/middleware"
	"irokart-be/internal/order"
	"irokart-be/internal/payment"
	"irokart-be/internal/payment/webhook"
	"irokart-be/internal/product"
	"irokart-be/internal/realtime"
	"irokart-be/internal/user"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var (
	initDBFunc      = db.InitDB
	startServerFunc = func(srv *http.Server) error {
		return srv.ListenAndServe()
	}
)

type server struct {
	handler http.Handler
	bus     realtime.Bus
}

func (s *server) Close() error {
	return s.bus.Close()
}

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := initDBFunc(cfg)
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newServer(ctx, cfg, database)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           app.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("server starting", zap.String("port", cfg.AppPort), zap.String("env", cfg.AppEnv))
		errCh <- startServerFunc(srv)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.L().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.L().Info("server exited")
	return nil
}

// newServer wires repositories, services and the change bus. Background
// workers stop when ctx is done.
func newServer(ctx context.Context, cfg *config.Config, database *sql.DB) (*server, error) {
	bus, err := newBus(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RealtimePGListen {
		listener := realtime.NewPGListener(cfg.ServiceDSN(), bus)
		go func() {
			if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.L().Error("postgres listener stopped", zap.Error(err))
			}
		}()
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	inv := inventory.NewRepository()
	paymentRepo := payment.NewRepository(database)

	userRepo := user.NewRepository(database)
	userSvc := user.NewService(userRepo, tokens)
	categorySvc := category.NewService(category.NewRepository(database))
	productSvc := product.NewService(product.NewRepository(database, inv))
	cartSvc := cart.NewService(productSvc, cart.Pricing{
		FreeShippingThreshold: cfg.ShippingFreeThreshold,
		FlatShippingFee:       cfg.ShippingFlatFee,
	})
	paymentSvc := payment.NewService(
		payment.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret),
		cfg.RazorpayKeySecret,
		cfg.Currency,
	)
	orderSvc := order.NewService(order.NewRepository(database, inv, paymentRepo), cartSvc, paymentSvc, bus)
	dashboardSvc := dashboard.NewService(dashboard.NewRepository(database), cfg.Location(), cfg.DashboardQueryConcurrency)

	handler := api.NewHandler(api.Services{
		Users:      userSvc,
		Categories: categorySvc,
		Products:   productSvc,
		Cart:       cartSvc,
		Orders:     orderSvc,
		Dashboard:  dashboardSvc,
		Payments:   paymentSvc,
		Webhook:    webhook.NewWebhookHandler(paymentRepo, cfg.RazorpayWebhookSecret, bus),
		Bus:        bus,
		Accounts:   user.NewAccountLookup(userRepo),
	}, cfg.AuthEnforceAdmin)

	limiter := middleware.NewRateLimiter(cfg.InternalSecretKey)
	go limiter.Cleanup(ctx, time.Minute, 3*time.Minute)

	return &server{
		handler: setupRouter(handler.Routes(), cfg, tokens, limiter),
		bus:     bus,
	}, nil
}

func newBus(ctx context.Context, cfg *config.Config) (realtime.Bus, error) {
	if cfg.RedisURL == "" {
		return realtime.NewMemoryBus(), nil
	}
	bus, err := realtime.NewRedisBus(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	logger.L().Info("change notifications over redis")
	return bus, nil
}

func setupRouter(routes http.Handler, cfg *config.Config, tokens middleware.TokenParser, limiter *middleware.RateLimiter) http.Handler {
	return middleware.Chain(routes,
		middleware.Recover,
		logger.RequestIDMiddleware,
		logger.LoggingMiddleware,
		middleware.CORS(cfg.CORSOrigin),
		// limiter keys on the user id, so auth has to run first
		middleware.Auth(tokens),
		limiter.Middleware,
	)
}
