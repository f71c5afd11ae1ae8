package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"daztao-be/internal/auth"
	"daztao-be/internal/config"
	"daztao-be/internal/db"
	"daztao-be/internal/logger"
	"daztao-be/internal/metrics"
	"daztao-be/internal/middleware"
	"daztao-be/internal/order"
	"daztao-be/internal/payment"
	"daztao-be/internal/payment/webhook"
	"daztao-be/internal/product"
	"daztao-be/internal/rest"
	"daztao-be/internal/shutdown"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var (
	initDBFunc      = db.InitDB
	startServerFunc = serve
)

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server exited", zap.Error(err))
	}
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := initDBFunc(cfg)
	defer database.Close()

	handler, cleanup, err := newServer(cfg, database)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.L().Info("server running", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
	return startServerFunc(ctx, srv)
}

// newServer wires repositories, services and handlers. cleanup stops
// background workers.
func newServer(cfg *config.Config, database *sql.DB) (http.Handler, func(), error) {
	authenticator, err := auth.NewAuthenticator(cfg.AdminPassword, cfg.JWTSecret)
	if err != nil {
		return nil, nil, err
	}

	productSvc := product.NewService(product.NewRepository(database))
	orderSvc := order.NewService(order.NewRepository(database), productSvc)

	gateway := payment.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayWebhookSecret)
	paymentRepo := payment.NewRepository(database)
	paymentSvc := payment.NewService(gateway, paymentRepo, orderSvc)
	webhookHandler := webhook.NewWebhookHandler(paymentSvc, gateway, paymentRepo)

	handlers := rest.Handlers{
		Products: &rest.ProductHandler{Products: productSvc},
		Orders:   &rest.OrderHandler{Orders: orderSvc},
		Payments: &rest.PaymentHandler{Payments: paymentSvc},
		Admin: &rest.AdminHandler{
			Auth:          authenticator,
			Products:      productSvc,
			Orders:        orderSvc,
			SecureCookies: cfg.IsProduction(),
		},
		Webhook: webhookHandler.WebhookHandler,
		Metrics: metrics.Default,
	}

	limiter := middleware.NewRateLimiter(cfg.InternalServiceKey)
	return setupRouter(handlers, authenticator, limiter, cfg.CORSOrigin), limiter.Stop, nil
}

// setupRouter mounts the routes behind the middleware chain:
// request id, access log, CORS, session, rate limit.
func setupRouter(h rest.Handlers, parser middleware.TokenParser, limiter *middleware.RateLimiter, corsOrigin string) http.Handler {
	mux := http.NewServeMux()
	h.Register(mux)

	var handler http.Handler = mux
	handler = limiter.Middleware(handler)
	handler = middleware.AuthMiddleware(parser)(handler)
	handler = middleware.CORS(corsOrigin)(handler)
	handler = logger.LoggingMiddleware(handler)
	handler = logger.RequestIDMiddleware(handler)
	return handler
}

// serve runs srv until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.L().Info("shutdown requested")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
