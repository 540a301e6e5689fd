package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/producemart/wholesale-api/internal/auth"
	"github.com/producemart/wholesale-api/internal/cache"
	"github.com/producemart/wholesale-api/internal/catalog"
	"github.com/producemart/wholesale-api/internal/config"
	"github.com/producemart/wholesale-api/internal/cutoff"
	"github.com/producemart/wholesale-api/internal/domain"
	"github.com/producemart/wholesale-api/internal/messaging"
	"github.com/producemart/wholesale-api/internal/orders"
	"github.com/producemart/wholesale-api/internal/promotions"
	"github.com/producemart/wholesale-api/internal/reports"
	"github.com/producemart/wholesale-api/internal/telemetry"
)

const serviceVersion = "0.1.0"

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.PostgresURL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.ServiceName, serviceVersion, cfg.OTLPEndpoint)
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(cfg.ServiceName, serviceVersion)
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	if err := runtime.Start(); err != nil {
		logger.Error("failed to start runtime instrumentation", "error", err)
		os.Exit(1)
	}

	db, err := telemetry.OpenDB("postgres", cfg.PostgresURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	db.SetMaxOpenConns(cfg.MaxDBConns)
	db.SetMaxIdleConns(cfg.MaxDBConns)

	if err := db.PingContext(ctx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	c := cache.New(cfg.RedisAddr)
	defer func() { _ = c.Close() }()

	var createdProducer, statusProducer *messaging.Producer
	if len(cfg.KafkaBrokers) > 0 {
		createdProducer = messaging.NewProducer(cfg.KafkaBrokers, domain.TopicOrderCreated)
		defer func() { _ = createdProducer.Close() }()
		statusProducer = messaging.NewProducer(cfg.KafkaBrokers, domain.TopicOrderStatusChanged)
		defer func() { _ = statusProducer.Close() }()
	}

	orderMetrics, err := telemetry.NewOrderMetrics()
	if err != nil {
		logger.Error("failed to register metrics", "error", err)
		os.Exit(1)
	}

	policy := cutoff.NewPolicy(cfg.CutoffHour, cfg.CutoffMinute)
	secret := []byte(cfg.JWTSecret)

	userRepo := auth.NewUserRepository(db)
	authHandler := auth.NewHandler(userRepo, secret, logger)

	orderRepo := orders.NewOrderRepository(db)
	orderHandler := orders.NewHandler(orderRepo, policy, createdProducer, statusProducer, c, orderMetrics, logger)

	promoRepo := promotions.NewRepository(db)
	promoHandler := promotions.NewHandler(promoRepo, logger)

	productRepo := catalog.NewProductRepository(db)
	catalogHandler := catalog.NewHandler(productRepo, promoRepo, policy, c, logger)

	reportRepo := reports.NewRepository(db)
	reportHandler := reports.NewHandler(reportRepo, logger)

	authed := auth.Authenticate(secret)
	admin := func(h http.HandlerFunc) http.Handler {
		return authed(auth.RequireAdmin(telemetry.WithHTTPRoute(h)))
	}
	buyer := func(h http.HandlerFunc) http.Handler {
		return authed(telemetry.WithHTTPRoute(h))
	}
	public := func(h http.HandlerFunc) http.Handler {
		return telemetry.WithHTTPRoute(h)
	}

	mux := http.NewServeMux()

	mux.Handle("POST /api/auth/register", public(authHandler.HandleRegister))
	mux.Handle("POST /api/auth/login", public(authHandler.HandleLogin))
	mux.Handle("GET /api/auth/me", buyer(authHandler.HandleMe))
	mux.Handle("GET /api/users/{id}", buyer(authHandler.HandleGetUser))

	mux.Handle("GET /api/products", buyer(catalogHandler.HandleList))
	mux.Handle("GET /api/products/all", admin(catalogHandler.HandleListAll))
	mux.Handle("GET /api/products/{id}", buyer(catalogHandler.HandleGet))
	mux.Handle("POST /api/products", admin(catalogHandler.HandleCreate))
	mux.Handle("PATCH /api/products/{id}", admin(catalogHandler.HandleUpdate))
	mux.Handle("DELETE /api/products/{id}", admin(catalogHandler.HandleDelete))
	mux.Handle("GET /api/automation/daily-catalog", admin(catalogHandler.HandleDaily))

	mux.Handle("POST /api/orders", buyer(orderHandler.HandleCreate))
	mux.Handle("GET /api/orders", admin(orderHandler.HandleListAll))
	mux.Handle("GET /api/orders/mine", buyer(orderHandler.HandleListMine))
	mux.Handle("GET /api/orders/{id}", buyer(orderHandler.HandleGet))
	mux.Handle("PATCH /api/orders/{id}/status", admin(orderHandler.HandleUpdateStatus))

	mux.Handle("GET /api/promotions", buyer(promoHandler.HandleList))
	mux.Handle("POST /api/promotions", admin(promoHandler.HandleCreate))
	mux.Handle("POST /api/promotions/{id}/activate", admin(promoHandler.HandleActivate))
	mux.Handle("POST /api/promotions/{id}/deactivate", admin(promoHandler.HandleDeactivate))

	mux.Handle("GET /api/reports/top-products", admin(reportHandler.HandleTopProducts))
	mux.Handle("GET /api/reports/low-stock", admin(reportHandler.HandleLowStock))
	mux.Handle("GET /api/reports/daily-summary", admin(reportHandler.HandleDailySummary))

	mux.Handle("GET /metrics", metricsHandler)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: otelhttp.NewHandler(mux, cfg.ServiceName,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting api server", "addr", cfg.HTTPAddr, "cutoff", policy.Window())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
