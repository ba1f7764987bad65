package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/dealdesk/dealdesk-backend/api/routes"
	"github.com/dealdesk/dealdesk-backend/internal/analytics"
	"github.com/dealdesk/dealdesk-backend/internal/auth"
	"github.com/dealdesk/dealdesk-backend/internal/chat"
	"github.com/dealdesk/dealdesk-backend/internal/deals"
	"github.com/dealdesk/dealdesk-backend/internal/documents"
	"github.com/dealdesk/dealdesk-backend/internal/realtime"
	"github.com/dealdesk/dealdesk-backend/internal/users"
	"github.com/dealdesk/dealdesk-backend/pkg/auth/session"
	"github.com/dealdesk/dealdesk-backend/pkg/config"
	"github.com/dealdesk/dealdesk-backend/pkg/db"
	"github.com/dealdesk/dealdesk-backend/pkg/logger"
	"github.com/dealdesk/dealdesk-backend/pkg/metrics"
	"github.com/dealdesk/dealdesk-backend/pkg/migrate"
	"github.com/dealdesk/dealdesk-backend/pkg/redis"
	"github.com/dealdesk/dealdesk-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	gcsClient, err := gcs.NewClient(context.Background(), cfg.Storage, cfg.GCP)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap object storage", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		RateLimiter:    redisClient,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	dealService, err := deals.NewService(deals.ServiceParams{
		Repo:     deals.NewRepository(dbClient.DB()),
		UserRepo: userRepo,
		DB:       dbClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create deals service", err)
		os.Exit(1)
	}

	chatService, err := chat.NewService(chat.ServiceParams{
		Repo:  chat.NewRepository(dbClient.DB()),
		Deals: dealService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create chat service", err)
		os.Exit(1)
	}

	documentService, err := documents.NewService(documents.ServiceParams{
		Repo:    documents.NewRepository(dbClient.DB()),
		Deals:   dealService,
		Storage: gcsClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create documents service", err)
		os.Exit(1)
	}

	analyticsService, err := analytics.NewService(analytics.ServiceParams{
		Repo: analytics.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create analytics service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.NewHTTPMetrics(registry)
	realtimeMetrics := metrics.NewRealtimeMetrics(registry)

	hub := realtime.NewHub(realtimeMetrics)
	realtimeHandler := realtime.NewHandler(hub, dealService, chatService, cfg.Realtime, cfg.CORS.AllowedOrigins, logg)

	router := routes.NewRouter(routes.Deps{
		Config:           cfg,
		Logger:           logg,
		Sessions:         sessionManager,
		HTTPMetrics:      httpMetrics,
		Gatherer:         registry,
		DBPinger:         dbClient,
		CachePinger:      redisClient,
		AuthService:      authService,
		DealService:      dealService,
		ChatService:      chatService,
		DocumentService:  documentService,
		AnalyticsService: analyticsService,
		Hub:              hub,
		Realtime:         realtimeHandler,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		var closeErr error
		closeErr = multierr.Append(closeErr, server.Shutdown(shutdownCtx))
		closeErr = multierr.Append(closeErr, gcsClient.Close())
		closeErr = multierr.Append(closeErr, redisClient.Close())
		closeErr = multierr.Append(closeErr, dbClient.Close())
		if closeErr != nil {
			logg.Error(ctx, "shutdown finished with errors", closeErr)
			os.Exit(1)
		}
		logg.Info(ctx, "shutdown complete")
	}
}
