// SplitLedger API server.
//
// Wires configuration, logging, persistence, caching, and the HTTP layer
// together, then serves the REST API until interrupted.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	ledgerapp "github.com/splitledger/backend/internal/application/ledger"
	"github.com/splitledger/backend/internal/domain/ledger"
	"github.com/splitledger/backend/internal/infrastructure/auth"
	"github.com/splitledger/backend/internal/infrastructure/cache"
	"github.com/splitledger/backend/internal/infrastructure/config"
	"github.com/splitledger/backend/internal/infrastructure/logger"
	"github.com/splitledger/backend/internal/infrastructure/persistence"
	"github.com/splitledger/backend/internal/infrastructure/telemetry"
	"github.com/splitledger/backend/internal/interfaces/http/handler"
	"github.com/splitledger/backend/internal/interfaces/http/middleware"
	"github.com/splitledger/backend/internal/interfaces/http/router"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting SplitLedger server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Telemetry first so the global tracer is in place before anything
	// that creates spans.
	ctx := context.Background()
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn("Failed to shut down tracer provider", zap.Error(err))
		}
	}()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("Failed to close database", zap.Error(err))
		}
	}()

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:          cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBSystem:         "postgresql",
		WithoutVariables: true,
	}, log); err != nil {
		return fmt.Errorf("failed to register database tracing: %w", err)
	}

	balanceCache, closeCache := newBalanceCache(cfg, log)
	defer closeCache()
	invalidator := cache.NewBalanceInvalidator(balanceCache, cache.WithInvalidatorLogger(log))

	groupRepo := persistence.NewGormGroupRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	settlementRepo := persistence.NewGormSettlementRepository(db.DB)
	balanceRepo := persistence.NewGormBalanceRepository(db.DB)

	groupService := ledgerapp.NewGroupService(groupRepo, groupRepo, balanceRepo, log)
	expenseService := ledgerapp.NewExpenseService(expenseRepo, groupRepo, invalidator, log)
	settlementService := ledgerapp.NewSettlementService(settlementRepo, balanceRepo, groupRepo, invalidator, log)
	balanceService := ledgerapp.NewBalanceService(balanceRepo, groupRepo, balanceCache, cfg.Cache.BalanceTTL, log)

	jwtService := auth.NewJWTService(cfg.JWT)

	groupHandler := handler.NewGroupHandler(groupService)
	expenseHandler := handler.NewExpenseHandler(expenseService)
	settlementHandler := handler.NewSettlementHandler(settlementService)
	balanceHandler := handler.NewBalanceHandler(balanceService)
	systemHandler := handler.NewSystemHandler(db)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithOrigins(cfg.HTTP.CORSAllowOrigins))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.SpanErrorMarker())
	}

	engine.GET("/health", systemHandler.Health)
	engine.GET("/ready", systemHandler.Ready)

	engine.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths:  []string{"/health", "/ready"},
		Logger:     log,
	}))

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(groupHandler).
		Register(expenseHandler).
		Register(settlementHandler).
		Register(balanceHandler).
		Register(systemHandler).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		log.Info("Shutting down server", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

// newBalanceCache connects to Redis and falls back to the in-process cache
// when Redis is unreachable, so balance reads stay available either way.
func newBalanceCache(cfg *config.Config, log *zap.Logger) (ledger.BalanceCache, func()) {
	redisCache, err := cache.NewRedisBalanceCache(cfg.Redis, cache.WithCacheLogger(log))
	if err != nil {
		log.Warn("Redis unavailable, using in-memory balance cache",
			zap.String("addr", cfg.Redis.Addr()),
			zap.Error(err),
		)
		return cache.NewInMemoryBalanceCache(), func() {}
	}

	log.Info("Connected to Redis balance cache", zap.String("addr", cfg.Redis.Addr()))
	return redisCache, func() {
		if err := redisCache.Close(); err != nil {
			log.Warn("Failed to close Redis client", zap.Error(err))
		}
	}
}
