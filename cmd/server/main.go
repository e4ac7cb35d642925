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
	ledgerapp "github.com/shopledger/backend/internal/application/ledger"
	"github.com/shopledger/backend/internal/infrastructure/cache"
	"github.com/shopledger/backend/internal/infrastructure/config"
	"github.com/shopledger/backend/internal/infrastructure/export"
	"github.com/shopledger/backend/internal/infrastructure/logger"
	"github.com/shopledger/backend/internal/infrastructure/persistence"
	"github.com/shopledger/backend/internal/infrastructure/persistence/mongodb"
	"github.com/shopledger/backend/internal/infrastructure/resilience"
	"github.com/shopledger/backend/internal/infrastructure/strategy"
	"github.com/shopledger/backend/internal/infrastructure/telemetry"
	"github.com/shopledger/backend/internal/interfaces/http/handler"
	"github.com/shopledger/backend/internal/interfaces/http/middleware"
	"github.com/shopledger/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// store is the backing database behind the ledger readers
type store struct {
	sources ledgerapp.Sources
	pinger  handler.StorePinger
	close   func(ctx context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		Service:    cfg.App.Name,
		Env:        cfg.App.Env,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()
	zap.ReplaceGlobals(log)

	if err := run(cfg, log); err != nil {
		log.Fatal("Server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()
	telemetry.ServiceVersion = version

	log.Info("Starting shopledger",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("driver", cfg.Database.Driver),
		zap.String("version", version),
	)

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return fmt.Errorf("tracer provider: %w", err)
	}
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return fmt.Errorf("meter provider: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = mp.Shutdown(shutdownCtx)
		_ = tp.Shutdown(shutdownCtx)
	}()

	ledgerMetrics, err := telemetry.NewLedgerMetrics(mp.Meter("github.com/shopledger/backend/ledger"))
	if err != nil {
		return fmt.Errorf("ledger metrics: %w", err)
	}

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			log.Error("Error closing store", zap.Error(err))
		}
	}()
	log.Info("Store connected", zap.String("store", st.pinger.Name()))

	httpMetrics := telemetry.NewHTTPMetrics(telemetry.PrometheusConfig{ServiceName: cfg.App.Name})

	sources := st.sources
	var breakers []*resilience.Breaker
	if cfg.Breaker.Enabled {
		sources, breakers = guardSources(sources, cfg.Breaker, log)
		for _, b := range breakers {
			b := b
			if err := httpMetrics.ObserveBreaker(b.Name(), func() float64 { return float64(b.State()) }); err != nil {
				return fmt.Errorf("register breaker gauge: %w", err)
			}
		}
	}

	registry, err := strategy.NewRegistryWithReturnPolicy(cfg.Ledger.ReturnPolicy)
	if err != nil {
		return fmt.Errorf("return policy registry: %w", err)
	}

	ledgerService := ledgerapp.NewLedgerService(sources, registry,
		ledgerapp.WithExporter(export.NewExcelExporter()),
		ledgerapp.WithTracer(tp.Tracer("github.com/shopledger/backend/ledger")),
		ledgerapp.WithMetrics(ledgerMetrics),
		ledgerapp.WithLogger(log),
		ledgerapp.WithFetchTimeout(cfg.Ledger.FetchTimeout),
	)

	var rateLimitStore cache.RateLimitStore
	if cfg.RateLimit.Enabled {
		rateLimitStore, err = cache.NewRateLimitStoreFactory(cfg.RateLimit, cfg.Redis,
			cache.WithLogger(log),
			cache.WithInMemoryFallback(true),
		).CreateStore()
		if err != nil {
			return fmt.Errorf("rate limit store: %w", err)
		}
		defer func() {
			_ = rateLimitStore.Close()
		}()
		log.Info("Rate limiting enabled",
			zap.String("backend", cfg.RateLimit.Backend),
			zap.Int("requests", cfg.RateLimit.Requests),
			zap.Duration("window", cfg.RateLimit.Window),
		)
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	tracing := middleware.DefaultTracingConfig()
	tracing.ServiceName = cfg.Telemetry.ServiceName
	tracing.Enabled = cfg.Telemetry.Enabled

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.App.Env == "production"

	engineCfg := router.EngineConfig{
		Logger:         log,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		CORS:           cors,
		Security:       security,
		Tracing:        tracing,
		Metrics:        httpMetrics,
		RateLimit:      middleware.RateLimitConfig{Store: rateLimitStore},
	}

	healthHandler := handler.NewHealthHandler(st.pinger, version, breakers...)
	engine := router.NewEngine(engineCfg, healthHandler.Health)
	router.NewAPIRouter(engine, engineCfg, handler.NewLedgerHandler(ledgerService)).Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		log.Info("Shutting down server...", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server exited gracefully")
	return nil
}

// openStore connects the configured driver and builds its readers
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*store, error) {
	switch cfg.Database.Driver {
	case config.DriverMongoDB:
		client, err := mongodb.NewClient(ctx, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		if err := mongodb.EnsureIndexes(ctx, client); err != nil {
			_ = client.Close(ctx)
			return nil, fmt.Errorf("ensure mongodb indexes: %w", err)
		}
		return &store{
			sources: ledgerapp.Sources{
				Products:  mongodb.NewProductRepository(client),
				Suppliers: mongodb.NewSupplierRepository(client),
				Receipts:  mongodb.NewReceiptReader(client),
				Sales:     mongodb.NewSaleReader(client),
				Returns:   mongodb.NewReturnReader(client),
			},
			pinger: client,
			close:  client.Close,
		}, nil

	default:
		gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
			logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		)
		db, err := persistence.NewDatabase(ctx, &cfg.Database, persistence.WithGormLogger(gormLog))
		if err != nil {
			return nil, err
		}
		if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
			plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
				Enabled:         true,
				LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
				SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
				DBSystem:        "postgresql",
			}, log)
			if err := plugin.Register(db.DB); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("register db tracing: %w", err)
			}
		}
		return &store{
			sources: ledgerapp.Sources{
				Products:  persistence.NewGormProductRepository(db.DB),
				Suppliers: persistence.NewGormSupplierRepository(db.DB),
				Receipts:  persistence.NewGormReceiptReader(db.DB),
				Sales:     persistence.NewGormSaleReader(db.DB),
				Returns:   persistence.NewGormReturnReader(db.DB),
			},
			pinger: db,
			close: func(context.Context) error {
				return db.Close()
			},
		}, nil
	}
}

// guardSources puts one circuit breaker in front of each source reader.
// Product lookups stay unguarded so a missing product is always a 404.
func guardSources(src ledgerapp.Sources, cfg config.BreakerConfig, log *zap.Logger) (ledgerapp.Sources, []*resilience.Breaker) {
	receipts := resilience.NewBreaker("stock_receipts", cfg, log)
	sales := resilience.NewBreaker("sales", cfg, log)
	returns := resilience.NewBreaker("sales_returns", cfg, log)

	guarded := ledgerapp.Sources{
		Products:  src.Products,
		Suppliers: src.Suppliers,
		Receipts:  resilience.NewBreakerReceiptReader(src.Receipts, receipts),
		Sales:     resilience.NewBreakerSaleReader(src.Sales, sales),
		Returns:   resilience.NewBreakerReturnReader(src.Returns, returns),
	}
	return guarded,
		[]*resilience.Breaker{receipts, sales, returns}
}
