package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erp/orderverify/internal/application/verification"
	"github.com/erp/orderverify/internal/domain/integration"
	"github.com/erp/orderverify/internal/infrastructure/auth"
	"github.com/erp/orderverify/internal/infrastructure/businesscentral"
	"github.com/erp/orderverify/internal/infrastructure/cache"
	"github.com/erp/orderverify/internal/infrastructure/config"
	"github.com/erp/orderverify/internal/infrastructure/logger"
	"github.com/erp/orderverify/internal/infrastructure/persistence"
	"github.com/erp/orderverify/internal/infrastructure/telemetry"
	"github.com/erp/orderverify/internal/interfaces/http/handler"
	"github.com/erp/orderverify/internal/interfaces/http/middleware"
	"github.com/erp/orderverify/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	shutdownTimeout  = 30 * time.Second
	slowSQLThreshold = 200 * time.Millisecond
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()
	serviceName := cfg.Telemetry.ServiceName
	if serviceName == "" {
		serviceName = cfg.App.Name
	}

	// OTEL logs are teed behind the local output once the provider exists
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       serviceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize OTEL logs", zap.Error(err))
	}
	if loggerProvider.IsEnabled() {
		otelCore := telemetry.NewZapOTELCore(serviceName, loggerProvider, logger.ParseLevel(cfg.Log.Level))
		bridged, err := logger.New(logCfg, otelCore)
		if err != nil {
			log.Fatal("Failed to initialize bridged logger", zap.Error(err))
		}
		log = bridged
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting purchase order verification service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", cfg.App.Version),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       serviceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       serviceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	gateway := newGateway(cfg, meterProvider, log)

	vendorCache := cache.NewVendorNoCache(ctx, cfg.Redis, log)

	var (
		audits integration.VerificationAuditRepository
		pinger handler.Pinger
		db     *persistence.Database
	)
	if cfg.Database.AuditEnabled {
		gormLog := logger.NewGormLogger(log, cfg.Log.Level, slowSQLThreshold)
		db, err = persistence.NewDatabase(ctx, &cfg.Database, gormLog)
		if err != nil {
			log.Fatal("Failed to connect to audit database", zap.Error(err))
		}
		if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
			Enabled:    cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
			LogFullSQL: cfg.Telemetry.DBLogFullSQL,
		}, log); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
		audits = persistence.NewGormVerificationAuditRepository(db.DB)
		pinger = db
		log.Info("Audit database connected")
	}

	verificationService := verification.NewVerificationService(verification.VerificationServiceConfig{
		Gateway: gateway,
		Audits:  audits,
		Logger:  log,
	})
	vendorService := verification.NewVendorPortalService(verification.VendorPortalServiceConfig{
		Gateway:  gateway,
		Cache:    vendorCache,
		CacheTTL: cfg.Redis.VendorCacheTTL,
		Logger:   log,
	})

	portalAuth := middleware.PortalAuth(middleware.PortalAuthConfig{
		Validator: auth.NewPortalTokenValidator(cfg.PortalAuth),
		Logger:    log,
	})

	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	securityCfg := middleware.DefaultSecurityConfig()
	securityCfg.HSTSEnabled = cfg.App.Env == "production"

	engine := router.NewEngine(router.EngineConfig{
		Logger:         log,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		CORS:           corsCfg,
		Security:       securityCfg,
		Tracing: middleware.TracingConfig{
			ServiceName: serviceName,
			Enabled:     cfg.Telemetry.Enabled,
			Filter:      middleware.SkipHealthChecks,
		},
		MaxBodySize:  cfg.HTTP.MaxBodySize,
		RateLimiter:  limiter,
		PortalAuth:   portalAuth,
		DebugEnabled: cfg.Debug.ListOrdersEnabled,
		Verification: handler.NewVerificationHandler(verificationService, vendorService),
		System: handler.NewSystemHandler(handler.SystemHandlerConfig{
			Name:                  cfg.App.Name,
			Version:               cfg.App.Version,
			IntegrationConfigured: gateway != nil,
			Database:              pinger,
		}),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if limiter != nil {
		limiter.Stop()
	}
	if err := vendorCache.Close(); err != nil {
		log.Warn("Error closing vendor cache", zap.Error(err))
	}
	if db != nil {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down tracer provider", zap.Error(err))
	}
	log.Info("Server exited gracefully")
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down logger provider", zap.Error(err))
	}
}

// newGateway returns nil when Business Central credentials are absent, so
// the service can still start and answer health checks.
func newGateway(cfg *config.Config, mp *telemetry.MeterProvider, log *zap.Logger) integration.PurchaseOrderGateway {
	bc := cfg.BusinessCentral
	if !bc.Configured() {
		log.Warn("Business Central credentials missing, order lookups will report not found")
		return nil
	}

	gwCfg := businesscentral.NewConfig(bc.TenantID, bc.ClientID, bc.ClientSecret, bc.CompanyID)
	overrideString(&gwCfg.Environment, bc.Environment)
	overrideString(&gwCfg.APIPublisher, bc.APIPublisher)
	overrideString(&gwCfg.APIGroup, bc.APIGroup)
	overrideString(&gwCfg.APIVersion, bc.APIVersion)
	overrideString(&gwCfg.APIBaseURL, bc.APIBaseURL)
	overrideString(&gwCfg.TokenURL, bc.TokenURL)
	overrideString(&gwCfg.Scope, bc.Scope)
	if bc.Timeout > 0 {
		gwCfg.Timeout = bc.Timeout
	}
	gwCfg.ExpandOrderLines = bc.ExpandOrderLines
	if bc.MaxResponseSize > 0 {
		gwCfg.MaxResponseSize = bc.MaxResponseSize
	}
	if bc.MaxDocumentResponseSize > 0 {
		gwCfg.MaxDocumentResponseSize = bc.MaxDocumentResponseSize
	}

	opts := []businesscentral.Option{businesscentral.WithLogger(log)}
	if mp.IsEnabled() {
		metrics, err := telemetry.NewGatewayMetrics(telemetry.GatewayMetricsConfig{
			Meter:  mp.Meter("order-verify/business-central"),
			Logger: log,
		})
		if err != nil {
			log.Warn("Gateway metrics unavailable", zap.Error(err))
		} else {
			opts = append(opts, businesscentral.WithMetrics(metrics))
		}
	}

	gateway, err := businesscentral.NewGateway(gwCfg, opts...)
	if err != nil {
		log.Fatal("Invalid Business Central configuration", zap.Error(err))
	}
	log.Info("Business Central gateway configured",
		zap.String("company_id", gwCfg.CompanyID),
		zap.String("environment", gwCfg.Environment),
	)
	return gateway
}

func overrideString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
