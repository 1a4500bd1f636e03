package router

import (
	"github.com/erp/orderverify/internal/infrastructure/logger"
	"github.com/erp/orderverify/internal/interfaces/http/handler"
	"github.com/erp/orderverify/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EngineConfig holds everything needed to assemble the HTTP engine
type EngineConfig struct {
	Logger         *zap.Logger
	TrustedProxies []string
	CORS           middleware.CORSConfig
	Security       middleware.SecurityConfig
	Tracing        middleware.TracingConfig
	MaxBodySize    int64
	// RateLimiter guards the public verification route when set.
	RateLimiter *middleware.RateLimiter
	// PortalAuth guards the vendor routes.
	PortalAuth gin.HandlerFunc
	// DebugEnabled exposes the order listing route.
	DebugEnabled bool

	Verification *handler.VerificationHandler
	System       *handler.SystemHandler
}

// NewEngine builds the gin engine with the global middleware chain and all
// API routes.
func NewEngine(cfg EngineConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if len(cfg.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(
		middleware.RequestID(),
		middleware.SecureWithConfig(cfg.Security),
		middleware.CORSWithConfig(cfg.CORS),
		middleware.TracingWithConfig(cfg.Tracing),
		middleware.SpanEnricher(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.BodyLimit(cfg.MaxBodySize),
	)

	engine.GET("/health", cfg.System.Health)

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Register(VerificationRoutes(cfg)).Register(SystemRoutes(cfg.System))
	r.Setup()

	return engine
}

// VerificationRoutes returns the /verify-order route group
func VerificationRoutes(cfg EngineConfig) *DomainGroup {
	h := cfg.Verification
	g := NewDomainGroup("verification", "/verify-order")

	g.GET("/health", h.Health)

	public := []gin.HandlerFunc{}
	if cfg.RateLimiter != nil {
		public = append(public, middleware.RateLimit(cfg.RateLimiter))
	}
	g.GET("/:order_code", append(public, h.VerifyOrder)...)

	if cfg.PortalAuth != nil {
		g.GET("/:order_code/pdf", cfg.PortalAuth, h.DownloadOrderPdf)
		g.Group("vendor", "/vendor").Use(cfg.PortalAuth).GET("/orders", h.VendorOrders)
	}

	if cfg.DebugEnabled {
		g.Group("debug", "/debug").GET("/list-orders", h.DebugListOrders)
	}
	return g
}

// SystemRoutes returns the /system route group
func SystemRoutes(h *handler.SystemHandler) *DomainGroup {
	return NewDomainGroup("system", "/system").
		GET("/info", h.GetSystemInfo).
		GET("/ping", h.Ping)
}
