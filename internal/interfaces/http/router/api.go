package router

import (
	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/logger"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/interfaces/http/handler"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers bundles the HTTP handlers of the API
type Handlers struct {
	System   *handler.SystemHandler
	Client   *handler.ClientHandler
	Estate   *handler.EstateHandler
	Entry    *handler.EntryHandler
	Receipt  *handler.ReceiptHandler
	Import   *handler.ImportHandler
	Invoice  *handler.InvoiceHandler
	Document *handler.DocumentHandler
	Admin    *handler.AdminHandler
}

// EngineConfig holds the middleware settings of the HTTP engine
type EngineConfig struct {
	Logger         *zap.Logger
	TrustedProxies []string
	CORS           middleware.CORSConfig
	Security       middleware.SecurityConfig
	Tracing        middleware.TracingConfig
	Meter          metric.Meter
	MetricsEnabled bool
	// Profiling labels requests for the continuous profiler
	Profiling bool
	// Swagger serves the API description under /swagger, behind the
	// bearer token check when SwaggerRequireAuth is set
	Swagger            bool
	SwaggerRequireAuth bool

	// Validator checks bearer tokens on every /api route
	Validator middleware.TokenValidator
	// AdminRole guards deletes, imports, manual invoices and the overdue sweep
	AdminRole string
	// RateLimiter is optional
	RateLimiter *middleware.RateLimiter

	MaxBodySize   int64
	MaxUploadSize int64
	Idempotency   middleware.IdempotencyConfig
}

// NewEngine builds the gin engine serving /health and /api/v1
func NewEngine(cfg EngineConfig, h Handlers) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()
	engine := gin.New()
	if len(cfg.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// request id first so that logs, spans and error bodies share it
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.AccessLog(log))
	engine.Use(middleware.SecureWithConfig(cfg.Security))
	engine.Use(middleware.CORS(cfg.CORS))
	if cfg.Tracing.Enabled {
		engine.Use(middleware.TracingWithConfig(cfg.Tracing))
		engine.Use(middleware.SpanErrorMarker())
	}
	if cfg.Meter != nil {
		engine.Use(middleware.HTTPMetrics(cfg.Meter, cfg.MetricsEnabled))
	}
	if cfg.Profiling {
		engine.Use(middleware.Profiling())
	}

	engine.GET("/health", h.System.Health)
	if cfg.Swagger {
		// the UI bootstraps from an inline script
		relaxCSP := func(c *gin.Context) { c.Writer.Header().Del("Content-Security-Policy") }
		docs := []gin.HandlerFunc{relaxCSP, ginSwagger.WrapHandler(swaggerFiles.Handler)}
		if cfg.SwaggerRequireAuth {
			docs = append([]gin.HandlerFunc{middleware.JWTAuthMiddlewareWithConfig(jwtConfig(cfg, log))}, docs...)
		}
		engine.GET("/swagger/*any", docs...)
	}

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig(cfg, log)))
	if cfg.Tracing.Enabled {
		r.Use(middleware.TracingAttributeInjector())
	}
	if cfg.RateLimiter != nil {
		r.Use(middleware.RateLimit(cfg.RateLimiter))
	}
	r.Register(APIRoutes(h, cfg)...)
	r.Setup()

	return engine
}

func jwtConfig(cfg EngineConfig, log *zap.Logger) middleware.JWTMiddlewareConfig {
	jwtCfg := middleware.DefaultJWTConfig(cfg.Validator)
	jwtCfg.Logger = log
	return jwtCfg
}

// APIRoutes returns the domain groups of the versioned API. JSON routes
// share the body limit; the import route gets the larger upload limit.
func APIRoutes(h Handlers, cfg EngineConfig) []RouteRegistrar {
	jsonBody := middleware.BodyLimit(cfg.MaxBodySize)
	upload := middleware.BodyLimit(cfg.MaxUploadSize)
	admin := middleware.RequireRoleWithConfig(middleware.RoleConfig{Logger: cfg.Logger}, cfg.AdminRole)
	idempotent := middleware.Idempotency(cfg.Idempotency)

	system := NewDomainGroup("system", "/system")
	system.GET("/info", h.System.GetSystemInfo)

	clients := NewDomainGroup("clients", "/clients")
	clients.GET("", h.Client.List).
		POST("", jsonBody, h.Client.Create).
		GET("/:id", h.Client.GetByID).
		PUT("/:id", jsonBody, h.Client.Update).
		DELETE("/:id", admin, h.Client.Delete).
		GET("/:id/entries", h.Client.ListEntries)

	estates := NewDomainGroup("estates", "/estates")
	estates.GET("", h.Estate.List).
		POST("", jsonBody, h.Estate.Create).
		GET("/:id", h.Estate.GetByID).
		PUT("/:id", jsonBody, h.Estate.Update).
		DELETE("/:id", admin, h.Estate.Delete).
		GET("/:id/summary", h.Estate.Summary)

	entries := estates.Group("entries", "/:id/entries")
	entries.GET("", h.Entry.List).
		POST("", jsonBody, h.Entry.Create).
		POST("/import", admin, upload, h.Import.ImportEntries).
		GET("/:entryId", h.Entry.GetByID).
		PUT("/:entryId", jsonBody, h.Entry.Update).
		DELETE("/:entryId", admin, h.Entry.Delete).
		POST("/:entryId/receipts", jsonBody, idempotent, h.Receipt.Issue)

	invoices := NewDomainGroup("invoices", "/invoices")
	invoices.GET("", h.Invoice.List).
		POST("", admin, jsonBody, h.Invoice.Create).
		GET("/export", h.Invoice.Export).
		GET("/:id", h.Invoice.GetByID).
		PATCH("/:id", jsonBody, h.Invoice.Update).
		DELETE("/:id", admin, h.Invoice.Delete).
		GET("/:id/receipt", h.Document.Receipt).
		POST("/:id/archive", h.Document.Archive)

	adminRoutes := NewDomainGroup("admin", "/admin").Use(admin)
	adminRoutes.POST("/overdue-sweep", jsonBody, h.Admin.OverdueSweep)

	return []RouteRegistrar{system, clients, estates, invoices, adminRoutes}
}
