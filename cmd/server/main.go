package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/Tiedr/property-flow-organizer-sub000/docs"
	importapp "github.com/Tiedr/property-flow-organizer-sub000/internal/application/import"
	invoicingapp "github.com/Tiedr/property-flow-organizer-sub000/internal/application/invoicing"
	propertyapp "github.com/Tiedr/property-flow-organizer-sub000/internal/application/property"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/invoicing"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/property"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/shared"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/auth"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/cache"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/config"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/event"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/idgen"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/logger"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/persistence"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/persistence/memory"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/printing"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/scheduler"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/storage"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/telemetry"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/interfaces/http/handler"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/interfaces/http/middleware"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

//	@title			Property Flow Organizer API
//	@version		1.0
//	@description	Estate entries, payment receipts and invoices for real-estate sales

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

// repositories are the stores behind the services, either gorm or in-memory
type repositories struct {
	clients  property.ClientRepository
	estates  property.EstateRepository
	entries  property.EstateEntryRepository
	invoices invoicing.InvoiceRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()
	telemetryCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
		MetricsEnabled:    cfg.Telemetry.MetricsEnabled,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
		LogsEnabled:       cfg.Telemetry.LogsEnabled,
	}

	// the OTLP log bridge needs a logger of its own before the real one exists
	bootLog, err := logger.New(&logger.Config{Level: "warn", Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetryCfg, bootLog)
	if err != nil {
		panic("Failed to initialize log export: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		Service:     cfg.App.Name,
		Environment: cfg.App.Env,
	}, logProvider.ZapCore(cfg.App.Name, zapcore.InfoLevel))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Property Flow Organizer",
		zap.String("port", cfg.App.Port),
		zap.String("database", cfg.Database.Driver),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Profiling.Enabled,
		ServerAddress:     cfg.Profiling.ServerAddress,
		ApplicationName:   cfg.Telemetry.ServiceName,
		BasicAuthUser:     cfg.Profiling.BasicAuthUser,
		BasicAuthPassword: cfg.Profiling.BasicAuthPassword,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if cfg.Profiling.SpanProfiles {
		tracerProvider.EnableSpanProfiles()
	}
	defer func() {
		shutdownCtx := context.Background()
		_ = profiler.Stop()
		_ = meterProvider.Shutdown(shutdownCtx)
		_ = tracerProvider.Shutdown(shutdownCtx)
		_ = logProvider.Shutdown(shutdownCtx)
	}()

	numbers, err := idgen.NewSnowflakeNumberGenerator(cfg.Invoice.NumberPrefix, cfg.Invoice.NodeID)
	if err != nil {
		log.Fatal("Failed to create invoice number generator", zap.Error(err))
	}

	var (
		repos  repositories
		pinger handler.Pinger
	)
	if cfg.Database.Driver == "memory" {
		log.Warn("Using in-memory stores, data is lost on restart")
		repos = repositories{
			clients:  memory.NewClientStore(),
			estates:  memory.NewEstateStore(),
			entries:  memory.NewEntryStore(),
			invoices: memory.NewInvoiceStore(numbers),
		}
	} else {
		gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
			logger.WithSlowThreshold(cfg.Database.SlowQueryThreshold),
			logger.WithQueryParams(cfg.Database.LogQueryParams),
		)
		db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Error closing database", zap.Error(err))
			}
		}()
		if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
			tracingCfg := telemetry.DefaultDBTracingConfig()
			tracingCfg.Enabled = true
			tracingCfg.DBName = cfg.Database.DBName
			tracingCfg.LogFullSQL = !cfg.IsProduction()
			if err := telemetry.NewDBTracingPlugin(tracingCfg, log).Register(db.DB); err != nil {
				log.Warn("Failed to register database tracing", zap.Error(err))
			}
		}
		log.Info("Database connected successfully")

		pinger = db
		repos = repositories{
			clients:  persistence.NewGormClientRepository(db.DB),
			estates:  persistence.NewGormEstateRepository(db.DB),
			entries:  persistence.NewGormEstateEntryRepository(db.DB),
			invoices: persistence.NewGormInvoiceRepository(db.DB, numbers),
		}
	}

	metrics, err := telemetry.NewBusinessMetrics(meterProvider.Meter(telemetry.TracerName), log)
	if err != nil {
		log.Fatal("Failed to create business metrics", zap.Error(err))
	}

	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.IsProduction()),
	).CreateStore(cfg.Idempotency.Backend)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		_ = idempotencyStore.Close()
	}()

	// Application services
	clientService := propertyapp.NewClientService(repos.clients, repos.entries)
	estateService := propertyapp.NewEstateService(repos.estates, repos.entries)
	entryService := propertyapp.NewEntryService(repos.estates, repos.entries, repos.clients)
	overdueService := propertyapp.NewOverdueService(repos.entries, metrics, log)
	importService := importapp.NewEntryImportService(repos.estates, repos.entries, repos.clients, log)
	importService.SetRecorder(metrics)
	receiptService := invoicingapp.NewReceiptService(repos.entries, repos.invoices, log)
	receiptService.SetMetrics(metrics)
	invoiceService := invoicingapp.NewInvoiceService(repos.invoices, repos.clients, repos.estates)
	exportService := invoicingapp.NewInvoiceExportService(repos.invoices, repos.clients, repos.estates)

	template, err := printing.NewReceiptTemplate(printing.ReceiptTemplateConfig{
		OrganizationName: cfg.App.OrganizationName,
		CurrencySymbol:   cfg.App.CurrencySymbol,
		CurrencyName:     "Naira",
		MinorUnitName:    "Kobo",
	})
	if err != nil {
		log.Fatal("Failed to load receipt template", zap.Error(err))
	}
	documentService := invoicingapp.NewReceiptDocumentService(repos.invoices, repos.clients, repos.estates, template, log)

	if cfg.Printing.PDFEnabled {
		renderer := printing.NewChromedpRenderer(printing.ChromedpConfig{
			DefaultTimeout: cfg.Printing.Timeout,
			RemoteURL:      cfg.Printing.ChromeRemoteURL,
			NoSandbox:      cfg.Printing.NoSandbox,
			Logger:         log,
		})
		defer func() {
			_ = renderer.Close()
		}()
		documentService.SetPDFConverter(renderer)
		log.Info("PDF receipts enabled", zap.String("chrome", cfg.Printing.ChromeRemoteURL))
	}

	if cfg.Storage.Enabled {
		s3Store, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to create object storage", zap.Error(err))
		}
		if cfg.Storage.CreateBucket {
			if err := s3Store.EnsureBucket(ctx); err != nil {
				log.Fatal("Failed to prepare receipt archive bucket", zap.Error(err))
			}
		}
		documentService.SetStorage(s3Store, cfg.Storage.PresignExpiration)
		log.Info("Receipt archive enabled", zap.String("bucket", cfg.Storage.Bucket))
	} else {
		documentService.SetStorage(storage.NewMemoryObjectStorage("memory://"+cfg.Storage.KeyPrefix), cfg.Storage.PresignExpiration)
	}

	// Event bus: receipts are archived after issuance, off the request path
	eventBus := event.NewInMemoryEventBus(log, event.WithAsyncDispatch(cfg.Printing.Timeout+10*time.Second))
	if cfg.Storage.ArchiveOnIssue {
		archiveHandler := event.NewIdempotentHandler(
			invoicingapp.NewArchiveOnIssueHandler(documentService, log),
			idempotencyStore,
			shared.IdempotencyConfig{Enabled: true, TTL: cfg.Idempotency.TTL},
			log,
		)
		eventBus.Subscribe(archiveHandler)
		log.Info("Event handlers registered", zap.Strings("archive_on_issue_events", archiveHandler.EventTypes()))
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()
	receiptService.SetEventPublisher(eventBus)

	if cfg.Scheduler.OverdueSweepEnabled {
		sweep, err := scheduler.NewOverdueSweepTrigger(overdueService, cfg.Scheduler.OverdueSweepInterval, log)
		if err != nil {
			log.Fatal("Failed to create overdue sweep", zap.Error(err))
		}
		if err := sweep.Start(ctx); err != nil {
			log.Fatal("Failed to start overdue sweep", zap.Error(err))
		}
		defer func() {
			if err := sweep.Stop(context.Background()); err != nil {
				log.Error("Error stopping overdue sweep", zap.Error(err))
			}
		}()
		log.Info("Overdue sweep scheduled", zap.Duration("interval", cfg.Scheduler.OverdueSweepInterval))
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var rateLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer rateLimiter.Stop()
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	securityCfg := middleware.DefaultSecurityConfig()
	securityCfg.HSTSEnabled = cfg.IsProduction()

	idempotencyCfg := middleware.IdempotencyConfig{TTL: cfg.Idempotency.TTL, Logger: log}
	if cfg.Idempotency.Enabled {
		idempotencyCfg.Store = idempotencyStore
	}

	engine := router.NewEngine(router.EngineConfig{
		Logger:             log,
		TrustedProxies:     cfg.HTTP.TrustedProxies,
		CORS:               corsCfg,
		Security:           securityCfg,
		Tracing:            middleware.TracingConfig{ServiceName: cfg.Telemetry.ServiceName, Enabled: cfg.Telemetry.Enabled},
		Meter:              meterProvider.Meter(telemetry.TracerName),
		MetricsEnabled:     meterProvider.IsEnabled(),
		Profiling:          profiler.IsEnabled(),
		Swagger:            cfg.Swagger.Enabled,
		SwaggerRequireAuth: cfg.Swagger.RequireAuth,
		Validator:          auth.NewJWTService(cfg.JWT),
		AdminRole:          cfg.JWT.AdminRole,
		RateLimiter:        rateLimiter,
		MaxBodySize:        cfg.HTTP.MaxBodySize,
		MaxUploadSize:      cfg.HTTP.MaxUploadSize,
		Idempotency:        idempotencyCfg,
	}, router.Handlers{
		System:   handler.NewSystemHandler(cfg.App.Name, telemetry.ServiceVersion, pinger),
		Client:   handler.NewClientHandler(clientService, entryService),
		Estate:   handler.NewEstateHandler(estateService),
		Entry:    handler.NewEntryHandler(entryService),
		Receipt:  handler.NewReceiptHandler(receiptService),
		Import:   handler.NewImportHandler(importService),
		Invoice:  handler.NewInvoiceHandler(invoiceService, exportService),
		Document: handler.NewDocumentHandler(documentService),
		Admin:    handler.NewAdminHandler(overdueService),
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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}
