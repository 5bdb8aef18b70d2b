package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cellarclub/backend/internal/application/clubsync"
	enrollmentapp "github.com/cellarclub/backend/internal/application/enrollment"
	loyaltyapp "github.com/cellarclub/backend/internal/application/loyalty"
	"github.com/cellarclub/backend/internal/domain/crm"
	"github.com/cellarclub/backend/internal/infrastructure/auth"
	"github.com/cellarclub/backend/internal/infrastructure/config"
	"github.com/cellarclub/backend/internal/infrastructure/crm/commerce7"
	"github.com/cellarclub/backend/internal/infrastructure/crm/factory"
	"github.com/cellarclub/backend/internal/infrastructure/crm/shopify"
	"github.com/cellarclub/backend/internal/infrastructure/logger"
	"github.com/cellarclub/backend/internal/infrastructure/persistence"
	"github.com/cellarclub/backend/internal/interfaces/http/handler"
	"github.com/cellarclub/backend/internal/interfaces/http/middleware"
	"github.com/cellarclub/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Cellar Club Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.Open(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	tierRepo := persistence.NewGormTierRepository(db.DB)
	tierPromotionRepo := persistence.NewGormTierPromotionRepository(db.DB)
	loyaltyConfigRepo := persistence.NewGormLoyaltyConfigRepository(db.DB)
	sideEffectRepo := persistence.NewGormSideEffectLogRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	enrollmentRepo := persistence.NewGormEnrollmentRepository(db.DB)
	draftRepo := persistence.NewGormDraftRepository(db.DB)
	tenantDataRepo := persistence.NewGormTenantDataRepository(db.DB)

	// Initialize CRM providers from configured credentials. A platform
	// without credentials is simply not registered; requests naming it
	// fail with a provider-not-configured error.
	providerFactory := factory.New(buildProviders(cfg, log)...)

	// Initialize application services
	setupService := clubsync.NewSetupService(tierRepo, tierPromotionRepo, loyaltyConfigRepo, providerFactory, log)
	bonusDispatcher := loyaltyapp.NewBonusDispatcher(providerFactory, sideEffectRepo, log)
	draftService := enrollmentapp.NewDraftService(draftRepo, tierRepo, log)
	completionService := enrollmentapp.NewCompletionService(
		draftRepo, tierRepo, customerRepo, enrollmentRepo, loyaltyConfigRepo,
		providerFactory, bonusDispatcher, log,
	)

	// Session token verification for embedded-app requests
	tokenService := auth.NewSessionTokenService(cfg.Session)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.RequestLogging(log))

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Session token authentication. Health endpoints and the webhook
	// receiver authenticate by other means and are skipped here.
	sessionConfig := middleware.DefaultSessionConfig(tokenService)
	sessionConfig.Logger = log
	engine.Use(middleware.SessionAuthWithConfig(sessionConfig))

	// Initialize handlers
	systemHandler := handler.NewSystemHandler(db)
	clubHandler := handler.NewClubHandler(setupService, sideEffectRepo)
	enrollmentHandler := handler.NewEnrollmentHandler(draftService, completionService)
	webhookHandler := handler.NewWebhookHandler(
		providerFactory, tenantDataRepo,
		cfg.Shopify.WebhookSecret, cfg.Commerce7.AppSecret, log,
	)

	// Setup API routes
	router.Mount(engine, "v1", systemHandler, clubHandler, enrollmentHandler, webhookHandler)

	// Root-level health endpoints for load balancers
	engine.GET("/health", systemHandler.Health)
	engine.GET("/ping", systemHandler.Ping)

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// buildProviders constructs a CRM adapter for each platform that has
// credentials configured.
func buildProviders(cfg *config.Config, log *zap.Logger) []crm.CRMProvider {
	var providers []crm.CRMProvider

	if cfg.Commerce7.AppID != "" && cfg.Commerce7.AppSecret != "" && cfg.Commerce7.TenantSlug != "" {
		c7cfg := commerce7.NewConfig(cfg.Commerce7.AppID, cfg.Commerce7.AppSecret, cfg.Commerce7.TenantSlug)
		if cfg.Commerce7.APIBaseURL != "" {
			c7cfg.APIBaseURL = cfg.Commerce7.APIBaseURL
		}
		if cfg.Commerce7.TimeoutSeconds > 0 {
			c7cfg.TimeoutSeconds = cfg.Commerce7.TimeoutSeconds
		}
		adapter, err := commerce7.NewAdapter(c7cfg)
		if err != nil {
			log.Warn("Commerce7 provider not available", zap.Error(err))
		} else {
			providers = append(providers, adapter)
			log.Info("Commerce7 provider registered", zap.String("tenant", cfg.Commerce7.TenantSlug))
		}
	}

	if cfg.Shopify.ShopDomain != "" && cfg.Shopify.AccessToken != "" {
		shcfg := shopify.NewConfig(cfg.Shopify.ShopDomain, cfg.Shopify.AccessToken)
		if cfg.Shopify.APIVersion != "" {
			shcfg.APIVersion = cfg.Shopify.APIVersion
		}
		if cfg.Shopify.APIBaseURL != "" {
			shcfg.APIBaseURL = cfg.Shopify.APIBaseURL
		}
		if cfg.Shopify.TimeoutSeconds > 0 {
			shcfg.TimeoutSeconds = cfg.Shopify.TimeoutSeconds
		}
		adapter, err := shopify.NewAdapter(shcfg)
		if err != nil {
			log.Warn("Shopify provider not available", zap.Error(err))
		} else {
			providers = append(providers, adapter)
			log.Info("Shopify provider registered", zap.String("shop", cfg.Shopify.ShopDomain))
		}
	}

	return providers
}
