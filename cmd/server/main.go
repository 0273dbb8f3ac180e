package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	commerceapp "github.com/tienda/backend/internal/application/commerce"
	credentialapp "github.com/tienda/backend/internal/application/credential"
	identityapp "github.com/tienda/backend/internal/application/identity"
	licensingapp "github.com/tienda/backend/internal/application/licensing"
	quotaapp "github.com/tienda/backend/internal/application/quota"
	supportapp "github.com/tienda/backend/internal/application/support"
	"github.com/tienda/backend/internal/infrastructure/auth"
	"github.com/tienda/backend/internal/infrastructure/cache"
	"github.com/tienda/backend/internal/infrastructure/config"
	"github.com/tienda/backend/internal/infrastructure/logger"
	"github.com/tienda/backend/internal/infrastructure/persistence"
	"github.com/tienda/backend/internal/infrastructure/persistence/tenant"
	"github.com/tienda/backend/internal/infrastructure/vault"
	"github.com/tienda/backend/internal/interfaces/http/handler"
	"github.com/tienda/backend/internal/interfaces/http/middleware"
	"github.com/tienda/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Tienda Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Every tenant-owned query goes through the scope callbacks. Required
	// mode makes an unscoped, non-exempt query an error instead of a leak.
	tenant.EnableAutoTenantFilter(db.DB, true)

	// Credential vault
	secretVault, err := vault.New(cfg.Vault.MasterKey)
	if err != nil {
		log.Fatal("Failed to initialize credential vault", zap.Error(err))
	}

	// Tenant resolution cache (in-memory or Redis per config)
	cacheFactory := cache.NewResolutionCacheFactory(cfg.Resolver, cfg.Redis, cache.WithLogger(log))
	resolutionCache, err := cacheFactory.CreateCache()
	if err != nil {
		log.Fatal("Failed to create tenant resolution cache", zap.Error(err))
	}
	defer func() {
		if err := resolutionCache.Close(); err != nil {
			log.Error("Error closing resolution cache", zap.Error(err))
		}
	}()

	// Operator console tokens authenticate the admin surface
	operatorTokens := auth.NewOperatorTokenService(cfg.Operator.Secret, cfg.Operator.Issuer, cfg.Operator.TokenTTL)

	// Impersonation grant signing and revocation tracking. Revocations
	// share the Redis instance with the resolution cache when one is
	// configured so a revoke propagates across instances.
	grantService := auth.NewGrantService(cfg.Impersonation.Secret, cfg.Impersonation.Issuer)
	revocations := buildGrantRevocations(cfg, log)

	// Initialize repositories
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	licenseRepo := persistence.NewGormLicenseRepository(db.DB)
	credentialRepo := persistence.NewGormCredentialRepository(db.DB)
	auditRepo := persistence.NewGormAuditRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	usageCounter := persistence.NewGormUsageCounter(db.DB)

	// Initialize application services
	resolver := identityapp.NewResolver(tenantRepo, resolutionCache, cfg.App.BaseDomain, cfg.App.DefaultTenantDomain, log)
	tenantService := identityapp.NewTenantService(tenantRepo, resolutionCache, log)
	licenseService := licensingapp.NewLicenseService(licenseRepo, tenantRepo, auditRepo, log)
	gate := quotaapp.NewGate(licenseRepo, usageCounter, log)
	credentialService := credentialapp.NewService(credentialRepo, secretVault, auditRepo, log)
	impersonationService := supportapp.NewImpersonationService(grantService, revocations, tenantRepo, auditRepo, log)
	auditService := supportapp.NewAuditService(auditRepo, log)
	productService := commerceapp.NewProductService(db.DB, productRepo, gate, log)
	orderService := commerceapp.NewOrderService(db.DB, orderRepo, gate, log)

	// Initialize HTTP handlers
	systemHandler := handler.NewSystemHandler()
	tenantHandler := handler.NewTenantHandler(tenantService)
	licenseHandler := handler.NewLicenseHandler(licenseService, gate)
	credentialHandler := handler.NewCredentialHandler(credentialService)
	impersonationHandler := handler.NewImpersonationHandler(impersonationService)
	auditHandler := handler.NewAuditHandler(auditService)
	commerceHandler := handler.NewCommerceHandler(productService, orderService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack, in order: request ID, panic recovery, request
	// logging, security headers, CORS, body limit, tenant resolution,
	// operator auth on the admin surface, then optional grant
	// verification for support sessions.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	engine.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig()))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	resolutionConfig := middleware.DefaultTenantResolutionConfig(resolver)
	resolutionConfig.Logger = log
	engine.Use(middleware.TenantResolutionWithConfig(resolutionConfig))

	operatorAuthConfig := middleware.DefaultOperatorAuthConfig(operatorTokens)
	operatorAuthConfig.Logger = log
	engine.Use(middleware.OperatorAuthWithConfig(operatorAuthConfig))

	engine.Use(middleware.OptionalGrantAuth(impersonationService, log))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// Register route groups
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(systemHandler).
		Register(tenantHandler).
		Register(licenseHandler).
		Register(credentialHandler).
		Register(impersonationHandler).
		Register(auditHandler).
		Register(commerceHandler)
	r.Setup()

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

// buildGrantRevocations picks the revocation store. Redis when the
// resolution cache runs on Redis, in-memory otherwise. An unreachable
// Redis degrades to per-instance revocation rather than refusing to boot.
func buildGrantRevocations(cfg *config.Config, log *zap.Logger) auth.GrantRevocations {
	if cfg.Resolver.CacheBackend != "redis" {
		return auth.NewInMemoryGrantRevocations()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis unavailable for grant revocations, using in-memory store. "+
			"Revocations will not propagate across instances.",
			zap.Error(err),
		)
		_ = client.Close()
		return auth.NewInMemoryGrantRevocations()
	}

	log.Info("Using Redis grant revocation store")
	return auth.NewRedisGrantRevocations(client)
}

// healthHandler reports liveness of the process and its database
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
