package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/datahub/backend/internal/bootstrap"
	"github.com/datahub/backend/internal/infrastructure/config"
	"github.com/datahub/backend/internal/infrastructure/logger"
	"github.com/datahub/backend/internal/interfaces/http/handler"
	"github.com/datahub/backend/internal/interfaces/http/middleware"
	"github.com/datahub/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/datahub/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//go:generate swag init -g cmd/server/main.go -d ../../ -o ../../docs

//	@title			Data Hub API
//	@version		1.0
//	@description	Companies, contacts, interactions, investment projects and export wins of the trade and investment department.

//	@BasePath	/

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const serviceName = "datahub-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()
	infra, err := bootstrap.Open(ctx, cfg, serviceName)
	if err != nil {
		panic("Failed to initialize infrastructure: " + err.Error())
	}
	log := infra.Logger
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := infra.Close(shutdownCtx); err != nil {
			log.Error("Error closing infrastructure", zap.Error(err))
		}
	}()

	log.Info("Starting Data Hub API",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	repos := bootstrap.NewRepositories(infra.Database.DB, infra.Redis, log)
	services, err := bootstrap.NewServices(infra, repos)
	if err != nil {
		log.Fatal("Failed to initialize services", zap.Error(err))
	}
	if err := services.Bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	middleware.SetupValidator()
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	} else {
		_ = engine.SetTrustedProxies(nil)
	}

	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: serviceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Metrics(infra.Metrics))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	profiling := middleware.DefaultProfilingConfig()
	profiling.Enabled = cfg.Telemetry.ProfilingEnabled
	engine.Use(middleware.Profiling(profiling))

	authenticated := middleware.BearerAuth(services.Auth)
	guards := router.Guards{
		Authenticated: authenticated,
		Staff:         middleware.RequireStaff(),
	}
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		guards.Throttle = middleware.RateLimit(limiter)
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	systemHandler := handler.NewSystemHandler(version, map[string]handler.HealthCheck{
		"database": infra.Database.Ping,
		"redis": func(ctx context.Context) error {
			return infra.Redis.Ping(ctx).Err()
		},
	})
	engine.GET("/health", systemHandler.Health)
	engine.GET("/ping", systemHandler.Ping)
	engine.GET("/metrics", gin.WrapH(infra.Metrics.Handler()))

	swagger := middleware.SwaggerProtection(middleware.SwaggerConfig{
		Enabled:     cfg.Swagger.Enabled,
		RequireAuth: cfg.Swagger.RequireAuth,
		AllowedIPs:  cfg.Swagger.AllowedIPs,
	}, authenticated)
	engine.GET("/swagger/*any", swagger, ginSwagger.WrapHandler(swaggerFiles.Handler))

	handlers := router.Handlers{
		Company:     handler.NewCompanyHandler(services.Companies),
		Contact:     handler.NewContactHandler(services.Contacts),
		Referral:    handler.NewReferralHandler(services.Referrals),
		Interaction: handler.NewInteractionHandler(services.Interactions),
		Project:     handler.NewProjectHandler(services.Projects),
		Proposition: handler.NewPropositionHandler(services.Propositions, services.PropositionDocuments),
		Document:    handler.NewDocumentHandler(services.Documents),
		ExportWin:   handler.NewExportWinHandler(services.ExportWins),
		Metadata:    handler.NewMetadataHandler(services.Metadata),
		Adviser:     handler.NewAdviserHandler(services.Advisers),
		UserEvent:   handler.NewUserEventHandler(services.UserEvents),
		Search:      handler.NewSearchHandler(services.Search),
		Audit:       handler.NewAuditHandler(services.Changelog),
	}
	if !services.Auth.SSOEnabled() {
		handlers.Token = handler.NewTokenHandler(services.Auth)
		log.Info("SSO disabled, password login enabled")
	}

	r := router.NewRouter(engine, router.WithMiddleware(middleware.AnnotateSpan()))
	groups := router.APIRoutes(handlers, guards)
	r.Register(router.Registrars(groups)...).Setup()
	for _, g := range groups {
		log.Debug("Routes registered", zap.String("group", g.Name()), zap.Strings("routes", g.Routes()))
	}

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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
	}
	if err := services.Bus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
