package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/reelhaven/reelhaven/internal/api/handlers"
	"github.com/reelhaven/reelhaven/internal/api/middleware"
	"github.com/reelhaven/reelhaven/internal/config"
	"github.com/reelhaven/reelhaven/internal/gatekeeper"
	"github.com/reelhaven/reelhaven/internal/logger"
	"github.com/reelhaven/reelhaven/internal/metrics"
	"github.com/reelhaven/reelhaven/internal/models"
	"github.com/reelhaven/reelhaven/internal/services"
	"github.com/reelhaven/reelhaven/internal/storage"
	"github.com/reelhaven/reelhaven/internal/thumbnail"
)

// Register migrates the schema, seeds defaults and wires up all API routes.
// Middleware ordering on the API group is gate first, then auth: the network
// check always precedes authentication.
func Register(router *gin.Engine, db *gorm.DB, cfg config.Config) (*services.MaintenanceService, error) {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Movie{},
		&models.MovieRequest{},
		&models.AllowlistEntry{},
		&models.AccessRequest{},
		&models.AccessLog{},
		&models.AdminAccessLog{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	// Services
	authService := services.NewAuthService(db, cfg)
	allowlistService := services.NewAllowlistService(db)
	accessRequestService := services.NewAccessRequestService(db)
	movieRequestService := services.NewMovieRequestService(db)
	catalogService := services.NewCatalogService(db)
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	notifierService := services.NewNotifierService(cfg.NotifyURL)

	// Seed: first boot gets an admin account and loopback allowlist entries.
	if err := authService.EnsureAdmin(cfg.AdminPassword); err != nil {
		return nil, fmt.Errorf("seed admin user: %w", err)
	}
	if err := allowlistService.EnsureDefaults(); err != nil {
		return nil, fmt.Errorf("seed allowlist defaults: %w", err)
	}

	store := storage.New(cfg.VideoDir, cfg.ThumbnailDir)
	generator := thumbnail.NewGenerator(thumbnail.NewFFmpegExecutor(cfg.FFmpegBinary))

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, auditService, cfg.IsProduction())
	accessRequestHandler := handlers.NewAccessRequestHandler(accessRequestService, notifierService)
	allowlistHandler := handlers.NewAllowlistHandler(allowlistService, auditService)
	catalogHandler := handlers.NewCatalogHandler(catalogService, store)
	uploadHandler := handlers.NewUploadHandler(catalogService, store, generator, auditService)
	movieRequestHandler := handlers.NewMovieRequestHandler(movieRequestService, notifierService)
	userHandler := handlers.NewUserHandler(userService)
	adminHandler := handlers.NewAdminHandler(auditService, userService, catalogService, accessRequestService, movieRequestService)
	systemHandler := handlers.NewSystemHandler(db)

	router.GET("/api/v1/health", systemHandler.Health)

	registry := prometheus.NewRegistry()
	metrics.Register(registry)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := router.Group("/api/v1")

	// The access gate covers the whole API surface except its own escape
	// routes, which the gate recognizes by path.
	gate := gatekeeper.New(db)
	api.Use(gate.Middleware())

	// Escape routes: reachable by addresses off the allowlist.
	api.POST("/access-requests", accessRequestHandler.Submit)
	api.GET("/access-requests/status", accessRequestHandler.Status)
	api.GET("/thumbnails/:filename", catalogHandler.Thumbnail)

	// Gated but unauthenticated.
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/register", authHandler.Register)
	api.GET("/system/my-ip", systemHandler.MyIP)

	protected := api.Group("/")
	protected.Use(middleware.Auth(authService))
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/auth/me", authHandler.Me)
		protected.POST("/auth/change-password", authHandler.ChangePassword)

		// Catalog
		protected.GET("/catalog", catalogHandler.Browse)
		protected.GET("/catalog/series/:name", catalogHandler.Series)
		protected.GET("/movies/:id", catalogHandler.Watch)
		protected.GET("/movies/:id/stream", catalogHandler.Stream)

		// Movie requests (viewer side)
		protected.POST("/movie-requests", movieRequestHandler.Submit)
		protected.GET("/movie-requests/mine", movieRequestHandler.Mine)
	}

	admin := protected.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/stats", adminHandler.Stats)
		admin.GET("/logs", adminHandler.Logs)
		admin.GET("/catalog", adminHandler.Catalog)

		// Content pipeline
		admin.POST("/movies", uploadHandler.Upload)
		admin.DELETE("/movies/:id", uploadHandler.Delete)
		admin.POST("/movies/:id/regenerate-thumbnail", uploadHandler.RegenerateThumbnail)

		// Allowlist
		admin.GET("/allowlist", allowlistHandler.List)
		admin.POST("/allowlist", allowlistHandler.Create)
		admin.PUT("/allowlist/:id", allowlistHandler.Update)
		admin.POST("/allowlist/:id/toggle", allowlistHandler.Toggle)
		admin.DELETE("/allowlist/:id", allowlistHandler.Delete)

		// Access requests (admin side)
		admin.GET("/access-requests", accessRequestHandler.List)
		admin.GET("/access-requests/pending", accessRequestHandler.ListPending)
		admin.POST("/access-requests/:id/approve", accessRequestHandler.Approve)
		admin.POST("/access-requests/:id/reject", accessRequestHandler.Reject)

		// Movie requests (admin side)
		admin.GET("/movie-requests", movieRequestHandler.List)
		admin.POST("/movie-requests/:id/approve", movieRequestHandler.Approve)
		admin.POST("/movie-requests/:id/reject", movieRequestHandler.Reject)
		admin.POST("/movie-requests/:id/mark-uploaded", movieRequestHandler.MarkUploaded)

		// Users
		admin.GET("/users", userHandler.List)
		admin.POST("/users", userHandler.Create)
		admin.PUT("/users/:id", userHandler.Rename)
		admin.PUT("/users/:id/role", userHandler.SetAdmin)
		admin.POST("/users/:id/reset-password", userHandler.ResetPassword)
		admin.DELETE("/users/:id", userHandler.Delete)
	}

	// Housekeeping scheduler; the caller owns the handle and stops it
	// on shutdown.
	maintenance := services.NewMaintenanceService(db)
	if err := maintenance.Start(); err != nil {
		logger.Log().WithError(err).Warn("Failed to start maintenance scheduler")
	}

	return maintenance, nil
}
