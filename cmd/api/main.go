package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/vidaplan/corretora-api/docs" // Swagger docs
	"github.com/vidaplan/corretora-api/internal/config"
	"github.com/vidaplan/corretora-api/internal/database"
	"github.com/vidaplan/corretora-api/internal/handlers"
	"github.com/vidaplan/corretora-api/internal/jobs"
	"github.com/vidaplan/corretora-api/internal/middleware"
	"github.com/vidaplan/corretora-api/internal/repository"
	"github.com/vidaplan/corretora-api/internal/scheduler"
	"github.com/vidaplan/corretora-api/internal/services"
	"github.com/vidaplan/corretora-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title Corretora API
// @version 1.0
// @description REST API for the VidaPlan health-insurance brokerage back office

// @contact.name API Support

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Setup(cfg.Environment)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	if cfg.ResendAPIKey == "" || cfg.FromEmail == "" {
		logger.Warn("Resend email disabled: RESEND_API_KEY or FROM_EMAIL not set")
	}
	if cfg.WhapiToken == "" {
		logger.Warn("WhatsApp sending disabled: WHAPI_TOKEN not set")
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	repos := repository.NewRepositories(db)

	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	svcs := services.NewServices(repos, worker, cfg)

	// Expired refresh tokens pile up from rotation; sweep them daily.
	worker.ScheduleEvery(24*time.Hour, func(ctx context.Context) error {
		removed, err := svcs.Auth.CleanupExpiredTokens(ctx)
		if err != nil {
			return err
		}
		if removed > 0 {
			logger.Info("Expired refresh tokens removed", "count", removed)
		}
		return nil
	})

	// Reminder scan scheduler
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	reminderScheduler := scheduler.NewReminderScheduler(cfg, svcs.Reminder)
	if err := reminderScheduler.Start(schedulerCtx); err != nil {
		logger.Error("Failed to start reminder scheduler", "error", err)
		os.Exit(1)
	}

	h := handlers.NewHandlers(svcs, reminderScheduler)

	router := setupRouter(h, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	stopScheduler()

	worker.Shutdown()
	logger.Info("Background worker stopped")

	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Redirect root to swagger
		router.GET("/", func(c *gin.Context) {
			c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
		})

		// Swagger documentation
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

		// Health check (public)
		v1.GET("/health", h.Health.Index)

		// Authentication (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// Provider webhooks (public; provider-specific verification)
		webhooks := v1.Group("/webhooks")
		{
			webhooks.POST("/whatsapp", h.Webhook.WhatsApp)
			webhooks.GET("/facebook", h.Webhook.FacebookVerify)
			webhooks.POST("/facebook", h.Webhook.FacebookReceive)
		}

		// Protected routes (requires authentication)
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			protected.POST("/auth/logout", h.Auth.Logout)

			// Admin-only routes
			admin := protected.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				admin.POST("/users", h.User.Create)
				admin.DELETE("/users/:id", h.User.Delete)
				admin.DELETE("/contracts/:id", h.Contract.Delete)
				admin.DELETE("/leads/:id", h.Lead.Delete)
				admin.POST("/reminders/scan", h.Reminder.Scan)
			}

			// Users
			protected.GET("/users", h.User.Index)
			protected.GET("/users/:id", h.User.Show)
			protected.PUT("/users/:id", middleware.RequireAdminOrOwner(), h.User.Update)
			protected.PUT("/users/me/password", h.User.ChangePassword)

			// Leads
			leads := protected.Group("/leads")
			{
				leads.GET("", h.Lead.Index)
				leads.GET("/stats", h.Lead.Stats)
				leads.POST("", h.Lead.Create)
				leads.GET("/:id", h.Lead.Show)
				leads.PUT("/:id", h.Lead.Update)
				leads.POST("/:id/advance", h.Lead.Advance)
			}

			// Contracts
			contracts := protected.Group("/contracts")
			{
				contracts.GET("", h.Contract.Index)
				contracts.GET("/stats", h.Contract.GetStats)
				contracts.POST("", h.Contract.Create)
				contracts.GET("/:id", h.Contract.Show)
				contracts.PUT("/:id", h.Contract.Update)
				contracts.GET("/:id/bonus", h.Contract.EstimateBonus)
				contracts.POST("/:id/adjustments", h.Contract.AddAdjustment)
				contracts.DELETE("/:id/adjustments/:adjustment_id", h.Contract.DeleteAdjustment)
				contracts.POST("/:id/activate", h.Contract.Activate)
				contracts.POST("/:id/suspend", h.Contract.Suspend)
				contracts.POST("/:id/cancel", h.Contract.Cancel)
				contracts.POST("/:id/close", h.Contract.Close)
			}

			// WhatsApp chats
			chats := protected.Group("/chats")
			{
				chats.GET("", h.Chat.Index)
				chats.GET("/:id/messages", h.Chat.Messages)
				chats.POST("/:id/messages", h.Chat.Send)
				chats.POST("/:id/auto-contact", h.Chat.AutoContact)
			}

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", h.Notification.Index)
				notifications.PUT("/read-all", h.Notification.MarkAllAsRead)
				notifications.PUT("/:id/read", h.Notification.MarkAsRead)
				notifications.DELETE("/:id", h.Notification.Delete)
			}

			// Reminders
			reminders := protected.Group("/reminders")
			{
				reminders.GET("", h.Reminder.Index)
				reminders.POST("", h.Reminder.Create)
				reminders.PUT("/:id/complete", h.Reminder.Complete)
				reminders.DELETE("/:id", h.Reminder.Delete)
			}

			// Exports
			exports := protected.Group("/exports")
			{
				exports.GET("/commissions.csv", h.Export.CommissionsCSV)
				exports.GET("/commissions.xlsx", h.Export.CommissionsXLSX)
				exports.GET("/contracts/:id/pdf", h.Export.ContractPDF)
			}

			// Lookups
			lookups := protected.Group("/lookups")
			{
				lookups.GET("/cnpj/:cnpj", h.Lookup.CNPJ)
				lookups.GET("/cep/:cep", h.Lookup.CEP)
			}
		}
	}

	return router
}
