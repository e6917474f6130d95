package server

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/famhubid/famhub/config"
	"github.com/famhubid/famhub/internal/handlers"
	"github.com/famhubid/famhub/internal/logger"
	"github.com/famhubid/famhub/internal/middleware"
	"github.com/famhubid/famhub/internal/notifications"
	"github.com/famhubid/famhub/internal/payments"
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	midtransCfg, err := config.LoadMidtransConfig()
	if err != nil {
		return fmt.Errorf("failed to load midtrans config: %v", err)
	}

	xenditCfg, err := config.LoadXenditConfig()
	if err != nil {
		return fmt.Errorf("failed to load xendit config: %v", err)
	}

	xenditClient, err := config.InitXenditClient(xenditCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize xendit client: %v", err)
	}

	registry := payments.NewRegistry(
		payments.NewMidtransGateway(midtransCfg.ServerKey, midtransCfg.ClientKey, midtransCfg.IsProduction),
		payments.NewXenditGateway(xenditClient, xenditCfg.CallbackToken),
	)

	redisClient := config.InitRedisClient()
	dispatcher := notifications.NewDispatcher(db, redisClient)

	smtpCfg, err := config.LoadSMTPConfig()
	if err != nil {
		return fmt.Errorf("failed to load smtp config: %v", err)
	}
	worker := notifications.NewWorker(redisClient, smtpCfg)
	go worker.Run(context.Background())

	r := gin.Default()

	setupRoutes(r, db, registry, dispatcher)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.Info("starting server", "port", port)
	return r.Run(":" + port)
}

func setupRoutes(r *gin.Engine, db *gorm.DB, registry *payments.Registry, dispatcher *notifications.Dispatcher) {
	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.GatewayMiddleware(registry))
	r.Use(middleware.NotifierMiddleware(dispatcher))

	authLimiter := middleware.NewRateLimiter(5, 10, 10*time.Minute)

	public := r.Group("/v1")
	{
		public.POST("/register", authLimiter.Middleware(), handlers.Register)
		public.POST("/login", authLimiter.Middleware(), handlers.Login)

		public.GET("/tiers", handlers.ListTiers)

		webhooks := public.Group("/webhooks")
		{
			webhooks.POST("/midtrans", handlers.HandleGatewayWebhook("midtrans"))
			webhooks.POST("/xendit", handlers.HandleGatewayWebhook("xendit"))
		}
	}

	protected := r.Group("/v1")
	protected.Use(middleware.JWTAuthMiddleware())
	{
		families := protected.Group("/families")
		{
			families.POST("", handlers.CreateFamily)
			families.GET("/mine", handlers.GetMyFamily)
		}

		paymentRoutes := protected.Group("/payments")
		{
			paymentRoutes.POST("/checkout", handlers.CreateCheckout)
			paymentRoutes.GET("/:id", handlers.GetTransaction)
			paymentRoutes.GET("/:id/qr", handlers.GenerateCheckoutQR)
		}

		protected.GET("/subscriptions/mine", handlers.GetMySubscription)

		notificationRoutes := protected.Group("/notifications")
		{
			notificationRoutes.GET("", handlers.ListNotifications)
			notificationRoutes.PUT("/:id/read", handlers.MarkNotificationRead)
		}

		promos := protected.Group("/promos")
		promos.Use(middleware.RequireRole("admin"))
		{
			promos.POST("", handlers.CreatePromo)
			promos.GET("", handlers.ListPromos)
			promos.GET("/:id", handlers.GetPromo)
			promos.PUT("/:id", handlers.UpdatePromo)
			promos.DELETE("/:id", handlers.DeletePromo)
		}
	}
}
