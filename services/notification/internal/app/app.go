package internal

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kuzeykoc/pkg/config"
	"kuzeykoc/pkg/jwt"
	"kuzeykoc/pkg/logger"
	"kuzeykoc/pkg/middleware"
	"kuzeykoc/pkg/queue"
	notificationHTTP "kuzeykoc/services/notification/internal/controller/http"
	"kuzeykoc/services/notification/internal/realtime"
	"kuzeykoc/services/notification/internal/repo/persistent"
	"kuzeykoc/services/notification/internal/usecase"
	"kuzeykoc/services/notification/internal/worker"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "kuzeykoc/services/notification/docs" // Swagger docs
)

func Run(cfg *config.Config, log *logger.Logger, db *gorm.DB, redisClient *redis.Client, queueClient *queue.Client) {
	jwtService := jwt.NewService(cfg.JWTSecret)

	// Initialize Repositories
	notificationRepo := persistent.NewNotificationRepository(db)
	activityRepo := persistent.NewActivityRepository(db)

	// Realtime channel over redis pub/sub
	channel := realtime.NewRedisChannel(redisClient, log)

	// Initialize UseCase
	notificationUseCase := usecase.NewNotificationUseCase(notificationRepo, activityRepo, channel, log)

	// Background worker with its durable cache
	workerCache := worker.NewRedisCache(redisClient)
	fetcher := worker.NewRepoFetcher(notificationRepo)
	notifier := worker.NewChannelNotifier(channel)
	backgroundWorker := worker.NewWorker(workerCache, fetcher, notifier, log,
		cfg.WorkerPollInterval, cfg.WorkerActivationDelay)

	// Initialize HTTP handlers
	notificationHandler := notificationHTTP.NewNotificationHandler(
		notificationUseCase, queueClient, channel, backgroundWorker, jwtService, log, cfg)

	// Setup router
	r := gin.Default()

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000", "*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	// Protected routes - require authentication
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(jwtService))
	{
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.POST("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.POST("/notifications/test", notificationHandler.SendTestNotification)

		activity := protected.Group("/activity")
		activity.Use(middleware.RateLimitMiddleware(redisClient, 60, time.Minute))
		{
			activity.POST("/daily-logs", notificationHandler.AddDailyLog)
			activity.POST("/homework/:id/complete", notificationHandler.CompleteHomework)
			activity.POST("/trial-exams", notificationHandler.AddTrialExam)
		}
	}
	// WebSocket endpoint - handles authentication internally via query parameter
	api.GET("/notifications/ws", notificationHandler.HandleWebSocket)
	// Worker callback - no auth required (for platform notification clicks)
	api.POST("/worker/notifications/click", notificationHandler.HandleNotificationClick)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	// Run the persistent worker
	go backgroundWorker.Run(workerCtx)

	// Drain worker click events
	go func() {
		for click := range backgroundWorker.Clicks() {
			log.Info("Notification click resolved: action=%s route=%s", click.Action, click.Route)
		}
	}()

	// Start consuming student activity tasks from RabbitMQ
	go func() {
		log.Info("Starting activity task consumer...")
		err := queueClient.ConsumeActivityTasks(func(task map[string]interface{}) error {
			log.Info("Received activity task: %+v", task)
			return notificationUseCase.HandleActivityTask(task)
		})
		if err != nil {
			log.Error("Error starting activity task consumer: %v", err)
		}
	}()

	// Start server in a goroutine
	go func() {
		log.Info("Notification service starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down notification service...")

	stopWorker()

	// The context is used to inform the server it has 5 seconds to finish
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Close Redis connection
	if err := redisClient.Close(); err != nil {
		log.Error("Error closing Redis: %v", err)
	}

	// Close RabbitMQ connection
	if queueClient != nil {
		queueClient.Close()
	}

	// Shutdown server
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
		panic(err)
	}

	log.Info("Notification service exited")
}
