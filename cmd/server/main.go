package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phamduchuy/savora/internal/cache"
	"github.com/phamduchuy/savora/internal/config"
	"github.com/phamduchuy/savora/internal/dispatcher"
	"github.com/phamduchuy/savora/internal/handler"
	"github.com/phamduchuy/savora/internal/middleware"
	"github.com/phamduchuy/savora/internal/model"
	"github.com/phamduchuy/savora/internal/repository"
	"github.com/phamduchuy/savora/internal/service"
	"github.com/phamduchuy/savora/internal/ws"
	"github.com/phamduchuy/savora/migrations"
	"github.com/phamduchuy/savora/pkg/auth"
	"github.com/phamduchuy/savora/pkg/push"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/time/rate"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// @title           Savora API
// @version         1.0
// @description     Recipe discovery backend: meal reminders, weekly plans and push delivery.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      api.localhost
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// ==================== Load Config ====================
	cfg := config.Load()
	log.Printf("🚀 Starting Savora API Server [env=%s]", cfg.App.Env)

	// ==================== Database (PostgreSQL) ====================
	gormLogger := logger.Default.LogMode(logger.Info)
	if cfg.App.Env == "production" {
		gormLogger = logger.Default.LogMode(logger.Warn)
	}

	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{
		Logger: gormLogger,
		// Map the pending-slot unique index violation to gorm.ErrDuplicatedKey
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	log.Println("✅ Connected to PostgreSQL")

	// ==================== Run Migrations ====================
	if err := migrations.Run(cfg.DB.URL()); err != nil {
		log.Printf("⚠️  Migration warning: %v", err)
		log.Println("📦 Falling back to GORM AutoMigrate...")
		if err := db.AutoMigrate(
			&model.Recipe{},
			&model.Reminder{},
			&model.WeeklyPlanEntry{},
			&model.Preference{},
		); err != nil {
			log.Fatalf("❌ Failed to migrate database: %v", err)
		}
	}
	log.Println("✅ Database migrated successfully")

	// ==================== Redis ====================
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       0,
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	log.Println("✅ Connected to Redis")

	// ==================== Push Gateways ====================
	expoGateway := push.NewExpoGateway(cfg.Push.ExpoURL)

	var fcmGateway push.Gateway
	if gw, err := push.NewFCMGateway(cfg.Push.FCMCredentials); err != nil {
		log.Printf("⚠️  FCM unavailable: %v (Expo-only delivery)", err)
	} else if gw != nil {
		fcmGateway = gw
	}
	pushRouter := push.NewRouter(expoGateway, fcmGateway)

	// ==================== Initialize Layers ====================
	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Expiry)

	// Repositories
	reminderRepo := repository.NewReminderRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	planRepo := repository.NewWeeklyPlanRepository(db)
	preferenceRepo := repository.NewPreferenceRepository(db)

	// Caches
	statusCache := cache.NewStatusCache(rdb)

	// Services
	reminderService := service.NewReminderService(reminderRepo, statusCache)
	planService := service.NewPlanService(planRepo, recipeRepo, reminderRepo)
	preferenceService := service.NewPreferenceService(preferenceRepo)

	// WebSocket hub for the reminder status feed (Redis Pub/Sub fan-out)
	hub := ws.NewHub(rdb)
	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()
	go hub.Run(hubCtx)

	// Reminder dispatcher (the polling delivery loop)
	disp := dispatcher.New(reminderRepo, pushRouter, statusCache, hub, dispatcher.Config{
		Interval:    cfg.Dispatch.Interval,
		BatchLimit:  cfg.Dispatch.BatchLimit,
		Concurrency: cfg.Dispatch.Concurrency,
		MaxAttempts: cfg.Dispatch.MaxAttempts,
		RetryBase:   cfg.Dispatch.RetryBase,
		ClaimLease:  cfg.Dispatch.ClaimLease,
	})
	dispCtx, dispCancel := context.WithCancel(context.Background())
	dispDone := make(chan struct{})
	go func() {
		defer close(dispDone)
		disp.Run(dispCtx)
	}()

	// Handlers
	reminderHandler := handler.NewReminderHandler(reminderService)
	recipeHandler := handler.NewRecipeHandler(recipeRepo)
	planHandler := handler.NewPlanHandler(planService, hub)
	preferenceHandler := handler.NewPreferenceHandler(preferenceService)
	wsHandler := handler.NewWSHandler(hub, jwtManager)

	// ==================== Gin Router ====================
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Swagger configuration
	router.StaticFile("/docs/swagger.json", "./docs/swagger.json")
	url := ginSwagger.URL("/docs/swagger.json")
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, url))

	// Global middleware
	router.Use(middleware.CORSMiddleware(cfg.CORS.Origins))
	rateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)
	router.Use(rateLimiter.Middleware())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "savora-api",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	// ==================== API Routes ====================
	api := router.Group("/api/v1")
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(jwtManager, rdb))
	{
		// Reminders
		protected.POST("/alarm", reminderHandler.CreateAlarm)
		protected.GET("/notifications", reminderHandler.ListNotifications)
		protected.GET("/notifications/:id", reminderHandler.GetNotificationStatus)
		protected.DELETE("/notifications/:id", reminderHandler.DeleteNotification)

		// Recipe catalog
		protected.GET("/recipes", recipeHandler.ListRecipes)
		protected.GET("/recipes/:id", recipeHandler.GetRecipe)
		protected.GET("/categories", recipeHandler.ListCategories)

		// Dietary preferences
		protected.GET("/preferences", preferenceHandler.ListPreferences)
		protected.PUT("/preferences", preferenceHandler.SetPreferences)
		protected.DELETE("/preferences/:id", preferenceHandler.DeletePreference)

		// Weekly plan
		protected.GET("/weekly-plan", planHandler.GetWeeklyPlan)
		protected.PUT("/weekly-plan/:day/:mealType", planHandler.AssignSlot)
		protected.DELETE("/weekly-plan/:day/:mealType", planHandler.ClearSlot)
	}

	// WebSocket status feed (auth via query parameter)
	router.GET("/ws", wsHandler.HandleWebSocket)

	// ==================== Start Server ====================
	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	log.Printf("🌐 Savora API running on http://0.0.0.0:%s", cfg.App.Port)
	log.Printf("📋 API docs: http://0.0.0.0:%s/swagger/index.html", cfg.App.Port)
	log.Printf("🔌 Status feed: ws://0.0.0.0:%s/ws?token=<jwt>", cfg.App.Port)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	// Stop claiming new work, then give ongoing requests 5 seconds to complete
	dispCancel()
	<-dispDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	hubCancel()
	log.Println("✅ Server exited gracefully")
}
