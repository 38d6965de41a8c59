package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"moneta/internal/config"
	"moneta/internal/database"
	"moneta/internal/events"
	"moneta/internal/handlers"
	"moneta/internal/logger"
	"moneta/internal/middleware"
	"moneta/internal/services"
	"moneta/internal/validator"

	_ "moneta/internal/docs" // Import swagger docs
)

// @title           Moneta API
// @version         1.0
// @description     Moneta is a personal finance application for tracking income and expenses, organizing them into categories, and analyzing spending over time.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Register custom binding validators
	validator.Register()

	// Create database manager
	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Event publishing is best-effort: without an AMQP URL the no-op
	// publisher keeps the rest of the wiring identical.
	var publisher events.Publisher = events.NopPublisher{}
	if appConfig.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(appConfig.AMQPURL, appConfig.AMQPExchange)
		if err != nil {
			return fmt.Errorf("failed to connect to AMQP broker: %w", err)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	}

	// Initialize services
	db := dbManager.DB()
	categoryService := services.NewCategoryService(db)
	userService := services.NewUserService(db, categoryService)
	transactionService := services.NewTransactionService(db, categoryService, userService, publisher)
	recurringService := services.NewRecurringService(db, transactionService, categoryService, userService, publisher)
	analyticsService := services.NewAnalyticsService(db)
	auditService := services.NewAuditService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, recurringService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())
	protected.Use(middleware.Audit(auditService))

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Category routes
	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.ListCategories)
	categories.GET("/suggest", categoryHandler.SuggestCategories)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.POST("/bulk-import", transactionHandler.BulkImportTransactions)
	transactions.GET("/analytics/overview", analyticsHandler.GetOverview)
	transactions.GET("/analytics/trends", analyticsHandler.GetTrends)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)
	transactions.POST("/:id/restore", transactionHandler.RestoreTransaction)
	transactions.POST("/:id/advance", transactionHandler.AdvanceTransaction)

	log.Infof("Starting Moneta backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
