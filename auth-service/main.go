package main

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"secureweb-backend/auth-service/handlers"
	"secureweb-backend/auth-service/middleware"
	"secureweb-backend/auth-service/services"
	"secureweb-backend/shared/cache"
	"secureweb-backend/shared/config"
	"secureweb-backend/shared/database"
	"secureweb-backend/shared/queue"
	utils "secureweb-backend/shared/utils/auth"
)

func main() {
	// Load configuration
	config.LoadConfig()
	cfg := config.GetConfig()

	// A missing signing key is a deployment mistake, not a per-request condition
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not configured")
	}

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	// Initialize Redis (blacklist, rate limits, codes, mail queue)
	if err := cache.InitRedis(); err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer cache.CloseRedis()

	rdb := cache.GetRedis()

	// Wire services
	tokenService := utils.NewTokenService(rdb, cfg.JWTSecret, cfg.GetJWTExpireDuration())
	mailQueue := queue.NewMailQueue(rdb)
	verificationService := services.NewVerificationService(rdb, mailQueue,
		cfg.GetVerifyCodeTTL(), cfg.GetVerifyLimitWindow())

	authHandler := handlers.NewAuthHandler(database.GetDB(), tokenService, verificationService)

	router := gin.Default()

	// Middleware chain: CORS first, then the auth gate. The gate only
	// attaches an identity; RequireAuth decides per route group.
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.FrontendURL}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))
	router.Use(middleware.AuthMiddleware(tokenService))

	// Public auth endpoints
	router.POST("/api/auth/login", authHandler.Login)
	router.GET("/api/auth/ask-code", authHandler.AskVerifyCode)
	router.POST("/api/auth/register", authHandler.Register)
	router.POST("/api/auth/reset-confirm", authHandler.ConfirmReset)
	router.POST("/api/auth/reset-password", authHandler.ResetPassword)

	// Authenticated endpoints
	authenticated := router.Group("/", middleware.RequireAuth())
	authenticated.POST("/api/auth/logout", authHandler.Logout)
	authenticated.GET("/api/user/me", authHandler.Me)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "auth",
		})
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	port := strings.Split(cfg.AuthServiceURL, ":")[2]
	log.Printf("Auth Service starting on port %s...", port)
	log.Fatal(router.Run(":" + port))
}
