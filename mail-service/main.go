package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"

	"secureweb-backend/mail-service/services"
	"secureweb-backend/shared/cache"
	"secureweb-backend/shared/config"
	"secureweb-backend/shared/queue"
)

func main() {
	// Load configuration
	config.LoadConfig()
	cfg := config.GetConfig()

	// Initialize Redis (queue broker)
	if err := cache.InitRedis(); err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer cache.CloseRedis()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start the mail consumer, fully decoupled from any request path
	mailQueue := queue.NewMailQueue(cache.GetRedis())
	listener := services.NewMailListener(services.NewSMTPSender(cfg), cfg.EmailFrom)

	go func() {
		log.Println("📬 Mail consumer started")
		if err := mailQueue.Consume(ctx, listener.HandleJob); err != nil && ctx.Err() == nil {
			log.Fatalf("Mail consumer stopped: %v", err)
		}
	}()

	router := gin.Default()

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "mail",
		})
	})

	port := strings.Split(cfg.MailServiceURL, ":")[2]
	log.Printf("📧 Mail Service starting on port %s...", port)

	srv := &http.Server{Addr: ":" + port, Handler: router}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Mail service HTTP server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down mail service...")
	srv.Shutdown(context.Background())
}
