package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"societygate/internal/adapters/http/middleware"
	"societygate/internal/adapters/http/routes"
	"societygate/internal/adapters/persistence/models"
	"societygate/internal/adapters/persistence/repositories"
	"societygate/internal/adapters/storage"
	"societygate/internal/config"
	"societygate/internal/core/services"

	"github.com/gofiber/fiber/v2"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed default accounts
	if err := config.NewSeeder(db, cfg).Run(); err != nil {
		log.Printf("⚠️ Warning: Failed to seed database: %v", err)
	}

	// Photo store is optional: without it check-ins proceed photo-less
	photoStore, err := storage.NewPhotoStore(context.Background(), cfg.Storage)
	if err != nil {
		log.Printf("⚠️ Photo store unavailable, check-ins will skip photos: %v", err)
		photoStore = nil
	}

	// Notification service owns the SSE hub and the dedup store
	notifRepo := repositories.NewNotificationRepository(db)
	notifyService := services.NewNotifyService(notifRepo, nil)

	// Background sweeps: pre-approval expiry + notification retention
	approvalRepo := repositories.NewApprovalRepository(db)
	expiryService := services.NewExpiryService(
		approvalRepo,
		notifRepo,
		time.Duration(cfg.Gate.ApprovalTTLHours)*time.Hour,
	)
	if err := expiryService.Start(); err != nil {
		log.Fatalf("❌ Failed to start expiry scheduler: %v", err)
	}
	defer expiryService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "SocietyGate API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes
	routes.Setup(app, db, cfg, routes.Deps{
		NotifyService: notifyService,
		PhotoStore:    photoStore,
	})

	// Serve the built web app; unknown paths fall back to index.html so the
	// browser router owns them
	app.Static("/", cfg.Gate.WebRoot)
	app.Get("/*", func(c *fiber.Ctx) error {
		return c.SendFile(cfg.Gate.WebRoot + "/index.html")
	})

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
