package routes

import (
	"societygate/internal/adapters/http/handlers"
	"societygate/internal/adapters/http/middleware"
	"societygate/internal/adapters/persistence/repositories"
	"societygate/internal/adapters/storage"
	"societygate/internal/config"
	"societygate/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Deps carries the long-lived services the server constructs at boot
type Deps struct {
	NotifyService *services.NotifyService
	PhotoStore    *storage.PhotoStore
}

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, deps Deps) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	visitorRepo := repositories.NewVisitorRepository(db)
	approvalRepo := repositories.NewApprovalRepository(db)
	notifRepo := repositories.NewNotificationRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo)
	visitorService := services.NewVisitorService(visitorRepo, deps.NotifyService)
	approvalService := services.NewApprovalService(approvalRepo, deps.NotifyService)
	dashboardService := services.NewDashboardService(visitorRepo, approvalRepo, notifRepo, userRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	guardHandler := handlers.NewGuardHandler(visitorService, approvalService, deps.PhotoStore)
	residentHandler := handlers.NewResidentHandler(visitorService, approvalService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	notificationHandler := handlers.NewNotificationHandler(deps.NotifyService)
	eventsHandler := handlers.NewEventsHandler(deps.NotifyService)

	// Health check routes
	app.Get("/health", healthHandler.HealthCheck)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.Root)

	// Auth routes (public + protected)
	authRoutes := apiV1.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Guard routes (SECURITY or ADMIN)
	guardRoutes := apiV1.Group("/guard")
	guardRoutes.Use(middleware.AuthMiddleware(cfg))
	guardRoutes.Use(middleware.SecurityOrAdmin())
	setupGuardRoutes(guardRoutes, guardHandler)

	// Resident routes (RESIDENT only)
	residentRoutes := apiV1.Group("/resident")
	residentRoutes.Use(middleware.AuthMiddleware(cfg))
	residentRoutes.Use(middleware.ResidentOnly())
	setupResidentRoutes(residentRoutes, residentHandler)

	// Dashboard routes (role-guarded per endpoint)
	dashboardRoutes := apiV1.Group("/dashboard")
	dashboardRoutes.Use(middleware.AuthMiddleware(cfg))
	dashboardRoutes.Use(middleware.NoCacheHeaders())
	setupDashboardRoutes(dashboardRoutes, dashboardHandler)

	// Notification routes (any authenticated role)
	notifRoutes := apiV1.Group("/notifications")
	notifRoutes.Use(middleware.AuthMiddleware(cfg))
	notifRoutes.Use(middleware.NoCacheHeaders())
	setupNotificationRoutes(notifRoutes, notificationHandler)

	// Live events (SSE, any authenticated role)
	apiV1.Get("/events", middleware.AuthMiddleware(cfg), eventsHandler.Stream)

	// Admin user management
	adminRoutes := apiV1.Group("/admin")
	adminRoutes.Use(middleware.AuthMiddleware(cfg))
	adminRoutes.Use(middleware.AdminOnly())
	setupAdminRoutes(adminRoutes, userHandler)

	// Profile routes (any authenticated role)
	profileRoutes := apiV1.Group("/profile")
	profileRoutes.Use(middleware.AuthMiddleware(cfg))
	profileRoutes.Get("/", userHandler.GetProfile)
	profileRoutes.Put("/password", userHandler.ChangePassword)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes (rate-limited against credential stuffing)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupGuardRoutes configures gate-side routes
func setupGuardRoutes(router fiber.Router, handler *handlers.GuardHandler) {
	// Check-in / check-out
	router.Post("/visitors", handler.CheckIn)
	router.Put("/visitors/:id/checkout", handler.CheckOut)
	router.Get("/visitors/pending", handler.ListPending)

	// Pre-approved arrivals. Verification is strictly rate-limited so a
	// 6-digit code cannot be brute-forced from the gate tablet.
	router.Get("/expected", handler.ListExpected)
	router.Post("/approvals/:id/verify", middleware.StrictRateLimiter(), handler.VerifyArrival)
}

// setupResidentRoutes configures resident routes
func setupResidentRoutes(router fiber.Router, handler *handlers.ResidentHandler) {
	// Gate decisions
	router.Put("/visitors/:id/approve", handler.ApproveVisitor)
	router.Put("/visitors/:id/reject", handler.RejectVisitor)

	// Pre-approvals
	router.Post("/approvals", handler.CreateApproval)
	router.Get("/approvals", handler.ListApprovals)
	router.Put("/approvals/:id/cancel", handler.CancelApproval)
}

// setupDashboardRoutes configures dashboard routes
func setupDashboardRoutes(router fiber.Router, handler *handlers.DashboardHandler) {
	router.Get("/admin", middleware.AdminOnly(), handler.GetAdminDashboard)
	router.Get("/admin/activity", middleware.AdminOnly(), handler.GetActivityLog)
	router.Get("/resident", middleware.ResidentOnly(), handler.GetResidentDashboard)
	router.Get("/security", middleware.SecurityOrAdmin(), handler.GetSecurityDashboard)
}

// setupNotificationRoutes configures the notification inbox routes
func setupNotificationRoutes(router fiber.Router, handler *handlers.NotificationHandler) {
	router.Get("/", handler.List)
	router.Get("/unread-count", handler.UnreadCount)
	router.Put("/:id/read", handler.MarkRead)
	router.Delete("/:id", handler.Delete)
}

// setupAdminRoutes configures admin account management routes
func setupAdminRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Post("/users", handler.CreateUser)
	router.Get("/users", handler.ListUsers)
	router.Get("/users/:id", handler.GetUser)
	router.Put("/users/:id", handler.UpdateUser)
}
