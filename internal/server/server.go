// Package server contains the HTTP handlers and the access gate for the
// application's API and page routes.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	_ "memberbase/docs" // swagger docs
	"memberbase/internal/auth"
	"memberbase/internal/cache"
	"memberbase/internal/config"
	"memberbase/internal/database"
	"memberbase/internal/middleware"
	"memberbase/internal/models"
	"memberbase/internal/repository"
	"memberbase/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	principals     repository.PrincipalRepository
	orgs           repository.OrganizationRepository
	adminRequests  repository.AdminRequestRepository
	tokens         *auth.TokenIssuer
	otp            *service.OTPService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and
// optionally performs explicit seeding.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	prom := middleware.InitMetrics("memberbase-api")

	tokens := auth.NewTokenIssuer(
		cfg.JWTSecret,
		time.Duration(cfg.SessionTTLHours)*time.Hour,
		time.Duration(cfg.GuestTTLHours)*time.Hour,
	)

	otpRepo := repository.NewOTPRepository(db)
	// Provider integrations plug in here; outside production the code is
	// written to the structured log instead of delivered.
	var sender service.Sender = service.LogSender{}

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		principals:     repository.NewPrincipalRepository(db),
		orgs:           repository.NewOrganizationRepository(db),
		adminRequests:  repository.NewAdminRequestRepository(db),
		tokens:         tokens,
		otp:            service.NewOTPService(otpRepo, sender, time.Duration(cfg.OTPTTLMinutes)*time.Minute),
	}

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and Principal ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit
	// (e.g. limiter) so browser clients still receive CORS headers on error
	// responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))

	// The access gate classifies and authorizes every request before any
	// route handler runs. Routes registered below do not repeat auth checks.
	app.Use(s.AccessGate())
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Page routes the gate redirects browsers to
	app.Get("/login/member", s.LoginPage)
	app.Get("/login/admin", s.AdminLoginPage)
	app.Get("/login/superadmin", s.SuperadminLoginPage)
	app.Get("/register", s.RegisterPage)
	app.Get("/password-reset", s.PasswordResetPage)
	app.Get("/pending-approval", s.PendingApprovalPage)
	app.Get("/inactive-account", s.InactiveAccountPage)
	app.Get("/unauthorized", s.UnauthorizedPage)
	app.Get("/member/dashboard", s.DashboardPage(models.RoleMember))
	app.Get("/admin/dashboard", s.DashboardPage(models.RoleAdmin))
	app.Get("/superadmin/dashboard", s.DashboardPage(models.RoleSuperadmin))

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/member/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.RegisterMember)
	authGroup.Post("/admin/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "admin_register"), s.RequestAdminAccount)
	authGroup.Post("/member/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.MemberLogin)
	authGroup.Post("/admin/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "admin_login"), s.AdminLogin)
	authGroup.Post("/superadmin/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "superadmin_login"), s.SuperadminLogin)
	authGroup.Post("/logout", s.Logout)
	authGroup.Post("/otp/send", middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "otp_send"), s.SendOTP)
	authGroup.Post("/otp/verify", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "otp_verify"), s.VerifyOTP)
	authGroup.Post("/password-reset/request", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "password_reset"), s.RequestPasswordReset)
	authGroup.Post("/password-reset/confirm", s.ConfirmPasswordReset)
	authGroup.Get("/application-status", s.ApplicationStatus)

	// Membership application alias used by the public signup form
	api.Post("/membership/apply", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.RegisterMember)

	// Public organization routes
	orgs := api.Group("/organizations")
	orgs.Get("/", s.ListOrganizations)
	orgs.Get("/:slug", s.GetOrganizationBySlug)

	// Member routes (gate requires member role or above)
	member := api.Group("/member")
	member.Get("/me", s.GetMyProfile)
	member.Put("/me", s.UpdateMyProfile)
	member.Get("/dashboard", s.MemberDashboard)

	// Admin routes (gate requires admin role or above)
	admin := api.Group("/admin")
	admin.Get("/dashboard", s.AdminDashboard)
	admin.Get("/organization", s.GetMyOrganization)
	admin.Put("/organization", s.UpdateMyOrganization)
	members := admin.Group("/members")
	members.Get("/", s.ListMembers)
	members.Post("/:id/approve", s.ApproveMember)
	members.Post("/:id/reject", s.RejectMember)
	members.Post("/:id/disable", s.DisableMember)
	members.Post("/:id/enable", s.EnableMember)

	// Superadmin routes (gate requires superadmin role)
	superadmin := api.Group("/superadmin")
	superadmin.Get("/dashboard", s.SuperadminDashboard)
	superOrgs := superadmin.Group("/organizations")
	superOrgs.Get("/", s.ListAllOrganizations)
	superOrgs.Post("/", s.CreateOrganization)
	superOrgs.Put("/:id", s.UpdateOrganization)
	superOrgs.Delete("/:id", s.DeleteOrganization)
	requests := superadmin.Group("/admin-requests")
	requests.Get("/", s.ListAdminRequests)
	requests.Post("/:id/approve", s.ApproveAdminRequest)
	requests.Post("/:id/reject", s.RejectAdminRequest)
	admins := superadmin.Group("/admins")
	admins.Get("/", s.ListAdmins)
	admins.Post("/", s.CreateAdmin)
	admins.Post("/:id/disable", s.DisableAdmin)
	admins.Post("/:id/enable", s.EnableAdmin)
}

// HealthCheck is a legacy/simple alias for ReadinessCheck
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return s.ReadinessCheck(c)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// Without Redis, revocation and rate limiting do not work; the app is
		// not ready.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "Memberbase",
		"version": "1.0.0",
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "Memberbase API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
