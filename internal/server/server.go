// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "fashionai/docs" // swagger docs
	"fashionai/internal/auth"
	"fashionai/internal/config"
	"fashionai/internal/database"
	"fashionai/internal/integrations"
	"fashionai/internal/middleware"
	"fashionai/internal/models"
	"fashionai/internal/redisclient"
	"fashionai/internal/repository"
	"fashionai/internal/service"
	"fashionai/internal/validation"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Clients groups the outbound provider clients.
type Clients struct {
	Mailer  integrations.Mailer
	Images  integrations.ImageHost
	Mockups integrations.MockupRenderer
}

// ClientsFromConfig builds the production provider clients.
func ClientsFromConfig(cfg *config.Config) Clients {
	return Clients{
		Mailer:  integrations.NewSendGridMailer(cfg.SendGridAPIKey, cfg.SendGridSenderEmail, ""),
		Images:  integrations.NewCloudflareImages(cfg.CloudflareAccountID, cfg.CloudflareAPIKey, cfg.CloudflareAccountHash, ""),
		Mockups: integrations.NewDynamicMockups(cfg.DynamicMockupsAPIKey, cfg.DynamicMockupsURL),
	}
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	tokens         *auth.TokenManager
	validator      *validation.Validator
	limiter        *middleware.RateLimiter
	userRepo       repository.UserRepository
	productRepo    repository.ProductRepository
	favoriteRepo   repository.FavoriteRepository
	codeStore      repository.VerificationStore
	clients        Clients
	authService    *service.AuthService
	userService    *service.UserService
	productService *service.ProductService
}

// NewServer connects to the database and Redis and builds a Server with production clients.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	redisClient := redisclient.Connect(ctx, cfg.RedisURL)

	return NewServerWithDeps(cfg, db, redisClient, ClientsFromConfig(cfg))
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// A nil redisClient selects the database-backed verification code store.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, clients Clients) (*Server, error) {
	tokens, err := auth.NewTokenManager(cfg)
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}

	var codeStore repository.VerificationStore
	if redisClient != nil {
		codeStore = repository.NewRedisVerificationStore(redisClient)
	} else {
		middleware.Logger.Warn("Redis unavailable, storing verification codes in the database")
		codeStore = repository.NewDBVerificationStore(db)
	}

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("fashionai-api"),
		tokens:         tokens,
		validator:      validation.New(),
		limiter:        middleware.NewRateLimiter(redisClient, cfg.Env),
		userRepo:       repository.NewUserRepository(db),
		productRepo:    repository.NewProductRepository(db),
		favoriteRepo:   repository.NewFavoriteRepository(db),
		codeStore:      codeStore,
		clients:        clients,
	}

	codeTTL := time.Duration(cfg.VerificationCodeTTLMinutes) * time.Minute
	server.authService = service.NewAuthService(server.userRepo, server.codeStore, clients.Mailer, tokens, codeTTL)
	server.userService = service.NewUserService(server.userRepo)
	server.productService = service.NewProductService(server.productRepo, server.favoriteRepo)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := strings.Join(s.config.AllowedOriginList(), ",")
	if origins == "" {
		origins = "http://localhost:3000,http://localhost:5173,http://127.0.0.1:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return models.RespondWithError(c, fiber.StatusTooManyRequests, models.NewRateLimitedError())
		},
	}))
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
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "FashionAI API Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Auth routes
	api.Post("/register", s.limiter.Limit("register", 5, 10*time.Minute), s.Register)
	api.Post("/login", s.limiter.Limit("login", 10, 5*time.Minute), s.Login)
	api.Post("/send-verification-code", s.limiter.Limit("verification_code", 3, 10*time.Minute), s.SendVerificationCode)
	api.Post("/verify-and-register", s.limiter.Limit("verify", 10, 10*time.Minute), s.VerifyAndRegister)

	// User routes
	users := api.Group("/users")
	users.Post("/", s.limiter.Limit("register", 5, 10*time.Minute), s.CreateUser)
	users.Get("/me", s.AuthRequired(), s.GetMe)
	users.Put("/me", s.AuthRequired(), s.UpdateMe)
	users.Post("/logout", s.AuthRequired(), s.Logout)

	// Product routes
	products := api.Group("/products", s.AuthRequired())
	products.Post("/", s.CreateProduct)
	products.Get("/", s.ListProducts)
	products.Get("/user/created", s.ListCreatedProducts)
	products.Get("/user/favorites", s.ListFavoriteProducts)
	products.Get("/user", s.ListMyProducts)
	products.Post("/like", s.LikeProduct)
	products.Post("/unlike", s.UnlikeProduct)
	products.Post("/generate-product-image",
		s.limiter.Limit("mockup_render", 10, time.Minute), s.GenerateProductImage)

	// Image upload
	api.Post("/upload-to-cloudflare", s.AuthRequired(),
		s.limiter.Limit("image_upload", 20, time.Minute), s.UploadImage)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional; only
// the database decides readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
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
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware. The bearer token must
// verify and its subject must still exist.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if scheme, token, ok := strings.Cut(authHeader, " "); ok && strings.EqualFold(scheme, "Bearer") {
			tokenString = strings.TrimSpace(token)
		}
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Not authenticated"))
		}

		userID, err := s.tokens.Parse(tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Could not validate credentials"))
		}

		if _, err := s.userRepo.GetByID(c.UserContext(), userID); err != nil {
			if models.HasCode(err, models.CodeNotFound) {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Could not validate credentials"))
			}
			return s.respondError(c, err)
		}

		// Store user ID in context
		c.Locals("userID", userID)
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// NewApp builds the Fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	bodyLimit := (s.config.UploadMaxSizeMB + 1) * 1024 * 1024

	app := fiber.New(fiber.Config{
		AppName:   "FashionAI API",
		BodyLimit: bodyLimit,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "Unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start starts the server
func (s *Server) Start() error {
	app := s.NewApp()
	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
