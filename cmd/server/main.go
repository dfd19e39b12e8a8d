package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	billingapp "github.com/physiomanager/backend/internal/application/billing"
	clinicapp "github.com/physiomanager/backend/internal/application/clinic"
	identityapp "github.com/physiomanager/backend/internal/application/identity"
	reportapp "github.com/physiomanager/backend/internal/application/report"
	"github.com/physiomanager/backend/internal/infrastructure/auth"
	"github.com/physiomanager/backend/internal/infrastructure/config"
	"github.com/physiomanager/backend/internal/infrastructure/event"
	"github.com/physiomanager/backend/internal/infrastructure/logger"
	"github.com/physiomanager/backend/internal/infrastructure/persistence"
	"github.com/physiomanager/backend/internal/interfaces/http/handler"
	"github.com/physiomanager/backend/internal/interfaces/http/middleware"
	"github.com/physiomanager/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting PhysioManager Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	patientRepo := persistence.NewGormPatientRepository(db.DB)
	sessionLogRepo := persistence.NewGormSessionLogRepository(db.DB)
	paymentRecordRepo := persistence.NewGormPaymentRecordRepository(db.DB)
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	txRunner := persistence.NewGormTxRunner(db.DB)

	// Token blacklist: Redis when configured, otherwise in-process.
	// The in-memory fallback suits a single-instance deployment.
	var blacklist auth.TokenBlacklist
	if cfg.Redis.Enabled {
		redisBlacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisBlacklist.Close(); err != nil {
				log.Error("Error closing Redis connection", zap.Error(err))
			}
		}()
		blacklist = redisBlacklist
		log.Info("Redis token blacklist enabled")
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
		log.Info("In-memory token blacklist enabled")
	}

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(accountRepo, jwtService, blacklist, cfg.Admin.Email, eventBus, log)
	accountService := identityapp.NewAccountService(accountRepo, blacklist, jwtService, eventBus, log)
	patientService := clinicapp.NewPatientService(patientRepo, sessionLogRepo, eventBus, log)
	patientImportService := clinicapp.NewPatientImportService(patientService, log)
	checkInService := clinicapp.NewCheckInService(patientRepo, sessionLogRepo, paymentRecordRepo, txRunner, eventBus, log)
	paymentService := billingapp.NewPaymentService(paymentRecordRepo, patientRepo, eventBus, log)
	dashboardService := reportapp.NewDashboardService(patientRepo, paymentRecordRepo, log)
	calculatorService := reportapp.NewCalculatorService(patientRepo, log)
	statisticsService := reportapp.NewStatisticsService(patientRepo, log)

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	accountHandler := handler.NewAccountHandler(accountService)
	patientHandler := handler.NewPatientHandler(patientService, patientImportService)
	checkInHandler := handler.NewCheckInHandler(checkInService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	reportHandler := handler.NewReportHandler(dashboardService, calculatorService, statisticsService)
	systemHandler := handler.NewSystemHandler()

	// SSE stream pushes clinical updates to open dashboards
	sseHandler := handler.NewClinicEventSSEHandler(eventBus, handler.WithSSELogger(log))
	if err := sseHandler.Start(); err != nil {
		log.Fatal("Failed to start SSE handler", zap.Error(err))
	}
	defer sseHandler.Stop()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		SkipPaths: []string{
			"/api/v1/auth/register",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/health",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Auth routes. Credential endpoints get a tighter per-IP limit to
	// slow down brute-force attempts.
	authLimiter := middleware.NewRateLimiter(10, time.Minute)
	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/register", middleware.AuthRateLimit(authLimiter), authHandler.Register)
	authRoutes.POST("/login", middleware.AuthRateLimit(authLimiter), authHandler.Login)
	authRoutes.POST("/refresh", middleware.AuthRateLimit(authLimiter), authHandler.Refresh)
	authRoutes.POST("/logout", authHandler.Logout)
	authRoutes.POST("/change-password", authHandler.ChangePassword)

	// Profile routes
	profileRoutes := router.NewDomainGroup("profile", "/profile")
	profileRoutes.GET("", accountHandler.Me)
	profileRoutes.PUT("", accountHandler.UpdateProfile)

	// Patient routes
	patientRoutes := router.NewDomainGroup("patients", "/patients")
	patientRoutes.POST("", patientHandler.Create)
	patientRoutes.POST("/import", patientHandler.Import)
	patientRoutes.GET("", patientHandler.List)
	patientRoutes.GET("/:id", patientHandler.Get)
	patientRoutes.PUT("/:id", patientHandler.Update)
	patientRoutes.DELETE("/:id", patientHandler.Delete)
	patientRoutes.POST("/:id/complete", patientHandler.Complete)
	patientRoutes.POST("/:id/reactivate", patientHandler.Reactivate)
	patientRoutes.GET("/:id/history", patientHandler.History)

	// Check-in routes
	checkinRoutes := router.NewDomainGroup("checkins", "/checkins")
	checkinRoutes.POST("", checkInHandler.CheckIn)
	checkinRoutes.GET("/roster", checkInHandler.Roster)

	// Payment routes
	paymentRoutes := router.NewDomainGroup("payments", "/payments")
	paymentRoutes.POST("", paymentHandler.Register)
	paymentRoutes.GET("", paymentHandler.List)
	paymentRoutes.GET("/:id", paymentHandler.Get)

	// Report routes
	reportRoutes := router.NewDomainGroup("reports", "/reports")
	reportRoutes.GET("/dashboard", reportHandler.DashboardSummary)
	reportRoutes.POST("/calculator", reportHandler.ProjectRange)
	reportRoutes.GET("/statistics", reportHandler.MonthStatistics)
	reportRoutes.GET("/monthly", reportHandler.MonthReport)

	// Live updates via SSE
	eventRoutes := router.NewDomainGroup("events", "/events")
	eventRoutes.GET("/stream", sseHandler.Stream)

	// Admin routes (account management)
	adminRoutes := router.NewDomainGroup("admin", "/admin")
	adminRoutes.Use(middleware.RequireAdmin())
	adminRoutes.GET("/accounts", accountHandler.List)
	adminRoutes.GET("/accounts/:id", accountHandler.Get)
	adminRoutes.PUT("/accounts/:id/role", accountHandler.SetRole)
	adminRoutes.DELETE("/accounts/:id", accountHandler.Delete)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)

	r.Register(authRoutes).
		Register(profileRoutes).
		Register(patientRoutes).
		Register(checkinRoutes).
		Register(paymentRoutes).
		Register(reportRoutes).
		Register(eventRoutes).
		Register(adminRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Simple liveness probe at API level
	engine.GET("/api/v1/health", systemHandler.Health)

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for the root health check endpoint
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
