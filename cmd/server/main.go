package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/visitcare/visitation-backend/internal/config"
	"github.com/visitcare/visitation-backend/internal/database"
	"github.com/visitcare/visitation-backend/internal/handlers"
	"github.com/visitcare/visitation-backend/internal/middleware"
	"github.com/visitcare/visitation-backend/internal/services"
	"github.com/visitcare/visitation-backend/pkg/jwt"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting VisitCare Visitation Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Initialize repositories
	memberRepo := database.NewMemberRepository(db)
	routeRepo := database.NewVisitRouteRepository(db)
	slotRepo := database.NewVisitSlotRepository(db)
	patientRepo := database.NewPatientRepository(db)
	notificationRepo := database.NewNotificationRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	auditService := services.NewAuditService(db)
	visitService := services.NewVisitService(slotRepo, routeRepo, memberRepo)
	notificationService := services.NewNotificationService(notificationRepo, memberRepo, routeRepo)
	logger.Info("Services initialized")

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(
		memberRepo,
		jwtService,
		auditService,
		int64(cfg.JWT.AccessTokenExpiry.Seconds()),
		cfg.Security.BcryptCost,
		logger,
	)
	memberHandler := handlers.NewMemberHandler(memberRepo, auditService, logger)
	routeHandler := handlers.NewRouteHandler(routeRepo, logger)
	visitHandler := handlers.NewVisitHandler(visitService, notificationService, auditService, memberRepo, logger)
	patientHandler := handlers.NewPatientHandler(patientRepo, logger)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo, logger)
	adminHandler := handlers.NewAdminHandler(memberRepo, slotRepo, routeRepo, auditService, logger)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Authentication routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)

			// Protected routes (require JWT authentication)
			protected := auth.Group("")
			protected.Use(middleware.AuthMiddleware(jwtService))
			{
				protected.GET("/profile", authHandler.GetProfile)
				protected.PUT("/profile", authHandler.UpdateProfile)
				protected.POST("/change-password", authHandler.ChangePassword)
			}
		}

		// Member roster routes (protected)
		members := v1.Group("/members")
		members.Use(middleware.AuthMiddleware(jwtService))
		{
			members.GET("", memberHandler.ListMembers)
			members.GET("/:id", memberHandler.GetMember)
			members.PUT("/:id", middleware.RequireRole("ADMIN"), memberHandler.UpdateMember)
		}

		// Visit route routes (protected; mutations admin-only)
		routes := v1.Group("/routes")
		routes.Use(middleware.AuthMiddleware(jwtService))
		{
			routes.GET("", routeHandler.ListRoutes)
			routes.GET("/:id", routeHandler.GetRoute)
			routes.POST("", middleware.RequireRole("ADMIN"), routeHandler.CreateRoute)
			routes.PUT("/:id", middleware.RequireRole("ADMIN"), routeHandler.UpdateRoute)
			routes.DELETE("/:id", middleware.RequireRole("ADMIN"), routeHandler.DeactivateRoute)
		}

		// Visit slot and lifecycle routes (protected)
		visits := v1.Group("/visits")
		visits.Use(middleware.AuthMiddleware(jwtService))
		{
			visits.GET("/slot", visitHandler.GetSlot)
			visits.GET("/day/:date", visitHandler.DayView)
			visits.GET("/coverage", visitHandler.MonthCoverage)
			visits.GET("/mine", visitHandler.MyVisits)
			visits.POST("/assign", visitHandler.Assign)
			visits.POST("/:id/on-the-way", visitHandler.MarkOnTheWay)
			visits.POST("/:id/finish", visitHandler.FinishVisit)
			visits.GET("/reports", middleware.RequireRole("ADMIN"), visitHandler.ListReports)
		}

		// Patient registry routes (protected; mutations admin-only)
		patients := v1.Group("/patients")
		patients.Use(middleware.AuthMiddleware(jwtService))
		{
			patients.GET("", patientHandler.ListPatients)
			patients.GET("/:id", patientHandler.GetPatient)
			patients.POST("", middleware.RequireRole("ADMIN"), patientHandler.CreatePatient)
			patients.PUT("/:id", middleware.RequireRole("ADMIN"), patientHandler.UpdatePatient)
			patients.DELETE("/:id", middleware.RequireRole("ADMIN"), patientHandler.DeletePatient)
		}

		// Notification inbox routes (protected)
		notifications := v1.Group("/notifications")
		notifications.Use(middleware.AuthMiddleware(jwtService))
		{
			notifications.GET("", notificationHandler.ListNotifications)
			notifications.POST("/:id/read", notificationHandler.MarkRead)
			notifications.POST("/read-all", notificationHandler.MarkAllRead)
		}

		// Admin dashboard routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(jwtService), middleware.RequireRole("ADMIN"))
		{
			admin.GET("/dashboard", adminHandler.Dashboard)
			admin.GET("/members/:id/activity", adminHandler.MemberActivity)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		if memberCtx, exists := middleware.GetMemberContext(c); exists {
			fields["member_id"] = memberCtx.MemberID
		}

		entry := logger.WithFields(fields)

		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "healthy"
		if err := db.Ping(); err != nil {
			dbStatus = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": dbStatus,
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  dbStatus,
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
