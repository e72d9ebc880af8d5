package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"buyer-portal/buyer-portal-backend/internal/auth"
	"buyer-portal/buyer-portal-backend/internal/completion"
	"buyer-portal/buyer-portal-backend/internal/config"
	"buyer-portal/buyer-portal-backend/internal/export"
	"buyer-portal/buyer-portal-backend/internal/notifications"
	"buyer-portal/buyer-portal-backend/internal/notifications/websocket"
	"buyer-portal/buyer-portal-backend/internal/onboarding"
	"buyer-portal/buyer-portal-backend/internal/procedures"
	"buyer-portal/buyer-portal-backend/internal/sessions"
	"buyer-portal/buyer-portal-backend/pkg/storage"
)

const devJWTSecret = "buyer-portal-dev-secret"

func main() {
	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()

	// Connect to database
	dbURL := cfg.Database.GetDatabaseURL()
	logger.Info("Connecting to database",
		zap.String("host", cfg.Database.Host),
		zap.String("db", cfg.Database.DBName),
	)
	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxConnections)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.MaxLifetime.Std())

	if err := procedures.EnsureSchema(ctx, db); err != nil {
		logger.Fatal("Failed to prepare procedure schema", zap.Error(err))
	}

	// Procedure layer
	procService := procedures.NewService(procedures.NewRepository(db), logger)
	procHandler := procedures.NewHandler(procService, logger)

	var factory onboarding.ProceduresFactory
	if cfg.Procedures.BaseURL != "" {
		client := procedures.NewClient(cfg.Procedures.BaseURL, cfg.Procedures.Timeout.Std())
		factory = func(_ uuid.UUID, token string) onboarding.Procedures {
			return client.ForToken(token)
		}
		logger.Info("Using remote procedure API", zap.String("base_url", cfg.Procedures.BaseURL))
	} else {
		factory = func(buyerID uuid.UUID, _ string) onboarding.Procedures {
			return procedures.NewLocal(procService, buyerID)
		}
	}

	// Wizard snapshots
	var store sessions.Store
	if gdb, err := sessions.Open(dbURL); err != nil {
		logger.Warn("Session database unavailable, snapshots kept in memory", zap.Error(err))
		store = sessions.NewMemoryStore()
	} else {
		store = sessions.NewGormStore(gdb)
	}

	// Archive and email
	archive, bucket, sender := awsServices(ctx, cfg, logger)
	exporter := export.NewExporter()
	hub := websocket.NewHub(logger, websocket.AllowOrigins(cfg.Server.AllowedOrigins...))
	defer hub.Close()

	dossier := completion.NewDossier(
		completion.DefaultConfig(bucket),
		exporter,
		archive,
		notifications.NewService(sender, logger),
		logger,
	)

	registry, err := onboarding.NewBuyerRegistry()
	if err != nil {
		logger.Fatal("Invalid onboarding registry", zap.Error(err))
	}
	manager := onboarding.NewManager(registry, store, factory, logger,
		onboarding.WithKeyPrefix(cfg.Sessions.KeyPrefix),
		onboarding.WithCompletionHooks(dossier.Hook),
		onboarding.WithEvents(hub),
	)
	onboardingHandler := onboarding.NewHandler(manager, exporter, hub, logger)

	// Live sessions idle past the timeout fall back to their snapshots
	evictor := cron.New()
	idle := cfg.Sessions.IdleTimeout.Std()
	if _, err := evictor.AddFunc(cfg.Sessions.EvictSchedule, func() {
		manager.EvictIdle(time.Now().Add(-idle))
	}); err != nil {
		logger.Fatal("Invalid session eviction schedule", zap.Error(err), zap.String("schedule", cfg.Sessions.EvictSchedule))
	}
	evictor.Start()
	defer func() { <-evictor.Stop().Done() }()

	// Auth
	secret := cfg.Security.JWTSecret
	if secret == "" {
		if cfg.Server.IsProduction() {
			logger.Fatal("JWT_SECRET must be set in production")
		}
		logger.Warn("JWT_SECRET not set, using development secret")
		secret = devJWTSecret
	}
	tokens := auth.NewTokenManager(secret, cfg.Security.JWTIssuer)
	authHandler := auth.NewHandler(tokens, 24*time.Hour)

	// Setup Router
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger), cors())

	api := router.Group("/api/v1")
	auth.RegisterRoutes(api, authHandler, !cfg.Server.IsProduction())

	protected := api.Group("")
	protected.Use(auth.Middleware(tokens))
	{
		procHandler.RegisterRoutes(protected)
		onboardingHandler.RegisterRoutes(protected)
	}

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if err := db.PingContext(c.Request.Context()); err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now(),
		})
	})

	// Start Server
	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
		IdleTimeout:  cfg.Server.IdleTimeout.Std(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("addr", srv.Addr), zap.String("env", cfg.Server.Environment))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}

// awsServices returns the S3 archive and email sender. Without a bucket the
// archive stays in memory; without a sender address emails are logged.
func awsServices(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.S3Client, string, notifications.EmailSender) {
	var (
		archive storage.S3Client          = storage.NewMemoryS3Client()
		bucket                            = "local-dossiers"
		sender  notifications.EmailSender = notifications.NewLogSender(logger)
	)
	if cfg.AWS.ArchiveBucket == "" && cfg.AWS.SESFromAddress == "" {
		logger.Warn("No archive bucket or SES sender configured, dossiers stay local")
		return archive, bucket, sender
	}

	awsCfg, err := storage.LoadAWSConfig(ctx, cfg.AWS.Region, cfg.AWS.AccessKeyID, cfg.AWS.SecretAccessKey)
	if err != nil {
		logger.Fatal("Failed to load AWS configuration", zap.Error(err))
	}
	if cfg.AWS.ArchiveBucket != "" {
		archive = storage.NewS3Client(awsCfg)
		bucket = cfg.AWS.ArchiveBucket
	}
	if cfg.AWS.SESFromAddress != "" {
		sender = notifications.NewSESSender(awsCfg, cfg.AWS.SESFromAddress)
	}
	return archive, bucket, sender
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("Request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
