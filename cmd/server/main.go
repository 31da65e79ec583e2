package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"wtyczki.backend/internal/config"
	"wtyczki.backend/internal/infrastructure/billing"
	"wtyczki.backend/internal/infrastructure/identity"
	"wtyczki.backend/internal/infrastructure/jobs"
	"wtyczki.backend/internal/infrastructure/repositories"
	"wtyczki.backend/internal/interfaces/http/handlers"
	"wtyczki.backend/internal/interfaces/http/middleware"
	"wtyczki.backend/internal/usecases"
	"wtyczki.backend/pkg/jwt"
	"wtyczki.backend/pkg/logger"
	"wtyczki.backend/pkg/redis"
)

var (
	loadDotenv   = godotenv.Load
	loadCfg      = config.Load
	initLog      = logger.Init
	connectRedis = redis.Connect
	openDB       = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	runServer = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "logger initialized", zap.String("env", cfg.Server.Env))

	rdb, err := connectRedis(cfg.Redis.URL, cfg.Redis.Password)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer rdb.Close()
	logger.Info(context.Background(), "redis connected")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		logger.Warn(context.Background(), "database not available, endpoints will return errors", zap.Error(err))
	} else {
		logger.Info(context.Background(), "connected to postgres")
	}

	// repositories
	userRepo := repositories.NewUserRepository(db)
	apiKeyRepo := repositories.NewApiKeyRepository(db)
	ledgerRepo := repositories.NewLedgerRepository(db)
	actionRepo := repositories.NewMcpActionRepository(db)
	failedRepo := repositories.NewFailedDeductionRepository(db)
	deletionRepo := repositories.NewAccountDeletionRepository(db)
	uow := repositories.NewUnitOfWork(db)

	// ephemeral credential stores
	sessionStore, err := redis.NewSessionStore(rdb, cfg.Security.SessionEncryptionKey)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}
	tokenStore := redis.NewTokenStore(rdb)

	// external providers
	verifier := identity.NewVerifier(identity.VerifierConfig{
		JWKSURL:  cfg.Identity.JWKSURL,
		Issuer:   cfg.Identity.Issuer,
		Audience: cfg.Identity.Audience,
	})
	billingClient := billing.NewClient(billing.Config{
		BaseURL: cfg.Billing.BaseURL,
		APIKey:  cfg.Billing.APIKey,
		Timeout: cfg.Billing.Timeout,
	})
	idTokenService := jwt.NewIDTokenService(cfg.OAuth.IDTokenSecret, cfg.OAuth.IDTokenIssuer, cfg.OAuth.AccessTokenTTL)

	// usecases
	identityUsecase := usecases.NewIdentityUsecase(userRepo, apiKeyRepo, deletionRepo, sessionStore, tokenStore, verifier, cfg.Security.SessionTTL)
	ledgerUsecase := usecases.NewLedgerUsecase(uow, userRepo, ledgerRepo, actionRepo, failedRepo)
	deletionUsecase := usecases.NewAccountDeletionUsecase(uow, userRepo, actionRepo, failedRepo, deletionRepo, apiKeyRepo,
		billingClient, sessionStore, tokenStore, cfg.Security.AnonymizedDomain)
	apiKeyUsecase := usecases.NewApiKeyUsecase(apiKeyRepo, userRepo)
	oauthUsecase := usecases.NewOAuthUsecase(userRepo, tokenStore, idTokenService, cfg.OAuth.AuthCodeTTL, cfg.OAuth.AccessTokenTTL)

	cookieSecure := cfg.Server.Env == "production"

	// handlers
	authHandler := handlers.NewAuthHandler(identityUsecase, cookieSecure)
	oauthHandler := handlers.NewOAuthHandler(oauthUsecase)
	apiKeyHandler := handlers.NewApiKeyHandler(apiKeyUsecase)
	accountHandler := handlers.NewAccountHandler(ledgerUsecase, deletionUsecase, cookieSecure)
	ledgerHandler := handlers.NewLedgerHandler(ledgerUsecase)
	purchaseHandler := handlers.NewPurchaseHandler(ledgerUsecase, cfg.Billing.WebhookSecret)

	authMiddleware := middleware.AuthMiddleware(identityUsecase)

	// background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweepJob := jobs.NewAnonymizationSweepJob(deletionRepo, deletionUsecase, 15*time.Minute, 24*time.Hour)
	go sweepJob.Start(ctx)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	registerHealthRoute(r, rdb, sqlDB)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		authHandler:     authHandler,
		oauthHandler:    oauthHandler,
		apiKeyHandler:   apiKeyHandler,
		accountHandler:  accountHandler,
		ledgerHandler:   ledgerHandler,
		purchaseHandler: purchaseHandler,
		authMiddleware:  authMiddleware,
	})

	// graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info(context.Background(), "shutting down")
		sweepJob.Stop()
		cancel()
	}()

	logger.Info(context.Background(), "server starting", zap.String("port", cfg.Server.Port))

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func registerHealthRoute(r *gin.Engine, rdb *goredis.Client, sqlDB *sql.DB) {
	r.GET("/health", func(c *gin.Context) {
		status := gin.H{"status": "ok"}
		if err := sqlDB.PingContext(c.Request.Context()); err != nil {
			status["database"] = "down"
			status["status"] = "degraded"
		}
		if err := rdb.Ping(c.Request.Context()).Err(); err != nil {
			status["redis"] = "down"
			status["status"] = "degraded"
		}
		c.JSON(200, status)
	})
}
