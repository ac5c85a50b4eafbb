package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/storehouse-api/api/swagger"
	"github.com/noah-isme/storehouse-api/internal/app"
	"github.com/noah-isme/storehouse-api/internal/handler"
	"github.com/noah-isme/storehouse-api/internal/middleware"
	"github.com/noah-isme/storehouse-api/internal/service"
	"github.com/noah-isme/storehouse-api/pkg/cache"
	"github.com/noah-isme/storehouse-api/pkg/config"
	"github.com/noah-isme/storehouse-api/pkg/database"
	"github.com/noah-isme/storehouse-api/pkg/export"
	"github.com/noah-isme/storehouse-api/pkg/jobs"
	"github.com/noah-isme/storehouse-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/storehouse-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/storehouse-api/pkg/middleware/requestid"
	"github.com/noah-isme/storehouse-api/pkg/storage"
)

// @title The Storehouse API
// @version 1.0.0
// @description Classroom economy: Shekels ledger, Talents, catalog and group buys.
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if err := database.Migrate(ctx, db, logr); err != nil {
		logr.Fatal("failed to migrate database", zap.Error(err))
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, catalog cache disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close() //nolint:errcheck
		}
	}

	metrics := service.NewMetricsService()
	c := app.New(cfg, db, redisClient, metrics, logr)

	auth, err := service.NewAuthService(service.AuthConfig{
		Passcode:      cfg.Admin.Passcode,
		SessionSecret: cfg.Admin.SessionSecret,
		SessionExpiry: cfg.Admin.SessionTimeout,
		Issuer:        cfg.AppName,
	}, nil, logr)
	if err != nil {
		logr.Fatal("failed to init auth", zap.Error(err))
	}

	cards := service.NewCardService(c.Students, export.NewCardSheet(cfg.AppName, cfg.Cards.Label), cfg.Cards.BaseURL, logr)
	reports := service.NewReportService(c.TransactionRepo, export.NewCSVExporter(), export.NewPDFExporter(), logr)

	store, err := storage.NewLocalStorage(cfg.Backups.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare backup storage", zap.Error(err))
	}
	backups := service.NewBackupService(c.Transfer, store, storage.NewSignedURLSigner(cfg.Backups.SignedURLSecret, cfg.Backups.SignedURLTTL), logr)

	var (
		backupQueue *jobs.Queue
		scheduler   *jobs.Scheduler
	)
	if cfg.Backups.Enabled {
		backupQueue = jobs.NewQueue("backups", backups.Handle, jobs.QueueConfig{
			Workers:    cfg.Backups.Workers,
			MaxRetries: cfg.Backups.Retries,
			RetryDelay: 5 * time.Second,
			Logger:     logr,
		})
		backups.SetQueue(backupQueue)
		backupQueue.Start(ctx)

		if cfg.Backups.Schedule != "" {
			scheduler = jobs.NewScheduler(time.Local, logr)
			if err := scheduler.Add("backup", cfg.Backups.Schedule, func(ctx context.Context) error {
				_, err := backups.Enqueue(ctx)
				return err
			}); err != nil {
				logr.Fatal("invalid backup schedule", zap.Error(err))
			}
			scheduler.Start()
		}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(middleware.Metrics(metrics))

	handler.Register(r, cfg.APIPrefix, handler.Handlers{
		Auth:      handler.NewAuthHandler(auth),
		Kiosk:     handler.NewKioskHandler(c.Kiosk, c.Ledger, c.Purchases, c.GroupBuys, c.Conversion, c.Items),
		Students:  handler.NewStudentHandler(c.Students, c.Ledger),
		Ledger:    handler.NewLedgerHandler(c.Ledger),
		Items:     handler.NewItemHandler(c.Items),
		Settings:  handler.NewSettingsHandler(c.Settings),
		Transfer:  handler.NewTransferHandler(c.Transfer),
		Cards:     handler.NewCardHandler(cards),
		Reports:   handler.NewReportHandler(reports),
		Backups:   handler.NewBackupHandler(backups),
		Metrics:   handler.NewMetricsHandler(metrics, db),
		Validator: auth,
		Logger:    logr,
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server shutdown failed", zap.Error(err))
	}
	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}
	if backupQueue != nil {
		backupQueue.Stop()
	}
}
