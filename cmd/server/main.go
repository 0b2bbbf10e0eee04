package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thuexe/service-rental/internal/application"
	"github.com/thuexe/service-rental/internal/config"
	"github.com/thuexe/service-rental/internal/domain/rental"
	rentalEvents "github.com/thuexe/service-rental/internal/events"
	"github.com/thuexe/service-rental/internal/handler"
	"github.com/thuexe/service-rental/internal/platform/auth"
	"github.com/thuexe/service-rental/internal/platform/database"
	"github.com/thuexe/service-rental/internal/platform/health"
	"github.com/thuexe/service-rental/internal/platform/idempotency"
	"github.com/thuexe/service-rental/internal/platform/kafka"
	"github.com/thuexe/service-rental/internal/platform/logger"
	"github.com/thuexe/service-rental/internal/platform/middleware"
	"github.com/thuexe/service-rental/internal/repository"
	"github.com/thuexe/service-rental/internal/scheduler"
)

const serviceName = "service-rental"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-rental",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.AppEnv),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.IsDevelopment() {
		if err := db.AutoMigrate(repository.AllModels()...); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		cfg.JWTConfig.AccessTokenTTL,
		cfg.JWTConfig.RefreshTokenTTL,
	)

	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	calculator, err := rental.NewCalculator(cfg.DepositRate)
	if err != nil {
		log.Fatal("invalid deposit rate", zap.Error(err))
	}

	services := application.NewServices(
		repository.NewGormUnitOfWork(db),
		calculator,
		log,
		application.WithPublisher(kafkaProducer),
	)

	idemStore, err := idempotency.Open(cfg.IdempotencyDBPath, cfg.IdempotencyTTL)
	if err != nil {
		log.Fatal("failed to open idempotency store", zap.Error(err))
	}
	defer func() { _ = idemStore.Close() }()
	idem := idempotency.Middleware(idemStore, handler.CallerScope, log)

	// Start payment event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaConfig.GroupPrefix + "rental-service"
	paymentConsumer := rentalEvents.NewPaymentEventConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		services.Rentals,
		log,
	)
	defer func() { _ = paymentConsumer.Close() }()

	go func() {
		log.Info("starting payment event consumer")
		if err := paymentConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("payment event consumer error", zap.Error(err))
		}
	}()

	// Start booking expiry scheduler
	if cfg.Scheduler.Enabled {
		sched, err := scheduler.New(services.Rentals, cfg.Scheduler.ExpirySchedule, log)
		if err != nil {
			log.Fatal("failed to create scheduler", zap.Error(err))
		}
		sched.Start()
		defer sched.Stop()
	}

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	if err := handler.RegisterValidators(); err != nil {
		log.Fatal("failed to register request validators", zap.Error(err))
	}
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	health.NewHandler(db, serviceName).RegisterRoutes(router)

	api := &router.RouterGroup
	handler.NewCarHandler(services.Fleet).RegisterRoutes(api, jwtManager, idem)
	handler.NewCustomerHandler(services.Customers, services.Rentals).RegisterRoutes(api, jwtManager, idem)
	handler.NewSelfServiceHandler(services.Customers, services.Rentals).RegisterRoutes(api, jwtManager, idem)
	handler.NewBookingHandler(services.Rentals).RegisterRoutes(api, jwtManager, idem)
	handler.NewContractHandler(services.Rentals).RegisterRoutes(api, jwtManager, idem)
	handler.NewAdminHandler(services.Admin, services.Rentals).RegisterRoutes(api, jwtManager)

	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-rental...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-rental stopped")
}
