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
	"go.uber.org/zap"

	"github.com/bookora/service-marketplace/internal/application"
	"github.com/bookora/service-marketplace/internal/config"
	bookingDomain "github.com/bookora/service-marketplace/internal/domain/booking"
	bookingEvents "github.com/bookora/service-marketplace/internal/events"
	"github.com/bookora/service-marketplace/internal/handler"
	"github.com/bookora/service-marketplace/internal/payment"
	"github.com/bookora/service-marketplace/internal/repository"
	"github.com/bookora/service-marketplace/pkg/auth"
	"github.com/bookora/service-marketplace/pkg/database"
	"github.com/bookora/service-marketplace/pkg/health"
	"github.com/bookora/service-marketplace/pkg/kafka"
	"github.com/bookora/service-marketplace/pkg/logger"
	"github.com/bookora/service-marketplace/pkg/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-marketplace")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-marketplace",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	dbConfig := database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(&repository.BookingModel{}, &repository.ServiceModel{}); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		// AutoMigrate cannot express the overlap exclusion constraint.
		if err := repository.EnsureSlotExclusionConstraint(db); err != nil {
			log.Fatal("failed to install slot exclusion constraint", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Initialize payment processor
	processor, err := payment.NewProcessor(cfg.PaymentConfig)
	if err != nil {
		log.Fatal("failed to create payment processor", zap.Error(err))
	}

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repositories
	bookingRepo := repository.NewGormBookingRepository(db)
	serviceRepo := repository.NewGormServiceRepository(db)

	// Initialize application services
	bookingService := application.NewBookingService(
		bookingRepo,
		serviceRepo,
		bookingDomain.NewAvailabilityChecker(bookingRepo),
		bookingDomain.CancellationPolicy{Lenient: cfg.CancellationLenient},
		bookingDomain.SystemClock{},
		processor,
		kafkaProducer,
		log,
	)
	serviceCatalog := application.NewServiceCatalog(serviceRepo, log)

	// Initialize and start payment event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaConfig.GroupPrefix + "marketplace-service"
	paymentConsumer := bookingEvents.NewPaymentEventConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		bookingService,
		log,
	)
	defer func() { _ = paymentConsumer.Close() }()

	go func() {
		log.Info("starting payment event consumer")
		if err := paymentConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("payment event consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService)
	serviceHandler := handler.NewServiceHandler(serviceCatalog)
	adminHandler := handler.NewAdminHandler(bookingService)
	webhookHandler := handler.NewWebhookHandler(bookingService, processor, log)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-marketplace")
	healthHandler.RegisterRoutes(router)

	// Register routes
	bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	serviceHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	adminHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	webhookHandler.RegisterRoutes(&router.RouterGroup)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-marketplace...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-marketplace stopped")
}
