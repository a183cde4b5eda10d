package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Raunak-Sarmacharya/localcooks-api/internal/config"
	"github.com/Raunak-Sarmacharya/localcooks-api/internal/database"
	"github.com/Raunak-Sarmacharya/localcooks-api/internal/email"
	"github.com/Raunak-Sarmacharya/localcooks-api/internal/handler"
	"github.com/Raunak-Sarmacharya/localcooks-api/internal/logger"
	"github.com/Raunak-Sarmacharya/localcooks-api/internal/middleware"
	"github.com/Raunak-Sarmacharya/localcooks-api/internal/queue"
	"github.com/Raunak-Sarmacharya/localcooks-api/internal/repository"
	"github.com/Raunak-Sarmacharya/localcooks-api/internal/router"
	"github.com/Raunak-Sarmacharya/localcooks-api/internal/service"
	"github.com/Raunak-Sarmacharya/localcooks-api/internal/storage"
	"github.com/Raunak-Sarmacharya/localcooks-api/internal/vehicle"
	"github.com/Raunak-Sarmacharya/localcooks-api/internal/workflow"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	defer func() { _ = log.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal("database open failed", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	// repositories
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	locations := repository.NewLocationRepo(db)
	requirements := repository.NewRequirementsRepo(db)
	applications := repository.NewApplicationRepo(db)
	documents := repository.NewDocumentRepo(db)
	access := repository.NewAccessRepo(db)
	conversations := repository.NewConversationRepo(db)
	notifications := repository.NewNotificationRepo(db)
	bookings := repository.NewBookingRepo(db)
	penalties := repository.NewPenaltyRepo(db)

	// object storage for application documents
	var store handler.DocumentStore
	if cfg.S3.Bucket != "" {
		uploader, err := storage.NewUploader(cfg.S3)
		if err != nil {
			log.Fatal("object storage init failed", zap.Error(err))
		}
		store = uploader
	} else {
		log.Warn("S3 not configured; document uploads will fail")
	}

	// broker publisher + workflow engine
	amqpURL := os.Getenv("RABBITMQ_URL")
	publisher := service.NewEventPublisher(amqpURL, log)
	engine := workflow.NewEngine(applications, documents, requirements, access, locations, publisher, log)

	// event consumer running for the lifetime of the process
	consumer := queue.NewConsumer(amqpURL, conversations, notifications, applications, log)
	go func() {
		if err := consumer.Start(context.Background()); err != nil {
			log.Warn("event consumer stopped", zap.Error(err))
		}
	}()

	// SES mailer for the admin broadcast surface
	var mailer handler.Broadcaster
	if cfg.Email.Sender != "" {
		m, err := email.NewMailer(context.Background(), cfg.Email.Region, cfg.Email.Sender, log)
		if err != nil {
			log.Fatal("mailer init failed", zap.Error(err))
		}
		mailer = m
	}

	// vehicle make lookup with a 24h cache
	vehicles := vehicle.NewClient(os.Getenv("VPIC_BASE_URL"), 24*time.Hour, nil)

	e := echo.New()
	e.HideBanner = true

	// redis-backed rate limiting and response caching, both optional
	if rdb := config.NewRedisClient(); rdb != nil {
		e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
		router.RegisterPublic(e, handler.NewLocationHandler(locations),
			middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	} else {
		log.Warn("redis unavailable; rate limiting and response cache disabled")
		router.RegisterPublic(e, handler.NewLocationHandler(locations), nil)
	}

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterChef(e,
		handler.NewChefApplicationHandler(applications, documents, requirements, engine, store),
		handler.NewChefBookingHandler(bookings, access, locations, requirements, penalties),
		handler.NewChefAccessHandler(access),
		cfg.JWTSecret)
	router.RegisterManager(e,
		handler.NewManagerApplicationHandler(applications, documents, locations, engine, store),
		handler.NewManagerRequirementsHandler(requirements, locations),
		handler.NewLocationHandler(locations),
		handler.NewManagerPenaltyHandler(penalties, locations),
		cfg.JWTSecret)
	router.RegisterShared(e,
		handler.NewChatHandler(conversations),
		handler.NewNotificationHandler(notifications),
		handler.NewVehicleHandler(vehicles),
		cfg.JWTSecret)
	router.RegisterAdmin(e, handler.NewAdminEmailHandler(users, mailer), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	// drain in-flight requests on SIGINT/SIGTERM before exiting
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
}
