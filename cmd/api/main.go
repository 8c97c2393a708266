package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/feed-system/socialconnect/internal/config"
	"github.com/feed-system/socialconnect/internal/handlers"
	"github.com/feed-system/socialconnect/internal/reporting"
	"github.com/feed-system/socialconnect/internal/repository"
	"github.com/feed-system/socialconnect/internal/services"
	"github.com/feed-system/socialconnect/internal/workers"
	"github.com/feed-system/socialconnect/pkg/cache"
	"github.com/feed-system/socialconnect/pkg/logger"
	"github.com/feed-system/socialconnect/pkg/queue"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logger.NewLogger(cfg.Log.Level)
	logger.Info("Starting SocialConnect API server...")

	db, err := repository.NewDatabase(&cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

	redisClient := cache.NewRedisClient(
		cfg.Redis.Addr(),
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
		cfg.Redis.MinIdleConns,
	)
	defer redisClient.Close()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if err := redisClient.Ping(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}

	reportingPool, err := reporting.NewPool(ctx, &cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open reporting pool")
	}
	defer reportingPool.Close()

	userRepo := repository.NewUserRepository(db.DB)
	followRepo := repository.NewFollowRepository(db.DB)
	postRepo := repository.NewPostRepository(db.DB)
	likeRepo := repository.NewLikeRepository(db.DB)
	commentRepo := repository.NewCommentRepository(db.DB)
	notificationRepo := repository.NewNotificationRepository(db.DB)

	feedService := services.NewFeedService(postRepo, likeRepo, redisClient, &cfg.Feed, logger)

	// With kafka the worker consumes the topic in the background; without it
	// events are handled inline by the publishing request.
	var publisher services.EventPublisher
	var eventWorker *workers.EventWorker
	if cfg.Kafka.Enabled {
		producer := queue.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		publisher = producer

		consumer := queue.NewKafkaConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, logger)
		eventWorker = workers.NewEventWorker(feedService, consumer, logger)
		go func() {
			if err := eventWorker.Start(ctx); err != nil {
				logger.WithError(err).Error("Event worker stopped with error")
			}
		}()
	} else {
		logger.Info("Kafka disabled, handling events inline")
		publisher = workers.NewDirectPublisher(workers.NewEventWorker(feedService, nil, logger))
	}

	tokens := services.NewTokenManager(cfg.JWT.Secret, cfg.JWT.ExpireTime, redisClient)
	resolver := services.NewIdentityResolver(tokens, userRepo, logger)
	authService := services.NewAuthService(userRepo, tokens, publisher, cfg.Admin.RegistrationKey, logger)
	userService := services.NewUserService(userRepo, followRepo, postRepo, publisher, logger)
	notificationService := services.NewNotificationService(notificationRepo, publisher, logger)
	graphService := services.NewSocialGraphService(userRepo, followRepo, notificationService, publisher, logger)
	postService := services.NewPostService(userRepo, postRepo, likeRepo, publisher, logger)
	engagementService := services.NewEngagementService(userRepo, postRepo, likeRepo, commentRepo, notificationService, publisher, logger)
	adminService := services.NewAdminService(reporting.NewStatsReader(reportingPool), userRepo, postRepo, postService, userService, publisher, logger)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Resolver:      resolver,
		Logger:        logger,
		Auth:          handlers.NewAuthHandler(authService, logger),
		Users:         handlers.NewUserHandler(userService, graphService, logger),
		Feed:          handlers.NewFeedHandler(feedService, postService, engagementService, logger),
		Notifications: handlers.NewNotificationHandler(notificationService, logger),
		Admin:         handlers.NewAdminHandler(adminService, logger),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	if eventWorker != nil {
		if err := eventWorker.Stop(); err != nil {
			logger.WithError(err).Error("Failed to stop event worker")
		}
	}

	logger.Info("Server exited")
}
