package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/feed-system/socialconnect/internal/config"
	"github.com/feed-system/socialconnect/internal/repository"
	"github.com/feed-system/socialconnect/internal/services"
	"github.com/feed-system/socialconnect/internal/workers"
	"github.com/feed-system/socialconnect/pkg/cache"
	"github.com/feed-system/socialconnect/pkg/logger"
	"github.com/feed-system/socialconnect/pkg/queue"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logger.NewLogger(cfg.Log.Level)
	logger.Info("Starting SocialConnect event worker...")

	if !cfg.Kafka.Enabled {
		logger.Fatal("Kafka is disabled; the API server handles events inline")
	}

	db, err := repository.NewDatabase(&cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

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

	consumer := queue.NewKafkaConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, logger)

	feedService := services.NewFeedService(repository.NewPostRepository(db.DB), repository.NewLikeRepository(db.DB), redisClient, &cfg.Feed, logger)
	eventWorker := workers.NewEventWorker(feedService, consumer, logger)

	go func() {
		if err := eventWorker.Start(ctx); err != nil {
			logger.WithError(err).Error("Event worker stopped with error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")

	if err := eventWorker.Stop(); err != nil {
		logger.WithError(err).Error("Failed to stop event worker")
	}

	logger.Info("Worker exited")
}
