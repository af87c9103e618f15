package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"ticketly/internal/outbox"
	"ticketly/internal/shared/config"
	"ticketly/pkg/logger"
)

// Standalone worker consuming booking domain events from Kafka.
func main() {
	appLogger := logger.GetDefault()

	if err := godotenv.Load(); err != nil {
		appLogger.Info("No .env file found, using system environment variables")
	}

	cfg := config.Load()

	consumerConfig := outbox.DefaultConsumerConfig()
	consumerConfig.Brokers = cfg.Kafka.Brokers
	consumerConfig.GroupID = cfg.Kafka.ConsumerGroup
	consumerConfig.Topics = []string{cfg.Kafka.BookingTopic}

	consumer, err := outbox.NewKafkaConsumer(consumerConfig, appLogger)
	if err != nil {
		appLogger.Error("Failed to create consumer", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		appLogger.Info("Shutting down consumer...")
		cancel()
	}()

	appLogger.Info("Consumer running",
		slog.String("group", consumerConfig.GroupID),
		slog.Any("topics", consumerConfig.Topics),
	)

	if err := consumer.Start(ctx); err != nil {
		appLogger.Error("Consumer failed", slog.Any("error", err))
	}

	if err := consumer.Stop(); err != nil {
		appLogger.Error("Failed to stop consumer", slog.Any("error", err))
	}

	appLogger.Info("Consumer exited gracefully")
}
