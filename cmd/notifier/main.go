package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"akoben/pkg/config"
	"akoben/pkg/kafka"
	kafka_config "akoben/pkg/kafka/config"
	kafka_middleware "akoben/pkg/kafka/middleware"
	"akoben/pkg/notify"
)

const ServiceName = "notifier"

func main() {
	cfg := config.Load(ServiceName)
	if cfg.SMTPHost == "" || cfg.FromEmail == "" {
		cfg.Log.Fatal("Notifier requires SMTP_HOST and FROM_EMAIL")
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	mail, err := notify.NewMailDispatcher(
		notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		cfg.FromEmail,
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to load mail templates", "error", err)
	}

	consumer, err := kafka.NewConsumer(kafkaCfg, kafka.ConsumerOptions{
		Topic:    cfg.NotificationTopic,
		GroupID:  cfg.NotificationGroupID,
		DLQTopic: cfg.NotificationDLQTopic,
	}, notify.EventHandler(mail), cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	counters := kafka_middleware.NewCounters()
	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	}
	consumer.Use(counters.Consumer())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Starting notifier", "topic", cfg.NotificationTopic, "group_id", cfg.NotificationGroupID)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close Kafka consumer", "error", err)
	}
	snap := counters.Snapshot()
	cfg.Log.Info("Notifier stopped",
		"delivered", snap.Succeeded,
		"failed", snap.Failed,
		"avg_duration", snap.AvgDuration,
	)
}
