package main

import (
	"context"

	"akoben/internal/bookings/handler"
	"akoben/internal/bookings/repository"
	"akoben/internal/bookings/service"
	"akoben/internal/bookings/validator"
	identityHandler "akoben/internal/identities/handler"
	identityRepository "akoben/internal/identities/repository"
	identityService "akoben/internal/identities/service"
	identityValidator "akoben/internal/identities/validator"
	tripRepository "akoben/internal/trips/repository"
	"akoben/pkg/app"
	"akoben/pkg/client"
	"akoben/pkg/config"
	"akoben/pkg/kafka"
	kafka_config "akoben/pkg/kafka/config"
	kafka_middleware "akoben/pkg/kafka/middleware"
	"akoben/pkg/middleware"
	"akoben/pkg/notify"
	"akoben/pkg/otp"
	"akoben/pkg/payment"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Bookings service")
	serverApp := app.NewApplication()

	identities := identityService.NewIdentityService(
		identityRepository.NewMongoIdentityRepository(cfg),
		identityValidator.NewIdentityValidator(cfg.Log),
		cfg,
	)
	bookingService := service.NewBookingService(
		repository.NewMongoBookingRepository(cfg),
		tripRepository.NewMongoTripRepository(cfg),
		identities,
		payment.NewPaystackClient(client.NewHttpClient(cfg.PaystackBaseURL, cfg.PaymentTimeout), cfg.PaystackSecretKey),
		initDispatcher(cfg, serverApp),
		validator.NewBookingValidator(cfg.Log),
		cfg,
	)
	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	serverApp.OnShutdown(func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.NotificationTimeout)
		defer cancel()
		if err := bookingService.Drain(ctx); err != nil {
			cfg.Log.Warn("Dropped pending notifications", "error", err)
		}
	})

	err := serverApp.SetApp(cfg,
		handler.NewBookingHandler(bookingService, cfg.Log),
		identityHandler.NewIdentityHandler(identities, initOTP(cfg), cfg.Log),
	)
	if err != nil {
		cfg.Log.Fatal("Failed to configure application", "error", err)
	}
	serverApp.Run()
}

// initDispatcher publishes booking events to Kafka for the notifier. With
// notifications disabled the events are only logged.
func initDispatcher(cfg *config.Config, serverApp *app.Application) notify.Dispatcher {
	if !cfg.NotificationsEnabled {
		cfg.Log.Info("Notifications disabled, booking events will only be logged")
		return notify.NewLogDispatcher(cfg.Log)
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.NotificationTopic, cfg.NotificationDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	var counters *kafka_middleware.Counters
	if kafkaCfg.EnableMiddleware {
		counters = kafka_middleware.NewCounters()
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(counters.Producer())
	}

	serverApp.OnShutdown(func() {
		if counters != nil {
			snap := counters.Snapshot()
			cfg.Log.Info("Notification publisher stats",
				"succeeded", snap.Succeeded,
				"failed", snap.Failed,
				"avg_duration", snap.AvgDuration,
			)
		}
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	})

	return notify.NewKafkaDispatcher(producer, ServiceName, middleware.RequestIDFromContext, cfg.Log)
}

func initOTP(cfg *config.Config) *otp.Service {
	var cooldown otp.Cooldown
	if cfg.Client.Redis != nil {
		cooldown = otp.NewRedisCooldown(cfg.Client.Redis)
	} else {
		cooldown = otp.NewMemoryCooldown()
	}

	provider := otp.NewArkeselClient(
		client.NewHttpClient(cfg.ArkeselBaseURL, cfg.PaymentTimeout),
		cfg.ArkeselAPIKey,
		cfg.OTPSenderID,
		cfg.DefaultPhoneRegion,
	)
	return otp.NewService(provider, cooldown, cfg.OTPCooldown, cfg.DefaultPhoneRegion, cfg.Log)
}
