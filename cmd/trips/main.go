package main

import (
	bookingRepository "akoben/internal/bookings/repository"
	"akoben/internal/trips/handler"
	"akoben/internal/trips/repository"
	"akoben/internal/trips/service"
	"akoben/internal/trips/validator"
	"akoben/pkg/app"
	"akoben/pkg/config"
)

const ServiceName = "trips"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Trips service")
	tripService, dateRequestService := initServices(cfg)

	serverApp := app.NewApplication()
	err := serverApp.SetApp(cfg,
		handler.NewTripHandler(tripService, cfg.Log),
		handler.NewDateRequestHandler(dateRequestService, cfg.Log),
	)
	if err != nil {
		cfg.Log.Fatal("Failed to configure application", "error", err)
	}
	serverApp.Run()
}

func initServices(cfg *config.Config) (service.TripService, service.DateRequestService) {
	tripValidator := validator.NewTripValidator(cfg.Log)
	tripRepo := repository.NewMongoTripRepository(cfg)
	bookingRepo := bookingRepository.NewMongoBookingRepository(cfg)
	tripService := service.NewTripService(
		tripRepo,
		bookingRepo,
		tripValidator,
		cfg,
	)

	dateRequestService := service.NewDateRequestService(
		repository.NewMongoDateRequestRepository(cfg),
		tripRepo,
		tripValidator,
		cfg,
	)

	cfg.Log.Info("Trip service initialized", "database", cfg.MongoDatabaseName)
	return tripService, dateRequestService
}
