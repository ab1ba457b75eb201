package main

import (
	"roombook/internal/availability"
	bookingevents "roombook/internal/bookings/events"
	bookinghandler "roombook/internal/bookings/handler"
	bookingrepo "roombook/internal/bookings/repository"
	bookingservice "roombook/internal/bookings/service"
	bookingvalidator "roombook/internal/bookings/validator"
	roomhandler "roombook/internal/rooms/handler"
	roomrepo "roombook/internal/rooms/repository"
	roomservice "roombook/internal/rooms/service"
	roomvalidator "roombook/internal/rooms/validator"
	"roombook/pkg/app"
	"roombook/pkg/client"
	"roombook/pkg/config"
	"roombook/pkg/identity"
	"roombook/pkg/kafka"
	kafka_config "roombook/pkg/kafka/config"
	kafka_middleware "roombook/pkg/kafka/middleware"
	"roombook/pkg/metrics"
)

const ServiceName = "roombook"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Roombook service")
	m := metrics.New()
	verifier := identity.NewVerifier([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.AdminEmails)

	roomRepo := roomrepo.NewMongoRoomRepository(cfg)
	rooms := roomservice.NewRoomService(roomRepo, roomvalidator.NewRoomValidator(cfg.Log), cfg)

	bookingRepo := bookingrepo.NewMongoBookingRepository(cfg)
	checker := availability.NewChecker(bookingSource(cfg, bookingRepo), cfg.Log, m)

	publisher, closePublisher := initPublisher(cfg, m)
	bookings := bookingservice.NewBookingService(
		bookingRepo,
		roomRepo,
		checker,
		publisher,
		bookingvalidator.NewBookingValidator(cfg.Log),
		cfg,
	)

	serverApp := app.NewApplication(cfg, verifier, m)
	serverApp.OnShutdown(closePublisher)
	serverApp.SetApp(
		roomhandler.NewRoomHandler(rooms, cfg.Log),
		bookinghandler.NewBookingHandler(bookings, cfg.Log),
		identity.NewHandler(cfg.Log),
	)
	serverApp.Run()
}

func bookingSource(cfg *config.Config, repo bookingrepo.BookingRepository) availability.Source {
	if cfg.BookingSource == config.BookingSourceConnector {
		cfg.Log.Info("Availability reads bookings from the list connector",
			"url", cfg.ConnectorURL,
			"table", cfg.ConnectorTable,
		)
		connector := client.NewConnectorClient(cfg.ConnectorURL, cfg.ConnectorToken, cfg.ConnectorTimeout)
		return availability.NewConnectorSource(connector, cfg.ConnectorTable)
	}
	return repo
}

// initPublisher returns a nil publisher when Kafka is disabled; bookings still work, no
// events are emitted.
func initPublisher(cfg *config.Config, m *metrics.Metrics) (bookingservice.Publisher, func()) {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	if !kafkaCfg.Enabled {
		cfg.Log.Info("Kafka disabled, booking events will not be published")
		return nil, func() {}
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafka_middleware.MetricsProducerMiddleware(m))

	return bookingevents.NewKafkaPublisher(producer), func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	}
}
