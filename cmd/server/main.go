package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"sawari/internal/app"
	"sawari/internal/config"
	"sawari/internal/handler"
	internalRedis "sawari/internal/redis"
	"sawari/internal/repository/postgres"
	"sawari/internal/service"
	"sawari/internal/storage"
)

func main() {
	// Load .env if present, then configuration from the environment.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic first so the database driver can be
	// instrumented.
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s", cfg.NewRelic.AppName)
		}
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	if err := app.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("failed to ensure database schema: %v", err)
	}

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	blobs, err := newBlobStore(cfg.Storage)
	if err != nil {
		log.Fatalf("failed to initialize ticket storage: %v", err)
	}

	server := wireServer(db, redisClient, blobs, nrApp, cfg)

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// newBlobStore selects the e-ticket storage backend from configuration.
func newBlobStore(cfg config.StorageConfig) (storage.BlobStore, error) {
	if cfg.Backend == "s3" {
		return storage.NewS3Store(cfg.S3Region, cfg.S3Bucket)
	}
	return storage.NewLocalStore(cfg.LocalDir), nil
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, blobs storage.BlobStore, nrApp *newrelic.Application, cfg *config.Config) *http.Server {
	// Redis stores.
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Repositories.
	orgRepo := postgres.NewOrganizationRepository(db)
	driverRepo := postgres.NewDriverRepository(db)
	passengerRepo := postgres.NewPassengerRepository(db)
	vehicleRepo := postgres.NewVehicleRepository(db)
	seatRepo := postgres.NewSeatRepository(db)
	tripRepo := postgres.NewTripRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	earningsRepo := postgres.NewEarningsRepository(db)

	// Services.
	ticketService := service.NewTicketService(blobs, tripRepo, vehicleRepo, passengerRepo, driverRepo, orgRepo)
	vehicleService := service.NewVehicleService(db, vehicleRepo, seatRepo, orgRepo)
	tripService := service.NewTripService(db, tripRepo, vehicleRepo, bookingRepo)
	bookingService := service.NewBookingService(db, tripRepo, vehicleRepo, bookingRepo, ticketService)
	settlementService := service.NewSettlementService(db, lockStore, cacheStore, tripRepo, vehicleRepo, earningsRepo)
	partyResolver := service.NewPartyResolver(cacheStore, orgRepo, driverRepo, passengerRepo)

	// Handlers.
	vehicleHandler := handler.NewVehicleHandler(vehicleService)
	tripHandler := handler.NewTripHandler(tripService, settlementService)
	bookingHandler := handler.NewBookingHandler(bookingService, ticketService)
	earningsHandler := handler.NewEarningsHandler(settlementService, partyResolver)

	router := app.NewRouter(app.RouterDeps{
		VehicleHandler:  vehicleHandler,
		TripHandler:     tripHandler,
		BookingHandler:  bookingHandler,
		EarningsHandler: earningsHandler,
		RedisClient:     redisClient,
		NewRelicApp:     nrApp,
		AuthSecret:      cfg.Auth.Secret,
	})

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
