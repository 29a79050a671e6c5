// File: roombooking/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roombooking/config"
	"roombooking/cron"
	"roombooking/database"
	roomRepo "roombooking/database/repository/room"
	"roombooking/database/repository/schedule"
	"roombooking/handlers"
	"roombooking/messaging"
	"roombooking/middleware"
	"roombooking/routes"
	"roombooking/services/booking"
	"roombooking/services/tasks"
	"roombooking/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer logger.Sync()

	pingers := map[string]utils.Pinger{}

	// repositories.
	scheduleRepo := newScheduleRepository(cfg, logger, pingers)
	rooms := newRoomRepository(cfg, logger, pingers)

	// event publishing.
	var publisher messaging.Publisher = messaging.LogPublisher{Logger: logger}
	if cfg.RabbitURL != "" {
		rp, err := messaging.NewRabbitPublisher(cfg.RabbitURL, cfg.BookingExchange)
		if err != nil {
			logger.Warn("main: RabbitMQ unavailable, booking events will only be logged", zap.Error(err))
		} else {
			publisher = rp
		}
	}
	defer publisher.Close()

	bookingService := &booking.DefaultBookingService{
		Repo:        scheduleRepo,
		Rooms:       rooms,
		Locks:       booking.NewRoomLocks(cfg.LockTimeout),
		Policy:      booking.PolicyFromConfig(cfg),
		AutoConfirm: cfg.AutoConfirm,
		Publisher:   publisher,
		Logger:      logger.Named("booking"),
	}

	// background completion.
	var worker *cron.BookingWorker
	if cfg.RedisAddr != "" {
		taskClient := asynq.NewClient(cron.RedisOpt())
		defer taskClient.Close()
		bookingService.Completion = tasks.NewAsynqScheduler(taskClient)

		w, err := cron.InitBookingWorker(bookingService, logger.Named("worker"))
		if err != nil {
			logger.Warn("main: booking worker disabled", zap.Error(err))
		} else {
			worker = w
		}
	}

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	monitor := utils.NewHealthMonitor(pingers)
	monitor.Start(monitorCtx, 60*time.Second)

	bookingHandler := handlers.NewBookingHandler(bookingService)
	handlerBundle := handlers.NewHandlerBundle(bookingHandler, &handlers.HealthHandler{Monitor: monitor})

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s (store=%s)...", srv.Addr, cfg.StoreDriver)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	if worker != nil {
		worker.Shutdown()
	}
	if err := database.CloseDB(ctx); err != nil {
		logger.Sugar().Warnf("main: failed to close MongoDB: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

func newScheduleRepository(cfg config.Config, logger *zap.Logger, pingers map[string]utils.Pinger) schedule.Repository {
	switch cfg.StoreDriver {
	case "mongo":
		if err := database.InitDB(cfg.DatabaseURL); err != nil {
			logger.Sugar().Fatalf("main: %v", err)
		}
		pingers["mongo"] = func(ctx context.Context) error { return database.MongoClient.Ping(ctx, nil) }
		repo, err := schedule.NewMongoRepository(database.MongoClient, cfg.DatabaseName)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to prepare bookings collection: %v", err)
		}
		return repo
	case "postgres":
		if err := database.InitPostgres(cfg.PostgresDSN); err != nil {
			logger.Sugar().Fatalf("main: %v", err)
		}
		sqlDB, err := database.PostgresDB.DB()
		if err != nil {
			logger.Sugar().Fatalf("main: failed to get Postgres handle: %v", err)
		}
		pingers["postgres"] = sqlDB.PingContext
		repo := schedule.NewGormRepository(database.PostgresDB)
		if err := repo.Migrate(); err != nil {
			logger.Sugar().Fatalf("main: failed to migrate bookings table: %v", err)
		}
		return repo
	case "memory", "":
		logger.Warn("main: using in-memory booking store, data is lost on restart")
		return schedule.NewMemoryRepository()
	}
	logger.Sugar().Fatalf("main: unknown STORE_DRIVER %q", cfg.StoreDriver)
	return nil
}

func newRoomRepository(cfg config.Config, logger *zap.Logger, pingers map[string]utils.Pinger) roomRepo.Repository {
	var rooms roomRepo.Repository
	if cfg.StoreDriver == "mongo" {
		rooms = roomRepo.NewMongoRepository(database.MongoClient, cfg.DatabaseName)
	} else {
		rooms = roomRepo.FromSeeds(cfg.Rooms)
		logger.Sugar().Infof("main: static room catalog with %d room(s)", len(cfg.Rooms))
	}

	if err := utils.InitCache(); err != nil {
		logger.Warn("main: room cache disabled", zap.Error(err))
		return rooms
	}
	client := utils.GetCacheClient()
	if client == nil {
		return rooms
	}
	pingers["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	return roomRepo.NewCachedRepository(rooms, client, cfg.RoomCacheTTL, logger.Named("room-cache"))
}
