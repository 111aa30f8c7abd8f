package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"tourly/config"
	"tourly/cron"
	"tourly/database"
	"tourly/database/memdb"
	"tourly/database/repository"
	"tourly/handlers"
	"tourly/middleware"
	"tourly/routes"
	"tourly/services/booking"
	"tourly/services/notification"
	"tourly/services/schedule"
	"tourly/services/storage"
	"tourly/services/tour"
	"tourly/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer func() { _ = logger.Sync() }()
	cfg := config.AppConfig

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Firebase: auth always, messaging and firestore on demand.
	if err := utils.FirebaseInit(ctx); err != nil {
		if cfg.StoreBackend == config.BackendFirestore || cfg.NotificationsEnabled {
			logger.Fatal("main: firebase is required by the current configuration", zap.Error(err))
		}
		logger.Warn("main: firebase unavailable, signed-in endpoints will reject tokens", zap.Error(err))
	}

	// Document store.
	clients := repository.Clients{Firestore: utils.FirestoreClient}
	switch cfg.StoreBackend {
	case config.BackendMongo:
		client, err := database.InitDB(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("main: failed to connect to MongoDB", zap.Error(err))
		}
		clients.Mongo = client
		defer func() { _ = client.Disconnect(context.Background()) }()
	case config.BackendMemory:
		clients.Memory = memdb.New(memdb.WithMaxAttempts(cfg.BookingMaxAttempts))
		logger.Warn("main: using the in-process store, data is lost on restart")
	}
	repos, err := repository.Open(ctx, cfg, clients)
	if err != nil {
		logger.Fatal("main: failed to open repositories", zap.Error(err))
	}

	// Redis cache is optional; listings fall back to the store.
	if err := utils.InitCache(); err != nil {
		logger.Warn("main: redis cache unavailable, serving uncached", zap.Error(err))
	}
	utils.StartHealthMonitor(ctx, 30*time.Second, repos, utils.GetCacheClient())

	var images storage.ImageStore
	if cld, err := utils.Cloudinary(); err != nil {
		logger.Warn("main: cloudinary not configured, tour image uploads disabled", zap.Error(err))
	} else {
		images = storage.NewCloudinaryStore(cld, logger)
	}

	// Notifications and the reminder worker.
	var notifier notification.NotificationService = notification.NoopNotificationService{}
	var worker *cron.ReminderWorker
	if cfg.NotificationsEnabled {
		queue := asynq.NewClient(cron.RedisOpt())
		defer queue.Close()
		notifier = notification.NewDefaultNotificationService(utils.FCMClient, queue, repos.Reservations, cfg.ReminderLeadTime, logger)

		worker = cron.NewReminderWorker(cron.RedisOpt(), notifier, logger)
		if err := worker.Start(); err != nil {
			logger.Fatal("main: reminder worker failed to start", zap.Error(err))
		}
	}

	// Services.
	bookingService := &booking.DefaultBookingService{
		Reservations: repos.Reservations,
		Tours:        repos.Tours,
		Notifier:     notifier,
		Policy: booking.Policy{
			StrictPricing:        cfg.BookingStrictPricing,
			ReleaseSeatsOnCancel: cfg.BookingReleaseSeatsOnCancel,
			TxTimeout:            cfg.BookingTxTimeout,
		},
		Logger: logger.Named("booking"),
	}
	tourService := tour.NewDefaultTourService(repos.Tours, utils.NewCache(utils.GetCacheClient()), images, cfg.TourCacheTTL, logger.Named("tour"))
	scheduleService := schedule.NewDefaultScheduleService(repos.Slots, repos.Tours, logger.Named("schedule"))

	var verifier middleware.TokenVerifier
	if utils.AuthClient != nil {
		verifier = utils.AuthClient
	}

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	routes.RegisterRoutes(router, handlers.NewHandlerBundle(bookingService, tourService, scheduleService, verifier), logger)

	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Starting server", zap.String("addr", srv.Addr), zap.String("store", repos.Backend))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("main: server failed to start", zap.Error(err))
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	if worker != nil {
		worker.Shutdown()
	}
	stop()

	logger.Info("main: server stopped gracefully")
}
