package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dias221467/EventEase/internal/config"
	"github.com/Dias221467/EventEase/internal/database"
	"github.com/Dias221467/EventEase/internal/handlers"
	"github.com/Dias221467/EventEase/internal/jobs"
	"github.com/Dias221467/EventEase/internal/metrics"
	"github.com/Dias221467/EventEase/internal/realtime"
	"github.com/Dias221467/EventEase/internal/repository"
	cronjobs "github.com/Dias221467/EventEase/internal/scheduler"
	"github.com/Dias221467/EventEase/internal/services"
	"github.com/Dias221467/EventEase/pkg/email"
	"github.com/Dias221467/EventEase/pkg/logger"
	"github.com/Dias221467/EventEase/pkg/middleware"
	"github.com/Dias221467/EventEase/pkg/payment"
	"github.com/go-redis/redis/v8"
	"github.com/rs/cors"
)

type stores struct {
	notifications services.NotificationStore
	bookings      interface {
		services.BookingStore
		jobs.UpcomingBookings
	}
	users services.UserLookup
}

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger(cfg.LogLevel)
	logger.Log.Info("Logger initialized")

	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		logger.Log.Fatalf("Database connection error: %v", err)
	}

	// --- Realtime ---
	hub := realtime.NewHub()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		relay := realtime.NewRedisRelay(rdb, cfg.RedisChannel, hub)
		if err := relay.Start(ctx); err != nil {
			logger.Log.Fatalf("Redis relay error: %v", err)
		}
		hub.SetRelay(relay)
		logger.Log.WithField("node", relay.NodeID()).Info("Realtime relay enabled")
	}

	// --- Services ---
	notificationService := services.NewNotificationService(st.notifications, hub)
	bookingService := services.NewBookingService(st.bookings, st.users, notificationService, payment.NewVerifier(cfg.PaymentKeySecret))
	if cfg.SMTPHost != "" {
		bookingService.WithMailer(email.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPSender))
	}
	if cfg.PaymentKeySecret == "" {
		if cfg.StoreDriver != "memory" {
			logger.Log.Fatal("PAYMENT_KEY_SECRET is required")
		}
		logger.Log.Warn("PAYMENT_KEY_SECRET is empty, every payment verification will fail")
	}

	// --- Jobs ---
	reminders := jobs.NewReminderNotifier(st.bookings, notificationService)
	scheduler, err := cronjobs.StartNotificationCronJobs(reminders, cfg.ReminderSchedule)
	if err != nil {
		logger.Log.Fatalf("Invalid reminder schedule %q: %v", cfg.ReminderSchedule, err)
	}
	defer scheduler.Stop()

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	if _, err := scheduler.AddFunc("@every 10m", limiter.Cleanup); err != nil {
		logger.Log.WithError(err).Warn("Failed to schedule rate limiter cleanup")
	}

	// --- Handlers ---
	router := (&handlers.Router{
		Notifications: handlers.NewNotificationHandler(notificationService),
		Payments:      handlers.NewPaymentHandler(bookingService),
		Realtime:      handlers.NewRealtimeHandler(hub, cfg.AllowedOrigins),
		JWTSecret:     cfg.JWTSecret,
		RateLimiter:   limiter,
	}).Build()

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Infof("Server running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Graceful shutdown failed")
	}
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.StoreDriver == "memory" {
		logger.Log.Warn("Using in-memory store, data is lost on restart")
		return &stores{
			notifications: repository.NewMemoryNotificationRepository(),
			bookings:      repository.NewMemoryBookingRepository(),
			users:         repository.NewMemoryUserRepository(),
		}, nil
	}

	db, err := database.ConnectDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.EnsureIndexes(ctx, db); err != nil {
		return nil, err
	}

	return &stores{
		notifications: repository.NewNotificationRepository(db),
		bookings:      repository.NewBookingRepository(db),
		users:         repository.NewUserRepository(db),
	}, nil
}
