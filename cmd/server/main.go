package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iamsuteerth/skyfox-frontend/internal/backend"
	"github.com/iamsuteerth/skyfox-frontend/internal/booking"
	"github.com/iamsuteerth/skyfox-frontend/internal/config"
	"github.com/iamsuteerth/skyfox-frontend/internal/handler"
	"github.com/iamsuteerth/skyfox-frontend/internal/notify"
	"github.com/iamsuteerth/skyfox-frontend/internal/queue"
	"github.com/iamsuteerth/skyfox-frontend/internal/router"
	queuepublisher "github.com/iamsuteerth/skyfox-frontend/internal/service"
	"github.com/iamsuteerth/skyfox-frontend/internal/store"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments use the environment

	cfg := config.Load() // Load environment config
	e := echo.New()      // Create Echo instance

	// Redis backs the passthrough cache and rate limiter; a nil client
	// simply disables both.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; response cache and rate limiting disabled")
	}

	api := backend.NewClient(cfg.BackendURL, cfg.BackendAPIKey, cfg.BackendTimeout)
	hub := notify.NewHub()

	sessions := store.NewSessionStore(cfg.SessionTTL)
	sessions.StartSweeper(cfg.SessionTTL / 10)
	defer sessions.Close()

	bookingCfg := booking.Config{
		MaxSeats:         cfg.MaxSeats,
		DeluxeSurcharge:  cfg.DeluxeSurcharge,
		PaymentWindowSec: cfg.PaymentWindowSec,
	}
	bookingHandler := handler.NewBookingHandler(sessions, api, hub, queuepublisher.Publisher{}, bookingCfg)
	proxy := handler.NewProxy(cfg.BackendURL, cfg.BackendAPIKey, "/v1/api", cfg.BackendTimeout)
	notifications := &handler.NotificationHandler{Hub: hub}

	router.RegisterRoutes(e) // health check
	router.RegisterBooking(e, bookingHandler, cfg.JWTSecret)
	router.RegisterProxy(e, proxy, notifications, cfg.JWTSecret, rdb, config.LoadCacheConfig(), config.LoadRateLimitConfig())

	// Background consumer appends confirmed bookings to logs/booking.log.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
