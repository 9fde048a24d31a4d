package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  The booking constants
// default to the product values (10 seats per booking, 150 rupee
// deluxe surcharge, 295 second payment window) and rarely need
// overriding outside of tests.
type Config struct {
	Env              string        // application environment (e.g. "dev", "prod")
	Port             string        // HTTP port to listen on
	BackendURL       string        // base URL of the external SkyFox backend API
	BackendAPIKey    string        // API key sent to the backend on every call (optional)
	BackendTimeout   time.Duration // per-request timeout for backend calls
	JWTSecret        string        // secret used to verify auth cookie JWTs
	MaxSeats         int           // hard cap of seats per booking
	DeluxeSurcharge  float64       // rupees added per deluxe seat on top of base cost
	PaymentWindowSec int           // countdown fallback when the backend omits time_remaining_ms
	SessionTTL       time.Duration // idle lifetime of a booking wizard session
}

// Load reads configuration values from environment variables and
// returns a Config.  Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:              must("APP_ENV"),
		Port:             must("APP_PORT"),
		BackendURL:       must("BACKEND_API_URL"),
		BackendAPIKey:    os.Getenv("BACKEND_API_KEY"),
		BackendTimeout:   envDur("BACKEND_TIMEOUT", 15*time.Second),
		JWTSecret:        must("JWT_SECRET"),
		MaxSeats:         envInt("BOOKING_MAX_SEATS", 10),
		DeluxeSurcharge:  envFloat("BOOKING_DELUXE_SURCHARGE", 150),
		PaymentWindowSec: envInt("BOOKING_PAYMENT_WINDOW_SEC", 295),
		SessionTTL:       envDur("BOOKING_SESSION_TTL", 30*time.Minute),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// envFloat reads an optional float variable, falling back to d when
// unset or malformed.
func envFloat(key string, d float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return d
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("invalid float for %s: %q, using %v", key, v, d)
		return d
	}
	return f
}
