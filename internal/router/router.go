package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/iamsuteerth/skyfox-frontend/internal/config"
	"github.com/iamsuteerth/skyfox-frontend/internal/handler"
	"github.com/iamsuteerth/skyfox-frontend/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication
// on the provided Echo instance.  Currently it exposes only a health
// check used by load balancers and monitors.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterBooking mounts the booking wizard session API under
// /v1/booking.  Every route requires a valid auth cookie; the admin
// variant additionally checks the role inside the open handler so a
// single machine serves both flows.
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, jwtSecret string) {
	g := e.Group("/v1/booking")
	g.Use(middleware.CookieAuth(jwtSecret))
	// open a new wizard session for a show (customer or admin flow)
	g.POST("/sessions", b.Open)
	// read the current wizard snapshot, countdown included
	g.GET("/sessions/:id", b.Get)
	// record the desired seat count; validated on next
	g.POST("/sessions/:id/seat-count", b.SeatCount)
	// advance and retreat through the wizard steps
	g.POST("/sessions/:id/next", b.Next)
	g.POST("/sessions/:id/back", b.Back)
	// pick or unpick one seat on the selection step
	g.POST("/sessions/:id/seats/toggle", b.ToggleSeat)
	// submit the payment form for the open booking session
	g.POST("/sessions/:id/pay", b.Pay)
	// finalize an admin counter booking with customer details
	g.POST("/sessions/:id/customer", b.Confirm)
	// explicitly cancel the open booking session
	g.DELETE("/sessions/:id/booking", b.Cancel)
	// unload beacon: best-effort cancel without the close guard
	g.POST("/sessions/:id/abandon", b.Abandon)
	// close the dialog; refused while a payment is pending
	g.DELETE("/sessions/:id", b.Close)
}

// RegisterProxy mounts the backend passthrough under the proxy's
// prefix.  GET responses are cached per user and everything is rate
// limited; both middlewares degrade to no-ops when Redis is
// unavailable.
func RegisterProxy(e *echo.Echo, p *handler.Proxy, n *handler.NotificationHandler, jwtSecret string, rdb *redis.Client, cacheCfg config.CacheConfig, rlCfg config.RateLimitConfig) {
	g := e.Group(p.Prefix)
	g.Use(middleware.CookieAuth(jwtSecret))
	g.Use(middleware.NewTokenBucket(rlCfg, rdb))
	g.Use(middleware.NewRedisCache(cacheCfg, rdb))
	// everything under the prefix forwards to the backend verbatim,
	// with the cookie swapped for a bearer token
	g.Any("/*", p.Handle)

	// notification versions polled by the show listing and avatar widgets
	ng := e.Group("/v1/notifications")
	ng.Use(middleware.CookieAuth(jwtSecret))
	ng.GET("/versions", n.Versions)
	ng.POST("/profile-image", n.ProfileImageRefreshed)
}
