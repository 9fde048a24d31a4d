package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// AuthCookieName is the cookie the auth service sets after login.
// Its value is the JWT this service forwards to the backend as a
// bearer token.
const AuthCookieName = "auth_token"

// CookieAuth returns an Echo middleware that derives the bearer
// token from the auth cookie (falling back to an Authorization
// header for non-browser clients), validates it with the shared
// secret and injects the raw token plus the subject and role claims
// into the request context.  Handlers read them via c.Get("token"),
// c.Get("user_id") and c.Get("role"); the token is what gets
// forwarded to the backend on every proxied or wizard-initiated
// call.
func CookieAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Prefer the auth cookie set by the login flow.  API
			// clients without cookies may send a standard bearer
			// header instead.
			raw := ""
			if ck, err := c.Cookie(AuthCookieName); err == nil && ck.Value != "" {
				raw = ck.Value
			} else if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				raw = strings.TrimPrefix(auth, "Bearer ")
			}
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing auth token"})
			}

			// Parse with HS256 and the shared secret; any other
			// signing method is rejected.
			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			// Stash the verified token and its identity claims for
			// handlers and downstream middleware.
			c.Set("token", raw)
			c.Set("user_id", claims["sub"])
			c.Set("role", claims["role"])
			return next(c)
		}
	}
}

// RequireRole returns middleware that allows only the given roles
// through.  It expects CookieAuth to have populated the context.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[strings.ToUpper(r)] = struct{}{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if _, ok := allowed[strings.ToUpper(role)]; !ok {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
