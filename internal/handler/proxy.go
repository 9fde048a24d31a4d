// This file implements the thin passthrough: every screen that is
// plain CRUD against the backend (show listings, wallet, revenue,
// profile) goes through one forwarding handler instead of a handler
// per endpoint.  The proxy swaps the caller's auth cookie for a
// bearer header and copies everything else through untouched.

package handler

import (
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// hop-by-hop headers that must not be forwarded in either direction.
var hopHeaders = map[string]struct{}{
	"Connection":          {},
	"Keep-Alive":          {},
	"Proxy-Authorization": {},
	"Te":                  {},
	"Upgrade":             {},
	"Transfer-Encoding":   {},
}

// Proxy forwards requests under its mount prefix to the external
// backend with the context bearer token injected.  It deliberately
// does no response interpretation; the backend owns those endpoints'
// semantics.
type Proxy struct {
	BaseURL string
	APIKey  string
	Prefix  string // route prefix stripped before forwarding, e.g. "/v1/api"
	http    *http.Client
}

// NewProxy builds a Proxy for the given backend base URL and mount
// prefix.
func NewProxy(baseURL, apiKey, prefix string, timeout time.Duration) *Proxy {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Proxy{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Prefix:  prefix,
		http:    &http.Client{Timeout: timeout},
	}
}

// Handle is the Echo handler bound to <prefix>/*.  It rebuilds the
// request against the backend, forwards it and streams the response
// back, translating transport failures into a 502 with a generic
// message (raw errors go to the log only).
func (p *Proxy) Handle(c echo.Context) error {
	token, _ := c.Get("token").(string)
	req := c.Request()

	target := p.BaseURL + strings.TrimPrefix(req.URL.Path, p.Prefix)
	if req.URL.RawQuery != "" {
		target += "?" + req.URL.RawQuery
	}

	out, err := http.NewRequestWithContext(req.Context(), req.Method, target, req.Body)
	if err != nil {
		log.Printf("proxy: build %s %s: %v", req.Method, target, err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "upstream request failed"})
	}
	for k, vals := range req.Header {
		if _, hop := hopHeaders[http.CanonicalHeaderKey(k)]; hop {
			continue
		}
		// the cookie stays here; the backend only understands bearer auth
		if strings.EqualFold(k, "Cookie") || strings.EqualFold(k, "Authorization") {
			continue
		}
		for _, v := range vals {
			out.Header.Add(k, v)
		}
	}
	if token != "" {
		out.Header.Set("Authorization", "Bearer "+token)
	}
	if p.APIKey != "" {
		out.Header.Set("X-Api-Key", p.APIKey)
	}

	resp, err := p.http.Do(out)
	if err != nil {
		log.Printf("proxy: %s %s: %v", req.Method, target, err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "upstream request failed"})
	}
	defer func() { _ = resp.Body.Close() }()

	for k, vals := range resp.Header {
		if _, hop := hopHeaders[http.CanonicalHeaderKey(k)]; hop {
			continue
		}
		for _, v := range vals {
			c.Response().Header().Add(k, v)
		}
	}
	c.Response().WriteHeader(resp.StatusCode)
	if _, err := io.Copy(c.Response(), resp.Body); err != nil {
		log.Printf("proxy: stream %s %s: %v", req.Method, target, err)
	}
	return nil
}
