package middleware

import (
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/nadlan-invest/portal/internal/api/metrics"
	"github.com/nadlan-invest/portal/internal/core/gatekeeper"
)

// GatekeeperConfig defines the config for the Gatekeeper middleware.
type GatekeeperConfig struct {
	// Skipper defines a function to skip middleware.
	// Defaults to DefaultGatekeeperSkipper.
	Skipper echomiddleware.Skipper

	Gatekeeper *gatekeeper.Gatekeeper
}

// skippedPrefixes are served without page routing: the JSON API, probes,
// metrics, API docs and static assets.
var skippedPrefixes = []string{"/api/", "/health", "/metrics", "/swagger/", "/static/"}

// DefaultGatekeeperSkipper skips non-page requests and any path whose last
// segment looks like a file name.
func DefaultGatekeeperSkipper(c echo.Context) bool {
	p := c.Request().URL.Path
	if p == "/api" {
		return true
	}
	for _, prefix := range skippedPrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return strings.Contains(path.Base(p), ".")
}

// Gatekeeper runs the gatekeeper decision on every page request. Redirects
// use 307 and keep every Set-Cookie header written during the decision.
func Gatekeeper(config GatekeeperConfig) echo.MiddlewareFunc {
	if config.Gatekeeper == nil {
		panic("echo: gatekeeper middleware requires a gatekeeper")
	}
	if config.Skipper == nil {
		config.Skipper = DefaultGatekeeperSkipper
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper(c) {
				return next(c)
			}

			start := time.Now()
			d := config.Gatekeeper.Decide(c.Request().Context(), c.Request(), newCookieJar(c))
			metrics.GatekeeperDuration.Observe(time.Since(start).Seconds())
			metrics.GatekeeperDecisionsTotal.WithLabelValues(string(d.Outcome)).Inc()
			metrics.IdentityResolutionsTotal.WithLabelValues(identityResult(d)).Inc()

			c.Set(ContextKeyLocale, d.Locale)
			setCaller(c, d.User)

			if d.Redirect() {
				return c.Redirect(http.StatusTemporaryRedirect, d.Location)
			}
			return next(c)
		}
	}
}

func identityResult(d gatekeeper.Decision) string {
	switch {
	case d.IdentityErr != nil:
		return "error"
	case d.User != nil:
		return "user"
	default:
		return "anonymous"
	}
}
