package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/nadlan-invest/portal/internal/api/metrics"
	"github.com/nadlan-invest/portal/internal/core/ports"
)

// SessionAuth authenticates JSON API calls from the session cookies and
// injects the caller into the context. Unlike the page gatekeeper it answers
// 401 instead of redirecting. Refreshed cookies are still written.
func SessionAuth(identity ports.IdentityProvider, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := identity.CurrentUser(c.Request().Context(), newCookieJar(c))
			if err != nil {
				log.Warn().Err(err).Str("path", c.Request().URL.Path).Msg("api session rejected")
				metrics.IdentityResolutionsTotal.WithLabelValues("error").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
			}
			if user == nil {
				metrics.IdentityResolutionsTotal.WithLabelValues("anonymous").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			metrics.IdentityResolutionsTotal.WithLabelValues("user").Inc()
			setCaller(c, user)
			return next(c)
		}
	}
}
