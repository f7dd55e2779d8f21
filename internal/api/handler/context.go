package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nadlan-invest/portal/internal/api/middleware"
	"github.com/nadlan-invest/portal/internal/core/domain"
	"github.com/nadlan-invest/portal/internal/core/gatekeeper"
)

// caller returns the user injected by SessionAuth and fails fast with 401
// when it is missing, i.e. the route was registered without the middleware.
func caller(c echo.Context) (*domain.User, error) {
	user := middleware.UserFrom(c)
	if user == nil || user.ID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return user, nil
}

// isForm reports whether the request carries an HTML form body. Form
// submissions get redirects, JSON clients get JSON.
func isForm(c echo.Context) bool {
	ct := c.Request().Header.Get(echo.HeaderContentType)
	return strings.HasPrefix(ct, echo.MIMEApplicationForm) || strings.HasPrefix(ct, echo.MIMEMultipartForm)
}

// formLocale picks the locale of a form submission: the explicit field, then
// the locale cookie, then the default.
func formLocale(c echo.Context, field string) domain.Locale {
	if l, ok := domain.ParseLocale(field); ok {
		return l
	}
	if ck, err := c.Cookie(gatekeeper.LocaleCookie); err == nil {
		if l, ok := domain.ParseLocale(ck.Value); ok {
			return l
		}
	}
	return domain.DefaultLocale
}

// safeRedirect returns target when it is a same-origin absolute path and
// fallback otherwise.
func safeRedirect(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, "\\") {
		return fallback
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return target
}
