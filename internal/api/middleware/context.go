package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/nadlan-invest/portal/internal/core/domain"
)

// Keys under which the resolved caller is stored on the echo context.
const (
	ContextKeyUser   = "user"
	ContextKeyRole   = "role"
	ContextKeyLocale = "locale"
)

// UserFrom returns the authenticated user, or nil.
func UserFrom(c echo.Context) *domain.User {
	u, _ := c.Get(ContextKeyUser).(*domain.User)
	return u
}

// RoleFrom returns the role of the authenticated user, or "".
func RoleFrom(c echo.Context) domain.Role {
	r, _ := c.Get(ContextKeyRole).(domain.Role)
	return r
}

// LocaleFrom returns the request locale, falling back to the default locale.
func LocaleFrom(c echo.Context) domain.Locale {
	if l, ok := c.Get(ContextKeyLocale).(domain.Locale); ok {
		return l
	}
	return domain.DefaultLocale
}

func setCaller(c echo.Context, user *domain.User) {
	if user == nil {
		return
	}
	c.Set(ContextKeyUser, user)
	c.Set(ContextKeyRole, user.RoleOrDefault())
}
