package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nadlan-invest/portal/internal/api/middleware"
	"github.com/nadlan-invest/portal/internal/core/domain"
	"github.com/nadlan-invest/portal/internal/core/ports"
	"github.com/nadlan-invest/portal/internal/web"
)

const dashboardActivityLimit = 10

// PageHandler serves the localized HTML pages. The gatekeeper middleware has
// already enforced authentication and role routing when these run.
type PageHandler struct {
	properties ports.PropertyService
	documents  ports.DocumentService
	activity   ports.ActivityRepository
	dashboards DashboardResolver
	chatModel  string
}

func NewPageHandler(properties ports.PropertyService, documents ports.DocumentService, activity ports.ActivityRepository, dashboards DashboardResolver, chatModel string) *PageHandler {
	return &PageHandler{
		properties: properties,
		documents:  documents,
		activity:   activity,
		dashboards: dashboards,
		chatModel:  chatModel,
	}
}

// RequireLocale answers 404 for page routes whose first segment is not a
// supported locale.
func RequireLocale(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := domain.ParseLocale(c.Param("locale")); !ok {
			return echo.ErrNotFound
		}
		return next(c)
	}
}

func (h *PageHandler) Home(c echo.Context) error {
	return c.Render(http.StatusOK, "home", h.page(c, "home.title", nil))
}

func (h *PageHandler) SignIn(c echo.Context) error {
	p := h.page(c, "sign_in.title", nil)
	p.Redirect = c.QueryParam("redirect")
	return c.Render(http.StatusOK, "sign-in", p)
}

func (h *PageHandler) SignUp(c echo.Context) error {
	return c.Render(http.StatusOK, "sign-up", h.page(c, "sign_up.title", domain.Roles()))
}

// Dashboard sends the caller to their own role dashboard.
func (h *PageHandler) Dashboard(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusTemporaryRedirect, h.dashboards.DashboardURL(middleware.LocaleFrom(c), user.RoleOrDefault()))
}

// RoleDashboard renders /:locale/dashboard/:role.
func (h *PageHandler) RoleDashboard(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	locale := middleware.LocaleFrom(c)
	if h.dashboards.DashboardURL(locale, user.RoleOrDefault()) != "/"+string(locale)+"/dashboard/"+c.Param("role") {
		return echo.ErrNotFound
	}

	entries, err := h.activity.ListByUser(c.Request().Context(), user.ID, dashboardActivityLimit)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "dashboard", h.page(c, "dashboard.title", entries))
}

func (h *PageHandler) Properties(c echo.Context) error {
	var q listPropertiesQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	res, err := h.properties.ListProperties(c.Request().Context(), toListFilter(q))
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "properties", h.page(c, "properties.title", res.Items))
}

func (h *PageHandler) Documents(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	docs, err := h.documents.List(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "documents", h.page(c, "documents.title", docs))
}

func (h *PageHandler) Onboarding(c echo.Context) error {
	return c.Render(http.StatusOK, "onboarding", h.page(c, "onboarding.title", h.chatModel))
}

func (h *PageHandler) page(c echo.Context, titleKey string, data any) web.Page {
	locale := middleware.LocaleFrom(c)
	_, rest, _ := domain.SplitLocale(c.Request().URL.Path)
	return web.Page{
		Locale: locale,
		Path:   rest,
		Title:  web.Translate(locale, titleKey),
		User:   middleware.UserFrom(c),
		Role:   middleware.RoleFrom(c),
		Error:  c.QueryParam("error"),
		Data:   data,
	}
}
