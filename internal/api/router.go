package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/nadlan-invest/portal/docs"
	"github.com/nadlan-invest/portal/internal/api/handler"
	"github.com/nadlan-invest/portal/internal/api/middleware"
	"github.com/nadlan-invest/portal/internal/core/domain"
	"github.com/nadlan-invest/portal/internal/core/gatekeeper"
	"github.com/nadlan-invest/portal/internal/core/ports"
	"github.com/nadlan-invest/portal/internal/infrastructure/chat"
	"github.com/nadlan-invest/portal/internal/web"
)

// uploadBodyLimit leaves room for multipart framing around a maximum-size document.
const uploadBodyLimit = "11M"

// Deps carries everything the router wires into handlers.
type Deps struct {
	Logger     zerolog.Logger
	Gatekeeper *gatekeeper.Gatekeeper
	Auth       ports.AuthService
	Properties ports.PropertyService
	Documents  ports.DocumentService
	Activity   ports.ActivityRepository
	Recorder   ports.ActivityRecorder
	Renderer   echo.Renderer
	// Chat is optional; without it /api/chat is not served.
	Chat      *chat.Proxy
	ChatModel string
	Readiness []handler.Dependency
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.Renderer = d.Renderer
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echoprometheus.NewMiddleware("portal"))
	e.Use(middleware.Gatekeeper(middleware.GatekeeperConfig{Gatekeeper: d.Gatekeeper}))

	// --- Probes, metrics, docs and assets (skipped by the gatekeeper) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Readiness...)

	e.GET("/health", healthHandler.Liveness)          // liveness: is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness: are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.StaticFS("/static", echo.MustSubFS(web.StaticFS, "static"))

	registerAPI(e, d)
	registerPages(e, d)

	return e
}

func registerAPI(e *echo.Echo, d Deps) {
	sessionAuth := middleware.SessionAuth(d.Auth, d.Logger)
	brokerOnly := middleware.RequireRole(domain.RoleBroker)

	authHandler := handler.NewAuthHandler(d.Auth, d.Gatekeeper, d.Recorder)
	propertyHandler := handler.NewPropertyHandler(d.Properties, d.Recorder)
	documentHandler := handler.NewDocumentHandler(d.Documents, d.Recorder)
	activityHandler := handler.NewActivityHandler(d.Activity)

	auth := e.Group("/api/auth")
	auth.POST("/sign-up", authHandler.SignUp)
	auth.POST("/sign-in", authHandler.SignIn)
	auth.POST("/sign-out", authHandler.SignOut)
	auth.GET("/me", authHandler.Me, sessionAuth)

	api := e.Group("/api", sessionAuth)
	api.GET("/properties", propertyHandler.List)
	api.GET("/properties/:id", propertyHandler.Get)
	api.POST("/properties", propertyHandler.Create, brokerOnly)
	api.PATCH("/properties/:id/status", propertyHandler.UpdateStatus, brokerOnly)

	api.POST("/documents", documentHandler.Upload, echomiddleware.BodyLimit(uploadBodyLimit))
	api.GET("/documents", documentHandler.List)
	api.GET("/documents/:id", documentHandler.Download)

	api.GET("/activity", activityHandler.List)

	if d.Chat != nil {
		d.Chat.Mount(e, sessionAuth)
	}
}

func registerPages(e *echo.Echo, d Deps) {
	pages := handler.NewPageHandler(d.Properties, d.Documents, d.Activity, d.Gatekeeper, d.ChatModel)

	g := e.Group("/:locale", handler.RequireLocale)
	g.GET("", pages.Home)
	g.GET("/", pages.Home)
	g.GET("/sign-in", pages.SignIn)
	g.GET("/sign-up", pages.SignUp)
	g.GET("/dashboard", pages.Dashboard)
	g.GET("/dashboard/:role", pages.RoleDashboard)
	g.GET("/properties", pages.Properties)
	g.GET("/onboarding", pages.Onboarding)
	g.GET("/documents", pages.Documents)
}
