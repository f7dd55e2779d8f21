package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nadlan-invest/portal/internal/api/metrics"
	"github.com/nadlan-invest/portal/internal/api/middleware"
	"github.com/nadlan-invest/portal/internal/core/domain"
	"github.com/nadlan-invest/portal/internal/core/ports"
)

// PropertyHandler serves the investment marketplace.
type PropertyHandler struct {
	service  ports.PropertyService
	activity ports.ActivityRecorder
}

func NewPropertyHandler(service ports.PropertyService, activity ports.ActivityRecorder) *PropertyHandler {
	return &PropertyHandler{service: service, activity: activity}
}

// List handles GET /api/properties.
//
// @Summary      List properties
// @Tags         properties
// @Produce      json
// @Param        city       query     string  false  "City (case-insensitive)"
// @Param        status     query     string  false  "Listing status"  Enums(available, under_offer, sold, withdrawn)
// @Param        broker_id  query     string  false  "Listing broker"
// @Param        min_price  query     number  false  "Minimum price"
// @Param        max_price  query     number  false  "Maximum price"
// @Param        min_rooms  query     number  false  "Minimum number of rooms"
// @Param        page       query     int     false  "Page (1-based)"
// @Param        limit      query     int     false  "Page size (max 100)"
// @Success      200        {object}  listPropertiesResponse
// @Failure      401        {object}  errorResponse
// @Failure      422        {object}  errorResponse
// @Router       /api/properties [get]
func (h *PropertyHandler) List(c echo.Context) error {
	var q listPropertiesQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	if err := c.Validate(&q); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	if q.MaxPrice > 0 && q.MinPrice > q.MaxPrice {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "min_price must not exceed max_price")
	}

	res, err := h.service.ListProperties(c.Request().Context(), toListFilter(q))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListPropertiesResponse(res))
}

// Get handles GET /api/properties/:id.
//
// @Summary      Get a property
// @Tags         properties
// @Produce      json
// @Param        id   path      string  true  "Listing ID (e.g. LST-7A8B9C2D)"
// @Success      200  {object}  propertyResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/properties/{id} [get]
func (h *PropertyHandler) Get(c echo.Context) error {
	p, err := h.service.GetProperty(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPropertyResponse(p, true))
}

// Create handles POST /api/properties. Brokers only.
//
// @Summary      List a new property
// @Tags         properties
// @Accept       json
// @Produce      json
// @Param        body  body      createPropertyRequest  true  "Listing"
// @Success      201   {object}  propertyResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/properties [post]
func (h *PropertyHandler) Create(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}

	var req createPropertyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	p, err := h.service.CreateProperty(c.Request().Context(), toCreatePropertyInput(user.ID, req))
	if err != nil {
		return err
	}

	metrics.PropertiesListedTotal.WithLabelValues(strings.ToLower(p.Address.City)).Inc()
	h.activity.Enqueue(domain.Activity{UserID: user.ID, Kind: domain.ActivityPropertyListed, Subject: p.ID, At: p.CreatedAt})

	c.Response().Header().Set(echo.HeaderLocation, "/api/properties/"+p.ID)
	return c.JSON(http.StatusCreated, toPropertyResponse(p, true))
}

// UpdateStatus handles PATCH /api/properties/:id/status. Only the broker who
// listed the property may change its status.
//
// @Summary      Change listing status
// @Tags         properties
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Listing ID"
// @Param        body  body      updateStatusRequest  true  "New status"
// @Success      200   {object}  propertyResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/properties/{id}/status [patch]
func (h *PropertyHandler) UpdateStatus(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	p, err := h.service.UpdateStatus(c.Request().Context(), ports.UpdatePropertyStatusInput{
		ID:        c.Param("id"),
		Status:    domain.PropertyStatus(req.Status),
		ActorID:   user.ID,
		ActorRole: middleware.RoleFrom(c),
	})
	if err != nil {
		return err
	}

	h.activity.Enqueue(domain.Activity{
		UserID:  user.ID,
		Kind:    domain.ActivityPropertyStatusChanged,
		Subject: p.ID,
		Detail:  string(p.Status),
		At:      p.UpdatedAt,
	})
	return c.JSON(http.StatusOK, toPropertyResponse(p, true))
}
