package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/nadlan-invest/portal/internal/core/domain"
	"github.com/nadlan-invest/portal/internal/core/ports"
)

const defaultActivityLimit = 20

type ActivityHandler struct {
	repo ports.ActivityRepository
}

func NewActivityHandler(repo ports.ActivityRepository) *ActivityHandler {
	return &ActivityHandler{repo: repo}
}

type listActivityResponse struct {
	Data []domain.Activity `json:"data"`
}

// List handles GET /api/activity, newest first.
//
// @Summary      My recent activity
// @Tags         activity
// @Produce      json
// @Param        limit  query     int  false  "Max entries (default 20, max 100)"
// @Success      200    {object}  listActivityResponse
// @Failure      401    {object}  errorResponse
// @Router       /api/activity [get]
func (h *ActivityHandler) List(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}

	limit := defaultActivityLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}

	entries, err := h.repo.ListByUser(c.Request().Context(), user.ID, limit)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []domain.Activity{}
	}
	return c.JSON(http.StatusOK, listActivityResponse{Data: entries})
}
