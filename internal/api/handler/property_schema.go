package handler

import (
	"time"

	"github.com/nadlan-invest/portal/internal/core/domain"
)

// --- Request types ---

type coordinatesRequest struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

type addressRequest struct {
	Street      string             `json:"street"      validate:"required"`
	City        string             `json:"city"        validate:"required"`
	ZipCode     string             `json:"zip_code"`
	Coordinates coordinatesRequest `json:"coordinates"`
}

type createPropertyRequest struct {
	Title         string         `json:"title"          validate:"required"`
	Description   string         `json:"description"`
	Address       addressRequest `json:"address"        validate:"required"`
	Price         float64        `json:"price"          validate:"required,gt=0"`
	Currency      string         `json:"currency"       validate:"omitempty,len=3"`
	Rooms         float64        `json:"rooms"          validate:"gte=0"`
	AreaSqm       float64        `json:"area_sqm"       validate:"gte=0"`
	ExpectedYield float64        `json:"expected_yield" validate:"gte=0,lte=100"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=available under_offer sold withdrawn"`
}

// maxListPage matches the page cap of the property service.
const maxListPage = 10000

// listPropertiesQuery is bound from the query string of GET /api/properties.
type listPropertiesQuery struct {
	City     string  `query:"city"`
	Status   string  `query:"status"    validate:"omitempty,oneof=available under_offer sold withdrawn"`
	BrokerID string  `query:"broker_id"`
	MinPrice float64 `query:"min_price" validate:"gte=0"`
	MaxPrice float64 `query:"max_price" validate:"gte=0"`
	MinRooms float64 `query:"min_rooms" validate:"gte=0"`
	Page     int     `query:"page"      validate:"gte=0,lte=10000"`
	Limit    int     `query:"limit"     validate:"gte=0,lte=100"`
}

// --- Response types ---

type propertyLinks struct {
	Self   string `json:"self"`
	Status string `json:"status"`
}

type statusHistoryItemResponse struct {
	Status    domain.PropertyStatus `json:"status"`
	Timestamp time.Time             `json:"timestamp"`
	ChangedBy string                `json:"changed_by"`
}

type propertyResponse struct {
	ID            string                      `json:"id"`
	BrokerID      string                      `json:"broker_id"`
	Title         string                      `json:"title"`
	Description   string                      `json:"description,omitempty"`
	Address       domain.Address              `json:"address"`
	Price         float64                     `json:"price"`
	Currency      string                      `json:"currency"`
	Rooms         float64                     `json:"rooms"`
	AreaSqm       float64                     `json:"area_sqm"`
	ExpectedYield float64                     `json:"expected_yield"`
	Status        domain.PropertyStatus       `json:"status"`
	StatusHistory []statusHistoryItemResponse `json:"status_history,omitempty"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
	Links         propertyLinks               `json:"_links"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type listPropertiesResponse struct {
	Data       []propertyResponse `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}
