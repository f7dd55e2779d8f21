package handler

import (
	"strings"

	"github.com/nadlan-invest/portal/internal/core/domain"
	"github.com/nadlan-invest/portal/internal/core/ports"
)

func toCreatePropertyInput(brokerID string, req createPropertyRequest) ports.CreatePropertyInput {
	return ports.CreatePropertyInput{
		BrokerID:    brokerID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Address: domain.Address{
			Street:  req.Address.Street,
			City:    strings.TrimSpace(req.Address.City),
			ZipCode: req.Address.ZipCode,
			Coordinates: domain.Coordinates{
				Lat: req.Address.Coordinates.Lat,
				Lng: req.Address.Coordinates.Lng,
			},
		},
		Price:         req.Price,
		Currency:      strings.ToUpper(req.Currency),
		Rooms:         req.Rooms,
		AreaSqm:       req.AreaSqm,
		ExpectedYield: req.ExpectedYield,
	}
}

func toListFilter(q listPropertiesQuery) ports.ListPropertiesFilter {
	return ports.ListPropertiesFilter{
		City:     q.City,
		Status:   q.Status,
		BrokerID: q.BrokerID,
		MinPrice: q.MinPrice,
		MaxPrice: q.MaxPrice,
		MinRooms: q.MinRooms,
		Page:     q.Page,
		Limit:    q.Limit,
	}
}

// toPropertyResponse maps a listing. History is only included in detail
// responses to keep list payloads small.
func toPropertyResponse(p *domain.Property, withHistory bool) propertyResponse {
	resp := propertyResponse{
		ID:            p.ID,
		BrokerID:      p.BrokerID,
		Title:         p.Title,
		Description:   p.Description,
		Address:       p.Address,
		Price:         p.Price,
		Currency:      p.Currency,
		Rooms:         p.Rooms,
		AreaSqm:       p.AreaSqm,
		ExpectedYield: p.ExpectedYield,
		Status:        p.Status,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		Links: propertyLinks{
			Self:   "/api/properties/" + p.ID,
			Status: "/api/properties/" + p.ID + "/status",
		},
	}
	if withHistory {
		resp.StatusHistory = make([]statusHistoryItemResponse, len(p.StatusHistory))
		for i, h := range p.StatusHistory {
			resp.StatusHistory[i] = statusHistoryItemResponse{
				Status:    h.Status,
				Timestamp: h.Timestamp,
				ChangedBy: h.ChangedBy,
			}
		}
	}
	return resp
}

func toListPropertiesResponse(res *ports.ListPropertiesResult) listPropertiesResponse {
	data := make([]propertyResponse, len(res.Items))
	for i, p := range res.Items {
		data[i] = toPropertyResponse(p, false)
	}
	return listPropertiesResponse{
		Data: data,
		Pagination: paginationResponse{
			Total:      res.Total,
			Page:       res.Page,
			Limit:      res.Limit,
			TotalPages: res.TotalPages,
		},
	}
}
