package ports

import (
	"context"

	"github.com/nadlan-invest/portal/internal/core/domain"
)

// ListPropertiesFilter carries all query parameters for listing properties.
type ListPropertiesFilter struct {
	City     string  // optional: exact, case-insensitive
	Status   string  // optional
	BrokerID string  // optional
	MinPrice float64 // optional: price >= MinPrice
	MaxPrice float64 // optional: price <= MaxPrice
	MinRooms float64 // optional
	Page     int     // 1-based
	Limit    int     // max rows per page (capped at 100 by service)
}

// PropertyRepository defines persistence operations for listings.
type PropertyRepository interface {
	Create(ctx context.Context, p *domain.Property) error
	FindByID(ctx context.Context, id string) (*domain.Property, error)
	List(ctx context.Context, filter ListPropertiesFilter) ([]*domain.Property, int64, error)
	// UpdateStatus applies the transition only if the stored status still
	// equals from; otherwise it returns domain.ErrInvalidTransition.
	UpdateStatus(ctx context.Context, id string, from domain.PropertyStatus, entry domain.StatusHistoryEntry) error
}

// CreatePropertyInput carries the data for a new listing.
type CreatePropertyInput struct {
	BrokerID      string
	Title         string
	Description   string
	Address       domain.Address
	Price         float64
	Currency      string
	Rooms         float64
	AreaSqm       float64
	ExpectedYield float64
}

// UpdatePropertyStatusInput carries a status change request.
type UpdatePropertyStatusInput struct {
	ID        string
	Status    domain.PropertyStatus
	ActorID   string
	ActorRole domain.Role
}

// ListPropertiesResult is returned by ListProperties.
type ListPropertiesResult struct {
	Items      []*domain.Property
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// PropertyService defines marketplace use cases.
type PropertyService interface {
	CreateProperty(ctx context.Context, in CreatePropertyInput) (*domain.Property, error)
	GetProperty(ctx context.Context, id string) (*domain.Property, error)
	ListProperties(ctx context.Context, filter ListPropertiesFilter) (*ListPropertiesResult, error)
	UpdateStatus(ctx context.Context, in UpdatePropertyStatusInput) (*domain.Property, error)
}
