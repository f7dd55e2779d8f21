package domain

import "time"

// PropertyStatus represents the marketplace state of a listing.
type PropertyStatus string

const (
	PropertyAvailable  PropertyStatus = "available"
	PropertyUnderOffer PropertyStatus = "under_offer"
	PropertySold       PropertyStatus = "sold"
	PropertyWithdrawn  PropertyStatus = "withdrawn"
)

// validTransitions defines the allowed listing state machine.
var validTransitions = map[PropertyStatus][]PropertyStatus{
	PropertyAvailable:  {PropertyUnderOffer, PropertyWithdrawn},
	PropertyUnderOffer: {PropertyAvailable, PropertySold},
	PropertyWithdrawn:  {PropertyAvailable},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s PropertyStatus) CanTransitionTo(next PropertyStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Coordinates represents a geographic point.
type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// Address represents a physical location.
type Address struct {
	Street      string      `json:"street" bson:"street"`
	City        string      `json:"city" bson:"city"`
	ZipCode     string      `json:"zip_code" bson:"zip_code"`
	Coordinates Coordinates `json:"coordinates" bson:"coordinates"`
}

// StatusHistoryEntry records a single status transition on a listing.
type StatusHistoryEntry struct {
	Status    PropertyStatus `json:"status" bson:"status"`
	Timestamp time.Time      `json:"timestamp" bson:"timestamp"`
	ChangedBy string         `json:"changed_by" bson:"changed_by"`
}

// Property is a listing on the investment marketplace.
type Property struct {
	ID            string               `json:"id" bson:"_id"`
	BrokerID      string               `json:"broker_id" bson:"broker_id"`
	Title         string               `json:"title" bson:"title"`
	Description   string               `json:"description" bson:"description"`
	Address       Address              `json:"address" bson:"address"`
	Price         float64              `json:"price" bson:"price"`
	Currency      string               `json:"currency" bson:"currency"`
	Rooms         float64              `json:"rooms" bson:"rooms"`
	AreaSqm       float64              `json:"area_sqm" bson:"area_sqm"`
	ExpectedYield float64              `json:"expected_yield" bson:"expected_yield"`
	Status        PropertyStatus       `json:"status" bson:"status"`
	StatusHistory []StatusHistoryEntry `json:"status_history" bson:"status_history"`
	CreatedAt     time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at" bson:"updated_at"`
}
