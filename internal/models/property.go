package models

import "time"

type Property struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Street       string    `json:"street"`
	Neighborhood string    `json:"neighborhood"`
	PropertyType string    `json:"property_type"`
	City         string    `json:"city"`
	PostalCode   string    `json:"postal_code"`
	Price        int       `json:"price"`
	Bedrooms     *int      `json:"bedrooms"`
	Bathrooms    *int      `json:"bathrooms"`
	Area         *int      `json:"area"`
	Status       string    `json:"status"`
	Description  string    `json:"description"`
	UserID       string    `json:"user_id"`
	Latitude     *float64  `json:"latitude"`
	Longitude    *float64  `json:"longitude"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Images []PropertyImage `json:"images,omitempty"`
}

type PropertyImage struct {
	ID         string `json:"id"`
	PropertyID string `json:"property_id"`
	URL        string `json:"url"`
	Position   int    `json:"position"`
}

// Listing statuses
const (
	PropertyAvailable = "disponivel"
	PropertyReserved  = "reservado"
	PropertySold      = "vendido"
)

type PropertyStats struct {
	TotalProperties int     `json:"total_properties"`
	TotalAvailable  int     `json:"total_available"`
	TotalSold       int     `json:"total_sold"`
	AveragePrice    float64 `json:"average_price"`
	PricePerSqm     float64 `json:"price_per_sqm"`
}
