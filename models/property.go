package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PropertyStatus string

const (
	PropertyAvailable   PropertyStatus = "available"
	PropertyUnavailable PropertyStatus = "unavailable"
)

type Property struct {
	ID           string          `json:"id"`
	OwnerID      string          `json:"owner_id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"` // per night
	Location     string          `json:"location"`
	Latitude     float64         `json:"latitude,omitempty"`
	Longitude    float64         `json:"longitude,omitempty"`
	PropertyType string          `json:"property_type"`
	Status       PropertyStatus  `json:"status"`
	Created      time.Time       `json:"created"`
}

// Bookable reports whether new bookings may target the property.
func (p *Property) Bookable() bool {
	return p.Status == PropertyAvailable
}

type PropertyImage struct {
	ID         string `json:"id"`
	PropertyID string `json:"property_id"`
	ImageURL   string `json:"image_url"`
}
