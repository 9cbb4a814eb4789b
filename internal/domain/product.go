package domain

import "time"

// Situation is the canonical stock/location state of a product.
type Situation string

const (
	SituationInStock         Situation = "InStock"
	SituationInternalService Situation = "InternalService"
	SituationExternalService Situation = "ExternalService"
	SituationSold            Situation = "Sold"
	SituationScrapped        Situation = "Scrapped"
)

// Product represents a physical piece of equipment tracked by the shop.
// SerialNumber is the natural key used for deduplication on import.
type Product struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	SerialNumber string    `json:"serial_number"`
	Manufacturer string    `json:"manufacturer"`
	TrackingCode string    `json:"tracking_code"`
	Situation    Situation `json:"situation"`
	CreatedAt    time.Time `json:"created_at"`
}
