package domain

import "time"

// InterventionStatus is the canonical lifecycle state of a servicing episode.
type InterventionStatus string

const (
	StatusOpen      InterventionStatus = "Open"
	StatusClosed    InterventionStatus = "Closed"
	StatusSuspended InterventionStatus = "Suspended"
)

// OwnerKind classifies who owns the equipment a row refers to.
type OwnerKind string

const (
	// OwnerInternal marks equipment owned by the business itself.
	OwnerInternal OwnerKind = "INTERNAL"
	// OwnerIndividual marks equipment brought in by a private individual.
	OwnerIndividual OwnerKind = "INDIVIDUAL"
	// OwnerOrganization marks equipment owned by a registered client organization.
	OwnerOrganization OwnerKind = "ORGANIZATION"
)

// Intervention is one servicing episode for a product. Interventions are
// historical events: every imported row creates a new one, they are never
// deduplicated.
type Intervention struct {
	ID             int64              `json:"id"`
	ProductID      int64              `json:"product_id"`
	Status         InterventionStatus `json:"status"`
	Fault          string             `json:"fault"`
	Technician     string             `json:"technician"`
	DateIn         *string            `json:"date_in,omitempty"`  // ISO yyyy-MM-dd
	DateOut        *string            `json:"date_out,omitempty"` // ISO yyyy-MM-dd
	TrackingNumber string             `json:"tracking_number"`
	OwnerKind      OwnerKind          `json:"owner_kind"`
	OrganizationID *int64             `json:"organization_id,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}
