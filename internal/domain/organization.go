package domain

import "time"

// OrganizationKind distinguishes the parties the shop deals with.
type OrganizationKind string

const (
	OrganizationKindClient   OrganizationKind = "CLIENT"
	OrganizationKindSupplier OrganizationKind = "SUPPLIER"
)

// Organization represents an external party owning equipment.
// (Name, Kind) is the natural key used for deduplication on import.
type Organization struct {
	ID        int64            `json:"id"`
	Kind      OrganizationKind `json:"kind"`
	Name      string           `json:"name"`
	Email     string           `json:"email,omitempty"`
	Phone     string           `json:"phone,omitempty"`
	Address   string           `json:"address,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}
