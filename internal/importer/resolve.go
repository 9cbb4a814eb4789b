package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/ParcMagScene/MAGSAV-sub011/internal/domain"

	"github.com/google/uuid"
)

// DrySentinelID stands in for entities that would have been created when
// the run is a simulation. It never reaches the store.
const DrySentinelID int64 = -1

// placeholderName labels products imported with a serial number but no name.
const placeholderName = "(inconnu)"

// runState is the per-run working set owned by the orchestrator. The caches
// keep natural-key dedup working within a single run even in dry-run mode,
// where created entities never reach the store.
type runState struct {
	dryRun   bool
	fileName string
	serials  map[string]int64 // serial number -> product id
	orgs     map[string]int64 // normalized owner name -> organization id
}

// resolveProduct reuses an existing product by serial number or creates a
// new one. The second return reports whether a product was created.
func (s *Service) resolveProduct(ctx context.Context, st *runState, row CanonicalRow) (int64, bool, error) {
	name := row.ProductName
	if name == "" {
		name = placeholderName
	}

	if row.SerialNumber != "" {
		if id, seen := st.serials[row.SerialNumber]; seen {
			return id, false, nil
		}

		existing, err := s.products.FindBySerial(ctx, row.SerialNumber)
		if err != nil {
			return 0, false, fmt.Errorf("failed to look up serial %q: %w", row.SerialNumber, err)
		}
		if existing != nil {
			st.serials[row.SerialNumber] = existing.ID
			return existing.ID, false, nil
		}
	}

	id := DrySentinelID
	if !st.dryRun {
		created, err := s.products.Insert(ctx, domain.Product{
			Name:         name,
			SerialNumber: row.SerialNumber,
			Manufacturer: row.Manufacturer,
			TrackingCode: newTrackingCode(),
			Situation:    row.Situation,
		})
		if err != nil {
			return 0, false, fmt.Errorf("failed to insert product: %w", err)
		}
		id = created
	}

	if row.SerialNumber != "" {
		st.serials[row.SerialNumber] = id
	}

	return id, true, nil
}

// resolveOwner classifies the owner cell and, for organizations, reuses or
// creates the CLIENT organization carrying that name. Internal and
// individual owners carry no organization id.
func (s *Service) resolveOwner(ctx context.Context, st *runState, row CanonicalRow) (domain.OwnerKind, *int64, error) {
	kind := ClassifyOwner(row.Owner)
	if kind != domain.OwnerOrganization {
		return kind, nil, nil
	}

	key := Normalize(row.Owner)
	if id, seen := st.orgs[key]; seen {
		return kind, &id, nil
	}

	existing, err := s.organizations.FindByNameAndKind(ctx, row.Owner, domain.OrganizationKindClient)
	if err != nil {
		return kind, nil, fmt.Errorf("failed to look up organization %q: %w", row.Owner, err)
	}

	id := DrySentinelID
	if existing != nil {
		id = existing.ID
	} else if !st.dryRun {
		created, err := s.organizations.Insert(ctx, domain.Organization{
			Kind: domain.OrganizationKindClient,
			Name: row.Owner,
		})
		if err != nil {
			return kind, nil, fmt.Errorf("failed to insert organization: %w", err)
		}
		id = created
	}

	st.orgs[key] = id
	return kind, &id, nil
}

// newTrackingCode generates an opaque 12 character tracking code.
func newTrackingCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:12])
}
