package importer

import "github.com/ParcMagScene/MAGSAV-sub011/internal/domain"

// Free-text to enum mapping tables. Keys are normalized spellings; every
// mapper falls back to an explicit default when nothing matches.

var statusAliases = map[string]domain.InterventionStatus{
	"ouverte":     domain.StatusOpen,
	"ouvert":      domain.StatusOpen,
	"open":        domain.StatusOpen,
	"en_cours":    domain.StatusOpen,
	"encours":     domain.StatusOpen,
	"nouveau":     domain.StatusOpen,
	"recu":        domain.StatusOpen,
	"pending":     domain.StatusOpen,
	"progress":    domain.StatusOpen,
	"in_progress": domain.StatusOpen,
	"fermee":      domain.StatusClosed,
	"ferme":       domain.StatusClosed,
	"closed":      domain.StatusClosed,
	"close":       domain.StatusClosed,
	"cloture":     domain.StatusClosed,
	"cloturee":    domain.StatusClosed,
	"terminee":    domain.StatusClosed,
	"termine":     domain.StatusClosed,
	"done":        domain.StatusClosed,
	"suspendue":   domain.StatusSuspended,
	"suspendu":    domain.StatusSuspended,
	"suspended":   domain.StatusSuspended,
	"en_attente":  domain.StatusSuspended,
	"attente":     domain.StatusSuspended,
	"on_hold":     domain.StatusSuspended,
	"hold":        domain.StatusSuspended,
}

// MapStatus converts free text into a canonical intervention status,
// defaulting to Open.
func MapStatus(raw string) domain.InterventionStatus {
	if status, ok := statusAliases[Normalize(raw)]; ok {
		return status
	}
	return domain.StatusOpen
}

// statusRecognized reports whether the cell maps without falling back to the
// default.
func statusRecognized(raw string) bool {
	_, ok := statusAliases[Normalize(raw)]
	return ok
}

var situationAliases = map[string]domain.Situation{
	"en_stock":         domain.SituationInStock,
	"stock":            domain.SituationInStock,
	"in_stock":         domain.SituationInStock,
	"sav_mag":          domain.SituationInternalService,
	"sav_interne":      domain.SituationInternalService,
	"atelier":          domain.SituationInternalService,
	"atelier_mag":      domain.SituationInternalService,
	"internal_service": domain.SituationInternalService,
	"sav_externe":      domain.SituationExternalService,
	"savext":           domain.SituationExternalService,
	"externe":          domain.SituationExternalService,
	"external_service": domain.SituationExternalService,
	"vendu":            domain.SituationSold,
	"vendue":           domain.SituationSold,
	"sold":             domain.SituationSold,
	"dechet":           domain.SituationScrapped,
	"poubelle":         domain.SituationScrapped,
	"scrap":            domain.SituationScrapped,
	"scrapped":         domain.SituationScrapped,
	"rebut":            domain.SituationScrapped,
}

// MapSituation converts free text into a canonical product situation,
// defaulting to InStock.
func MapSituation(raw string) domain.Situation {
	if situation, ok := situationAliases[Normalize(raw)]; ok {
		return situation
	}
	return domain.SituationInStock
}

func situationRecognized(raw string) bool {
	_, ok := situationAliases[Normalize(raw)]
	return ok
}

// internalOwnerNames are the spellings under which historical exports refer
// to the business itself as the owner.
var internalOwnerNames = map[string]struct{}{
	"mag_scene": {},
	"magscene":  {},
	"interne":   {},
	"internal":  {},
}

var individualOwnerNames = map[string]struct{}{
	"particulier":  {},
	"particuliers": {},
	"individual":   {},
	"prive":        {},
}

// ClassifyOwner decides whether an owner cell refers to the business itself,
// a private individual, or a client organization. Empty owners are internal.
func ClassifyOwner(raw string) domain.OwnerKind {
	key := Normalize(raw)
	if key == "" {
		return domain.OwnerInternal
	}
	if _, ok := internalOwnerNames[key]; ok {
		return domain.OwnerInternal
	}
	if _, ok := individualOwnerNames[key]; ok {
		return domain.OwnerIndividual
	}
	return domain.OwnerOrganization
}
