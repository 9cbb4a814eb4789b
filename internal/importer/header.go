package importer

import "errors"

// Canonical field keys the engine understands, independent of how a given
// file spells its header.
const (
	FieldProductName    = "product_name"
	FieldSerialNumber   = "serial_number"
	FieldOwner          = "owner"
	FieldFault          = "fault_description"
	FieldStatus         = "status"
	FieldSituation      = "situation"
	FieldDetector       = "detector"
	FieldDateIn         = "date_in"
	FieldDateOut        = "date_out"
	FieldTrackingNumber = "tracking_number"
	FieldManufacturer   = "manufacturer"
)

// canonicalFields fixes the resolution order so alias matching is
// deterministic.
var canonicalFields = []string{
	FieldProductName,
	FieldSerialNumber,
	FieldOwner,
	FieldFault,
	FieldStatus,
	FieldSituation,
	FieldDetector,
	FieldDateIn,
	FieldDateOut,
	FieldTrackingNumber,
	FieldManufacturer,
}

// ErrNoIdentityColumn is returned when a header resolves neither a product
// name nor a serial number column; such a file cannot be imported at all.
var ErrNoIdentityColumn = errors.New("file must contain a product name or serial number column")

// Aliases maps a canonical field key to the normalized header spellings
// accepted for it. It is plain data so tests and deployments can substitute
// alternate sets.
type Aliases map[string][]string

// DefaultAliases returns the alias table covering the header spellings seen
// in historical exports, French and English.
func DefaultAliases() Aliases {
	return Aliases{
		FieldProductName:    {"produit", "product", "nom_produit", "nom", "libelle", "designation"},
		FieldSerialNumber:   {"n_de_serie", "no_de_serie", "numero_de_serie", "numero_serie", "n_serie", "no_serie", "sn", "serial", "serie"},
		FieldOwner:          {"proprietaire", "client", "societe", "possesseur"},
		FieldFault:          {"panne", "defaut", "probleme", "description", "desc", "fault"},
		FieldStatus:         {"statut", "etat_intervention", "state"},
		FieldSituation:      {"etat", "statut_produit", "status_produit", "emplacement"},
		FieldDetector:       {"detecteur", "technicien", "diagnostic_par", "technician"},
		FieldDateIn:         {"date_entree", "entree", "date_debut", "debut", "entry_date"},
		FieldDateOut:        {"date_sortie", "sortie", "date_fin", "fin", "exit_date"},
		FieldTrackingNumber: {"no_suivi", "n_suivi", "numero_suivi", "tracking", "tracking_no", "suivi"},
		FieldManufacturer:   {"fabricant", "marque", "brand", "constructeur"},
	}
}

// HeaderIndex maps a canonical field key to its column position. Built once
// per file and read-only afterwards; keys with no matching column are absent.
type HeaderIndex map[string]int

// ResolveHeaders maps raw header tokens to canonical field keys. Direct
// normalized matches win first; remaining keys fall back to the alias table.
// In both passes the leftmost matching column wins, so a file carrying two
// spellings of the same field binds the earlier one. A key without any match
// is simply absent from the index, except that resolving neither identity
// column is fatal.
func ResolveHeaders(headerTokens []string, aliases Aliases) (HeaderIndex, error) {
	normalized := make([]string, len(headerTokens))
	for i, token := range headerTokens {
		normalized[i] = Normalize(token)
	}

	index := make(HeaderIndex, len(canonicalFields))

	for _, key := range canonicalFields {
		for col, token := range normalized {
			if token == key {
				index[key] = col
				break
			}
		}
	}

	for _, key := range canonicalFields {
		if _, done := index[key]; done {
			continue
		}
		known := make(map[string]struct{}, len(aliases[key]))
		for _, alias := range aliases[key] {
			known[alias] = struct{}{}
		}
		for col, token := range normalized {
			if _, ok := known[token]; ok {
				index[key] = col
				break
			}
		}
	}

	if _, ok := index[FieldProductName]; !ok {
		if _, ok := index[FieldSerialNumber]; !ok {
			return nil, ErrNoIdentityColumn
		}
	}

	return index, nil
}
