package importer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds free text into a comparison key: accents stripped,
// lowercased, every run of non [a-z0-9] collapsed to a single underscore,
// leading/trailing underscores trimmed. "Numéro de Série" and
// "NUMERO-DE-SERIE  " both normalize to "numero_de_serie".
func Normalize(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	// NFD decomposition followed by removal of combining marks strips
	// diacritics. The transformers carry state, so build a fresh chain
	// per call.
	chain := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(chain, text); err == nil {
		text = stripped
	}

	text = strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(text))
	pendingUnderscore := false
	for _, r := range text {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingUnderscore && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingUnderscore = false
			b.WriteRune(r)
			continue
		}
		pendingUnderscore = true
	}

	return b.String()
}
