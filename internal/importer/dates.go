package importer

import (
	"strings"
	"time"
)

// dateLayouts lists the input formats accepted for the optional date cells,
// tried in order. ISO first, then the day-first variants found in
// historical exports.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"2.1.2006",
}

// ParseDate converts a free-text date cell to ISO yyyy-MM-dd. Unparseable
// or empty input yields the empty string; dates are optional metadata, so a
// failed parse is never an error.
func ParseDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.Format("2006-01-02")
		}
	}

	// Timestamps like "2024-01-12T09:30:00" carry a usable date prefix.
	if len(raw) >= 10 {
		if parsed, err := time.Parse("2006-01-02", raw[:10]); err == nil {
			return parsed.Format("2006-01-02")
		}
	}

	return ""
}
