package importer

import "strings"

// Tokenize splits one line into trimmed raw field values. A double quote
// toggles quoted mode; the separator only splits outside quotes. An
// unterminated quote leaves the remainder of the line in the last field.
//
// Doubled quotes inside quoted fields are NOT un-escaped; production files
// never quote quotes and downstream dedup relies on the simpler semantics.
func Tokenize(line string, separator rune) []string {
	fields := make([]string, 0, 8)
	var b strings.Builder
	inQuotes := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == separator && !inQuotes:
			fields = append(fields, strings.TrimSpace(b.String()))
			b.Reset()
		default:
			b.WriteRune(r)
		}
	}
	fields = append(fields, strings.TrimSpace(b.String()))

	return fields
}
