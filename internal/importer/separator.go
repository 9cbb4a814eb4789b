package importer

import "strings"

// DetectSeparator picks the field delimiter by counting candidates in the
// header line. Semicolon wins only when strictly more frequent than comma;
// a header with neither delimiter falls back to comma.
func DetectSeparator(headerLine string) rune {
	if strings.Count(headerLine, ";") > strings.Count(headerLine, ",") {
		return ';'
	}
	return ','
}
