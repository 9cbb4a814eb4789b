package importer

import (
	"fmt"

	"github.com/ParcMagScene/MAGSAV-sub011/internal/domain"
)

// CanonicalRow is the decoded, normalized form of one data line. It only
// lives for the duration of that line's processing.
type CanonicalRow struct {
	Line           int
	ProductName    string
	SerialNumber   string
	Owner          string
	Fault          string
	Status         domain.InterventionStatus
	Situation      domain.Situation
	Detector       string
	DateIn         string // ISO yyyy-MM-dd, empty when absent or unparseable
	DateOut        string // ISO yyyy-MM-dd, empty when absent or unparseable
	TrackingNumber string
	Manufacturer   string
}

// RowError marks a single rejected line. Row errors are isolated: they are
// recorded and the run continues.
type RowError struct {
	Line    int
	Message string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// DecodeRow combines tokenized cells with the header index into a canonical
// row. The only decode-time rejection is a row identifying no product at
// all; every other missing field falls back to its documented default.
func DecodeRow(tokens []string, index HeaderIndex, lineNumber int) (CanonicalRow, *RowError) {
	row := CanonicalRow{
		Line:           lineNumber,
		ProductName:    cell(tokens, index, FieldProductName),
		SerialNumber:   cell(tokens, index, FieldSerialNumber),
		Owner:          cell(tokens, index, FieldOwner),
		Fault:          cell(tokens, index, FieldFault),
		Status:         MapStatus(cell(tokens, index, FieldStatus)),
		Situation:      MapSituation(cell(tokens, index, FieldSituation)),
		Detector:       cell(tokens, index, FieldDetector),
		DateIn:         ParseDate(cell(tokens, index, FieldDateIn)),
		DateOut:        ParseDate(cell(tokens, index, FieldDateOut)),
		TrackingNumber: cell(tokens, index, FieldTrackingNumber),
		Manufacturer:   cell(tokens, index, FieldManufacturer),
	}

	if row.ProductName == "" && row.SerialNumber == "" {
		return CanonicalRow{}, &RowError{
			Line:    lineNumber,
			Message: "product name or serial number required",
		}
	}

	return row, nil
}

// cell reads the raw value for a canonical key, or "" when the column is
// absent from the file or the row is short.
func cell(tokens []string, index HeaderIndex, key string) string {
	col, ok := index[key]
	if !ok || col < 0 || col >= len(tokens) {
		return ""
	}
	return tokens[col]
}
