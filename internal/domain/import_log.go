package domain

import "time"

// ImportLogEntry captures row level issues that occur during an import run.
type ImportLogEntry struct {
	ID           int64     `json:"id"`
	FileName     string    `json:"file_name"`
	RowNumber    *int      `json:"row_number,omitempty"`
	ErrorMessage string    `json:"error_message"`
	DryRun       bool      `json:"dry_run"`
	CreatedAt    time.Time `json:"created_at"`
}
