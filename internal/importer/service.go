package importer

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ParcMagScene/MAGSAV-sub011/internal/domain"
	"github.com/ParcMagScene/MAGSAV-sub011/internal/repository"
)

var (
	// ErrEmptyFile is returned when the input contains no lines at all.
	ErrEmptyFile = errors.New("file is empty")

	byteOrderMark = []byte{0xEF, 0xBB, 0xBF}
)

// Service runs tabular imports against the store. It is stateless: all
// per-run state lives inside Run.
type Service struct {
	products      repository.ProductRepository
	organizations repository.OrganizationRepository
	interventions repository.InterventionRepository
	logs          repository.ImportLogRepository
	logger        *slog.Logger
}

// NewService creates a new import service. The import log repository may be
// nil, in which case row errors are only reported in the Result.
func NewService(
	products repository.ProductRepository,
	organizations repository.OrganizationRepository,
	interventions repository.InterventionRepository,
	logs repository.ImportLogRepository,
) *Service {
	return &Service{
		products:      products,
		organizations: organizations,
		interventions: interventions,
		logs:          logs,
		logger:        slog.Default(),
	}
}

// Request describes one import invocation. Either Path or Data must be set;
// FileName is used for format detection and error attribution when reading
// from Data. Log and Progress are optional fire-and-forget callbacks,
// invoked synchronously from the importing goroutine.
type Request struct {
	Path     string
	Data     io.Reader
	FileName string
	DryRun   bool
	Aliases  Aliases
	Log      func(line string)
	Progress func(snapshot Progress)
}

// Progress is a point-in-time snapshot of a running import.
type Progress struct {
	TotalRows            int    `json:"totalRows"`
	CurrentRow           int    `json:"currentRow"`
	ProductsCreated      int    `json:"productsCreated"`
	InterventionsCreated int    `json:"interventionsCreated"`
	Errors               int    `json:"errors"`
	Operation            string `json:"operation"`
	Percent              int    `json:"percent"`
}

// RowIssue ties a row level error message to its originating line number.
type RowIssue struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Result is the aggregate outcome of one run.
type Result struct {
	Rows                 int        `json:"rows"`
	ProductsCreated      int        `json:"productsCreated"`
	InterventionsCreated int        `json:"interventionsCreated"`
	Errors               []RowIssue `json:"errors"`
	Log                  []string   `json:"log"`
	DryRun               bool       `json:"dryRun"`
	DurationMS           int64      `json:"durationMs"`
	Summary              string     `json:"summary"`
}

// table is the parsed input: one header token slice plus the tokenized data
// rows in file order.
type table struct {
	header []string
	rows   [][]string
}

// Run imports the file described by req, row by row, isolating row level
// failures. File level failures (unreadable input, empty file, no identity
// column) abort the run and are returned as the error.
func (s *Service) Run(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	result := Result{
		DryRun: req.DryRun,
		Errors: []RowIssue{},
		Log:    []string{},
	}

	aliases := req.Aliases
	if aliases == nil {
		aliases = DefaultAliases()
	}

	fileName := req.FileName
	var payload []byte
	switch {
	case req.Data != nil:
		data, err := io.ReadAll(req.Data)
		if err != nil {
			return result, fmt.Errorf("failed to read input: %w", err)
		}
		payload = data
	case req.Path != "":
		data, err := os.ReadFile(req.Path)
		if err != nil {
			return result, fmt.Errorf("failed to read %s: %w", req.Path, err)
		}
		payload = data
		if fileName == "" {
			fileName = filepath.Base(req.Path)
		}
	default:
		return result, errors.New("path or data reader is required")
	}

	parsed, err := parseTable(fileName, payload)
	if err != nil {
		return result, err
	}

	index, err := ResolveHeaders(parsed.header, aliases)
	if err != nil {
		return result, err
	}

	mode := "import"
	if req.DryRun {
		mode = "simulation"
	}
	s.emitLog(&result, req, fmt.Sprintf("Starting %s of %s: %d data rows, %d columns mapped", mode, fileName, len(parsed.rows), len(index)))
	s.emitProgress(req, Progress{
		TotalRows: len(parsed.rows),
		Operation: "header resolved",
	})

	st := &runState{
		dryRun:   req.DryRun,
		fileName: fileName,
		serials:  make(map[string]int64),
		orgs:     make(map[string]int64),
	}

	total := len(parsed.rows)
	for i, cells := range parsed.rows {
		lineNumber := i + 2 // header is physical line 1
		result.Rows++

		if blankRow(cells) {
			continue
		}

		row, rowErr := DecodeRow(cells, index, lineNumber)
		if rowErr != nil {
			s.recordRowError(ctx, &result, req, st, rowErr.Line, rowErr.Message)
			s.emitRowProgress(req, &result, total, i+1, "row rejected")
			continue
		}

		s.logFieldFallbacks(&result, req, cells, index, row)

		productID, created, err := s.resolveProduct(ctx, st, row)
		if err != nil {
			s.recordRowError(ctx, &result, req, st, lineNumber, err.Error())
			s.emitRowProgress(req, &result, total, i+1, "row failed")
			continue
		}
		if created {
			result.ProductsCreated++
		}

		ownerKind, orgID, err := s.resolveOwner(ctx, st, row)
		if err != nil {
			s.recordRowError(ctx, &result, req, st, lineNumber, err.Error())
			s.emitRowProgress(req, &result, total, i+1, "row failed")
			continue
		}

		if !req.DryRun {
			intervention := domain.Intervention{
				ProductID:      productID,
				Status:         row.Status,
				Fault:          row.Fault,
				Technician:     row.Detector,
				DateIn:         isoPtr(row.DateIn),
				DateOut:        isoPtr(row.DateOut),
				TrackingNumber: row.TrackingNumber,
				OwnerKind:      ownerKind,
				OrganizationID: orgID,
			}
			if _, err := s.interventions.Insert(ctx, intervention); err != nil {
				s.recordRowError(ctx, &result, req, st, lineNumber, err.Error())
				s.emitRowProgress(req, &result, total, i+1, "row failed")
				continue
			}
		}
		result.InterventionsCreated++

		s.emitLog(&result, req, fmt.Sprintf("Line %d: %s intervention recorded for %s", lineNumber, row.Status, describeProduct(row)))
		s.emitRowProgress(req, &result, total, i+1, "row imported")
	}

	result.DurationMS = time.Since(start).Milliseconds()
	result.Summary = buildSummary(result)
	s.emitLog(&result, req, result.Summary)
	s.emitRowProgress(req, &result, total, total, "done")

	return result, nil
}

// parseTable turns the raw payload into a header plus tokenized data rows.
// XLSX workbooks arrive already cellular; everything else is treated as
// delimited text.
func parseTable(fileName string, payload []byte) (table, error) {
	if strings.EqualFold(filepath.Ext(fileName), ".xlsx") {
		return parseXLSX(payload)
	}
	return parseDelimited(payload)
}

func parseDelimited(payload []byte) (table, error) {
	payload = bytes.TrimPrefix(payload, byteOrderMark)

	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(payload))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return table{}, fmt.Errorf("failed to scan input: %w", err)
	}
	if len(lines) == 0 {
		return table{}, ErrEmptyFile
	}

	separator := DetectSeparator(lines[0])
	parsed := table{
		header: Tokenize(lines[0], separator),
		rows:   make([][]string, 0, len(lines)-1),
	}
	for _, line := range lines[1:] {
		parsed.rows = append(parsed.rows, Tokenize(line, separator))
	}

	return parsed, nil
}

func blankRow(cells []string) bool {
	for _, cell := range cells {
		if cell != "" {
			return false
		}
	}
	return true
}

func describeProduct(row CanonicalRow) string {
	name := row.ProductName
	if name == "" {
		name = placeholderName
	}
	if row.SerialNumber != "" {
		return fmt.Sprintf("%s (sn %s)", name, row.SerialNumber)
	}
	return name
}

func buildSummary(result Result) string {
	summary := fmt.Sprintf(
		"Import complete: %d rows read, %d products created, %d interventions created, %d errors",
		result.Rows, result.ProductsCreated, result.InterventionsCreated, len(result.Errors),
	)
	if result.DryRun {
		summary += " (dry-run, nothing written)"
	}
	return summary
}

func isoPtr(iso string) *string {
	if iso == "" {
		return nil
	}
	return &iso
}

// logFieldFallbacks surfaces silently-defaulted cells in the log stream so a
// user can see which raw values were not recognized: unparseable dates left
// empty, and status/situation text that missed the mapping tables.
func (s *Service) logFieldFallbacks(result *Result, req Request, cells []string, index HeaderIndex, row CanonicalRow) {
	if raw := cell(cells, index, FieldDateIn); raw != "" && row.DateIn == "" {
		s.emitLog(result, req, fmt.Sprintf("Line %d: unrecognized entry date %q, left empty", row.Line, raw))
	}
	if raw := cell(cells, index, FieldDateOut); raw != "" && row.DateOut == "" {
		s.emitLog(result, req, fmt.Sprintf("Line %d: unrecognized exit date %q, left empty", row.Line, raw))
	}
	if raw := cell(cells, index, FieldStatus); raw != "" && !statusRecognized(raw) {
		s.emitLog(result, req, fmt.Sprintf("Line %d: unrecognized status %q, defaulting to %s", row.Line, raw, row.Status))
	}
	if raw := cell(cells, index, FieldSituation); raw != "" && !situationRecognized(raw) {
		s.emitLog(result, req, fmt.Sprintf("Line %d: unrecognized situation %q, defaulting to %s", row.Line, raw, row.Situation))
	}
}

// recordRowError appends the error to the result, emits it on the log
// stream, and persists it when an import log repository is wired. Row
// errors never abort the run.
func (s *Service) recordRowError(ctx context.Context, result *Result, req Request, st *runState, line int, message string) {
	result.Errors = append(result.Errors, RowIssue{Line: line, Message: message})
	s.emitLog(result, req, fmt.Sprintf("Line %d: ERROR %s", line, message))

	if s.logs == nil {
		return
	}
	rowNumber := line
	entry := domain.ImportLogEntry{
		FileName:     st.fileName,
		RowNumber:    &rowNumber,
		ErrorMessage: message,
		DryRun:       st.dryRun,
	}
	if err := s.logs.Record(ctx, entry); err != nil {
		s.logger.Warn("failed to persist import log entry", "line", line, "error", err)
	}
}

// emitLog appends a line to the ordered run log and forwards it to the
// caller's sink. Callback panics are swallowed: sinks are fire-and-forget.
func (s *Service) emitLog(result *Result, req Request, line string) {
	result.Log = append(result.Log, line)
	s.logger.Debug(line)
	if req.Log == nil {
		return
	}
	func() {
		defer func() { _ = recover() }()
		req.Log(line)
	}()
}

func (s *Service) emitRowProgress(req Request, result *Result, total, current int, operation string) {
	percent := 100
	if total > 0 {
		percent = current * 100 / total
	}
	s.emitProgress(req, Progress{
		TotalRows:            total,
		CurrentRow:           current,
		ProductsCreated:      result.ProductsCreated,
		InterventionsCreated: result.InterventionsCreated,
		Errors:               len(result.Errors),
		Operation:            operation,
		Percent:              percent,
	})
}

func (s *Service) emitProgress(req Request, snapshot Progress) {
	if req.Progress == nil {
		return
	}
	func() {
		defer func() { _ = recover() }()
		req.Progress(snapshot)
	}()
}
