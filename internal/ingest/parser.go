package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mkarpis/eventkb/internal/model"
)

// Column names recognized in the header, matched case-insensitively. The
// datetime column accepts two spellings that normalize to the same field.
const (
	colActor        = "actor"
	colAction       = "action"
	colTarget       = "target"
	colSentence     = "sentence"
	colDateReceived = "date received"
	colDatetime     = "datetime"
	colDatetimes    = "datetimes"
	colLocations    = "locations"
)

// requiredColumns must all be present in the header. The datetime column is
// checked separately because of its spelling alias.
var requiredColumns = []string{colActor, colAction, colTarget, colSentence}

// requiredFields must be non-empty in every data row.
var requiredFields = []string{colActor, colAction, colSentence}

// dateLayouts are tried in order when parsing the date-received column.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// ParseResult is the outcome of parsing one CSV payload. Errors and
// Warnings are per-row and non-fatal; Parse only fails outright when no
// valid row survives.
type ParseResult struct {
	Records  []model.EventRecord
	Errors   []model.RowError
	Warnings []model.RowError
}

// Parser turns raw delimited text into validated event records
type Parser struct{}

// NewParser creates a new event-record parser
func NewParser() *Parser {
	return &Parser{}
}

// Parse splits raw CSV text into a header and data rows, validates both,
// and returns the surviving records in input order. A row missing required
// fields or with a field-count mismatch is recorded as an error without
// aborting the parse; a malformed date is kept as raw text with a warning.
func (p *Parser) Parse(raw string) (*ParseResult, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("empty input")
	}

	reader := csv.NewReader(strings.NewReader(raw))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols, err := indexHeader(header)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{}
	row := 0
	for {
		row++
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			reason := fmt.Sprintf("malformed row: %v", err)
			if errors.Is(err, csv.ErrFieldCount) {
				reason = fmt.Sprintf("expected %d fields, got %d", len(header), len(fields))
			}
			result.Errors = append(result.Errors, model.RowError{Row: row, Reason: reason})
			continue
		}

		record, rowErr, warn := p.buildRecord(cols, fields, row)
		if rowErr != nil {
			result.Errors = append(result.Errors, *rowErr)
			continue
		}
		if warn != nil {
			result.Warnings = append(result.Warnings, *warn)
		}
		result.Records = append(result.Records, *record)
	}

	if len(result.Records) == 0 {
		return nil, fmt.Errorf("no valid rows in input (%d rows rejected)", len(result.Errors))
	}
	return result, nil
}

// buildRecord validates one physical row against the header layout
func (p *Parser) buildRecord(cols map[string]int, fields []string, row int) (*model.EventRecord, *model.RowError, *model.RowError) {
	get := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[idx])
	}

	var missing []string
	for _, name := range requiredFields {
		if get(name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &model.RowError{Row: row, Missing: missing, Reason: "missing required field(s)"}, nil
	}

	record := &model.EventRecord{
		Actor:            get(colActor),
		Action:           get(colAction),
		Target:           get(colTarget),
		Sentence:         get(colSentence),
		OriginalDatetime: get(colDatetime),
		Locations:        SplitLocations(get(colLocations)),
	}

	var warn *model.RowError
	if raw := get(colDateReceived); raw != "" {
		if ts, ok := parseDate(raw); ok {
			record.DateReceived = ts
		} else {
			// Downstream datetime resolution tolerates free text, so a
			// malformed date is kept rather than rejected.
			record.RawDateReceived = raw
			warn = &model.RowError{Row: row, Reason: fmt.Sprintf("unparseable date %q kept as text", raw)}
		}
	}
	return record, nil, warn
}

// indexHeader maps normalized column names to field positions and verifies
// every required column is present.
func indexHeader(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if _, ok := cols[colDatetimes]; ok {
		cols[colDatetime] = cols[colDatetimes]
	}
	if _, ok := cols[colDatetime]; !ok {
		missing = append(missing, colDatetime)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required column(s): %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

// SplitLocations splits a comma-separated location field into trimmed,
// non-empty pieces.
func SplitLocations(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, piece := range strings.Split(raw, ",") {
		if piece = strings.TrimSpace(piece); piece != "" {
			out = append(out, piece)
		}
	}
	return out
}

func parseDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
