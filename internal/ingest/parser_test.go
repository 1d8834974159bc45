package ingest

import (
	"reflect"
	"strings"
	"testing"
)

const sampleCSV = `Actor,Action,Target,Sentence,Date Received,Datetimes,Locations
LeBron James,scored,30 points,LeBron James scored 30 points,2024-01-10,last night,
"Smith, John",visited,,"Smith, John visited the capital",2024-01-10,yesterday,"Paris, France"
`

func TestParser_BasicParse(t *testing.T) {
	result, err := NewParser().Parse(sampleCSV)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(result.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(result.Records))
	}
	if len(result.Errors) != 0 {
		t.Errorf("expected no row errors, got %v", result.Errors)
	}

	first := result.Records[0]
	if first.Actor != "LeBron James" || first.Action != "scored" || first.Target != "30 points" {
		t.Errorf("unexpected first record: %+v", first)
	}
	if first.OriginalDatetime != "last night" {
		t.Errorf("expected datetime 'last night', got %q", first.OriginalDatetime)
	}
	if first.DateReceived.IsZero() {
		t.Error("expected date received to parse")
	}
}

func TestParser_QuotedFields(t *testing.T) {
	result, err := NewParser().Parse(sampleCSV)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	second := result.Records[1]
	if second.Actor != "Smith, John" {
		t.Errorf("expected quoted field with comma to stay one field, got %q", second.Actor)
	}
	if want := []string{"Paris", "France"}; !reflect.DeepEqual(second.Locations, want) {
		t.Errorf("expected locations %v, got %v", want, second.Locations)
	}
}

func TestParser_EscapedQuote(t *testing.T) {
	csv := "Actor,Action,Target,Sentence,Datetime\n" +
		`Ann,"said ""hello""",Bob,"Ann said ""hello"" to Bob",today` + "\n"

	result, err := NewParser().Parse(csv)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := result.Records[0].Action; got != `said "hello"` {
		t.Errorf(`expected escaped quote to parse as one ", got %q`, got)
	}
}

func TestParser_Idempotent(t *testing.T) {
	first, err := NewParser().Parse(sampleCSV)
	if err != nil {
		t.Fatalf("first parse failed: %v", err)
	}
	second, err := NewParser().Parse(sampleCSV)
	if err != nil {
		t.Fatalf("second parse failed: %v", err)
	}
	if !reflect.DeepEqual(first.Records, second.Records) {
		t.Error("expected identical records from identical input")
	}
}

func TestParser_MissingColumn(t *testing.T) {
	csv := "Actor,Action,Sentence\nAnn,waved,Ann waved\n"
	_, err := NewParser().Parse(csv)
	if err == nil {
		t.Fatal("expected error for missing columns")
	}
	if !strings.Contains(err.Error(), "target") || !strings.Contains(err.Error(), "datetime") {
		t.Errorf("expected missing columns named, got %v", err)
	}
}

func TestParser_DatetimeColumnAliases(t *testing.T) {
	for _, header := range []string{"Datetime", "Datetimes", "DATETIMES"} {
		t.Run(header, func(t *testing.T) {
			csv := "Actor,Action,Target,Sentence," + header + "\nAnn,waved,Bob,Ann waved at Bob,yesterday\n"
			result, err := NewParser().Parse(csv)
			if err != nil {
				t.Fatalf("expected header %q accepted, got %v", header, err)
			}
			if result.Records[0].OriginalDatetime != "yesterday" {
				t.Errorf("expected datetime field populated, got %q", result.Records[0].OriginalDatetime)
			}
		})
	}
}

func TestParser_MissingRequiredFields(t *testing.T) {
	csv := "Actor,Action,Target,Sentence,Datetime\n" +
		",waved,Bob,,yesterday\n" +
		"Ann,nodded,Bob,Ann nodded at Bob,today\n"

	result, err := NewParser().Parse(csv)
	if err != nil {
		t.Fatalf("expected partial success, got %v", err)
	}
	if len(result.Records) != 1 {
		t.Fatalf("expected 1 surviving record, got %d", len(result.Records))
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 row error, got %d", len(result.Errors))
	}

	rowErr := result.Errors[0]
	if rowErr.Row != 1 {
		t.Errorf("expected error on data row 1, got %d", rowErr.Row)
	}
	if want := []string{"actor", "sentence"}; !reflect.DeepEqual(rowErr.Missing, want) {
		t.Errorf("expected missing fields %v, got %v", want, rowErr.Missing)
	}
}

func TestParser_FieldCountMismatch(t *testing.T) {
	csv := "Actor,Action,Target,Sentence,Datetime\n" +
		"Ann,waved\n" +
		"Ann,nodded,Bob,Ann nodded at Bob,today\n"

	result, err := NewParser().Parse(csv)
	if err != nil {
		t.Fatalf("expected partial success, got %v", err)
	}
	if len(result.Records) != 1 {
		t.Fatalf("expected mismatched row rejected, got %d records", len(result.Records))
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0].Reason, "fields") {
		t.Errorf("expected field-count error, got %v", result.Errors)
	}
}

func TestParser_MalformedDateKeptWithWarning(t *testing.T) {
	csv := "Actor,Action,Target,Sentence,Date Received,Datetime\n" +
		"Ann,waved,Bob,Ann waved at Bob,sometime in spring,yesterday\n"

	result, err := NewParser().Parse(csv)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	record := result.Records[0]
	if record.RawDateReceived != "sometime in spring" {
		t.Errorf("expected raw date kept, got %q", record.RawDateReceived)
	}
	if len(result.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %d", len(result.Warnings))
	}
}

func TestParser_NoValidRows(t *testing.T) {
	csv := "Actor,Action,Target,Sentence,Datetime\n,,,-,\n"
	if _, err := NewParser().Parse(csv); err == nil {
		t.Fatal("expected parse to fail when zero valid rows remain")
	}

	if _, err := NewParser().Parse("   "); err == nil {
		t.Fatal("expected parse to fail on empty input")
	}
}
