package model

import (
	"fmt"
	"strings"
	"time"
)

// EventRecord represents one observed fact parsed from an input row:
// "Actor did Action to Target at Location".
type EventRecord struct {
	ID               string     `json:"id,omitempty"`                // Assigned on persistence
	Actor            string     `json:"actor"`                       // Who did it (required)
	Action           string     `json:"action"`                      // What they did (required)
	Target           string     `json:"target,omitempty"`            // Who/what it was done to
	Sentence         string     `json:"sentence"`                    // Full natural-language description (required)
	DateReceived     time.Time  `json:"date_received,omitempty"`     // Publication/observation anchor
	RawDateReceived  string     `json:"raw_date_received,omitempty"` // Original text when the date did not parse
	OriginalDatetime string     `json:"original_datetime,omitempty"` // Natural-language relative expression
	ResolvedDatetime *time.Time `json:"resolved_datetime,omitempty"` // Derived absolute timestamp
	Locations        []string   `json:"locations,omitempty"`         // Ordered location mentions
}

// EnsureResolvedDatetime computes the absolute timestamp for the record's
// relative expression on first use and caches it on the record. The resolve
// function may return nil when the expression cannot be interpreted; the
// original expression is always retained for display.
func (r *EventRecord) EnsureResolvedDatetime(resolve func(expr string, anchor time.Time) *time.Time) *time.Time {
	if r.ResolvedDatetime != nil {
		return r.ResolvedDatetime
	}
	if r.OriginalDatetime == "" || resolve == nil {
		return nil
	}
	r.ResolvedDatetime = resolve(r.OriginalDatetime, r.DateReceived)
	return r.ResolvedDatetime
}

// RowError describes a non-fatal problem with a single input row.
type RowError struct {
	Row     int      `json:"row"`               // 1-based data row number
	Missing []string `json:"missing,omitempty"` // Required fields absent from the row
	Reason  string   `json:"reason"`            // Human-readable explanation
}

func (e RowError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("row %d: missing required field(s): %s", e.Row, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}
