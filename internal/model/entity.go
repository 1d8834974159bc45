package model

import "strings"

// EntityType classifies a resolved entity
type EntityType string

const (
	EntityPerson       EntityType = "person"
	EntityPlace        EntityType = "place"
	EntityOrganization EntityType = "organization"
	EntityUnknown      EntityType = "unknown"
)

// ResolvedEntity is a typed knowledge-base candidate produced by resolution.
// Exactly one of Person/Place/Organization is populated, matching Type; an
// unknown-typed entity carries no attribute bag.
type ResolvedEntity struct {
	ID          string     `json:"id"`                    // Deterministic from ExternalID when present
	Name        string     `json:"name"`                  // Canonical display name
	Aliases     []string   `json:"aliases,omitempty"`     // No case-insensitive duplicates
	Type        EntityType `json:"type"`                  // person, place, organization, unknown
	ExternalID  string     `json:"external_id,omitempty"` // Knowledge-source identifier
	Description string     `json:"description,omitempty"` // Short description from the source
	Category    string     `json:"category,omitempty"`    // First type classification label

	Person       *PersonAttrs       `json:"person,omitempty"`
	Place        *PlaceAttrs        `json:"place,omitempty"`
	Organization *OrganizationAttrs `json:"organization,omitempty"`
}

// PersonAttrs holds person-specific attributes
type PersonAttrs struct {
	Occupation string `json:"occupation,omitempty"`
	Employer   string `json:"employer,omitempty"`
	BirthYear  int    `json:"birth_year,omitempty"`
}

// PlaceAttrs holds place-specific attributes
type PlaceAttrs struct {
	Country    string  `json:"country,omitempty"`
	Population int64   `json:"population,omitempty"`
	Latitude   float64 `json:"latitude,omitempty"`
	Longitude  float64 `json:"longitude,omitempty"`
	HasCoords  bool    `json:"has_coords,omitempty"`
}

// OrganizationAttrs holds organization-specific attributes
type OrganizationAttrs struct {
	Industry    string `json:"industry,omitempty"`
	FoundedYear int    `json:"founded_year,omitempty"`
	Location    string `json:"location,omitempty"`
}

// HasAlias reports whether name already appears in the alias set,
// case-insensitively.
func (e *ResolvedEntity) HasAlias(name string) bool {
	for _, a := range e.Aliases {
		if strings.EqualFold(a, name) {
			return true
		}
	}
	return false
}

// AddAlias appends alias to the entity's alias set unless it duplicates the
// canonical name or an existing alias case-insensitively. Returns true when
// the set changed.
func (e *ResolvedEntity) AddAlias(alias string) bool {
	alias = strings.TrimSpace(alias)
	if alias == "" || strings.EqualFold(alias, e.Name) || e.HasAlias(alias) {
		return false
	}
	e.Aliases = append(e.Aliases, alias)
	return true
}

// MatchType classifies the evidence behind a duplicate match
type MatchType string

const (
	MatchExact      MatchType = "exact"       // Case-insensitive canonical name match
	MatchAlias      MatchType = "alias"       // Candidate name matched an existing alias
	MatchExternalID MatchType = "external-id" // Exact external identifier equality
)

// DuplicateMatch links a candidate to an existing knowledge-base entity.
// Existing is a reference into the snapshot, never a copy the caller owns.
type DuplicateMatch struct {
	MatchType MatchType       `json:"match_type"`
	Existing  *ResolvedEntity `json:"existing"`
}

// ResolutionResult is the outcome of resolving one mention against the
// external knowledge source.
type ResolutionResult struct {
	Found      bool            `json:"found"`
	Entity     *ResolvedEntity `json:"entity,omitempty"`
	InstanceOf []string        `json:"instance_of,omitempty"` // All type classification labels
	Reason     string          `json:"reason,omitempty"`      // Why resolution failed
}
