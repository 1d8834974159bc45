package resolve

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/mkarpis/eventkb/internal/cache"
	"github.com/mkarpis/eventkb/internal/model"
)

// Attribute keys supplied by a Source. Values are plain strings in a
// parseable encoding; shaping them into typed fields happens here so the
// transport layer stays a dumb client.
const (
	AttrOccupation   = "occupation"
	AttrEmployer     = "employer"
	AttrBirthDate    = "birth_date"   // date or bare year
	AttrCountry      = "country"
	AttrPopulation   = "population"   // integer text
	AttrCoordinates  = "coordinates"  // "Point(lon lat)"
	AttrIndustry     = "industry"
	AttrInception    = "inception"    // date or bare year
	AttrHeadquarters = "headquarters"
)

// Source is the external knowledge source: a name search returning the
// best-ranked candidate identifier, and a detail fetch returning all of the
// entity's type classifications plus its attributes.
type Source interface {
	SearchByName(ctx context.Context, name string) (string, error)
	FetchDetails(ctx context.Context, id string) (*Details, error)
}

// Details is the raw detail record for one external entity
type Details struct {
	Label           string
	Description     string
	Classifications []string // May contain several simultaneous classifications
	Attributes      map[string]string
}

var externalIDPattern = regexp.MustCompile(`^Q\d+$`)

// ValidExternalID reports whether id has the knowledge source's identifier
// shape. Checked before any network call so malformed operator input is
// rejected synchronously.
func ValidExternalID(id string) bool {
	return externalIDPattern.MatchString(id)
}

// Resolver maps mention strings to typed entity records, caching by the
// exact mention string for the lifetime of the session.
type Resolver struct {
	source Source
	cache  cache.Store
}

// NewResolver creates a resolver backed by the given source and cache
func NewResolver(source Source, store cache.Store) *Resolver {
	if store == nil {
		store = cache.NewMemory()
	}
	return &Resolver{source: source, cache: store}
}

// Resolve looks a mention up against the knowledge source. A cache hit
// returns the previous outcome without an external call, whether it was a
// find or a miss; one mention's failure never aborts its siblings.
func (r *Resolver) Resolve(ctx context.Context, mention string) *model.ResolutionResult {
	if result, found := r.cache.Get(mention); found {
		return result
	}
	result := r.lookup(ctx, mention)
	r.cache.Put(mention, result)
	return result
}

// ResolveByID resolves an explicit external identifier supplied by the
// reviewer for a mention that failed automatic resolution. The resulting
// entity is shaped exactly like the mention-driven path so the rest of the
// pipeline cannot tell the two apart. The passed ID is validated before any
// network call; network failures come back as a not-found result, not an
// error.
func (r *Resolver) ResolveByID(ctx context.Context, externalID, originalMention string) (*model.ResolutionResult, error) {
	if !ValidExternalID(externalID) {
		return nil, fmt.Errorf("invalid external ID %q: expected the form Q12345", externalID)
	}

	details, err := r.source.FetchDetails(ctx, externalID)
	if err != nil {
		return notFound(fmt.Sprintf("fetch %s: %v", externalID, err)), nil
	}
	result := r.shape(externalID, details, originalMention)
	// Later automatic lookups of the same mention honor the manual mapping.
	if result.Found {
		r.cache.Put(originalMention, result)
	}
	return result, nil
}

// CacheSize returns the number of cached mentions
func (r *Resolver) CacheSize() int {
	return r.cache.Len()
}

// lookup is the two-phase uncached resolution: search for the best-ranked
// candidate, then fetch its full detail record.
func (r *Resolver) lookup(ctx context.Context, mention string) *model.ResolutionResult {
	id, err := r.source.SearchByName(ctx, mention)
	if err != nil {
		return notFound(fmt.Sprintf("search %q: %v", mention, err))
	}
	if id == "" {
		return notFound(fmt.Sprintf("no match for %q", mention))
	}

	details, err := r.source.FetchDetails(ctx, id)
	if err != nil {
		return notFound(fmt.Sprintf("fetch %s: %v", id, err))
	}
	return r.shape(id, details, mention)
}

// shape builds the typed entity record from a detail response
func (r *Resolver) shape(externalID string, details *Details, mention string) *model.ResolutionResult {
	name := details.Label
	if name == "" {
		name = mention
	}

	entityType := InferType(details.Classifications)
	entity := &model.ResolvedEntity{
		ID:          entityID(externalID, entityType, name),
		Name:        name,
		Type:        entityType,
		ExternalID:  externalID,
		Description: details.Description,
	}
	if len(details.Classifications) > 0 {
		entity.Category = details.Classifications[0]
	}
	entity.AddAlias(mention)
	populateAttributes(entity, details.Attributes)

	return &model.ResolutionResult{
		Found:      true,
		Entity:     entity,
		InstanceOf: details.Classifications,
	}
}

// populateAttributes fills the type-specific attribute bag from whatever
// fields the source supplied. Unknown-typed entities carry no bag.
func populateAttributes(entity *model.ResolvedEntity, attrs map[string]string) {
	if len(attrs) == 0 {
		return
	}
	switch entity.Type {
	case model.EntityPerson:
		entity.Person = &model.PersonAttrs{
			Occupation: attrs[AttrOccupation],
			Employer:   attrs[AttrEmployer],
			BirthYear:  yearOf(attrs[AttrBirthDate]),
		}
	case model.EntityPlace:
		place := &model.PlaceAttrs{Country: attrs[AttrCountry]}
		if pop, err := strconv.ParseInt(attrs[AttrPopulation], 10, 64); err == nil {
			place.Population = pop
		}
		if lat, lon, ok := ParsePoint(attrs[AttrCoordinates]); ok {
			place.Latitude = lat
			place.Longitude = lon
			place.HasCoords = true
		}
		entity.Place = place
	case model.EntityOrganization:
		entity.Organization = &model.OrganizationAttrs{
			Industry:    attrs[AttrIndustry],
			FoundedYear: yearOf(attrs[AttrInception]),
			Location:    attrs[AttrHeadquarters],
		}
	}
}

// ParsePoint parses a "Point(lon lat)" textual coordinate encoding
func ParsePoint(raw string) (lat, lon float64, ok bool) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "Point(") || !strings.HasSuffix(raw, ")") {
		return 0, 0, false
	}
	parts := strings.Fields(raw[len("Point(") : len(raw)-1])
	if len(parts) != 2 {
		return 0, 0, false
	}
	lon, errLon := strconv.ParseFloat(parts[0], 64)
	lat, errLat := strconv.ParseFloat(parts[1], 64)
	if errLon != nil || errLat != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

// entityID derives a stable identifier: deterministic from the external ID
// when present, otherwise a generated fallback combining type, normalized
// name, and a uniqueness token.
func entityID(externalID string, entityType model.EntityType, name string) string {
	if externalID != "" {
		return "wd_" + externalID
	}
	token := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("%s_%s_%s", entityType, normalizeName(name), token)
}

func normalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('_')
		}
	}
	return b.String()
}

// yearOf reduces a date-like string to its year, tolerating bare years
func yearOf(raw string) int {
	raw = strings.TrimSpace(raw)
	if len(raw) < 4 {
		return 0
	}
	year, err := strconv.Atoi(raw[:4])
	if err != nil {
		return 0
	}
	return year
}

func notFound(reason string) *model.ResolutionResult {
	return &model.ResolutionResult{Found: false, Reason: reason}
}
