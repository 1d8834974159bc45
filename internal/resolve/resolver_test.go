package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/mkarpis/eventkb/internal/model"
)

// fakeSource is an in-memory knowledge source
type fakeSource struct {
	searchHits   map[string]string   // name -> id
	details      map[string]*Details // id -> details
	failing      bool
	searchCalls  int
	detailsCalls int
}

func (f *fakeSource) SearchByName(ctx context.Context, name string) (string, error) {
	f.searchCalls++
	if f.failing {
		return "", errors.New("network down")
	}
	return f.searchHits[name], nil
}

func (f *fakeSource) FetchDetails(ctx context.Context, id string) (*Details, error) {
	f.detailsCalls++
	if f.failing {
		return nil, errors.New("network down")
	}
	details, ok := f.details[id]
	if !ok {
		return nil, errors.New("entity not found")
	}
	return details, nil
}

func parisSource() *fakeSource {
	return &fakeSource{
		searchHits: map[string]string{"Paris": "Q90", "LeBron James": "Q36159"},
		details: map[string]*Details{
			"Q90": {
				Label:           "Paris",
				Description:     "capital of France",
				Classifications: []string{"city", "capital"},
				Attributes: map[string]string{
					AttrCountry:     "France",
					AttrPopulation:  "2102650",
					AttrCoordinates: "Point(2.3514 48.8575)",
				},
			},
			"Q36159": {
				Label:           "LeBron James",
				Description:     "American basketball player",
				Classifications: []string{"human"},
				Attributes: map[string]string{
					AttrOccupation: "basketball player",
					AttrBirthDate:  "1984-12-30",
				},
			},
		},
	}
}

func TestResolver_ResolvePlace(t *testing.T) {
	resolver := NewResolver(parisSource(), nil)

	result := resolver.Resolve(context.Background(), "Paris")
	if !result.Found {
		t.Fatalf("expected find, got reason %q", result.Reason)
	}

	entity := result.Entity
	if entity.Type != model.EntityPlace {
		t.Errorf("expected place, got %s", entity.Type)
	}
	if entity.Category != "city" {
		t.Errorf("expected category from first classification, got %q", entity.Category)
	}
	if entity.ID != "wd_Q90" {
		t.Errorf("expected deterministic ID from external ID, got %q", entity.ID)
	}
	if entity.Place == nil {
		t.Fatal("expected place attribute bag")
	}
	if entity.Place.Country != "France" || entity.Place.Population != 2102650 {
		t.Errorf("unexpected place attributes: %+v", entity.Place)
	}
	if !entity.Place.HasCoords || entity.Place.Latitude != 48.8575 || entity.Place.Longitude != 2.3514 {
		t.Errorf("expected coordinates parsed from Point encoding, got %+v", entity.Place)
	}
}

func TestResolver_PersonAttributes(t *testing.T) {
	resolver := NewResolver(parisSource(), nil)

	result := resolver.Resolve(context.Background(), "LeBron James")
	if !result.Found {
		t.Fatalf("expected find, got %q", result.Reason)
	}
	if result.Entity.Type != model.EntityPerson {
		t.Errorf("expected person, got %s", result.Entity.Type)
	}
	if result.Entity.Person == nil || result.Entity.Person.BirthYear != 1984 {
		t.Errorf("expected birth year reduced to 1984, got %+v", result.Entity.Person)
	}
}

func TestResolver_CacheIsAuthoritative(t *testing.T) {
	source := parisSource()
	resolver := NewResolver(source, nil)
	ctx := context.Background()

	first := resolver.Resolve(ctx, "Paris")
	if !first.Found {
		t.Fatalf("expected find, got %q", first.Reason)
	}

	// The source now fails; the cached result must come back unchanged.
	source.failing = true
	second := resolver.Resolve(ctx, "Paris")
	if second != first {
		t.Error("expected the cached result, not a re-resolution")
	}
	if source.searchCalls != 1 {
		t.Errorf("expected no second search call, got %d", source.searchCalls)
	}
}

func TestResolver_NegativeCaching(t *testing.T) {
	source := parisSource()
	resolver := NewResolver(source, nil)
	ctx := context.Background()

	first := resolver.Resolve(ctx, "Atlantis")
	if first.Found {
		t.Fatal("expected not found")
	}

	second := resolver.Resolve(ctx, "Atlantis")
	if second != first {
		t.Error("expected cached negative result")
	}
	if source.searchCalls != 1 {
		t.Errorf("expected 1 search call, got %d", source.searchCalls)
	}
}

func TestResolver_ErrorCachedAsNotFound(t *testing.T) {
	source := parisSource()
	source.failing = true
	resolver := NewResolver(source, nil)
	ctx := context.Background()

	result := resolver.Resolve(ctx, "Paris")
	if result.Found {
		t.Fatal("expected failure to surface as not found")
	}
	if result.Reason == "" {
		t.Error("expected a reason for display")
	}

	resolver.Resolve(ctx, "Paris")
	if source.searchCalls != 1 {
		t.Errorf("expected failing lookup cached, got %d search calls", source.searchCalls)
	}
}

func TestResolver_MentionAddedAsAlias(t *testing.T) {
	source := parisSource()
	source.searchHits["paris"] = "Q90"
	resolver := NewResolver(source, nil)

	result := resolver.Resolve(context.Background(), "paris")
	if !result.Found {
		t.Fatal("expected find")
	}
	// The mention matches the canonical name case-insensitively, so no
	// alias is recorded.
	if len(result.Entity.Aliases) != 0 {
		t.Errorf("expected no aliases, got %v", result.Entity.Aliases)
	}

	source.searchHits["the city of light"] = "Q90"
	result = resolver.Resolve(context.Background(), "the city of light")
	if !result.Entity.HasAlias("the city of light") {
		t.Errorf("expected mention kept as alias, got %v", result.Entity.Aliases)
	}
}

func TestResolver_ResolveByID(t *testing.T) {
	source := parisSource()
	resolver := NewResolver(source, nil)
	ctx := context.Background()

	if _, err := resolver.ResolveByID(ctx, "paris", "Paris"); err == nil {
		t.Fatal("expected malformed external ID rejected before any call")
	}
	if source.detailsCalls != 0 {
		t.Errorf("expected no network call for invalid ID, got %d", source.detailsCalls)
	}

	result, err := resolver.ResolveByID(ctx, "Q90", "City of Light")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.Found {
		t.Fatalf("expected find, got %q", result.Reason)
	}
	// Identical shape to the mention-driven path.
	if result.Entity.Type != model.EntityPlace || result.Entity.ID != "wd_Q90" {
		t.Errorf("unexpected entity shape: %+v", result.Entity)
	}
	if !result.Entity.HasAlias("City of Light") {
		t.Errorf("expected mention as alias, got %v", result.Entity.Aliases)
	}

	// The manual mapping now serves automatic lookups of the mention.
	source.failing = true
	cached := resolver.Resolve(ctx, "City of Light")
	if !cached.Found || cached.Entity.ID != "wd_Q90" {
		t.Error("expected manual mapping cached under the mention")
	}
}

func TestResolver_FallbackIDWithoutExternalID(t *testing.T) {
	got := entityID("", model.EntityPerson, "Jane Doe")
	other := entityID("", model.EntityPerson, "Jane Doe")
	if got == other {
		t.Error("expected distinct uniqueness tokens for fallback IDs")
	}
	prefix := "person_jane_doe_"
	if len(got) <= len(prefix) || got[:len(prefix)] != prefix {
		t.Errorf("expected fallback ID to combine type and normalized name, got %q", got)
	}
}
