package resolve

import (
	"strings"

	"github.com/mkarpis/eventkb/internal/model"
)

// Type inference joins every classification label the source returned and
// applies keyword tiers in priority order. Person indicators are checked
// first: an entity that is both a human and the head of a government body
// must resolve to person, never organization. First matching tier wins.
var typeTiers = []struct {
	entityType model.EntityType
	indicators []string
}{
	{model.EntityPerson, []string{
		"human", "person", "politician", "diplomat", "minister",
		"president", "prime minister", "spokesperson", "journalist",
		"athlete", "actor", "musician", "scientist",
	}},
	{model.EntityPlace, []string{
		"city", "country", "state", "capital", "municipality", "region",
		"territory", "building", "university", "office", "town", "village",
		"island", "continent", "mountain", "river", "airport", "stadium",
	}},
	{model.EntityOrganization, []string{
		"organization", "organisation", "company", "government", "ministry",
		"council", "agency", "institution", "association", "league",
		"political party", "club", "team", "committee", "corporation",
		"business", "enterprise", "union",
	}},
}

// InferType maps a set of classification labels to an entity type
func InferType(classifications []string) model.EntityType {
	joined := strings.ToLower(strings.Join(classifications, " "))
	for _, tier := range typeTiers {
		for _, indicator := range tier.indicators {
			if strings.Contains(joined, indicator) {
				return tier.entityType
			}
		}
	}
	return model.EntityUnknown
}
