package dedup

import (
	"strings"

	"github.com/mkarpis/eventkb/internal/model"
)

// Snapshot is an in-memory view of the existing knowledge base, partitioned
// by entity type. Deduplication never looks across partitions: a person
// mention is never matched against place records even when names collide.
type Snapshot map[model.EntityType][]*model.ResolvedEntity

// NewSnapshot creates an empty snapshot
func NewSnapshot() Snapshot {
	return make(Snapshot)
}

// Add inserts an existing entity into its type partition
func (s Snapshot) Add(entity *model.ResolvedEntity) {
	if entity == nil {
		return
	}
	s[entity.Type] = append(s[entity.Type], entity)
}

// Find returns the entity with the given ID in one type partition
func (s Snapshot) Find(entityType model.EntityType, id string) *model.ResolvedEntity {
	for _, existing := range s[entityType] {
		if existing.ID == id {
			return existing
		}
	}
	return nil
}

// Size returns the total entity count across partitions
func (s Snapshot) Size() int {
	total := 0
	for _, partition := range s {
		total += len(partition)
	}
	return total
}

// FindDuplicate decides whether a candidate already exists in the snapshot.
// Checks run in evidence order until the first hit: case-insensitive exact
// name, candidate name against existing aliases, then exact external-ID
// equality. Most specific evidence wins; only the first match is reported.
// The snapshot is never mutated.
func FindDuplicate(candidate *model.ResolvedEntity, entityType model.EntityType, snapshot Snapshot) *model.DuplicateMatch {
	if candidate == nil || candidate.Name == "" {
		return nil
	}

	partition := snapshot[entityType]

	for _, existing := range partition {
		if strings.EqualFold(existing.Name, candidate.Name) {
			return &model.DuplicateMatch{MatchType: model.MatchExact, Existing: existing}
		}
	}

	for _, existing := range partition {
		if existing.HasAlias(candidate.Name) {
			return &model.DuplicateMatch{MatchType: model.MatchAlias, Existing: existing}
		}
	}

	if candidate.ExternalID != "" {
		for _, existing := range partition {
			if existing.ExternalID != "" && existing.ExternalID == candidate.ExternalID {
				return &model.DuplicateMatch{MatchType: model.MatchExternalID, Existing: existing}
			}
		}
	}

	return nil
}
