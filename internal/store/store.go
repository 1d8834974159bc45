package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mkarpis/eventkb/internal/model"
)

// Kind is a logical collection of documents
type Kind string

const (
	KindPeople        Kind = "people"
	KindPlaces        Kind = "places"
	KindOrganizations Kind = "organizations"
	KindEvents        Kind = "events"
	KindConnections   Kind = "connections"
)

// NameMapper translates a logical kind to the sink's stored collection
// name. The mapping is injected so the sink's naming convention stays an
// external concern; the core never hardcodes it.
type NameMapper func(Kind) string

// DefaultNames is the stock mapping: the user-facing "people" kind is
// stored under "persons", everything else under its own name.
func DefaultNames(kind Kind) string {
	if kind == KindPeople {
		return "persons"
	}
	return string(kind)
}

// KindForEntity maps an entity type to its collection kind
func KindForEntity(entityType model.EntityType) (Kind, error) {
	switch entityType {
	case model.EntityPerson:
		return KindPeople, nil
	case model.EntityPlace:
		return KindPlaces, nil
	case model.EntityOrganization:
		return KindOrganizations, nil
	default:
		return "", fmt.Errorf("no collection for entity type %q", entityType)
	}
}

// Document is one stored record with its raw JSON payload
type Document struct {
	ID   string
	Data []byte
}

// Sink is the persistent store the core writes approved data to
type Sink interface {
	Save(ctx context.Context, kind Kind, id string, doc any) error
	LoadAll(ctx context.Context, kind Kind, limit int) ([]Document, error)
	Delete(ctx context.Context, kind Kind, id string) error
	UpdateAliases(ctx context.Context, kind Kind, id string, aliases []string) error
	Close() error
}

// LoadEntities loads and decodes every entity document of one kind
func LoadEntities(ctx context.Context, sink Sink, kind Kind, limit int) ([]*model.ResolvedEntity, error) {
	docs, err := sink.LoadAll(ctx, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}
	entities := make([]*model.ResolvedEntity, 0, len(docs))
	for _, doc := range docs {
		var entity model.ResolvedEntity
		if err := json.Unmarshal(doc.Data, &entity); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", kind, doc.ID, err)
		}
		if entity.ID == "" {
			entity.ID = doc.ID
		}
		entities = append(entities, &entity)
	}
	return entities, nil
}
