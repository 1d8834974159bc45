package model

// RelationshipProposal is a directed edge candidate derived from an event.
// Two proposals over the same event and entity pair in opposite directions
// form a reciprocal pair; each is confirmed independently by the reviewer.
type RelationshipProposal struct {
	FromEntityID    string     `json:"from_entity_id"`
	FromEntityType  EntityType `json:"from_entity_type"`
	ToEntityID      string     `json:"to_entity_id"`
	ToEntityType    EntityType `json:"to_entity_type"`
	Label           string     `json:"label"`                      // Forward relationship, human readable
	ReciprocalLabel string     `json:"reciprocal_label,omitempty"` // Reverse edge label; empty for one-way
	SourceEventID   string     `json:"source_event_id"`
	Confidence      float64    `json:"confidence"`
}

// Connection is a persisted directed edge between two approved entities.
// RelationshipType is always derivable from RelationshipLabel by the pure
// lower-case/underscore transform so label->type->label round-trips.
type Connection struct {
	ID                string     `json:"id"`
	FromEntityID      string     `json:"from_entity_id"`
	FromEntityType    EntityType `json:"from_entity_type"`
	ToEntityID        string     `json:"to_entity_id"`
	ToEntityType      EntityType `json:"to_entity_type"`
	RelationshipType  string     `json:"relationship_type"`  // Machine key, lower-case underscored
	RelationshipLabel string     `json:"relationship_label"` // Display string
	SourceEventID     string     `json:"source_event_id"`
	Confidence        float64    `json:"confidence"`
}
