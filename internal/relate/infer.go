package relate

import (
	"strings"

	"github.com/mkarpis/eventkb/internal/model"
)

// Rule tables are ordered lists evaluated first-match-wins against the
// lower-cased action text; the priority order is part of the contract, not
// an accident of map iteration.
type rule struct {
	keyword    string
	label      string
	reciprocal string
}

// actorTargetRules label the actor->target edge with a reciprocal for the
// reverse direction.
var actorTargetRules = []rule{
	{"taught", "teacher of", "student of"},
	{"hired", "employer of", "employee of"},
	{"fired", "former employer of", "former employee of"},
	{"founded", "founder of", "founded by"},
	{"married", "spouse of", "spouse of"},
	{"appointed", "appointer of", "appointed by"},
	{"acquired", "acquirer of", "acquired by"},
	{"met", "met with", "met with"},
	{"criticized", "critic of", "criticized by"},
}

// locationRules label the actor->location edge. Directional travel verbs
// get one-way labels; no reciprocal is inferred for locations.
var locationRules = []rule{
	{"departed", "departed from", ""},
	{"left", "departed from", ""},
	{"arrived", "arrived at", ""},
	{"visited", "visited", ""},
	{"traveled", "traveled to", ""},
	{"travelled", "traveled to", ""},
	{"flew", "traveled to", ""},
}

// Fallback labels when no rule matches. The symmetric "related to" pair is
// an accepted low-confidence default: without a stronger signal there is no
// way to infer directionality.
const (
	fallbackLabel    = "related to"
	fallbackLocation = "was at"

	ruleConfidence     = 0.8
	fallbackConfidence = 0.5
)

// InferConnections derives directed relationship proposals from one event
// and the entities its mentions resolved to. A nil actor yields nothing; a
// nil target or location simply skips that edge. The inferrer returns plain
// data grouped by source event; presentation is the caller's concern.
func InferConnections(event *model.EventRecord, actor, target *model.ResolvedEntity, locations []*model.ResolvedEntity) []model.RelationshipProposal {
	if event == nil || actor == nil {
		return nil
	}

	action := strings.ToLower(event.Action)
	var proposals []model.RelationshipProposal

	if target != nil {
		label, reciprocal, matched := matchRule(actorTargetRules, action, fallbackLabel, fallbackLabel)
		proposals = append(proposals, model.RelationshipProposal{
			FromEntityID:    actor.ID,
			FromEntityType:  actor.Type,
			ToEntityID:      target.ID,
			ToEntityType:    target.Type,
			Label:           label,
			ReciprocalLabel: reciprocal,
			SourceEventID:   event.ID,
			Confidence:      confidence(matched),
		})
	}

	for _, location := range locations {
		if location == nil {
			continue
		}
		label, _, matched := matchRule(locationRules, action, fallbackLocation, "")
		proposals = append(proposals, model.RelationshipProposal{
			FromEntityID:   actor.ID,
			FromEntityType: actor.Type,
			ToEntityID:     location.ID,
			ToEntityType:   location.Type,
			Label:          label,
			SourceEventID:  event.ID,
			Confidence:     confidence(matched),
		})
	}

	return proposals
}

// TypeKey derives the machine relationship key from a display label. The
// transform is pure and deterministic so label->key->label round-trips.
func TypeKey(label string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(label)), " ", "_")
}

// LabelFromKey reverses TypeKey for re-display
func LabelFromKey(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}

func matchRule(rules []rule, action, defaultLabel, defaultReciprocal string) (label, reciprocal string, matched bool) {
	for _, r := range rules {
		if strings.Contains(action, r.keyword) {
			return r.label, r.reciprocal, true
		}
	}
	return defaultLabel, defaultReciprocal, false
}

func confidence(matched bool) float64 {
	if matched {
		return ruleConfidence
	}
	return fallbackConfidence
}
