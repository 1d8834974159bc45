package ingest

import (
	"reflect"
	"testing"

	"github.com/mkarpis/eventkb/internal/model"
)

func TestExtractMentions_LiteralContract(t *testing.T) {
	records := []model.EventRecord{
		{
			Actor:    "LeBron James",
			Action:   "scored",
			Target:   "30 points",
			Sentence: "LeBron James scored 30 points",
		},
	}

	// Extraction is literal: "30 points" is a mention too, semantics are
	// the resolver's problem.
	want := []string{"LeBron James", "30 points"}
	if got := ExtractMentions(records); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestExtractMentions_ActorOnly(t *testing.T) {
	records := []model.EventRecord{
		{Actor: "LeBron James", Action: "scored", Sentence: "LeBron James scored"},
	}
	want := []string{"LeBron James"}
	if got := ExtractMentions(records); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestExtractMentions_FirstSeenOrder(t *testing.T) {
	records := []model.EventRecord{
		{Actor: "Ann", Target: "Bob", Locations: []string{"Paris"}},
		{Actor: "Bob", Target: "Ann", Locations: []string{"London", "Paris"}},
	}

	want := []string{"Ann", "Bob", "Paris", "London"}
	if got := ExtractMentions(records); !reflect.DeepEqual(got, want) {
		t.Errorf("expected first-seen order %v, got %v", want, got)
	}
}

func TestExtractMentions_SkipsEmpty(t *testing.T) {
	records := []model.EventRecord{
		{Actor: "  Ann  ", Target: "   ", Locations: []string{""}},
	}
	want := []string{"Ann"}
	if got := ExtractMentions(records); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestExtractMentions_CaseSensitiveUnique(t *testing.T) {
	records := []model.EventRecord{
		{Actor: "paris"},
		{Actor: "Paris"},
	}
	want := []string{"paris", "Paris"}
	if got := ExtractMentions(records); !reflect.DeepEqual(got, want) {
		t.Errorf("uniqueness is on the literal string: expected %v, got %v", want, got)
	}
}
