package cache

import (
	"strings"
	"testing"

	"github.com/mkarpis/eventkb/internal/model"
)

func found(name string) *model.ResolutionResult {
	return &model.ResolutionResult{
		Found:  true,
		Entity: &model.ResolvedEntity{ID: "wd_Q1", Name: name, Type: model.EntityPerson},
	}
}

func notFound(reason string) *model.ResolutionResult {
	return &model.ResolutionResult{Found: false, Reason: reason}
}

func TestMemory_PutGet(t *testing.T) {
	store := NewMemory()

	if _, ok := store.Get("Barack Obama"); ok {
		t.Fatal("expected miss on empty cache")
	}

	store.Put("Barack Obama", found("Barack Obama"))
	result, ok := store.Get("Barack Obama")
	if !ok || !result.Found || result.Entity.Name != "Barack Obama" {
		t.Fatalf("expected cached hit, got %+v ok=%v", result, ok)
	}
	if store.Len() != 1 {
		t.Errorf("len = %d, want 1", store.Len())
	}
}

func TestMemory_CaseSensitiveKeys(t *testing.T) {
	store := NewMemory()
	store.Put("Paris", found("Paris"))

	if _, ok := store.Get("paris"); ok {
		t.Error("mention keys are exact strings, not case-normalized")
	}
}

func TestMemory_NegativeResults(t *testing.T) {
	store := NewMemory()
	store.Put("Atlantis", notFound("entity not found"))

	result, ok := store.Get("Atlantis")
	if !ok {
		t.Fatal("negative results must be cached")
	}
	if result.Found || result.Reason != "entity not found" {
		t.Errorf("unexpected cached result %+v", result)
	}
}

func TestMemory_Clear(t *testing.T) {
	store := NewMemory()
	store.Put("a", found("a"))
	store.Put("b", found("b"))
	store.Clear()

	if store.Len() != 0 {
		t.Errorf("len after clear = %d", store.Len())
	}
	if _, ok := store.Get("a"); ok {
		t.Error("expected miss after clear")
	}
}

func TestDisk_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	first := NewDisk(dir)
	first.Put("Barack Obama", found("Barack Obama"))
	first.Put("Atlantis", notFound("entity not found"))

	// A fresh instance over the same directory simulates a later session.
	second := NewDisk(dir)
	if second.Len() != 2 {
		t.Fatalf("len = %d, want 2", second.Len())
	}

	result, ok := second.Get("Barack Obama")
	if !ok || !result.Found || result.Entity.ID != "wd_Q1" {
		t.Errorf("expected persisted hit, got %+v ok=%v", result, ok)
	}
	negative, ok := second.Get("Atlantis")
	if !ok || negative.Found {
		t.Errorf("expected persisted negative result, got %+v ok=%v", negative, ok)
	}
}

func TestDisk_MissAndDegradedReads(t *testing.T) {
	store := NewDisk(t.TempDir())
	if _, ok := store.Get("never stored"); ok {
		t.Error("expected miss")
	}

	// A store pointed at a nonexistent directory degrades to misses.
	broken := NewDisk("/nonexistent/path/for/cache")
	if _, ok := broken.Get("x"); ok {
		t.Error("expected miss from unreadable directory")
	}
	if broken.Len() != 0 {
		t.Error("expected zero entries from unreadable directory")
	}
}

func TestDisk_Clear(t *testing.T) {
	store := NewDisk(t.TempDir())
	store.Put("a", found("a"))
	store.Clear()
	if store.Len() != 0 {
		t.Errorf("len after clear = %d", store.Len())
	}
}

func TestLayered_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	NewDisk(dir).Put("Paris", found("Paris"))

	layered := NewLayered(dir)
	if layered.Len() != 0 {
		t.Fatal("memory layer should start empty")
	}

	result, ok := layered.Get("Paris")
	if !ok || result.Entity.Name != "Paris" {
		t.Fatalf("expected disk hit through layered cache, got %+v ok=%v", result, ok)
	}
	if layered.Len() != 1 {
		t.Errorf("disk hit should promote to memory, len = %d", layered.Len())
	}
}

func TestLayered_WritesBothLayers(t *testing.T) {
	dir := t.TempDir()
	layered := NewLayered(dir)
	layered.Put("Paris", found("Paris"))

	if _, ok := NewDisk(dir).Get("Paris"); !ok {
		t.Error("expected write-through to disk")
	}
}

func TestNop(t *testing.T) {
	var store Store = Nop{}
	store.Put("Paris", found("Paris"))
	if _, ok := store.Get("Paris"); ok {
		t.Error("disabled cache must never hit")
	}
	if store.Len() != 0 {
		t.Error("disabled cache must stay empty")
	}
	store.Clear()
}

func TestKey_StableAndFileSafe(t *testing.T) {
	if Key("Barack Obama") != Key("Barack Obama") {
		t.Error("key must be deterministic")
	}
	if Key("Barack Obama") == Key("barack obama") {
		t.Error("distinct mentions must get distinct keys")
	}
	key := Key("A/B\\C mention")
	hash := strings.TrimPrefix(key, "eventkb:v1:")
	if hash == key {
		t.Fatalf("key missing version prefix: %q", key)
	}
	if strings.ContainsAny(hash, "/\\ ") {
		t.Errorf("hash portion must be file-safe, got %q", hash)
	}
}
