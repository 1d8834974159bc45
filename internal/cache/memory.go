package cache

import (
	gocache "github.com/patrickmn/go-cache"

	"github.com/mkarpis/eventkb/internal/model"
)

// Memory is the in-process resolution cache. Entries never expire.
type Memory struct {
	cache *gocache.Cache
}

// NewMemory creates a new in-memory resolution cache
func NewMemory() *Memory {
	return &Memory{
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

// Get returns the cached result for a mention, if any
func (m *Memory) Get(mention string) (*model.ResolutionResult, bool) {
	if val, found := m.cache.Get(mention); found {
		return val.(*model.ResolutionResult), true
	}
	return nil, false
}

// Put stores a resolution result for a mention
func (m *Memory) Put(mention string, result *model.ResolutionResult) {
	m.cache.Set(mention, result, gocache.NoExpiration)
}

// Len returns the number of cached mentions
func (m *Memory) Len() int {
	return m.cache.ItemCount()
}

// Clear removes all cached results
func (m *Memory) Clear() {
	m.cache.Flush()
}
