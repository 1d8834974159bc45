package cache

import "github.com/mkarpis/eventkb/internal/model"

// Layered combines the in-memory cache with a disk layer: reads check
// memory first and promote disk hits, writes go to both.
type Layered struct {
	memory Store
	disk   Store
}

// NewLayered creates a memory-over-disk resolution cache
func NewLayered(diskDir string) *Layered {
	return &Layered{
		memory: NewMemory(),
		disk:   NewDisk(diskDir),
	}
}

// Get checks memory first, then disk, promoting disk hits to memory
func (l *Layered) Get(mention string) (*model.ResolutionResult, bool) {
	if result, found := l.memory.Get(mention); found {
		return result, true
	}
	if result, found := l.disk.Get(mention); found {
		l.memory.Put(mention, result)
		return result, true
	}
	return nil, false
}

// Put stores the result in both layers
func (l *Layered) Put(mention string, result *model.ResolutionResult) {
	l.memory.Put(mention, result)
	l.disk.Put(mention, result)
}

// Len returns the in-memory entry count
func (l *Layered) Len() int {
	return l.memory.Len()
}

// Clear empties both layers
func (l *Layered) Clear() {
	l.memory.Clear()
	l.disk.Clear()
}
