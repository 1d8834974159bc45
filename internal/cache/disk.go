package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/mkarpis/eventkb/internal/model"
)

// Disk persists resolution results as JSON files so a later session can
// reuse them. Read/write failures degrade to cache misses; the resolver
// simply queries the source again.
type Disk struct {
	dir string
}

// NewDisk creates a disk-backed resolution cache rooted at dir
func NewDisk(dir string) *Disk {
	return &Disk{dir: dir}
}

type diskEntry struct {
	Mention string                  `json:"mention"`
	Result  *model.ResolutionResult `json:"result"`
}

// Get loads the cached result for a mention from disk, if present
func (d *Disk) Get(mention string) (*model.ResolutionResult, bool) {
	data, err := os.ReadFile(d.path(mention))
	if err != nil {
		return nil, false
	}
	var entry diskEntry
	if err := json.Unmarshal(data, &entry); err != nil || entry.Mention != mention {
		return nil, false
	}
	return entry.Result, true
}

// Put writes the result for a mention to disk
func (d *Disk) Put(mention string, result *model.ResolutionResult) {
	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return
	}
	data, err := json.Marshal(diskEntry{Mention: mention, Result: result})
	if err != nil {
		return
	}
	_ = os.WriteFile(d.path(mention), data, 0644)
}

// Len counts the cached entries on disk
func (d *Disk) Len() int {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return 0
	}
	count := 0
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".json") {
			count++
		}
	}
	return count
}

// Clear removes all cached entries from disk
func (d *Disk) Clear() {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".json") {
			_ = os.Remove(filepath.Join(d.dir, entry.Name()))
		}
	}
}

func (d *Disk) path(mention string) string {
	// Colons in the key prefix are not portable filename characters.
	name := strings.ReplaceAll(Key(mention), ":", "-")
	return filepath.Join(d.dir, name+".json")
}
