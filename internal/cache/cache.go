package cache

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/mkarpis/eventkb/internal/model"
)

// Store caches resolution outcomes keyed by the exact mention string (not
// case-normalized). Negative results are cached the same as positive ones
// so a failing lookup is never retried within a session. Entries live for
// the process lifetime with no eviction; acceptable for an interactive
// single-session tool, revisit before embedding in a long-running service.
type Store interface {
	Get(mention string) (*model.ResolutionResult, bool)
	Put(mention string, result *model.ResolutionResult)
	Len() int
	Clear()
}

// Nop is the disabled cache: every lookup misses and nothing is stored.
type Nop struct{}

func (Nop) Get(string) (*model.ResolutionResult, bool) { return nil, false }
func (Nop) Put(string, *model.ResolutionResult)        {}
func (Nop) Len() int                                   { return 0 }
func (Nop) Clear()                                     {}

// Key derives a stable file-safe key from a mention string
func Key(mention string) string {
	hash := sha256.Sum256([]byte(mention))
	return "eventkb:v1:" + hex.EncodeToString(hash[:])
}
