package review

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mkarpis/eventkb/internal/dedup"
	"github.com/mkarpis/eventkb/internal/model"
	"github.com/mkarpis/eventkb/internal/store"
)

// Transition errors callers branch on
var (
	ErrItemNotFound = errors.New("approval item not found")
	ErrNotPending   = errors.New("item is no longer pending")
	ErrNoCandidate  = errors.New("item has no resolved candidate")
	ErrUnknownType  = errors.New("candidate type is unknown")
	ErrHasCandidate = errors.New("item already has a resolved candidate")
)

// Resolver is the manual-override resolution dependency
type Resolver interface {
	ResolveByID(ctx context.Context, externalID, originalMention string) (*model.ResolutionResult, error)
}

// Candidate seeds one reviewable resolution outcome
type Candidate struct {
	Entity    *model.ResolvedEntity
	Mention   string
	Duplicate *model.DuplicateMatch
}

// Unresolved seeds one review item for a mention that did not resolve
type Unresolved struct {
	Mention string
	Reason  string
}

// Queue is the human review queue: a finite-state collection of approval
// items. Every transition out of pending is terminal, and transitions are
// serialized per queue so concurrent dual decisions on one item fail with
// ErrNotPending instead of corrupting state.
type Queue struct {
	mu       sync.Mutex
	items    []*model.ApprovalItem
	index    map[string]*model.ApprovalItem
	sink     store.Sink
	resolver Resolver
	snapshot dedup.Snapshot
}

// NewQueue creates an approval queue writing through the given sink
func NewQueue(sink store.Sink, resolver Resolver, snapshot dedup.Snapshot) *Queue {
	if snapshot == nil {
		snapshot = dedup.NewSnapshot()
	}
	return &Queue{
		index:    make(map[string]*model.ApprovalItem),
		sink:     sink,
		resolver: resolver,
		snapshot: snapshot,
	}
}

// Initialize builds one pending item per resolved candidate and one per
// unresolved mention, preserving input order.
func (q *Queue) Initialize(candidates []Candidate, unresolved []Unresolved) {
	q.mu.Lock()
	defer q.mu.Unlock()

	add := func(item *model.ApprovalItem) {
		item.ID = fmt.Sprintf("item_%d", len(q.items)+1)
		item.Status = model.StatusPending
		q.items = append(q.items, item)
		q.index[item.ID] = item
	}

	for _, c := range candidates {
		add(&model.ApprovalItem{
			Candidate:       c.Entity,
			OriginalMention: c.Mention,
			Duplicate:       c.Duplicate,
		})
	}
	for _, u := range unresolved {
		add(&model.ApprovalItem{
			OriginalMention: u.Mention,
			Reason:          u.Reason,
		})
	}
}

// Approve persists the item's candidate to the knowledge base and marks the
// item approved. On a sink failure the item stays pending so the operator
// can retry; nothing is written twice for an already-decided item.
func (q *Queue) Approve(ctx context.Context, itemID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.approveLocked(ctx, itemID)
}

func (q *Queue) approveLocked(ctx context.Context, itemID string) error {
	item, err := q.pendingLocked(itemID)
	if err != nil {
		return err
	}
	if item.Candidate == nil {
		return fmt.Errorf("%w: %q", ErrNoCandidate, item.OriginalMention)
	}
	kind, err := store.KindForEntity(item.Candidate.Type)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrUnknownType, item.OriginalMention)
	}

	if err := q.sink.Save(ctx, kind, item.Candidate.ID, item.Candidate); err != nil {
		return fmt.Errorf("save %q: %w", item.Candidate.Name, err)
	}
	item.Status = model.StatusApproved
	// Approved entities join the snapshot so later merges and duplicate
	// checks in the same session can see them.
	q.snapshot.Add(item.Candidate)
	return nil
}

// Reject discards the item locally with no external side effect
func (q *Queue) Reject(itemID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.rejectLocked(itemID)
}

func (q *Queue) rejectLocked(itemID string) error {
	item, err := q.pendingLocked(itemID)
	if err != nil {
		return err
	}
	item.Status = model.StatusRejected
	return nil
}

// MapToExternalID re-resolves an unresolved item through the reviewer's
// explicit external identifier and swaps in the new candidate. The item
// stays pending until separately approved.
func (q *Queue) MapToExternalID(ctx context.Context, itemID, externalID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	item, err := q.pendingLocked(itemID)
	if err != nil {
		return err
	}
	if item.Candidate != nil && item.Candidate.Type != model.EntityUnknown {
		return fmt.Errorf("%w: %q resolved as %s", ErrHasCandidate, item.OriginalMention, item.Candidate.Type)
	}

	result, err := q.resolver.ResolveByID(ctx, externalID, item.OriginalMention)
	if err != nil {
		return err
	}
	if !result.Found {
		return fmt.Errorf("external ID %s: %s", externalID, result.Reason)
	}

	item.Candidate = result.Entity
	item.Reason = ""
	item.Duplicate = dedup.FindDuplicate(result.Entity, result.Entity.Type, q.snapshot)
	return nil
}

// MergeWithExisting records the item's mention as an alias of an existing
// entity and marks the item merged. Adding an alias that is already present
// is a no-op; a sink failure rolls the alias back and leaves the item
// pending.
func (q *Queue) MergeWithExisting(ctx context.Context, itemID, existingID string, existingType model.EntityType) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	item, err := q.pendingLocked(itemID)
	if err != nil {
		return err
	}
	existing := q.snapshot.Find(existingType, existingID)
	if existing == nil {
		return fmt.Errorf("existing entity %s/%s not found", existingType, existingID)
	}
	kind, err := store.KindForEntity(existingType)
	if err != nil {
		return err
	}

	appended := existing.AddAlias(item.OriginalMention)
	if err := q.sink.UpdateAliases(ctx, kind, existing.ID, existing.Aliases); err != nil {
		if appended {
			existing.Aliases = existing.Aliases[:len(existing.Aliases)-1]
		}
		return fmt.Errorf("update %q aliases: %w", existing.Name, err)
	}

	item.Status = model.StatusMerged
	item.MergedInto = existing
	return nil
}

// ApproveAll approves every pending item that has a resolved candidate.
// Items are processed independently; one failure never blocks the rest.
func (q *Queue) ApproveAll(ctx context.Context) model.BulkResult {
	q.mu.Lock()
	defer q.mu.Unlock()

	var result model.BulkResult
	for _, item := range q.items {
		if item.Status != model.StatusPending || item.Candidate == nil {
			continue
		}
		if err := q.approveLocked(ctx, item.ID); err != nil {
			result.Failed++
			result.Failures = append(result.Failures, model.BulkFailure{
				ItemID: item.ID, Mention: item.OriginalMention, Err: err.Error(),
			})
			continue
		}
		result.Succeeded++
	}
	return result
}

// RejectAll rejects every pending item
func (q *Queue) RejectAll() model.BulkResult {
	q.mu.Lock()
	defer q.mu.Unlock()

	var result model.BulkResult
	for _, item := range q.items {
		if item.Status != model.StatusPending {
			continue
		}
		if err := q.rejectLocked(item.ID); err != nil {
			result.Failed++
			result.Failures = append(result.Failures, model.BulkFailure{
				ItemID: item.ID, Mention: item.OriginalMention, Err: err.Error(),
			})
			continue
		}
		result.Succeeded++
	}
	return result
}

// Stats returns the per-status counts; they always sum to the item total
func (q *Queue) Stats() model.QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()

	var stats model.QueueStats
	for _, item := range q.items {
		switch item.Status {
		case model.StatusPending:
			stats.Pending++
		case model.StatusApproved:
			stats.Approved++
		case model.StatusRejected:
			stats.Rejected++
		case model.StatusMerged:
			stats.Merged++
		}
	}
	return stats
}

// Items returns the queue's items in initialization order
func (q *Queue) Items() []*model.ApprovalItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]*model.ApprovalItem(nil), q.items...)
}

// Item returns one item by ID
func (q *Queue) Item(itemID string) (*model.ApprovalItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	item, ok := q.index[itemID]
	return item, ok
}

// Snapshot exposes the knowledge-base view the queue merges against
func (q *Queue) Snapshot() dedup.Snapshot {
	return q.snapshot
}

// pendingLocked fetches an item and enforces the pending precondition
func (q *Queue) pendingLocked(itemID string) (*model.ApprovalItem, error) {
	item, ok := q.index[itemID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	if item.Status != model.StatusPending {
		return nil, fmt.Errorf("%w: %s is already %s", ErrNotPending, itemID, item.Status)
	}
	return item, nil
}
