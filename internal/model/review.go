package model

// ApprovalStatus is the lifecycle state of a review item. All transitions
// out of pending are terminal.
type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"
	StatusMerged   ApprovalStatus = "merged"
)

// ApprovalItem is one unit of human review: a resolution outcome wrapped
// with its lifecycle state.
type ApprovalItem struct {
	ID              string          `json:"id"`
	Candidate       *ResolvedEntity `json:"candidate,omitempty"` // nil when the mention did not resolve
	OriginalMention string          `json:"original_mention"`
	Status          ApprovalStatus  `json:"status"`
	Duplicate       *DuplicateMatch `json:"duplicate,omitempty"` // Evidence shown to the reviewer
	Reason          string          `json:"reason,omitempty"`    // Why resolution failed, when it did
	MergedInto      *ResolvedEntity `json:"-"`                   // Set when Status is merged
}

// QueueStats is the per-status breakdown of an approval queue.
type QueueStats struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Merged   int `json:"merged"`
}

// Total returns the sum across all statuses.
func (s QueueStats) Total() int {
	return s.Pending + s.Approved + s.Rejected + s.Merged
}

// Accepted returns the count of items that entered the knowledge base.
func (s QueueStats) Accepted() int {
	return s.Approved + s.Merged
}

// BulkFailure records one item's failure during a bulk operation.
type BulkFailure struct {
	ItemID  string `json:"item_id"`
	Mention string `json:"mention"`
	Err     string `json:"error"`
}

// BulkResult aggregates per-item outcomes of a bulk approve/reject. Each
// item is processed independently; one failure never blocks the rest.
type BulkResult struct {
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Failures  []BulkFailure `json:"failures,omitempty"`
}
