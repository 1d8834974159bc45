package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/mkarpis/eventkb/internal/cache"
	"github.com/mkarpis/eventkb/internal/dedup"
	"github.com/mkarpis/eventkb/internal/model"
	"github.com/mkarpis/eventkb/internal/relate"
	"github.com/mkarpis/eventkb/internal/resolve"
	"github.com/mkarpis/eventkb/internal/review"
	"github.com/mkarpis/eventkb/internal/store"
	"github.com/mkarpis/eventkb/internal/timeparse"
	"github.com/mkarpis/eventkb/internal/worker"
)

// Pipeline wires the curation flow together: mention resolution against the
// knowledge source, deduplication against the stored knowledge base, the
// approval queue, and persistence of approved data.
type Pipeline struct {
	resolver  *resolve.Resolver
	batcher   *worker.Batcher
	sink      store.Sink
	batchSize int
}

// New creates a pipeline from configuration, building the resolution cache
// the config asks for (layered over disk when persistence is on). The batch
// size is normalized here so every consumer sees the same effective value.
func New(cfg *model.Config, source resolve.Source, sink store.Sink) *Pipeline {
	var resultCache cache.Store
	switch {
	case !cfg.Cache.Enabled:
		resultCache = cache.Nop{}
	case cfg.Cache.PersistDir != "":
		resultCache = cache.NewLayered(cfg.Cache.PersistDir)
	default:
		resultCache = cache.NewMemory()
	}

	batchSize := cfg.Batch.Size
	if batchSize <= 0 {
		batchSize = worker.DefaultBatchSize
	}

	return &Pipeline{
		resolver:  resolve.NewResolver(source, resultCache),
		batcher:   worker.NewBatcher(batchSize, cfg.Batch.Delay),
		sink:      sink,
		batchSize: batchSize,
	}
}

// Resolver exposes the shared resolver (the review queue needs its
// manual-override path).
func (p *Pipeline) Resolver() *resolve.Resolver {
	return p.resolver
}

// LoadSnapshot reads the stored knowledge base into a dedup snapshot
func (p *Pipeline) LoadSnapshot(ctx context.Context) (dedup.Snapshot, error) {
	snapshot := dedup.NewSnapshot()
	for _, kind := range []store.Kind{store.KindPeople, store.KindPlaces, store.KindOrganizations} {
		entities, err := store.LoadEntities(ctx, p.sink, kind, 0)
		if err != nil {
			return nil, err
		}
		for _, entity := range entities {
			snapshot.Add(entity)
		}
	}
	return snapshot, nil
}

// MentionOutcome pairs a mention with its resolution and duplicate evidence
type MentionOutcome struct {
	Mention   string
	Result    *model.ResolutionResult
	Duplicate *model.DuplicateMatch
}

// ResolveMentions resolves a batch of mentions in fixed-size batches with a
// pause between them, checking each find against the snapshot for
// duplicates. Outcomes come back in mention order regardless of completion
// order. The progress callback, when non-nil, fires after each batch.
func (p *Pipeline) ResolveMentions(ctx context.Context, mentions []string, snapshot dedup.Snapshot, progress func(done, total int)) ([]MentionOutcome, error) {
	outcomes := make([]MentionOutcome, len(mentions))
	var done atomic.Int64

	err := p.batcher.Run(ctx, len(mentions), func(ctx context.Context, i int) {
		mention := mentions[i]
		result := p.resolver.Resolve(ctx, mention)
		outcome := MentionOutcome{Mention: mention, Result: result}
		if result.Found {
			// Snapshot reads are safe concurrently; nothing mutates it
			// during a resolution batch.
			outcome.Duplicate = dedup.FindDuplicate(result.Entity, result.Entity.Type, snapshot)
		}
		outcomes[i] = outcome

		n := int(done.Add(1))
		if progress != nil && (n%p.batchSize == 0 || n == len(mentions)) {
			progress(n, len(mentions))
		}
	})
	if err != nil {
		return nil, err
	}
	return outcomes, nil
}

// BuildQueue turns resolution outcomes into a pending approval queue
func (p *Pipeline) BuildQueue(outcomes []MentionOutcome, snapshot dedup.Snapshot) *review.Queue {
	var candidates []review.Candidate
	var unresolved []review.Unresolved
	for _, outcome := range outcomes {
		if outcome.Result.Found {
			candidates = append(candidates, review.Candidate{
				Entity:    outcome.Result.Entity,
				Mention:   outcome.Mention,
				Duplicate: outcome.Duplicate,
			})
		} else {
			unresolved = append(unresolved, review.Unresolved{
				Mention: outcome.Mention,
				Reason:  outcome.Result.Reason,
			})
		}
	}

	queue := review.NewQueue(p.sink, p.resolver, snapshot)
	queue.Initialize(candidates, unresolved)
	return queue
}

// SaveEvents persists event records, resolving each record's relative
// datetime against its anchor on first use. Records are assigned IDs here;
// each save is independent and failures are reported per record.
func (p *Pipeline) SaveEvents(ctx context.Context, records []model.EventRecord) (saved int, errs []error) {
	for i := range records {
		record := &records[i]
		if record.ID == "" {
			record.ID = "event_" + strings.Split(uuid.NewString(), "-")[0]
		}
		record.EnsureResolvedDatetime(func(expr string, anchor time.Time) *time.Time {
			if anchor.IsZero() {
				anchor = time.Now()
			}
			return timeparse.Resolve(expr, anchor)
		})

		if err := p.sink.Save(ctx, store.KindEvents, record.ID, record); err != nil {
			errs = append(errs, fmt.Errorf("event %d: %w", i+1, err))
			continue
		}
		saved++
	}
	return saved, errs
}

// EntityIndex maps lower-cased mentions to the entity each now denotes:
// approved candidates, merge targets, and duplicate-matched existing
// entities. Connections are only proposed between indexed entities.
func EntityIndex(items []*model.ApprovalItem) map[string]*model.ResolvedEntity {
	index := make(map[string]*model.ResolvedEntity)
	for _, item := range items {
		key := strings.ToLower(item.OriginalMention)
		switch {
		case item.Status == model.StatusApproved && item.Candidate != nil:
			index[key] = item.Candidate
		case item.Status == model.StatusMerged && item.MergedInto != nil:
			index[key] = item.MergedInto
		case item.Duplicate != nil:
			index[key] = item.Duplicate.Existing
		}
	}
	return index
}

// ProposalsFor derives relationship proposals for every event whose actor
// maps to a known entity, grouped per event in record order.
func ProposalsFor(records []model.EventRecord, index map[string]*model.ResolvedEntity) []model.RelationshipProposal {
	var proposals []model.RelationshipProposal
	for i := range records {
		record := &records[i]
		actor := index[strings.ToLower(record.Actor)]
		if actor == nil {
			continue
		}
		var target *model.ResolvedEntity
		if record.Target != "" {
			target = index[strings.ToLower(record.Target)]
		}

		var locations []*model.ResolvedEntity
		for _, loc := range record.Locations {
			if entity := index[strings.ToLower(loc)]; entity != nil {
				locations = append(locations, entity)
			}
		}
		proposals = append(proposals, relate.InferConnections(record, actor, target, locations)...)
	}
	return proposals
}

// SaveConnection persists one confirmed proposal as a Connection
func (p *Pipeline) SaveConnection(ctx context.Context, proposal model.RelationshipProposal) (*model.Connection, error) {
	conn := &model.Connection{
		ID:                "conn_" + strings.Split(uuid.NewString(), "-")[0],
		FromEntityID:      proposal.FromEntityID,
		FromEntityType:    proposal.FromEntityType,
		ToEntityID:        proposal.ToEntityID,
		ToEntityType:      proposal.ToEntityType,
		RelationshipType:  relate.TypeKey(proposal.Label),
		RelationshipLabel: proposal.Label,
		SourceEventID:     proposal.SourceEventID,
		Confidence:        proposal.Confidence,
	}
	if err := p.sink.Save(ctx, store.KindConnections, conn.ID, conn); err != nil {
		return nil, fmt.Errorf("save connection: %w", err)
	}
	return conn, nil
}
