package ingest

import (
	"strings"

	"github.com/mkarpis/eventkb/internal/model"
)

// ExtractMentions pulls the unique candidate entity strings out of a batch
// of event records, scanning actor, target, and each location of every
// record. The result is first-seen ordered and unique on the trimmed
// literal string; the order determines external-query batching, so it must
// stay deterministic. Extraction is literal: a target like "30 points" is
// still a mention, filtering by semantics is the resolver's problem.
func ExtractMentions(records []model.EventRecord) []string {
	seen := make(map[string]bool)
	var mentions []string

	add := func(raw string) {
		raw = strings.TrimSpace(raw)
		if raw == "" || seen[raw] {
			return
		}
		seen[raw] = true
		mentions = append(mentions, raw)
	}

	for _, record := range records {
		add(record.Actor)
		add(record.Target)
		for _, loc := range record.Locations {
			add(loc)
		}
	}
	return mentions
}
