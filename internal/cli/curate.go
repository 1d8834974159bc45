package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkarpis/eventkb/internal/ingest"
	"github.com/mkarpis/eventkb/internal/model"
	"github.com/mkarpis/eventkb/internal/pipeline"
	"github.com/mkarpis/eventkb/internal/review"
	"github.com/mkarpis/eventkb/internal/store"
	"github.com/mkarpis/eventkb/internal/wikidata"
	"github.com/mkarpis/eventkb/internal/worker"
)

var (
	curateYes     bool
	curateNoCache bool
)

// curateCmd represents the curate command: the full pipeline
var curateCmd = &cobra.Command{
	Use:   "curate <file.csv>",
	Short: "Resolve, review, and persist a CSV of event records",
	Long: `Curate runs the full pipeline on a CSV of event records:
- Parse and validate rows
- Extract entity mentions and resolve them against Wikidata
  (batched and rate-limited, with session caching)
- Check each find against the stored knowledge base for duplicates
- Put every outcome in front of you for approval, rejection, or merge
- Infer relationships from approved events and confirm them one by one

Example:
  eventkb curate events.csv
  eventkb curate events.csv --yes   # approve everything resolvable`,
	Args: cobra.ExactArgs(1),
	RunE: runCurate,
}

func init() {
	rootCmd.AddCommand(curateCmd)

	curateCmd.Flags().BoolVar(&curateYes, "yes", false, "approve all resolved entities and confirm all proposals without prompting")
	curateCmd.Flags().BoolVar(&curateNoCache, "no-cache", false, "disable the resolution cache (force fresh lookups)")
}

func runCurate(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if curateNoCache {
		cfg.Cache.Enabled = false
	}
	ctx := cmd.Context()

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	parsed, err := ingest.NewParser().Parse(string(raw))
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, rowErr := range parsed.Errors {
		fmt.Fprintf(out, "skipped %s\n", rowErr.Error())
	}
	for _, warn := range parsed.Warnings {
		fmt.Fprintf(out, "warning: %s\n", warn.Error())
	}

	mentions := ingest.ExtractMentions(parsed.Records)
	fmt.Fprintf(out, "%d record(s), %d unique mention(s)\n", len(parsed.Records), len(mentions))

	path, err := storePath(cfg)
	if err != nil {
		return err
	}
	sink, err := store.OpenSQLite(path, store.DefaultNames)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer sink.Close()

	limiter := worker.NewLimiter(cfg.Batch.RequestsPerSecond, cfg.Batch.Burst)
	client := wikidata.NewClient(cfg, limiter)
	p := pipeline.New(cfg, client, sink)

	snapshot, err := p.LoadSnapshot(ctx)
	if err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Knowledge base: %d existing entities\n", snapshot.Size())
	}

	outcomes, err := p.ResolveMentions(ctx, mentions, snapshot, func(done, total int) {
		fmt.Fprintf(os.Stderr, "Resolved %d/%d mentions\n", done, total)
	})
	if err != nil {
		return fmt.Errorf("resolution interrupted: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Resolution cache: %d entries\n", p.Resolver().CacheSize())
	}

	queue := p.BuildQueue(outcomes, snapshot)

	if curateYes {
		result := queue.ApproveAll(ctx)
		fmt.Fprintf(out, "Approved %d, failed %d\n", result.Succeeded, result.Failed)
		for _, failure := range result.Failures {
			fmt.Fprintf(out, "  %s (%q): %s\n", failure.ItemID, failure.Mention, failure.Err)
		}
	} else if err := reviewSession(ctx, cmd.InOrStdin(), out, queue); err != nil {
		return err
	}

	stats := queue.Stats()
	fmt.Fprintf(out, "Review complete: %d approved, %d rejected, %d merged, %d pending\n",
		stats.Approved, stats.Rejected, stats.Merged, stats.Pending)

	// Events and relationships are downstream of the review: with nothing
	// accepted into the knowledge base there is nothing to anchor them to.
	if stats.Accepted() == 0 {
		fmt.Fprintln(out, "Nothing accepted; events and relationships not persisted")
		return nil
	}

	saved, saveErrs := p.SaveEvents(ctx, parsed.Records)
	fmt.Fprintf(out, "Saved %d event(s)\n", saved)
	for _, saveErr := range saveErrs {
		fmt.Fprintf(out, "  %v\n", saveErr)
	}

	index := pipeline.EntityIndex(queue.Items())
	proposals := pipeline.ProposalsFor(parsed.Records, index)
	if len(proposals) == 0 {
		fmt.Fprintln(out, "No relationship proposals")
		return nil
	}
	return confirmProposals(ctx, cmd.InOrStdin(), out, p, proposals)
}

// reviewSession is the interactive approval loop. Commands act on the item
// numbers shown by the listing.
func reviewSession(ctx context.Context, in io.Reader, out io.Writer, queue *review.Queue) error {
	scanner := bufio.NewScanner(in)
	printItems(out, queue)
	fmt.Fprintln(out, `Commands: a <n> approve | r <n> reject | m <n> <id> <type> merge | id <n> <Qxxx> map | A approve all | R reject all | l list | s stats | d done`)

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "d", "done", "q", "quit":
			return nil
		case "l", "list":
			printItems(out, queue)
		case "s", "stats":
			stats := queue.Stats()
			fmt.Fprintf(out, "pending %d, approved %d, rejected %d, merged %d\n",
				stats.Pending, stats.Approved, stats.Rejected, stats.Merged)
		case "A":
			result := queue.ApproveAll(ctx)
			fmt.Fprintf(out, "approved %d, failed %d\n", result.Succeeded, result.Failed)
			for _, failure := range result.Failures {
				fmt.Fprintf(out, "  %q: %s\n", failure.Mention, failure.Err)
			}
		case "R":
			result := queue.RejectAll()
			fmt.Fprintf(out, "rejected %d\n", result.Succeeded)
		case "a":
			err = withItem(queue, fields, 2, func(id string) error { return queue.Approve(ctx, id) })
		case "r":
			err = withItem(queue, fields, 2, func(id string) error { return queue.Reject(id) })
		case "m":
			err = withItem(queue, fields, 4, func(id string) error {
				return queue.MergeWithExisting(ctx, id, fields[2], model.EntityType(fields[3]))
			})
		case "id":
			err = withItem(queue, fields, 3, func(id string) error {
				return queue.MapToExternalID(ctx, id, fields[2])
			})
		default:
			fmt.Fprintf(out, "unknown command %q\n", fields[0])
		}
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}

// withItem translates a 1-based display number into an item ID and applies fn
func withItem(queue *review.Queue, fields []string, argc int, fn func(itemID string) error) error {
	if len(fields) < argc {
		return fmt.Errorf("expected %d argument(s)", argc-1)
	}
	n, err := strconv.Atoi(fields[1])
	items := queue.Items()
	if err != nil || n < 1 || n > len(items) {
		return fmt.Errorf("no item %q (1-%d)", fields[1], len(items))
	}
	return fn(items[n-1].ID)
}

func printItems(out io.Writer, queue *review.Queue) {
	for i, item := range queue.Items() {
		line := fmt.Sprintf("%3d [%s] %q", i+1, item.Status, item.OriginalMention)
		if item.Candidate != nil {
			line += fmt.Sprintf(" -> %s (%s, %s)", item.Candidate.Name, item.Candidate.Type, item.Candidate.ExternalID)
		} else if item.Reason != "" {
			line += " -- " + item.Reason
		}
		if item.Duplicate != nil {
			line += fmt.Sprintf(" [duplicate: %s match on %q]", item.Duplicate.MatchType, item.Duplicate.Existing.Name)
		}
		fmt.Fprintln(out, line)
	}
}

// confirmProposals walks the inferred relationship proposals, persisting
// the confirmed ones as connections.
func confirmProposals(ctx context.Context, in io.Reader, out io.Writer, p *pipeline.Pipeline, proposals []model.RelationshipProposal) error {
	fmt.Fprintf(out, "%d relationship proposal(s)\n", len(proposals))
	scanner := bufio.NewScanner(in)
	confirmed := 0

	for _, proposal := range proposals {
		fmt.Fprintf(out, "  %s -[%s]-> %s", proposal.FromEntityID, proposal.Label, proposal.ToEntityID)
		if proposal.ReciprocalLabel != "" {
			fmt.Fprintf(out, " (reciprocal: %s)", proposal.ReciprocalLabel)
		}
		fmt.Fprintf(out, " confidence %.1f\n", proposal.Confidence)

		if !curateYes {
			fmt.Fprint(out, "  confirm? [y/N] ")
			if !scanner.Scan() {
				break
			}
			answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
			if answer != "y" && answer != "yes" {
				continue
			}
		}
		if _, err := p.SaveConnection(ctx, proposal); err != nil {
			fmt.Fprintf(out, "  error: %v\n", err)
			continue
		}
		confirmed++
	}

	fmt.Fprintf(out, "Saved %d connection(s)\n", confirmed)
	return nil
}
