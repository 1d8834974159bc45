package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkarpis/eventkb/internal/ingest"
)

// ingestCmd represents the ingest command: a dry run of the pipeline front
var ingestCmd = &cobra.Command{
	Use:   "ingest <file.csv>",
	Short: "Parse and validate a CSV of event records without resolving",
	Long: `Ingest parses a CSV of event records, validates the header and every
row, and reports what the curate pipeline would work with. Nothing is
resolved or persisted.

Example:
  eventkb ingest events.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	result, err := ingest.NewParser().Parse(string(raw))
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Parsed %d record(s)\n", len(result.Records))
	for _, rowErr := range result.Errors {
		fmt.Fprintf(out, "  error: %s\n", rowErr.Error())
	}
	for _, warn := range result.Warnings {
		fmt.Fprintf(out, "  warning: %s\n", warn.Error())
	}

	mentions := ingest.ExtractMentions(result.Records)
	fmt.Fprintf(out, "%d unique mention(s): %s\n", len(mentions), strings.Join(mentions, ", "))
	return nil
}
