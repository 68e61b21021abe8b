package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dendrascience/dendra-journal/journal"
)

// NewInspectCmd creates and returns the inspect subcommand for the djournal
// CLI. It validates journal segments and checkpoints without replaying them.
func NewInspectCmd() *cobra.Command {
	var (
		baseDir string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Validate journal segments and checkpoints for corruption",
		Long: `Validate the on-disk journal for corruption and consistency issues.

This command decodes every journal segment and checkpoint under the base
directory, recomputes checkpoint checksums, and reports anything that fails
to parse or verify. It never modifies the journal.`,
		Run: func(cmd *cobra.Command, args []string) {
			runInspect(baseDir, verbose)
		},
	}

	cmd.Flags().StringVarP(&baseDir, "dir", "d", "", "Path to the journal base directory (required)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	cmd.MarkFlagRequired("dir")

	return cmd
}

func runInspect(baseDir string, verbose bool) {
	if _, err := os.Stat(baseDir); os.IsNotExist(err) {
		log.Fatalf("Journal directory does not exist: %s", baseDir)
	}

	var totalErrors int

	segments, err := journal.ListSegmentFiles(baseDir)
	if err != nil {
		log.Fatalf("Error listing segments: %v", err)
	}
	var totalEntries int
	statusCounts := make(map[journal.Status]int)
	for _, path := range segments {
		name := filepath.Base(path)
		if verbose {
			fmt.Printf("Inspecting segment: %s\n", name)
		}
		seg, err := journal.ReadSegmentFile(path)
		if err != nil {
			fmt.Printf("Segment %s is unreadable: %v\n", name, err)
			totalErrors++
			continue
		}
		totalEntries += len(seg.Entries)
		for _, e := range seg.Entries {
			statusCounts[e.Status]++
			if !e.Op.Known() {
				fmt.Printf("Segment %s: entry %s has unknown operation %q\n", name, e.ID, e.Op)
				totalErrors++
			}
		}
	}

	checkpoints, err := journal.ListCheckpointFiles(baseDir)
	if err != nil {
		log.Fatalf("Error listing checkpoints: %v", err)
	}
	for _, path := range checkpoints {
		name := filepath.Base(path)
		if verbose {
			fmt.Printf("Inspecting checkpoint: %s\n", name)
		}
		cp, err := journal.ReadCheckpointFile(path)
		if err != nil {
			fmt.Printf("Checkpoint %s is unreadable: %v\n", name, err)
			totalErrors++
			continue
		}
		if !cp.Verify() {
			fmt.Printf("Checkpoint %s failed checksum verification\n", name)
			totalErrors++
		} else if verbose {
			fmt.Printf("Checkpoint %s verified (%d paths, %s)\n", name, len(cp.State), cp.Timestamp)
		}
	}

	fmt.Printf("\nInspection complete:\n")
	fmt.Printf("  Segments:    %d (%d entries)\n", len(segments), totalEntries)
	for _, status := range []journal.Status{journal.StatusPending, journal.StatusCompleted, journal.StatusFailed, journal.StatusRolledBack} {
		if n := statusCounts[status]; n > 0 {
			fmt.Printf("    %-12s %d\n", status, n)
		}
	}
	fmt.Printf("  Checkpoints: %d\n", len(checkpoints))
	fmt.Printf("  Errors:      %d\n", totalErrors)

	if totalErrors > 0 {
		os.Exit(1)
	}
}
