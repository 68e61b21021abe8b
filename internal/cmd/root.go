package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dendrascience/dendra-journal/version"
)

// NewRootCmd creates and returns the root cobra command for the djournal CLI.
// It sets up all subcommands, command groups, and basic configuration.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "djournal",
		Short: "djournal - the metadata journal for content-addressed virtual filesystems",
		Long: `djournal manages the durable operation journal underlying a content-addressed
virtual filesystem: an append-only log of filesystem operations, checksummed
checkpoints of the materialized path metadata, and crash recovery that
replays only confirmed operations since the last valid checkpoint.

Use subcommands to perform different operations:
  - inspect: Validate journal segments and checkpoints for corruption
  - recover: Replay the journal and print the recovery report
  - checkpoint: Force a checkpoint of the current state
  - seed: Generate randomized journal activity for testing
  - version: Print version and build information`,
		Version: version.GetFullVersion(),
	}

	groupJournal := "journal"
	groupUtilities := "utilities"

	rootCmd.AddGroup(&cobra.Group{
		ID:    groupJournal,
		Title: "Journal Operations",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupUtilities,
		Title: "Utility Commands",
	})

	inspectCmd := NewInspectCmd()
	recoverCmd := NewRecoverCmd()
	checkpointCmd := NewCheckpointCmd()
	seedCmd := NewSeedCmd()
	versionCmd := NewVersionCmd()

	recoverCmd.GroupID = groupJournal
	checkpointCmd.GroupID = groupJournal
	inspectCmd.GroupID = groupUtilities
	seedCmd.GroupID = groupUtilities
	versionCmd.GroupID = groupUtilities

	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(recoverCmd)
	rootCmd.AddCommand(checkpointCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}
