package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/dendrascience/dendra-journal/internal/config"
	"github.com/dendrascience/dendra-journal/journal"
)

// NewCheckpointCmd creates and returns the checkpoint subcommand for the
// djournal CLI. It forces a checkpoint of the recovered state.
func NewCheckpointCmd() *cobra.Command {
	var (
		baseDir     string
		configPath  string
		description string
	)

	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Force a checkpoint of the current state",
		Long: `Recover the current filesystem state and snapshot it into a new
checksummed checkpoint, rotating the journal and pruning files the
checkpoint subsumes.`,
		Run: func(cmd *cobra.Command, args []string) {
			runCheckpoint(baseDir, configPath, description)
		},
	}

	cmd.Flags().StringVarP(&baseDir, "dir", "d", "", "Path to the journal base directory (required)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a config file")
	cmd.Flags().StringVarP(&description, "message", "m", "manual", "Checkpoint description")

	cmd.MarkFlagRequired("dir")

	return cmd
}

func runCheckpoint(baseDir, configPath, description string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	j, err := journal.Open(baseDir, cfg.Options())
	if err != nil {
		log.Fatalf("Failed to open journal: %v", err)
	}
	defer j.Close()

	cp, err := j.CreateCheckpoint(description)
	if err != nil {
		log.Fatalf("Failed to create checkpoint: %v", err)
	}

	fmt.Printf("Checkpoint created:\n")
	fmt.Printf("  ID:        %s\n", cp.ID)
	fmt.Printf("  Timestamp: %s\n", cp.Timestamp)
	fmt.Printf("  Paths:     %d\n", len(cp.State))
	fmt.Printf("  Checksum:  %s\n", cp.Checksum)
}
