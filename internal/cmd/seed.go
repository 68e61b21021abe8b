package cmd

import (
	"crypto/rand"
	"fmt"
	"log"
	"math/big"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dendrascience/dendra-journal/internal/config"
	"github.com/dendrascience/dendra-journal/internal/memfs"
	"github.com/dendrascience/dendra-journal/journal"
)

// NewSeedCmd creates and returns the seed subcommand for the djournal CLI.
// It generates randomized journal activity against an in-memory backend.
func NewSeedCmd() *cobra.Command {
	var (
		baseDir    string
		configPath string
		opCount    int
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate randomized journal activity for testing",
		Long: `Generate a stream of randomized filesystem operations through the journal
manager backed by an in-memory content-addressed store.

Produces a realistic mix of writes, directory creation, renames, metadata
updates, and deletes, with periodic checkpoints. Useful for exercising
inspect and recover against non-trivial journal contents.`,
		Run: func(cmd *cobra.Command, args []string) {
			runSeed(baseDir, configPath, opCount, verbose)
		},
	}

	cmd.Flags().StringVarP(&baseDir, "dir", "d", "", "Path to the journal base directory (required)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a config file")
	cmd.Flags().IntVarP(&opCount, "count", "n", 500, "Number of operations to generate")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	cmd.MarkFlagRequired("dir")

	return cmd
}

func runSeed(baseDir, configPath string, opCount int, verbose bool) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	j, err := journal.Open(baseDir, cfg.Options())
	if err != nil {
		log.Fatalf("Failed to open journal: %v", err)
	}
	defer j.Close()

	mgr := journal.NewManager(j, memfs.New())

	// Pool of directories the generated files land in.
	dirs := make([]string, 8)
	for i := range dirs {
		dirs[i] = fmt.Sprintf("/seed/%s", uuid.New().String()[:8])
		if err := mgr.Mkdir(dirs[i], nil); err != nil {
			log.Fatalf("Failed to create seed directory: %v", err)
		}
	}

	var created []string
	for i := 0; i < opCount; i++ {
		roll := randInt(100)
		switch {
		case roll < 60 || len(created) == 0:
			dir := dirs[randInt(len(dirs))]
			path := fmt.Sprintf("%s/%s.json", dir, uuid.New().String()[:8])
			content := []byte(fmt.Sprintf("{\"id\":%q}\n", uuid.New().String()))
			if _, err := mgr.WriteFile(path, content, map[string]any{"seed": true}); err != nil {
				log.Fatalf("Failed to write %s: %v", path, err)
			}
			created = append(created, path)
		case roll < 75:
			path := created[randInt(len(created))]
			if err := mgr.UpdateMetadata(path, map[string]any{"touched": i}); err != nil {
				log.Fatalf("Failed to update metadata on %s: %v", path, err)
			}
		case roll < 90:
			idx := randInt(len(created))
			oldPath := created[idx]
			newPath := fmt.Sprintf("%s-r", oldPath)
			if err := mgr.Move(oldPath, newPath); err != nil {
				log.Fatalf("Failed to move %s: %v", oldPath, err)
			}
			created[idx] = newPath
		default:
			idx := randInt(len(created))
			path := created[idx]
			if err := mgr.Remove(path); err != nil {
				log.Fatalf("Failed to remove %s: %v", path, err)
			}
			created = append(created[:idx], created[idx+1:]...)
		}

		if (i+1)%200 == 0 {
			if _, err := j.CreateCheckpoint(fmt.Sprintf("seed %d", i+1)); err != nil {
				log.Fatalf("Failed to checkpoint: %v", err)
			}
			if verbose {
				fmt.Printf("Checkpoint after %d operations\n", i+1)
			}
		}
	}

	fmt.Printf("Seeded %d operations; state holds %d paths\n", opCount, len(j.State()))
}

func randInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}
