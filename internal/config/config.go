// Package config loads djournal settings from an optional config file with
// sane defaults for every knob.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/dendrascience/dendra-journal/journal"
)

// DefaultBaseDir is where journal state lives when no directory is given.
const DefaultBaseDir = ".djournal"

// Config holds the journal settings the CLI exposes.
type Config struct {
	BaseDir             string
	SyncInterval        time.Duration
	CheckpointInterval  time.Duration
	CheckpointThreshold int
	CheckInterval       time.Duration
	RetainCheckpoints   int
}

// Load reads configuration from path when non-empty, falling back to
// defaults for any unset key. Supported formats are whatever viper
// recognizes from the file extension (YAML, TOML, JSON).
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("base-dir", DefaultBaseDir)
	v.SetDefault("sync-interval", journal.DefaultSyncInterval)
	v.SetDefault("checkpoint-interval", journal.DefaultCheckpointInterval)
	v.SetDefault("checkpoint-threshold", journal.DefaultCheckpointThreshold)
	v.SetDefault("check-interval", journal.DefaultCheckInterval)
	v.SetDefault("retain-checkpoints", journal.DefaultRetainCheckpoints)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	return Config{
		BaseDir:             v.GetString("base-dir"),
		SyncInterval:        v.GetDuration("sync-interval"),
		CheckpointInterval:  v.GetDuration("checkpoint-interval"),
		CheckpointThreshold: v.GetInt("checkpoint-threshold"),
		CheckInterval:       v.GetDuration("check-interval"),
		RetainCheckpoints:   v.GetInt("retain-checkpoints"),
	}, nil
}

// Options converts the configuration to journal options.
func (c Config) Options() journal.Options {
	return journal.Options{
		SyncInterval:        c.SyncInterval,
		CheckpointInterval:  c.CheckpointInterval,
		CheckpointThreshold: c.CheckpointThreshold,
		CheckInterval:       c.CheckInterval,
		RetainCheckpoints:   c.RetainCheckpoints,
	}
}
