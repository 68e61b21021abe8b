package journal

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dendrascience/dendra-journal/util"
	"github.com/dendrascience/dendra-journal/version"
)

// Checkpoint is a point-in-time, checksum-verified snapshot of the
// materialized state table.
type Checkpoint struct {
	ID          string                 `json:"checkpoint_id"`
	Timestamp   time.Time              `json:"timestamp"`
	State       map[string]*StateEntry `json:"state_snapshot"`
	Checksum    string                 `json:"checksum"`
	Description string                 `json:"description,omitempty"`
	Version     string                 `json:"version"`
}

// Verify recomputes the checksum of the snapshot and reports whether it
// matches the stored one.
func (c *Checkpoint) Verify() bool {
	return util.Checksum(canonicalState(c.State)) == c.Checksum
}

// CreateCheckpoint snapshots the state table to a new checksummed checkpoint
// file, records a CHECKPOINT entry referencing it, rotates to a fresh empty
// segment, and prunes old checkpoints and subsumed segments. It fails with
// ErrTransactionActive while a transaction is open.
func (j *Journal) CreateCheckpoint(description string) (*Checkpoint, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil, ErrJournalClosed
	}
	return j.checkpointLocked(description)
}

func (j *Journal) checkpointLocked(description string) (*Checkpoint, error) {
	if j.txOpen {
		return nil, ErrTransactionActive
	}

	snap := j.state.snapshot()
	cp := &Checkpoint{
		ID:          uuid.New().String(),
		Timestamp:   time.Now(),
		State:       snap,
		Checksum:    util.Checksum(canonicalState(snap)),
		Description: description,
		Version:     version.GetVersion(),
	}

	name := util.TimestampedFileName(util.CheckpointPrefix, cp.ID, cp.Timestamp)
	path := filepath.Join(j.checkpointsDir, name)
	if err := util.WriteJSONFileAtomic(path, j.scratchDir, cp); err != nil {
		log.Printf("journal: write checkpoint %s: %v", name, err)
		return nil, fmt.Errorf("write checkpoint: %w", err)
	}

	// Record the checkpoint in the closing segment, then rotate. Segments
	// created before the checkpoint timestamp are subsumed by it.
	record := &Entry{
		ID:        uuid.New().String(),
		Timestamp: cp.Timestamp,
		Op:        OpCheckpoint,
		Status:    StatusCompleted,
		Data:      map[string]any{"checkpoint_id": cp.ID, "checkpoint_file": name},
	}
	j.appendLocked(record)
	if err := j.flushLocked(); err != nil {
		return nil, err
	}
	j.startSegmentLocked(time.Now())
	j.lastCheckpoint = cp.Timestamp

	j.pruneLocked()
	return cp, nil
}

// pruneLocked retains the N most recent checkpoints and deletes journal
// segments older than the oldest retained checkpoint's timestamp. Prune
// failures are logged and skipped; they never fail the checkpoint.
func (j *Journal) pruneLocked() {
	cps, err := listRecordFiles(j.checkpointsDir, util.CheckpointPrefix)
	if err != nil {
		log.Printf("journal: prune: list checkpoints: %v", err)
		return
	}
	keep := j.opts.RetainCheckpoints
	if len(cps) == 0 {
		return
	}

	// cps is ascending; the last `keep` stay.
	retained := cps
	if len(cps) > keep {
		for _, old := range cps[:len(cps)-keep] {
			if err := os.Remove(old.path); err != nil {
				log.Printf("journal: prune checkpoint %s: %v", filepath.Base(old.path), err)
			}
		}
		retained = cps[len(cps)-keep:]
	}
	oldest := retained[0].ts

	segs, err := listRecordFiles(j.segmentsDir, util.SegmentPrefix)
	if err != nil {
		log.Printf("journal: prune: list segments: %v", err)
		return
	}
	for _, seg := range segs {
		if seg.path == j.segmentPath || !seg.ts.Before(oldest) {
			continue
		}
		if err := os.Remove(seg.path); err != nil {
			log.Printf("journal: prune segment %s: %v", filepath.Base(seg.path), err)
		}
	}
}

// recordFile is a segment or checkpoint file with its embedded timestamp.
type recordFile struct {
	path string
	ts   time.Time
}

// listRecordFiles returns the record files in dir carrying prefix, sorted
// ascending by embedded timestamp. Files whose names do not parse are
// skipped with a log line; they are someone else's problem, not fatal.
func listRecordFiles(dir, prefix string) ([]recordFile, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	files := make([]recordFile, 0, len(dirents))
	for _, de := range dirents {
		if de.IsDir() || !util.HasRecordPrefix(de.Name(), prefix) {
			continue
		}
		ts, err := util.TimestampFromFileName(de.Name())
		if err != nil {
			log.Printf("journal: skipping unrecognized file %s: %v", de.Name(), err)
			continue
		}
		files = append(files, recordFile{path: filepath.Join(dir, de.Name()), ts: ts})
	}
	sort.Slice(files, func(i, k int) bool { return files[i].ts.Before(files[k].ts) })
	return files, nil
}

// ReadCheckpointFile decodes one checkpoint file.
func ReadCheckpointFile(path string) (*Checkpoint, error) {
	var cp Checkpoint
	if err := util.ReadJSONFile(path, &cp); err != nil {
		return nil, fmt.Errorf("read checkpoint %s: %w", filepath.Base(path), err)
	}
	return &cp, nil
}

// ReadSegmentFile decodes one segment file.
func ReadSegmentFile(path string) (*Segment, error) {
	var seg Segment
	if err := util.ReadJSONFile(path, &seg); err != nil {
		return nil, fmt.Errorf("read segment %s: %w", filepath.Base(path), err)
	}
	return &seg, nil
}

// ListCheckpointFiles returns the checkpoint file paths under baseDir,
// ascending by embedded timestamp.
func ListCheckpointFiles(baseDir string) ([]string, error) {
	return listRecordPaths(filepath.Join(baseDir, checkpointsDirName), util.CheckpointPrefix)
}

// ListSegmentFiles returns the segment file paths under baseDir, ascending
// by embedded timestamp.
func ListSegmentFiles(baseDir string) ([]string, error) {
	return listRecordPaths(filepath.Join(baseDir, segmentsDirName), util.SegmentPrefix)
}

func listRecordPaths(dir, prefix string) ([]string, error) {
	files, err := listRecordFiles(dir, prefix)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.path)
	}
	return paths, nil
}
