package journal

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/dendrascience/dendra-journal/util"
)

// Report is the structured result of one recovery pass. Recovery is always
// best-effort: corrupt checkpoints and unparsable segments are recorded here
// and skipped, never fatal.
type Report struct {
	Success           bool      `json:"success"`
	CheckpointsLoaded int       `json:"checkpoints_loaded"`
	JournalsProcessed int       `json:"journals_processed"`
	EntriesProcessed  int       `json:"entries_processed"`
	EntriesApplied    int       `json:"entries_applied"`
	Errors            []string  `json:"errors"`
	Watermark         time.Time `json:"watermark"`
}

// Recover rebuilds the state table: it loads the newest checkpoint whose
// recomputed checksum verifies, replays COMPLETED entries from every segment
// created at or after that checkpoint's timestamp, and starts a fresh empty
// segment. Running it twice with no intervening writes yields identical
// state.
func (j *Journal) Recover() *Report {
	j.mu.Lock()
	defer j.mu.Unlock()
	rep := j.recoverLocked()
	j.lastRecovery = rep
	return rep
}

func (j *Journal) recoverLocked() (rep *Report) {
	rep = &Report{Success: true}
	defer func() {
		if r := recover(); r != nil {
			rep.Success = false
			rep.Errors = append(rep.Errors, fmt.Sprintf("recovery panic: %v", r))
		}
	}()

	state := newStateTable()
	watermark := time.Now()

	// Newest-first: accept the first checkpoint that verifies.
	cps, err := listRecordFiles(j.checkpointsDir, util.CheckpointPrefix)
	if err != nil {
		rep.Errors = append(rep.Errors, fmt.Sprintf("list checkpoints: %v", err))
	}
	for i := len(cps) - 1; i >= 0; i-- {
		name := filepath.Base(cps[i].path)
		cp, err := ReadCheckpointFile(cps[i].path)
		if err != nil {
			rep.Errors = append(rep.Errors, fmt.Sprintf("checkpoint %s: %v", name, err))
			continue
		}
		if !cp.Verify() {
			rep.Errors = append(rep.Errors, fmt.Sprintf("checkpoint %s: checksum mismatch", name))
			continue
		}
		state.replace(cp.State)
		watermark = cp.Timestamp
		rep.CheckpointsLoaded = 1
		break
	}
	if rep.CheckpointsLoaded == 0 {
		// No verifiable checkpoint: start from empty state and replay
		// every segment on disk.
		watermark = time.Time{}
	}

	// Replay segments created at or after the watermark, oldest first.
	// Only confirmed outcomes touch the state; PENDING means the result
	// was never known.
	segs, err := listRecordFiles(j.segmentsDir, util.SegmentPrefix)
	if err != nil {
		rep.Errors = append(rep.Errors, fmt.Sprintf("list segments: %v", err))
	}
	for _, sf := range segs {
		if sf.ts.Before(watermark) {
			continue
		}
		name := filepath.Base(sf.path)
		seg, err := ReadSegmentFile(sf.path)
		if err != nil {
			rep.Errors = append(rep.Errors, fmt.Sprintf("segment %s: %v", name, err))
			continue
		}
		rep.JournalsProcessed++
		for _, e := range seg.Entries {
			rep.EntriesProcessed++
			if e.Status != StatusCompleted {
				continue
			}
			if state.apply(e) {
				rep.EntriesApplied++
			} else if !e.Op.Known() {
				rep.Errors = append(rep.Errors,
					fmt.Sprintf("segment %s: unknown operation %q in entry %s", name, e.Op, e.ID))
			}
		}
	}

	j.state = state
	j.startSegmentLocked(time.Now())
	if watermark.IsZero() {
		watermark = time.Now()
	}
	rep.Watermark = watermark

	if len(rep.Errors) > 0 {
		log.Printf("journal: recovery completed with %d recoverable errors", len(rep.Errors))
	}
	return rep
}
