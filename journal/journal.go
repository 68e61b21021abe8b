package journal

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dendrascience/dendra-journal/util"
)

// On-disk layout under the base directory.
const (
	segmentsDirName    = "journal"
	checkpointsDirName = "checkpoints"
	scratchDirName     = "scratch"
)

// Defaults for Options fields left zero.
const (
	DefaultSyncInterval        = 5 * time.Second
	DefaultCheckpointInterval  = 5 * time.Minute
	DefaultCheckpointThreshold = 1000
	DefaultCheckInterval       = time.Second
	DefaultRetainCheckpoints   = 3
)

// Options configures a Journal.
type Options struct {
	// SyncInterval is how long buffered non-critical entries may stay
	// unflushed before the scheduler writes them out.
	SyncInterval time.Duration

	// CheckpointInterval is the fixed interval between automatic checkpoints.
	CheckpointInterval time.Duration

	// CheckpointThreshold triggers a checkpoint once the active segment
	// holds more than this many entries, whichever comes first.
	CheckpointThreshold int

	// CheckInterval is the scheduler's polling period.
	CheckInterval time.Duration

	// RetainCheckpoints is how many checkpoint files pruning keeps.
	RetainCheckpoints int

	// DisableRecovery skips the startup recovery pass. Intended for tools
	// that inspect journal files without replaying them.
	DisableRecovery bool
}

func (o Options) withDefaults() Options {
	if o.SyncInterval <= 0 {
		o.SyncInterval = DefaultSyncInterval
	}
	if o.CheckpointInterval <= 0 {
		o.CheckpointInterval = DefaultCheckpointInterval
	}
	if o.CheckpointThreshold <= 0 {
		o.CheckpointThreshold = DefaultCheckpointThreshold
	}
	if o.CheckInterval <= 0 {
		o.CheckInterval = DefaultCheckInterval
	}
	if o.RetainCheckpoints <= 0 {
		o.RetainCheckpoints = DefaultRetainCheckpoints
	}
	return o
}

// Segment is the on-disk form of one journal segment: the ordered entries
// accumulated since the previous rotation.
type Segment struct {
	CreatedAt time.Time `json:"created_at"`
	Entries   []*Entry  `json:"entries"`
}

// Journal is the metadata journal: an append-only operation log with a
// transaction buffer, a materialized state table, checksummed checkpoints,
// and crash recovery.
//
// All public operations serialize through one mutex shared with the
// background scheduler. Correctness is prioritized over parallel throughput.
type Journal struct {
	mu sync.Mutex

	opts Options

	baseDir        string
	segmentsDir    string
	checkpointsDir string
	scratchDir     string

	segmentPath    string
	segmentCreated time.Time
	entries        []*Entry

	txOpen bool
	txBuf  []*Entry

	state *stateTable

	dirty          bool
	lastFlush      time.Time
	lastCheckpoint time.Time
	closed         bool

	sched        *scheduler
	lastRecovery *Report
}

// Open creates or reopens a journal rooted at baseDir. Unless disabled, the
// recovery engine rebuilds the state table from the newest verifiable
// checkpoint plus subsequent segments before any new writes are accepted,
// and the background scheduler is started.
func Open(baseDir string, opts Options) (*Journal, error) {
	opts = opts.withDefaults()

	j := &Journal{
		opts:           opts,
		baseDir:        baseDir,
		segmentsDir:    filepath.Join(baseDir, segmentsDirName),
		checkpointsDir: filepath.Join(baseDir, checkpointsDirName),
		scratchDir:     filepath.Join(baseDir, scratchDirName),
		state:          newStateTable(),
	}
	for _, dir := range []string{j.segmentsDir, j.checkpointsDir, j.scratchDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create journal directory %s: %w", dir, err)
		}
	}

	now := time.Now()
	j.lastFlush = now
	j.lastCheckpoint = now

	if opts.DisableRecovery {
		j.startSegmentLocked(now)
	} else {
		j.lastRecovery = j.recoverLocked()
		if !j.lastRecovery.Success {
			log.Printf("journal: recovery finished with failures: %v", j.lastRecovery.Errors)
		}
	}

	j.sched = startScheduler(j, opts.CheckInterval)
	return j, nil
}

// AddEntry records an operation with a fresh unique id. While a transaction
// is open the entry goes to the transaction buffer; otherwise it is appended
// to the current segment. Critical operations (CREATE, DELETE, RENAME) flush
// immediately. An empty status defaults to PENDING.
func (j *Journal) AddEntry(op Op, path string, data, metadata map[string]any, status Status) (*Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil, ErrJournalClosed
	}
	if status == "" {
		status = StatusPending
	}
	e := &Entry{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		Op:        op,
		Path:      path,
		Data:      cloneMap(data),
		Metadata:  cloneMap(metadata),
		Status:    status,
	}
	if j.txOpen {
		j.txBuf = append(j.txBuf, e)
		return e, nil
	}
	j.appendLocked(e)
	if op.Critical() {
		if err := j.flushLocked(); err != nil {
			return e, err
		}
	}
	return e, nil
}

// UpdateStatus moves an entry to a new status, searching the transaction
// buffer first and the committed log second. Transitions are one-way: any
// update of an entry already in a terminal status returns ErrStatusFinal.
// Entries of critical operation types flush after the update.
func (j *Journal) UpdateStatus(id string, status Status, result map[string]any) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return ErrJournalClosed
	}

	e, buffered := j.findLocked(id)
	if e == nil {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	if e.Status.Terminal() {
		// Re-confirming an already-settled entry would re-apply it to the
		// state table, out of order with anything applied since.
		return fmt.Errorf("%w: %s is %s", ErrStatusFinal, id, e.Status)
	}
	e.Status = status
	if result != nil {
		e.Result = cloneMap(result)
	}
	if buffered {
		// Buffered entries hit the state table and disk at commit.
		return nil
	}
	j.dirty = true
	if status == StatusCompleted {
		j.state.apply(e)
	}
	if e.Op.Critical() {
		return j.flushLocked()
	}
	return nil
}

// findLocked locates an entry by id, transaction buffer first.
func (j *Journal) findLocked(id string) (e *Entry, buffered bool) {
	for _, e := range j.txBuf {
		if e.ID == id {
			return e, true
		}
	}
	for _, e := range j.entries {
		if e.ID == id {
			return e, false
		}
	}
	return nil, false
}

// appendLocked adds an entry to the committed log and applies it to the
// state table if it is already completed.
func (j *Journal) appendLocked(e *Entry) {
	j.entries = append(j.entries, e)
	j.dirty = true
	if e.Status == StatusCompleted {
		j.state.apply(e)
	}
}

// Begin opens a transaction. Only one transaction may be active per journal
// instance; nesting is not supported.
func (j *Journal) Begin() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return ErrJournalClosed
	}
	if j.txOpen {
		return ErrTransactionActive
	}
	j.txOpen = true
	j.txBuf = append(j.txBuf[:0], j.markerEntry("transaction_begin"))
	return nil
}

// Commit assigns one shared transaction id to every buffered entry, appends
// the block to the log in order, flushes, and clears the buffer.
func (j *Journal) Commit() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return ErrJournalClosed
	}
	if !j.txOpen {
		return ErrNoTransaction
	}
	txID := uuid.New().String()
	j.txBuf = append(j.txBuf, j.markerEntry("transaction_commit"))
	for _, e := range j.txBuf {
		e.TransactionID = txID
		j.appendLocked(e)
	}
	j.txBuf = nil
	j.txOpen = false
	return j.flushLocked()
}

// Rollback discards the transaction buffer without touching the log and
// appends a rollback marker for audit.
func (j *Journal) Rollback() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return ErrJournalClosed
	}
	if !j.txOpen {
		return ErrNoTransaction
	}
	discarded := len(j.txBuf)
	j.txBuf = nil
	j.txOpen = false

	marker := j.markerEntry("transaction_rollback")
	marker.Data["discarded"] = discarded
	j.appendLocked(marker)
	return j.flushLocked()
}

// markerEntry builds a transaction bracket entry. Markers are CHECKPOINT
// typed and never mutate state.
func (j *Journal) markerEntry(kind string) *Entry {
	return &Entry{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		Op:        OpCheckpoint,
		Status:    StatusCompleted,
		Data:      map[string]any{"marker": kind},
	}
}

// Flush writes the full current segment to disk via the scratch directory
// and an atomic rename.
func (j *Journal) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return ErrJournalClosed
	}
	return j.flushLocked()
}

func (j *Journal) flushLocked() error {
	if j.segmentPath == "" {
		j.startSegmentLocked(time.Now())
	}
	seg := Segment{CreatedAt: j.segmentCreated, Entries: j.entries}
	if err := util.WriteJSONFileAtomic(j.segmentPath, j.scratchDir, seg); err != nil {
		log.Printf("journal: flush %s: %v", filepath.Base(j.segmentPath), err)
		return fmt.Errorf("flush segment: %w", err)
	}
	j.dirty = false
	j.lastFlush = time.Now()
	return nil
}

// startSegmentLocked rotates to a fresh empty segment. The file is not
// created until the first flush.
func (j *Journal) startSegmentLocked(now time.Time) {
	j.segmentCreated = now
	name := util.TimestampedFileName(util.SegmentPrefix, uuid.New().String(), now)
	j.segmentPath = filepath.Join(j.segmentsDir, name)
	j.entries = nil
	j.dirty = false
}

// State returns a deep copy of the materialized state table.
func (j *Journal) State() map[string]*StateEntry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state.snapshot()
}

// Lookup returns the state entry for path, if present.
func (j *Journal) Lookup(path string) (*StateEntry, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	e, ok := j.state.entries[path]
	if !ok {
		return nil, false
	}
	return e.clone(), true
}

// InTransaction reports whether a transaction is currently open.
func (j *Journal) InTransaction() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.txOpen
}

// LastRecovery returns the report of the recovery pass run at Open, or nil
// when recovery was disabled.
func (j *Journal) LastRecovery() *Report {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastRecovery
}

// BaseDir returns the journal's base directory.
func (j *Journal) BaseDir() string {
	return j.baseDir
}

// Close stops the scheduler (which performs one final flush) and writes any
// remaining buffered entries. After Close the journal rejects all calls.
func (j *Journal) Close() error {
	if j.sched != nil {
		j.sched.stop()
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil
	}
	err := j.flushLocked()
	j.closed = true
	return err
}
