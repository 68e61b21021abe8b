package journal

import (
	"log"
	"sync"
	"time"
)

// scheduler is the background maintenance loop. It polls on a fixed check
// interval and contends for the same journal lock as foreground calls:
// flushing once the sync interval has elapsed with unwritten entries, and
// checkpointing once the checkpoint interval or entry-count threshold is
// exceeded. Stopping the scheduler performs one final flush, so a clean
// shutdown never loses a buffered entry.
type scheduler struct {
	j        *Journal
	ticker   *time.Ticker
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func startScheduler(j *Journal, interval time.Duration) *scheduler {
	s := &scheduler{
		j:      j,
		ticker: time.NewTicker(interval),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *scheduler) run() {
	defer close(s.done)
	for {
		select {
		case <-s.stopCh:
			s.j.finalFlush()
			return
		case <-s.ticker.C:
			s.j.maintain()
		}
	}
}

// stop is safe to call more than once; only the first call shuts the loop
// down, later calls just wait for it.
func (s *scheduler) stop() {
	s.stopOnce.Do(func() {
		s.ticker.Stop()
		close(s.stopCh)
	})
	<-s.done
}

// maintain runs one scheduler pass.
func (j *Journal) maintain() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return
	}
	now := time.Now()

	if j.dirty && now.Sub(j.lastFlush) >= j.opts.SyncInterval {
		if err := j.flushLocked(); err != nil {
			log.Printf("journal: scheduled flush: %v", err)
		}
	}

	// Checkpoints wait for the transaction to settle; the next tick
	// retries.
	if j.txOpen {
		return
	}
	if now.Sub(j.lastCheckpoint) >= j.opts.CheckpointInterval ||
		len(j.entries) > j.opts.CheckpointThreshold {
		if _, err := j.checkpointLocked("scheduled"); err != nil {
			log.Printf("journal: scheduled checkpoint: %v", err)
		}
	}
}

// finalFlush writes out any dirty segment during shutdown.
func (j *Journal) finalFlush() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed || !j.dirty {
		return
	}
	if err := j.flushLocked(); err != nil {
		log.Printf("journal: final flush: %v", err)
	}
}
