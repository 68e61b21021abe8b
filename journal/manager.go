package journal

import (
	"fmt"
	"log"
)

// WriteResult is the outcome of a content write: the content identifier
// assigned by the backend and the stored size.
type WriteResult struct {
	CID  string
	Size int64
}

// Filesystem is the pluggable storage contract the journal manager drives.
// The journal core never assumes a specific backend behind it. Implementations
// making external calls are responsible for their own timeout policy.
type Filesystem interface {
	WriteFile(path string, content []byte, metadata map[string]any) (WriteResult, error)
	Mkdir(path string, metadata map[string]any) error
	Remove(path string) error
	RemoveDir(path string) error
	Move(oldPath, newPath string) error
	UpdateMetadata(path string, metadata map[string]any) error
	Mount(path, cid string, isDir bool, metadata map[string]any) error
	Unmount(path string) error
	IsDir(path string) bool
}

// CrossRefLogger is an optional advisory collaborator linking journal
// operations to an external operation log. It is never required for journal
// correctness; failures are logged and dropped.
type CrossRefLogger interface {
	AddOperation(opType, backend string, params map[string]any) (operationID string, err error)
}

// Manager wraps a Filesystem backend so that every logical filesystem call
// runs inside its own journal transaction: intent is recorded before the
// backend acts, the confirmed outcome after, and a backend failure triggers
// an automatic rollback. At most one logical operation is in flight through
// a manager at a time.
type Manager struct {
	journal *Journal
	backend Filesystem

	crossRef    CrossRefLogger
	backendName string
}

// NewManager returns a manager driving backend through j.
func NewManager(j *Journal, backend Filesystem) *Manager {
	return &Manager{journal: j, backend: backend, backendName: "filesystem"}
}

// SetCrossRef attaches an advisory cross-reference logger. backendName is
// the label reported alongside each linked operation.
func (m *Manager) SetCrossRef(x CrossRefLogger, backendName string) {
	m.crossRef = x
	if backendName != "" {
		m.backendName = backendName
	}
}

// Journal returns the underlying journal.
func (m *Manager) Journal() *Journal {
	return m.journal
}

// WriteFile stores content at path through the backend and journals it as a
// CREATE for new paths or a WRITE for existing ones.
func (m *Manager) WriteFile(path string, content []byte, metadata map[string]any) (WriteResult, error) {
	op := OpWrite
	if _, ok := m.journal.Lookup(path); !ok {
		op = OpCreate
	}
	var res WriteResult
	err := m.run(op, path, map[string]any{"is_directory": false}, metadata, func() (map[string]any, error) {
		r, err := m.backend.WriteFile(path, content, metadata)
		if err != nil {
			return nil, err
		}
		res = r
		return map[string]any{"cid": r.CID, "size": r.Size}, nil
	})
	return res, err
}

// Mkdir creates a directory at path.
func (m *Manager) Mkdir(path string, metadata map[string]any) error {
	return m.run(OpCreate, path, map[string]any{"is_directory": true}, metadata, func() (map[string]any, error) {
		return nil, m.backend.Mkdir(path, metadata)
	})
}

// Remove deletes path, dispatching to the backend's file or directory
// removal based on what the backend reports the path to be.
func (m *Manager) Remove(path string) error {
	isDir := m.backend.IsDir(path)
	return m.run(OpDelete, path, map[string]any{"is_directory": isDir}, nil, func() (map[string]any, error) {
		if isDir {
			return nil, m.backend.RemoveDir(path)
		}
		return nil, m.backend.Remove(path)
	})
}

// Move renames oldPath to newPath, carrying descendants for directories.
func (m *Manager) Move(oldPath, newPath string) error {
	return m.run(OpRename, oldPath, map[string]any{"new_path": newPath}, nil, func() (map[string]any, error) {
		return nil, m.backend.Move(oldPath, newPath)
	})
}

// UpdateMetadata merges metadata into the entry at path.
func (m *Manager) UpdateMetadata(path string, metadata map[string]any) error {
	return m.run(OpMetadata, path, nil, metadata, func() (map[string]any, error) {
		return nil, m.backend.UpdateMetadata(path, metadata)
	})
}

// Mount attaches existing content at path by cid.
func (m *Manager) Mount(path, cid string, isDir bool, metadata map[string]any) error {
	data := map[string]any{"cid": cid, "is_directory": isDir}
	return m.run(OpMount, path, data, metadata, func() (map[string]any, error) {
		return nil, m.backend.Mount(path, cid, isDir, metadata)
	})
}

// Unmount clears the mounted flag at path; the path entry persists.
func (m *Manager) Unmount(path string) error {
	return m.run(OpUnmount, path, nil, nil, func() (map[string]any, error) {
		return nil, m.backend.Unmount(path)
	})
}

// Truncate journals a size change for an existing file. The backend is not
// consulted: content trimming is the storage layer's concern, the journal
// only records the authoritative size.
func (m *Manager) Truncate(path string, size int64) error {
	return m.run(OpTruncate, path, map[string]any{"size": size}, nil, func() (map[string]any, error) {
		return nil, nil
	})
}

// run executes one logical operation inside its own transaction: begin,
// record intent as PENDING, invoke the backend, confirm or fail the entry,
// then commit. Any backend error rolls the transaction back and is returned
// unchanged.
func (m *Manager) run(op Op, path string, data, metadata map[string]any, fn func() (map[string]any, error)) error {
	if err := m.journal.Begin(); err != nil {
		return err
	}
	entry, err := m.journal.AddEntry(op, path, data, metadata, StatusPending)
	if err != nil {
		m.rollback()
		return err
	}

	result, err := fn()
	if err != nil {
		// The failed status lives only in the discarded buffer; the
		// rollback marker is the durable audit trail.
		if uerr := m.journal.UpdateStatus(entry.ID, StatusFailed, map[string]any{"error": err.Error()}); uerr != nil {
			log.Printf("journal: mark entry failed: %v", uerr)
		}
		m.rollback()
		return fmt.Errorf("%s %s: %w", op, path, err)
	}

	if err := m.journal.UpdateStatus(entry.ID, StatusCompleted, result); err != nil {
		m.rollback()
		return err
	}
	if err := m.journal.Commit(); err != nil {
		return err
	}
	m.logCrossRef(op, path)
	return nil
}

func (m *Manager) rollback() {
	if err := m.journal.Rollback(); err != nil {
		log.Printf("journal: rollback: %v", err)
	}
}

func (m *Manager) logCrossRef(op Op, path string) {
	if m.crossRef == nil {
		return
	}
	if _, err := m.crossRef.AddOperation(string(op), m.backendName, map[string]any{"path": path}); err != nil {
		log.Printf("journal: cross-reference log %s %s: %v", op, path, err)
	}
}
