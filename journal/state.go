package journal

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// StateEntry is the materialized metadata for one path.
type StateEntry struct {
	Type       string         `json:"type"` // "file" or "directory"
	CID        string         `json:"cid,omitempty"`
	Size       int64          `json:"size"`
	CreatedAt  time.Time      `json:"created_at"`
	ModifiedAt time.Time      `json:"modified_at"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Mounted    bool           `json:"mounted,omitempty"`
}

// IsDir reports whether the entry describes a directory.
func (s *StateEntry) IsDir() bool {
	return s.Type == "directory"
}

func (s *StateEntry) clone() *StateEntry {
	out := *s
	out.Metadata = cloneMap(s.Metadata)
	return &out
}

// stateTable is the path-indexed view reconstructed by applying completed
// entries atop the last checkpoint. It is never edited directly; all
// mutation flows through apply.
type stateTable struct {
	entries map[string]*StateEntry
}

func newStateTable() *stateTable {
	return &stateTable{entries: make(map[string]*StateEntry)}
}

// apply mutates the table according to a completed entry and reports whether
// the entry took effect. Unknown operations and WRITE/TRUNCATE/METADATA on
// missing paths return false; neither is ever fatal.
func (st *stateTable) apply(e *Entry) bool {
	switch e.Op {
	case OpCreate:
		entry := &StateEntry{
			Type:       "file",
			CreatedAt:  e.Timestamp,
			ModifiedAt: e.Timestamp,
			Metadata:   cloneMap(e.Metadata),
		}
		if e.payloadBool("is_directory") {
			entry.Type = "directory"
		} else {
			entry.CID = e.payloadString("cid")
			if size, ok := e.payloadInt64("size"); ok {
				entry.Size = size
			}
		}
		st.entries[e.Path] = entry
		return true

	case OpDelete:
		if existing, ok := st.entries[e.Path]; ok && existing.IsDir() {
			prefix := e.Path + "/"
			for path := range st.entries {
				if strings.HasPrefix(path, prefix) {
					delete(st.entries, path)
				}
			}
		}
		delete(st.entries, e.Path)
		return true

	case OpRename:
		newPath := e.payloadString("new_path")
		existing, ok := st.entries[e.Path]
		if !ok || newPath == "" {
			return false
		}
		if existing.IsDir() {
			prefix := e.Path + "/"
			moved := make(map[string]*StateEntry)
			for path, entry := range st.entries {
				if strings.HasPrefix(path, prefix) {
					moved[newPath+"/"+strings.TrimPrefix(path, prefix)] = entry
					delete(st.entries, path)
				}
			}
			for path, entry := range moved {
				st.entries[path] = entry
			}
		}
		delete(st.entries, e.Path)
		existing.ModifiedAt = e.Timestamp
		st.entries[newPath] = existing
		return true

	case OpWrite, OpTruncate:
		existing, ok := st.entries[e.Path]
		if !ok || existing.IsDir() {
			return false
		}
		if cid := e.payloadString("cid"); cid != "" {
			existing.CID = cid
		}
		if size, ok := e.payloadInt64("size"); ok {
			existing.Size = size
		} else if e.Op == OpTruncate {
			existing.Size = 0
		}
		existing.ModifiedAt = e.Timestamp
		return true

	case OpMetadata:
		existing, ok := st.entries[e.Path]
		if !ok {
			return false
		}
		if len(e.Metadata) > 0 {
			if existing.Metadata == nil {
				existing.Metadata = make(map[string]any, len(e.Metadata))
			}
			for k, v := range e.Metadata {
				existing.Metadata[k] = v
			}
		}
		existing.ModifiedAt = e.Timestamp
		return true

	case OpMount:
		entry, ok := st.entries[e.Path]
		if !ok {
			entry = &StateEntry{
				Type:      "file",
				CreatedAt: e.Timestamp,
				Metadata:  cloneMap(e.Metadata),
			}
			if e.payloadBool("is_directory") {
				entry.Type = "directory"
			}
			st.entries[e.Path] = entry
		}
		if cid := e.payloadString("cid"); cid != "" {
			entry.CID = cid
		}
		entry.Mounted = true
		entry.ModifiedAt = e.Timestamp
		return true

	case OpUnmount:
		existing, ok := st.entries[e.Path]
		if !ok {
			return false
		}
		// The path entry persists; only the flag clears.
		existing.Mounted = false
		return true

	case OpCheckpoint:
		// Checkpoint records and transaction markers never mutate state.
		return true
	}

	return false
}

// snapshot returns a deep copy of the table suitable for persisting or
// handing to callers.
func (st *stateTable) snapshot() map[string]*StateEntry {
	out := make(map[string]*StateEntry, len(st.entries))
	for path, entry := range st.entries {
		out[path] = entry.clone()
	}
	return out
}

// replace swaps the table contents for a loaded snapshot.
func (st *stateTable) replace(snap map[string]*StateEntry) {
	st.entries = make(map[string]*StateEntry, len(snap))
	for path, entry := range snap {
		st.entries[path] = entry.clone()
	}
}

// canonicalState serializes a snapshot deterministically: entries ordered by
// path, JSON-encoded with sorted map keys. Checkpoint checksums are computed
// over this form so they survive JSON round-trips.
func canonicalState(snap map[string]*StateEntry) []byte {
	paths := make([]string, 0, len(snap))
	for path := range snap {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	type pair struct {
		Path  string      `json:"path"`
		Entry *StateEntry `json:"entry"`
	}
	pairs := make([]pair, 0, len(paths))
	for _, path := range paths {
		pairs = append(pairs, pair{Path: path, Entry: snap[path]})
	}
	data, err := json.Marshal(pairs)
	if err != nil {
		// StateEntry contains only JSON-marshalable types.
		panic(err)
	}
	return data
}
