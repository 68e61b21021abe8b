package journal

import (
	"testing"
	"time"
)

func completedEntry(op Op, path string, data map[string]any) *Entry {
	return &Entry{
		ID:        "test-" + path,
		Timestamp: time.Now(),
		Op:        op,
		Path:      path,
		Data:      data,
		Status:    StatusCompleted,
	}
}

func TestApplyCreateFile(t *testing.T) {
	st := newStateTable()
	e := completedEntry(OpCreate, "/a/b.txt", map[string]any{
		"is_directory": false,
		"size":         10,
		"cid":          "X",
	})
	if !st.apply(e) {
		t.Fatal("expected CREATE to apply")
	}
	got, ok := st.entries["/a/b.txt"]
	if !ok {
		t.Fatal("expected /a/b.txt in state")
	}
	if got.Type != "file" || got.Size != 10 || got.CID != "X" {
		t.Errorf("unexpected state entry: %+v", got)
	}
}

func TestApplyCreateDirectory(t *testing.T) {
	st := newStateTable()
	st.apply(completedEntry(OpCreate, "/a", map[string]any{"is_directory": true}))
	got, ok := st.entries["/a"]
	if !ok || !got.IsDir() {
		t.Fatalf("expected directory at /a, got %+v", got)
	}
}

func TestApplyRenameDirectoryMovesDescendants(t *testing.T) {
	st := newStateTable()
	st.apply(completedEntry(OpCreate, "/a", map[string]any{"is_directory": true}))
	st.apply(completedEntry(OpCreate, "/a/b.txt", map[string]any{"size": 3, "cid": "C1"}))
	st.apply(completedEntry(OpCreate, "/a/sub", map[string]any{"is_directory": true}))
	st.apply(completedEntry(OpCreate, "/a/sub/c.txt", map[string]any{"size": 4, "cid": "C2"}))

	if !st.apply(completedEntry(OpRename, "/a", map[string]any{"new_path": "/z"})) {
		t.Fatal("expected RENAME to apply")
	}

	for _, path := range []string{"/z", "/z/b.txt", "/z/sub", "/z/sub/c.txt"} {
		if _, ok := st.entries[path]; !ok {
			t.Errorf("expected %s in state after rename", path)
		}
	}
	for _, path := range []string{"/a", "/a/b.txt", "/a/sub", "/a/sub/c.txt"} {
		if _, ok := st.entries[path]; ok {
			t.Errorf("did not expect %s in state after rename", path)
		}
	}
	if st.entries["/z/b.txt"].CID != "C1" {
		t.Error("rename must preserve metadata of moved descendants")
	}
}

func TestApplyRenameMissingSource(t *testing.T) {
	st := newStateTable()
	if st.apply(completedEntry(OpRename, "/ghost", map[string]any{"new_path": "/z"})) {
		t.Error("expected RENAME of a missing path to fail application")
	}
}

func TestApplyDeleteDirectoryRemovesDescendants(t *testing.T) {
	st := newStateTable()
	st.apply(completedEntry(OpCreate, "/a", map[string]any{"is_directory": true}))
	st.apply(completedEntry(OpCreate, "/a/b.txt", nil))
	st.apply(completedEntry(OpCreate, "/a/sub", map[string]any{"is_directory": true}))
	st.apply(completedEntry(OpCreate, "/a/sub/c.txt", nil))
	st.apply(completedEntry(OpCreate, "/ab.txt", nil)) // sibling, shares no prefix component

	st.apply(completedEntry(OpDelete, "/a", nil))

	if len(st.entries) != 1 {
		t.Errorf("expected only /ab.txt to survive, state has %d entries", len(st.entries))
	}
	if _, ok := st.entries["/ab.txt"]; !ok {
		t.Error("delete of /a must not remove /ab.txt")
	}
}

func TestApplyWriteUpdatesExistingFile(t *testing.T) {
	st := newStateTable()
	st.apply(completedEntry(OpCreate, "/f.txt", map[string]any{"size": 5, "cid": "old"}))

	e := completedEntry(OpWrite, "/f.txt", map[string]any{"size": 9, "cid": "new"})
	if !st.apply(e) {
		t.Fatal("expected WRITE to apply")
	}
	got := st.entries["/f.txt"]
	if got.CID != "new" || got.Size != 9 {
		t.Errorf("unexpected state after write: %+v", got)
	}
}

func TestApplyWritePayloadFromResult(t *testing.T) {
	st := newStateTable()
	st.apply(completedEntry(OpCreate, "/f.txt", nil))

	e := completedEntry(OpWrite, "/f.txt", nil)
	e.Result = map[string]any{"cid": "fromresult", "size": float64(12)}
	if !st.apply(e) {
		t.Fatal("expected WRITE to apply")
	}
	got := st.entries["/f.txt"]
	if got.CID != "fromresult" || got.Size != 12 {
		t.Errorf("expected payload from result, got %+v", got)
	}
}

func TestApplyWriteMissingPathIsNoop(t *testing.T) {
	st := newStateTable()
	if st.apply(completedEntry(OpWrite, "/ghost", map[string]any{"size": 1})) {
		t.Error("expected WRITE on a missing path to fail application")
	}
	if len(st.entries) != 0 {
		t.Error("failed WRITE must not mutate state")
	}
}

func TestApplyWriteOnDirectoryIsNoop(t *testing.T) {
	st := newStateTable()
	st.apply(completedEntry(OpCreate, "/d", map[string]any{"is_directory": true}))
	if st.apply(completedEntry(OpWrite, "/d", map[string]any{"size": 1})) {
		t.Error("expected WRITE on a directory to fail application")
	}
}

func TestApplyTruncateDefaultsToZero(t *testing.T) {
	st := newStateTable()
	st.apply(completedEntry(OpCreate, "/f.txt", map[string]any{"size": 100, "cid": "X"}))
	if !st.apply(completedEntry(OpTruncate, "/f.txt", nil)) {
		t.Fatal("expected TRUNCATE to apply")
	}
	if got := st.entries["/f.txt"].Size; got != 0 {
		t.Errorf("expected size 0 after truncate, got %d", got)
	}
}

func TestApplyMetadataMerges(t *testing.T) {
	st := newStateTable()
	create := completedEntry(OpCreate, "/f.txt", nil)
	create.Metadata = map[string]any{"owner": "dendra", "tier": "hot"}
	st.apply(create)

	update := completedEntry(OpMetadata, "/f.txt", nil)
	update.Metadata = map[string]any{"tier": "cold", "pinned": true}
	if !st.apply(update) {
		t.Fatal("expected METADATA to apply")
	}

	meta := st.entries["/f.txt"].Metadata
	if meta["owner"] != "dendra" || meta["tier"] != "cold" || meta["pinned"] != true {
		t.Errorf("unexpected merged metadata: %+v", meta)
	}
}

func TestApplyMetadataMissingPath(t *testing.T) {
	st := newStateTable()
	e := completedEntry(OpMetadata, "/ghost", nil)
	e.Metadata = map[string]any{"x": 1}
	if st.apply(e) {
		t.Error("expected METADATA on a missing path to fail application")
	}
}

func TestApplyMountUnmount(t *testing.T) {
	st := newStateTable()
	mount := completedEntry(OpMount, "/mnt/data", map[string]any{"cid": "Qm123", "is_directory": true})
	if !st.apply(mount) {
		t.Fatal("expected MOUNT to apply")
	}
	got := st.entries["/mnt/data"]
	if !got.Mounted || got.CID != "Qm123" || !got.IsDir() {
		t.Errorf("unexpected state after mount: %+v", got)
	}

	if !st.apply(completedEntry(OpUnmount, "/mnt/data", nil)) {
		t.Fatal("expected UNMOUNT to apply")
	}
	got = st.entries["/mnt/data"]
	if got == nil {
		t.Fatal("unmount must not remove the path entry")
	}
	if got.Mounted {
		t.Error("expected mounted flag cleared")
	}
	if got.CID != "Qm123" {
		t.Error("unmount must only clear the flag")
	}
}

func TestApplyCheckpointNeverMutates(t *testing.T) {
	st := newStateTable()
	st.apply(completedEntry(OpCreate, "/f.txt", nil))
	marker := completedEntry(OpCheckpoint, "", map[string]any{"marker": "transaction_begin"})
	if !st.apply(marker) {
		t.Error("expected CHECKPOINT marker to apply trivially")
	}
	if len(st.entries) != 1 {
		t.Error("CHECKPOINT must not mutate state")
	}
}

func TestApplyUnknownOperation(t *testing.T) {
	st := newStateTable()
	e := completedEntry(Op("DEFRAGMENT"), "/f.txt", nil)
	if st.apply(e) {
		t.Error("expected unknown operation to fail application")
	}
}

func TestCanonicalStateDeterministic(t *testing.T) {
	st := newStateTable()
	st.apply(completedEntry(OpCreate, "/b", map[string]any{"is_directory": true}))
	st.apply(completedEntry(OpCreate, "/a", map[string]any{"size": 1, "cid": "X"}))

	first := canonicalState(st.snapshot())
	second := canonicalState(st.snapshot())
	if string(first) != string(second) {
		t.Error("canonical serialization must be deterministic")
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	st := newStateTable()
	create := completedEntry(OpCreate, "/f.txt", nil)
	create.Metadata = map[string]any{"k": "v"}
	st.apply(create)

	snap := st.snapshot()
	snap["/f.txt"].Metadata["k"] = "mutated"
	snap["/f.txt"].Size = 99

	if st.entries["/f.txt"].Metadata["k"] != "v" {
		t.Error("snapshot metadata must not alias table metadata")
	}
	if st.entries["/f.txt"].Size != 0 {
		t.Error("snapshot entries must not alias table entries")
	}
}
