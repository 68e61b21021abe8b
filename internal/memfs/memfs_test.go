package memfs

import (
	"errors"
	"io/fs"
	"testing"
)

func TestWriteFileHashesContent(t *testing.T) {
	f := New()

	res, err := f.WriteFile("/a/b/c.txt", []byte("hello"), nil)
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if res.Size != 5 || res.CID == "" {
		t.Errorf("unexpected result: %+v", res)
	}

	same, _ := f.WriteFile("/other.txt", []byte("hello"), nil)
	if same.CID != res.CID {
		t.Error("identical content must share a content id")
	}

	// Parents appear implicitly.
	if !f.IsDir("/a") || !f.IsDir("/a/b") {
		t.Error("expected implicit parent directories")
	}
}

func TestWriteFileOnDirectory(t *testing.T) {
	f := New()
	if err := f.Mkdir("/d", nil); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}
	if _, err := f.WriteFile("/d", []byte("x"), nil); err == nil {
		t.Error("expected error writing over a directory")
	}
	if err := f.Mkdir("/d", nil); err != nil {
		t.Errorf("Mkdir must be idempotent, got %v", err)
	}
}

func TestMoveDirectoryCarriesDescendants(t *testing.T) {
	f := New()
	f.Mkdir("/src", nil)
	f.WriteFile("/src/a.txt", []byte("a"), map[string]any{"k": "v"})
	f.WriteFile("/src/sub/b.txt", []byte("b"), nil)

	if err := f.Move("/src", "/dst"); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if f.IsDir("/src") {
		t.Error("source directory must be gone")
	}
	if !f.IsDir("/dst") || !f.IsDir("/dst/sub") {
		t.Error("expected moved directory tree")
	}
	if _, ok := f.files["/dst/a.txt"]; !ok {
		t.Error("expected /dst/a.txt after move")
	}
	if _, ok := f.files["/src/a.txt"]; ok {
		t.Error("old file paths must be gone after move")
	}
	if f.meta["/dst/a.txt"] == nil {
		t.Error("metadata must follow the moved file")
	}

	if err := f.Move("/missing", "/x"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestRemoveAndRemoveDir(t *testing.T) {
	f := New()
	f.Mkdir("/d", nil)
	f.WriteFile("/d/inner.txt", []byte("x"), nil)
	f.WriteFile("/top.txt", []byte("y"), nil)

	if err := f.Remove("/top.txt"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := f.Remove("/top.txt"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}

	if err := f.RemoveDir("/d"); err != nil {
		t.Fatalf("RemoveDir failed: %v", err)
	}
	if _, ok := f.files["/d/inner.txt"]; ok {
		t.Error("RemoveDir must take descendants with it")
	}
}

func TestUpdateMetadataMerges(t *testing.T) {
	f := New()
	f.WriteFile("/f.txt", []byte("x"), map[string]any{"a": "1"})

	if err := f.UpdateMetadata("/f.txt", map[string]any{"b": "2"}); err != nil {
		t.Fatalf("UpdateMetadata failed: %v", err)
	}
	m := f.meta["/f.txt"]
	if m["a"] != "1" || m["b"] != "2" {
		t.Errorf("expected merged metadata, got %+v", m)
	}

	if err := f.UpdateMetadata("/missing", map[string]any{"x": "y"}); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestMountUnmount(t *testing.T) {
	f := New()

	if err := f.Mount("/snap", "Qm1", true, nil); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	if !f.IsDir("/snap") {
		t.Error("directory mount must register a directory")
	}
	if f.mounts["/snap"] != "Qm1" {
		t.Errorf("expected mount recorded, got %v", f.mounts)
	}

	if err := f.Unmount("/snap"); err != nil {
		t.Fatalf("Unmount failed: %v", err)
	}
	if !f.IsDir("/snap") {
		t.Error("unmount must keep the path entry")
	}
	if err := f.Unmount("/snap"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}
