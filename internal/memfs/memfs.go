// Package memfs provides a pure in-memory content-addressed backend
// implementing the journal's Filesystem contract. It backs tests and the
// seed command; nothing durable lives here.
package memfs

import (
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/dendrascience/dendra-journal/journal"
	"github.com/dendrascience/dendra-journal/util"
)

// FS is an in-memory content-addressed filesystem. Content identifiers are
// SHA-256 hashes of the stored bytes.
type FS struct {
	mu     sync.Mutex
	files  map[string][]byte
	dirs   map[string]struct{}
	meta   map[string]map[string]any
	mounts map[string]string
}

// New returns an empty in-memory filesystem with a root directory.
func New() *FS {
	f := &FS{
		files:  make(map[string][]byte),
		dirs:   make(map[string]struct{}),
		meta:   make(map[string]map[string]any),
		mounts: make(map[string]string),
	}
	f.dirs["/"] = struct{}{}
	return f
}

func clean(p string) string {
	if p == "" {
		return "/"
	}
	return path.Clean("/" + strings.TrimPrefix(p, "/"))
}

// WriteFile stores content at p and returns its content identifier and size.
// Parent directories are created implicitly.
func (f *FS) WriteFile(p string, content []byte, metadata map[string]any) (journal.WriteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p = clean(p)
	if _, ok := f.dirs[p]; ok {
		return journal.WriteResult{}, fmt.Errorf("write %s: is a directory", p)
	}
	f.ensureParents(p)
	f.files[p] = append([]byte(nil), content...)
	if metadata != nil {
		f.meta[p] = metadata
	}
	return journal.WriteResult{CID: util.HashBytes(content), Size: int64(len(content))}, nil
}

// Mkdir creates a directory at p, including missing parents.
func (f *FS) Mkdir(p string, metadata map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p = clean(p)
	if _, ok := f.files[p]; ok {
		return fmt.Errorf("mkdir %s: file exists", p)
	}
	f.ensureParents(p)
	f.dirs[p] = struct{}{}
	if metadata != nil {
		f.meta[p] = metadata
	}
	return nil
}

// Remove deletes the file at p.
func (f *FS) Remove(p string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p = clean(p)
	if _, ok := f.files[p]; !ok {
		return fs.ErrNotExist
	}
	delete(f.files, p)
	delete(f.meta, p)
	delete(f.mounts, p)
	return nil
}

// RemoveDir deletes the directory at p and everything under it.
func (f *FS) RemoveDir(p string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p = clean(p)
	if _, ok := f.dirs[p]; !ok {
		return fs.ErrNotExist
	}
	prefix := p + "/"
	for name := range f.files {
		if strings.HasPrefix(name, prefix) {
			delete(f.files, name)
			delete(f.meta, name)
			delete(f.mounts, name)
		}
	}
	for name := range f.dirs {
		if strings.HasPrefix(name, prefix) {
			delete(f.dirs, name)
			delete(f.meta, name)
		}
	}
	delete(f.dirs, p)
	delete(f.meta, p)
	delete(f.mounts, p)
	return nil
}

// Move renames oldPath to newPath, carrying descendants for directories.
func (f *FS) Move(oldPath, newPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	oldPath, newPath = clean(oldPath), clean(newPath)

	if data, ok := f.files[oldPath]; ok {
		f.ensureParents(newPath)
		f.files[newPath] = data
		delete(f.files, oldPath)
		f.moveAux(oldPath, newPath)
		return nil
	}
	if _, ok := f.dirs[oldPath]; ok {
		f.ensureParents(newPath)
		f.dirs[newPath] = struct{}{}
		delete(f.dirs, oldPath)
		f.moveAux(oldPath, newPath)

		prefix := oldPath + "/"
		for name, data := range f.files {
			if strings.HasPrefix(name, prefix) {
				f.files[newPath+"/"+strings.TrimPrefix(name, prefix)] = data
				delete(f.files, name)
			}
		}
		for name := range f.dirs {
			if strings.HasPrefix(name, prefix) {
				f.dirs[newPath+"/"+strings.TrimPrefix(name, prefix)] = struct{}{}
				delete(f.dirs, name)
			}
		}
		return nil
	}
	return fs.ErrNotExist
}

func (f *FS) moveAux(oldPath, newPath string) {
	if m, ok := f.meta[oldPath]; ok {
		f.meta[newPath] = m
		delete(f.meta, oldPath)
	}
	if cid, ok := f.mounts[oldPath]; ok {
		f.mounts[newPath] = cid
		delete(f.mounts, oldPath)
	}
}

// UpdateMetadata merges metadata into the entry at p.
func (f *FS) UpdateMetadata(p string, metadata map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p = clean(p)
	if !f.exists(p) {
		return fs.ErrNotExist
	}
	m, ok := f.meta[p]
	if !ok {
		m = make(map[string]any, len(metadata))
		f.meta[p] = m
	}
	for k, v := range metadata {
		m[k] = v
	}
	return nil
}

// Mount records cid as mounted at p, creating the path entry if needed.
func (f *FS) Mount(p, cid string, isDir bool, metadata map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p = clean(p)
	f.ensureParents(p)
	if isDir {
		f.dirs[p] = struct{}{}
	} else if _, ok := f.files[p]; !ok {
		f.files[p] = nil
	}
	f.mounts[p] = cid
	if metadata != nil {
		f.meta[p] = metadata
	}
	return nil
}

// Unmount clears the mount at p. The path entry persists.
func (f *FS) Unmount(p string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p = clean(p)
	if _, ok := f.mounts[p]; !ok {
		return fs.ErrNotExist
	}
	delete(f.mounts, p)
	return nil
}

// IsDir reports whether p is a directory.
func (f *FS) IsDir(p string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.dirs[clean(p)]
	return ok
}

func (f *FS) exists(p string) bool {
	if _, ok := f.files[p]; ok {
		return true
	}
	_, ok := f.dirs[p]
	return ok
}

// ensureParents registers every ancestor directory of p.
func (f *FS) ensureParents(p string) {
	for dir := path.Dir(p); ; dir = path.Dir(dir) {
		f.dirs[dir] = struct{}{}
		if dir == "/" {
			return
		}
	}
}
