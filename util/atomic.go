package util

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteFileAtomic writes data to path using a temporary file in scratchDir
// followed by an atomic rename. A crash at any point leaves either the old
// file or the new file visible at path, never a partial write.
//
// scratchDir must live on the same filesystem as path for the rename to be
// atomic.
func WriteFileAtomic(path, scratchDir string, data []byte) error {
	if _, err := os.Stat(scratchDir); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrScratchDirMissing, scratchDir)
		}
		return err
	}

	tmp, err := os.CreateTemp(scratchDir, "tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// WriteJSONFileAtomic marshals v as JSON and writes it atomically to path.
func WriteJSONFileAtomic(path, scratchDir string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	return WriteFileAtomic(path, scratchDir, data)
}

// ReadJSONFile reads path and unmarshals its contents into v.
func ReadJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
