package feed

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// WriteFileAtomic replaces path with data without ever exposing a partial
// file. The temporary file lives next to path so the final rename stays on
// one filesystem. A non-zero modTime is applied before the rename.
func WriteFileAtomic(path string, data []byte, modTime time.Time) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-single-*.xml")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	// CreateTemp uses 0600, feeds should be readable like any other file.
	if err := tmp.Chmod(0o666 &^ currentUmask()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if !modTime.IsZero() {
		if err := os.Chtimes(tmpName, modTime, modTime); err != nil {
			os.Remove(tmpName)
			return fmt.Errorf("set temp file times: %w", err)
		}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
