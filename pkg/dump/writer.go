package dump

import (
	"os"
	"path/filepath"
)

type Writer interface {
	Write(path string, data []byte) error
}

type atomicFileWriter struct{}

// NewAtomicFileWriter writes files through a temporary sibling followed by
// a rename, so a reader of the output tree never observes a partially
// written file no matter when the process dies. Directory creation is
// idempotent and overwriting an existing file is expected (re-runs).
func NewAtomicFileWriter() Writer {
	return atomicFileWriter{}
}

func (w atomicFileWriter) Write(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	// CreateTemp opens 0600; the dump is meant to be world-readable
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
