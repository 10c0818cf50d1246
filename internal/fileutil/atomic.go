// Package fileutil provides the atomic-write helper strategy/observation
// file output relies on, adapted from lox-pokerforbots's
// internal/fileutil/atomic.go.
package fileutil

import (
	"os"
	"path/filepath"

	"github.com/mkemp/pokercfr/pkg/errs"
)

// WriteFileAtomic writes data to filename by writing to a temporary file
// in the same directory, syncing it, and renaming it into place — POSIX
// guarantees the rename is atomic, so a reader never observes a partial
// file.
func WriteFileAtomic(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)
	base := filepath.Base(filename)

	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return errs.Wrap(errs.IOFailure, err, "create temp file for %s", filename)
	}
	tmpPath := tmp.Name()

	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return errs.Wrap(errs.IOFailure, err, "write temp file for %s", filename)
	}
	if err := tmp.Sync(); err != nil {
		return errs.Wrap(errs.IOFailure, err, "sync temp file for %s", filename)
	}
	if err := tmp.Close(); err != nil {
		return errs.Wrap(errs.IOFailure, err, "close temp file for %s", filename)
	}
	tmp = nil

	if err := os.Chmod(tmpPath, perm); err != nil {
		return errs.Wrap(errs.IOFailure, err, "chmod temp file for %s", filename)
	}
	if err := os.Rename(tmpPath, filename); err != nil {
		return errs.Wrap(errs.IOFailure, err, "rename temp file into %s", filename)
	}
	return nil
}
