// Package fileutil provides small filesystem helpers shared across upmconv.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// AtomicFile stages writes in a temporary file next to the destination and
// renames it into place on Commit, so a failed or interrupted run never
// leaves a half-written destination behind.
type AtomicFile struct {
	file *os.File
	dest string
	done bool
}

// NewAtomic creates the staging file in the destination's directory (rename
// across filesystems is not atomic, so the same directory is required).
func NewAtomic(dest string) (*AtomicFile, error) {
	file, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("create staging file: %w", err)
	}
	return &AtomicFile{file: file, dest: dest}, nil
}

func (a *AtomicFile) Write(p []byte) (int, error) {
	return a.file.Write(p)
}

// Commit flushes the staging file and renames it over the destination.
func (a *AtomicFile) Commit() error {
	if a.done {
		return nil
	}
	a.done = true
	if err := a.file.Close(); err != nil {
		os.Remove(a.file.Name())
		return fmt.Errorf("close staging file: %w", err)
	}
	if err := os.Rename(a.file.Name(), a.dest); err != nil {
		os.Remove(a.file.Name())
		return fmt.Errorf("move staging file into place: %w", err)
	}
	return nil
}

// Abort discards the staging file. Safe to call after Commit, where it does
// nothing, which makes it convenient to defer.
func (a *AtomicFile) Abort() {
	if a.done {
		return
	}
	a.done = true
	a.file.Close()
	os.Remove(a.file.Name())
}
