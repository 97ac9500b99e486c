package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAtomicCommit(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.zip")

	af, err := NewAtomic(dest)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := af.Write([]byte("payload")); err != nil {
		t.Fatal(err)
	}

	// Destination must not exist before commit.
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatalf("destination visible before commit: %v", err)
	}

	if err := af.Commit(); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "payload" {
		t.Fatalf("content = %q", got)
	}

	// Abort after commit is a no-op; the destination survives.
	af.Abort()
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("destination removed by post-commit abort: %v", err)
	}
}

func TestAtomicAbort(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.zip")

	af, err := NewAtomic(dest)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := af.Write([]byte("junk")); err != nil {
		t.Fatal(err)
	}
	af.Abort()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("staging residue after abort: %v", entries)
	}
}
