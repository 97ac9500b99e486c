package spool

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// DefaultCeiling is the in-memory limit applied when callers pass a
// non-positive ceiling to New.
const DefaultCeiling = 32 * 1024 * 1024

// Buffer accumulates written bytes in memory until the configured ceiling is
// reached, then migrates everything written so far to a temporary file and
// continues there. After writing, call Rewind once to switch the buffer into
// read mode; Read then yields the written bytes in order.
//
// A Buffer is not safe for concurrent use. Close releases the temporary file
// (if one was created) and must be called on every Buffer regardless of
// whether it spilled.
type Buffer struct {
	ceiling int64
	size    int64

	mem    bytes.Buffer
	file   *os.File
	reader *bytes.Reader

	closed bool
}

// New returns an empty Buffer that spills to disk once more than ceiling
// bytes have been written. A non-positive ceiling selects DefaultCeiling.
func New(ceiling int64) *Buffer {
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	return &Buffer{ceiling: ceiling}
}

// Write appends p to the buffer, spilling to a temporary file when the
// cumulative size crosses the ceiling.
func (b *Buffer) Write(p []byte) (int, error) {
	if b.closed {
		return 0, errors.New("spool: write on closed buffer")
	}
	if b.reader != nil {
		return 0, errors.New("spool: write after rewind")
	}
	if b.file == nil && b.size+int64(len(p)) > b.ceiling {
		if err := b.spill(); err != nil {
			return 0, err
		}
	}
	var (
		n   int
		err error
	)
	if b.file != nil {
		n, err = b.file.Write(p)
	} else {
		n, err = b.mem.Write(p)
	}
	b.size += int64(n)
	return n, err
}

func (b *Buffer) spill() error {
	file, err := os.CreateTemp("", "upmconv-spool-*")
	if err != nil {
		return fmt.Errorf("create spill file: %w", err)
	}
	if _, err := file.Write(b.mem.Bytes()); err != nil {
		file.Close()
		os.Remove(file.Name())
		return fmt.Errorf("migrate buffer to spill file: %w", err)
	}
	b.mem.Reset()
	b.file = file
	return nil
}

// Rewind repositions the buffer at its start for reading. Further writes are
// rejected.
func (b *Buffer) Rewind() error {
	if b.closed {
		return errors.New("spool: rewind on closed buffer")
	}
	if b.file != nil {
		if _, err := b.file.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("rewind spill file: %w", err)
		}
		return nil
	}
	b.reader = bytes.NewReader(b.mem.Bytes())
	return nil
}

// Read yields previously written bytes in order. Rewind must be called first.
func (b *Buffer) Read(p []byte) (int, error) {
	if b.closed {
		return 0, errors.New("spool: read on closed buffer")
	}
	if b.file != nil {
		return b.file.Read(p)
	}
	if b.reader == nil {
		return 0, errors.New("spool: read before rewind")
	}
	return b.reader.Read(p)
}

// Len reports the total number of bytes written.
func (b *Buffer) Len() int64 {
	return b.size
}

// Spilled reports whether the buffer migrated to a temporary file.
func (b *Buffer) Spilled() bool {
	return b.file != nil
}

// Close releases the temporary file backing a spilled buffer. Safe to call
// more than once.
func (b *Buffer) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	b.mem.Reset()
	b.reader = nil
	if b.file == nil {
		return nil
	}
	name := b.file.Name()
	err := b.file.Close()
	if removeErr := os.Remove(name); err == nil {
		err = removeErr
	}
	b.file = nil
	return err
}
