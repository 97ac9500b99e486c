package upm

import (
	"archive/zip"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/flate"
)

// Builder appends named members to a UPM zip archive under a fixed prefix.
// Members are written in call order; Finish seals the archive. Builder is
// not safe for concurrent use.
type Builder struct {
	zip    *zip.Writer
	prefix string
}

// NewBuilder wraps w in a zip writer whose members live under prefix (the
// "name@version" string). level is the deflate compression level, -2..9.
func NewBuilder(w io.Writer, prefix string, level int) *Builder {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})
	return &Builder{zip: zw, prefix: prefix}
}

// Append writes one archive member named <prefix>/<path> with the reader's
// bytes.
func (b *Builder) Append(path string, content io.Reader) error {
	header := &zip.FileHeader{
		Name:     b.prefix + "/" + path,
		Method:   zip.Deflate,
		Modified: time.Now(),
	}
	member, err := b.zip.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("create zip header for %s: %w", path, err)
	}
	if _, err := io.Copy(member, content); err != nil {
		return fmt.Errorf("write zip member %s: %w", path, err)
	}
	return nil
}

// Finish writes the central directory and seals the archive. The underlying
// writer is not closed.
func (b *Builder) Finish() error {
	if err := b.zip.Close(); err != nil {
		return fmt.Errorf("finish zip archive: %w", err)
	}
	return nil
}
