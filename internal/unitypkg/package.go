package unitypkg

import (
	"archive/tar"
	"fmt"
	"io"
	"log/slog"

	"github.com/klauspost/compress/gzip"

	"upmconv/internal/logging"
)

// Options configures package reading.
type Options struct {
	// Logger receives diagnostics about skipped or unexpected entries. Nil
	// selects a no-op logger.
	Logger *slog.Logger
	// SpoolCeiling bounds the in-memory size of each deferred payload
	// buffer. Non-positive selects the spool package default (32 MiB).
	SpoolCeiling int64
}

// Package wraps a .unitypackage stream. The underlying reader is consumed
// strictly forward; Package never seeks.
type Package struct {
	gz      *gzip.Reader
	tar     *tar.Reader
	states  map[string]*resolution
	logger  *slog.Logger
	ceiling int64
	entries *Entries
}

// Open layers the gzip and tar decoders over r. It fails only when the
// stream does not start with a valid gzip header.
func Open(r io.Reader, opts Options) (*Package, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("decompress package: %w", err)
	}
	return &Package{
		gz:      gz,
		tar:     tar.NewReader(gz),
		states:  make(map[string]*resolution),
		logger:  logging.WithComponent(opts.Logger, "unitypkg"),
		ceiling: opts.SpoolCeiling,
	}, nil
}

// Entries returns the reassembly cursor over the package. The cursor is
// single-use: it consumes the underlying stream and cannot be restarted.
func (p *Package) Entries() *Entries {
	if p.entries == nil {
		p.entries = &Entries{pkg: p}
	}
	return p.entries
}

// Close releases every buffer still parked in the state table along with the
// gzip decoder. Call it on all exit paths, including early termination.
func (p *Package) Close() error {
	for _, res := range p.states {
		res.parts.discard()
	}
	if p.entries != nil && p.entries.late != nil {
		p.entries.late.Close()
		p.entries.late = nil
	}
	return p.gz.Close()
}

// state returns the identifier's table entry, creating the initial
// awaiting-path entry on first sight.
func (p *Package) state(id string) *resolution {
	res, ok := p.states[id]
	if !ok {
		res = &resolution{state: awaitingPath}
		p.states[id] = res
	}
	return res
}
