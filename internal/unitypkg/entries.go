package unitypkg

import (
	"archive/tar"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"upmconv/internal/logging"
	"upmconv/internal/spool"
)

const assetsPrefix = "Assets/"

// Entry is one resolved output of the reassembly pass: the final relative
// path of an asset (or its ".meta" companion) plus a reader over its bytes.
//
// Content is either a previously parked spill-aware buffer or a direct view
// of the still-open archive entry. Either way the consumer must fully read
// or Close the entry before asking the cursor for the next one.
type Entry struct {
	Path    string
	Size    int64
	Content io.Reader

	buf *spool.Buffer
}

// Close releases the entry's buffer, if it owns one. Direct pass-through
// entries hold no resources of their own.
func (e *Entry) Close() error {
	if e.buf != nil {
		return e.buf.Close()
	}
	return nil
}

// Entries walks the package's tar stream and produces entries in the order
// their paths become known, which is not necessarily the archive's physical
// order. Errors from Next are scoped to the single entry attempted; the
// cursor stays usable afterwards.
type Entries struct {
	pkg  *Package
	late *Entry
	done bool
}

// Next advances the pass until an output is ready, an error is surfaced, or
// the stream is exhausted. Exhaustion is reported as io.EOF.
func (e *Entries) Next() (*Entry, error) {
	if e.late != nil {
		entry := e.late
		e.late = nil
		return entry, nil
	}
	if e.done {
		return nil, io.EOF
	}

	for {
		header, err := e.pkg.tar.Next()
		if err == io.EOF {
			e.done = true
			return nil, io.EOF
		}
		if err != nil {
			// archive/tar header errors are sticky, so the pass cannot
			// resume past a corrupt header: surface it once and end.
			e.done = true
			return nil, fmt.Errorf("read entry header: %w", err)
		}

		if header.Typeflag != tar.TypeReg {
			continue
		}

		if !utf8.ValidString(header.Name) {
			return nil, fmt.Errorf("entry path %q is not valid UTF-8", header.Name)
		}

		id, part, ok := splitEntryPath(header.Name)
		if !ok {
			e.pkg.logger.Warn("skipping entry with unexpected shape",
				logging.FieldEntryPath, header.Name)
			continue
		}

		if part == "preview.png" {
			continue
		}

		switch part {
		case "asset", "asset.meta":
			entry, err := e.handlePayload(header, id, part)
			if err != nil {
				return nil, err
			}
			if entry != nil {
				return entry, nil
			}
		case "pathname":
			entry, err := e.handlePathname(header, id)
			if err != nil {
				return nil, err
			}
			if entry != nil {
				return entry, nil
			}
		default:
			e.pkg.logger.Warn("skipping unrecognized member",
				logging.FieldAssetID, id, "member", part)
		}
	}
}

// handlePayload processes an asset or asset.meta member. It returns a
// non-nil entry when the identifier's path is already known and the payload
// can stream through directly.
func (e *Entries) handlePayload(header *tar.Header, id, part string) (*Entry, error) {
	res := e.pkg.state(id)
	switch res.state {
	case awaitingPath:
		buf := spool.New(e.pkg.ceiling)
		if _, err := io.Copy(buf, e.pkg.tar); err != nil {
			buf.Close()
			return nil, fmt.Errorf("buffer %s: %w", header.Name, err)
		}
		if err := buf.Rewind(); err != nil {
			buf.Close()
			return nil, fmt.Errorf("buffer %s: %w", header.Name, err)
		}
		// Last write wins: a retried member replaces the earlier payload.
		if part == "asset" {
			if res.parts.asset != nil {
				res.parts.asset.Close()
			}
			res.parts.asset = buf
		} else {
			if res.parts.meta != nil {
				res.parts.meta.Close()
			}
			res.parts.meta = buf
		}
		return nil, nil
	case knownPath:
		name := res.name
		if part == "asset.meta" {
			name += ".meta"
		}
		return &Entry{Path: name, Size: header.Size, Content: e.pkg.tar}, nil
	case failed:
		return nil, nil
	}
	return nil, nil
}

// handlePathname resolves an identifier's output path. When payloads were
// already parked it returns the asset entry and defers the metadata entry to
// the late slot, so both surface from consecutive Next calls.
func (e *Entries) handlePathname(header *tar.Header, id string) (*Entry, error) {
	res := e.pkg.state(id)

	data, err := io.ReadAll(e.pkg.tar)
	if err != nil {
		e.failPathname(res)
		return nil, fmt.Errorf("read asset name from %s: %w", header.Name, err)
	}
	if !utf8.Valid(data) {
		e.failPathname(res)
		return nil, fmt.Errorf("asset name in %s is not valid UTF-8", header.Name)
	}

	name := string(data)
	if strings.HasPrefix(name, assetsPrefix) {
		name = name[len(assetsPrefix):]
	} else {
		e.pkg.logger.Warn("keeping asset path without Assets/ prefix",
			logging.FieldAssetID, id, "name", name)
	}
	if !norm.NFC.IsNormalString(name) {
		e.pkg.logger.Warn("asset path is not NFC-normalized",
			logging.FieldAssetID, id, "name", name)
	}

	switch res.state {
	case failed:
		// Terminal: the identifier already failed to resolve.
		return nil, nil
	case knownPath:
		// Duplicate pathname member: the latest name wins, nothing pends.
		res.name = name
		return nil, nil
	}

	parts := res.parts
	res.state = knownPath
	res.name = name
	res.parts = pendingParts{}

	switch {
	case parts.asset != nil && parts.meta != nil:
		e.late = &Entry{
			Path:    name + ".meta",
			Size:    parts.meta.Len(),
			Content: parts.meta,
			buf:     parts.meta,
		}
		return &Entry{Path: name, Size: parts.asset.Len(), Content: parts.asset, buf: parts.asset}, nil
	case parts.asset != nil:
		return &Entry{Path: name, Size: parts.asset.Len(), Content: parts.asset, buf: parts.asset}, nil
	case parts.meta != nil:
		return &Entry{Path: name + ".meta", Size: parts.meta.Len(), Content: parts.meta, buf: parts.meta}, nil
	default:
		return nil, nil
	}
}

// failPathname marks an identifier as unresolvable and discards anything
// parked for it. An identifier that already resolved keeps its path; the
// state machine never regresses.
func (e *Entries) failPathname(res *resolution) {
	if res.state != awaitingPath {
		return
	}
	res.parts.discard()
	res.state = failed
}

// splitEntryPath splits a tar member name into its identifier directory and
// member name. Only the exact two-component shape is accepted.
func splitEntryPath(raw string) (id, part string, ok bool) {
	cleaned := path.Clean(raw)
	components := strings.Split(cleaned, "/")
	if len(components) != 2 || components[0] == "" || components[1] == "" {
		return "", "", false
	}
	if components[0] == "." || components[0] == ".." {
		return "", "", false
	}
	return components[0], components[1], true
}
