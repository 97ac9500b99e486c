package upm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Manifest carries the two package.json fields the converter needs.
type Manifest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Prefix returns the archive path prefix for this manifest.
func (m *Manifest) Prefix() string {
	return m.Name + "@" + m.Version
}

// ManifestError describes a manifest that failed to decode or validate,
// located by file, line, and column for diagnostics.
type ManifestError struct {
	File   string
	Line   int
	Column int
	Err    error
}

func (e *ManifestError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %v", e.File, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *ManifestError) Unwrap() error {
	return e.Err
}

// ParseManifest decodes a package.json document and validates the fields
// the converter depends on. filename is only used for error context.
func ParseManifest(data []byte, filename string) (*Manifest, error) {
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		line, column := locateOffset(data, decodeOffset(err))
		return nil, &ManifestError{File: filename, Line: line, Column: column, Err: err}
	}
	if strings.TrimSpace(manifest.Name) == "" {
		return nil, &ManifestError{File: filename, Err: errors.New(`missing required field "name"`)}
	}
	if strings.TrimSpace(manifest.Version) == "" {
		return nil, &ManifestError{File: filename, Err: errors.New(`missing required field "version"`)}
	}
	return &manifest, nil
}

// decodeOffset extracts the byte offset a JSON decode error refers to, or 0
// when the error carries none.
func decodeOffset(err error) int64 {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return syntaxErr.Offset
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return typeErr.Offset
	}
	return 0
}

// locateOffset converts a byte offset into 1-based line and column numbers.
func locateOffset(data []byte, offset int64) (line, column int) {
	if offset <= 0 {
		return 0, 0
	}
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	line, column = 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			column = 1
			continue
		}
		column++
	}
	return line, column
}
