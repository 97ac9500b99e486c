package testsupport

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
)

// TarEntry describes one member of a synthesized package stream.
type TarEntry struct {
	Path string
	Data []byte
	// Dir emits a directory header instead of a regular file.
	Dir bool
}

// Asset returns the conventional trio of members for one identifier, in
// pathname-first order. Reorder the slice to exercise other arrival orders.
func Asset(id, pathname string, asset, meta []byte) []TarEntry {
	return []TarEntry{
		{Path: id + "/pathname", Data: []byte(pathname)},
		{Path: id + "/asset", Data: asset},
		{Path: id + "/asset.meta", Data: meta},
	}
}

// PackageBytes synthesizes a gzip-compressed tar stream with the given
// entries in order.
func PackageBytes(t testing.TB, entries []TarEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for _, entry := range entries {
		header := &tar.Header{
			Name: entry.Path,
			Mode: 0o644,
			Size: int64(len(entry.Data)),
		}
		if entry.Dir {
			header.Typeflag = tar.TypeDir
			header.Mode = 0o755
			header.Size = 0
		} else {
			header.Typeflag = tar.TypeReg
		}
		if err := tw.WriteHeader(header); err != nil {
			t.Fatalf("write tar header %s: %v", entry.Path, err)
		}
		if !entry.Dir {
			if _, err := tw.Write(entry.Data); err != nil {
				t.Fatalf("write tar data %s: %v", entry.Path, err)
			}
		}
	}

	if err := tw.Close(); err != nil {
		t.Fatalf("close tar writer: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip writer: %v", err)
	}
	return buf.Bytes()
}

// WritePackage writes a synthesized package to a file under dir and returns
// its path.
func WritePackage(t testing.TB, dir, name string, entries []TarEntry) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, PackageBytes(t, entries), 0o644); err != nil {
		t.Fatalf("write package %s: %v", path, err)
	}
	return path
}

// WriteManifest writes a UPM package.json under dir and returns its path.
func WriteManifest(t testing.TB, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, "package.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest %s: %v", path, err)
	}
	return path
}
