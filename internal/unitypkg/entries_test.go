package unitypkg

import (
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"sort"
	"strings"
	"testing"

	"upmconv/internal/testsupport"
)

const testID = "11111111111111111111111111111111"

type output struct {
	path    string
	content string
}

// drain consumes the cursor to exhaustion, collecting outputs and per-entry
// errors separately.
func drain(t *testing.T, entries *Entries) ([]output, []error) {
	t.Helper()

	var outputs []output
	var errs []error
	for {
		entry, err := entries.Next()
		if errors.Is(err, io.EOF) {
			return outputs, errs
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		data, err := io.ReadAll(entry.Content)
		if err != nil {
			t.Fatalf("read entry %s: %v", entry.Path, err)
		}
		if entry.Size != int64(len(data)) {
			t.Fatalf("entry %s: Size = %d, read %d bytes", entry.Path, entry.Size, len(data))
		}
		if err := entry.Close(); err != nil {
			t.Fatalf("close entry %s: %v", entry.Path, err)
		}
		outputs = append(outputs, output{path: entry.Path, content: string(data)})
	}
}

func openPackage(t *testing.T, raw []byte, opts Options) *Package {
	t.Helper()

	pkg, err := Open(bytes.NewReader(raw), opts)
	if err != nil {
		t.Fatalf("open package: %v", err)
	}
	t.Cleanup(func() { pkg.Close() })
	return pkg
}

func TestPathnameFirstStreamsDirectly(t *testing.T) {
	raw := testsupport.PackageBytes(t, []testsupport.TarEntry{
		{Path: testID + "/pathname", Data: []byte("Assets/Foo/Bar.txt")},
		{Path: testID + "/asset", Data: []byte("AAA")},
		{Path: testID + "/asset.meta", Data: []byte("META")},
	})
	pkg := openPackage(t, raw, Options{})

	outputs, errs := drain(t, pkg.Entries())
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := []output{
		{"Foo/Bar.txt", "AAA"},
		{"Foo/Bar.txt.meta", "META"},
	}
	if len(outputs) != len(want) {
		t.Fatalf("outputs = %v, want %v", outputs, want)
	}
	for i := range want {
		if outputs[i] != want[i] {
			t.Fatalf("output[%d] = %v, want %v", i, outputs[i], want[i])
		}
	}
}

func TestPayloadsFirstUseLateSlot(t *testing.T) {
	raw := testsupport.PackageBytes(t, []testsupport.TarEntry{
		{Path: testID + "/asset", Data: []byte("AAA")},
		{Path: testID + "/asset.meta", Data: []byte("META")},
		{Path: testID + "/pathname", Data: []byte("Assets/Foo/Bar.txt")},
	})
	pkg := openPackage(t, raw, Options{})
	entries := pkg.Entries()

	first, err := entries.Next()
	if err != nil {
		t.Fatal(err)
	}
	if first.Path != "Foo/Bar.txt" {
		t.Fatalf("first path = %q", first.Path)
	}
	data, err := io.ReadAll(first.Content)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "AAA" {
		t.Fatalf("first content = %q", data)
	}
	first.Close()

	second, err := entries.Next()
	if err != nil {
		t.Fatal(err)
	}
	if second.Path != "Foo/Bar.txt.meta" {
		t.Fatalf("second path = %q", second.Path)
	}
	data, err = io.ReadAll(second.Content)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "META" {
		t.Fatalf("second content = %q", data)
	}
	second.Close()

	if _, err := entries.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestAllArrivalOrdersYieldSameSet(t *testing.T) {
	members := []testsupport.TarEntry{
		{Path: testID + "/pathname", Data: []byte("Assets/Foo/Bar.txt")},
		{Path: testID + "/asset", Data: []byte("AAA")},
		{Path: testID + "/asset.meta", Data: []byte("META")},
	}
	want := []output{
		{"Foo/Bar.txt", "AAA"},
		{"Foo/Bar.txt.meta", "META"},
	}

	permutations := [][3]int{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}
	for _, perm := range permutations {
		ordered := []testsupport.TarEntry{members[perm[0]], members[perm[1]], members[perm[2]]}
		pkg := openPackage(t, testsupport.PackageBytes(t, ordered), Options{})

		outputs, errs := drain(t, pkg.Entries())
		if len(errs) != 0 {
			t.Fatalf("order %v: unexpected errors %v", perm, errs)
		}
		sort.Slice(outputs, func(i, j int) bool { return outputs[i].path < outputs[j].path })
		if len(outputs) != 2 || outputs[0] != want[0] || outputs[1] != want[1] {
			t.Fatalf("order %v: outputs = %v, want %v", perm, outputs, want)
		}
	}
}

func TestMissingMetaProducesAssetOnly(t *testing.T) {
	raw := testsupport.PackageBytes(t, []testsupport.TarEntry{
		{Path: testID + "/asset", Data: []byte("AAA")},
		{Path: testID + "/pathname", Data: []byte("Assets/Solo.txt")},
	})
	pkg := openPackage(t, raw, Options{})

	outputs, errs := drain(t, pkg.Entries())
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(outputs) != 1 || outputs[0] != (output{"Solo.txt", "AAA"}) {
		t.Fatalf("outputs = %v", outputs)
	}
}

func TestMissingAssetProducesMetaOnly(t *testing.T) {
	raw := testsupport.PackageBytes(t, []testsupport.TarEntry{
		{Path: testID + "/asset.meta", Data: []byte("META")},
		{Path: testID + "/pathname", Data: []byte("Assets/Solo.txt")},
	})
	pkg := openPackage(t, raw, Options{})

	outputs, errs := drain(t, pkg.Entries())
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(outputs) != 1 || outputs[0] != (output{"Solo.txt.meta", "META"}) {
		t.Fatalf("outputs = %v", outputs)
	}
}

func TestPathnameOnlyProducesNothing(t *testing.T) {
	raw := testsupport.PackageBytes(t, []testsupport.TarEntry{
		{Path: "22222222222222222222222222222222/pathname", Data: []byte("Assets/Empty.txt")},
	})
	pkg := openPackage(t, raw, Options{})

	outputs, errs := drain(t, pkg.Entries())
	if len(errs) != 0 || len(outputs) != 0 {
		t.Fatalf("outputs = %v, errs = %v", outputs, errs)
	}
}

func TestUnreadablePathnameFailsIdentifier(t *testing.T) {
	// Pathname content that is not valid UTF-8 marks the identifier failed;
	// its payloads never surface, before or after.
	bad := []byte{0xff, 0xfe, 0x00, 0x80}

	t.Run("payload before", func(t *testing.T) {
		raw := testsupport.PackageBytes(t, []testsupport.TarEntry{
			{Path: testID + "/asset", Data: []byte("AAA")},
			{Path: testID + "/pathname", Data: bad},
		})
		pkg := openPackage(t, raw, Options{})

		outputs, errs := drain(t, pkg.Entries())
		if len(errs) != 1 {
			t.Fatalf("errs = %v, want one pathname error", errs)
		}
		if len(outputs) != 0 {
			t.Fatalf("outputs = %v, want none", outputs)
		}
	})

	t.Run("payload after", func(t *testing.T) {
		raw := testsupport.PackageBytes(t, []testsupport.TarEntry{
			{Path: testID + "/pathname", Data: bad},
			{Path: testID + "/asset", Data: []byte("AAA")},
			{Path: testID + "/asset.meta", Data: []byte("META")},
		})
		pkg := openPackage(t, raw, Options{})

		outputs, errs := drain(t, pkg.Entries())
		if len(errs) != 1 {
			t.Fatalf("errs = %v, want one pathname error", errs)
		}
		if len(outputs) != 0 {
			t.Fatalf("outputs = %v, want none", outputs)
		}
	})
}

func TestPreviewSkippedSilently(t *testing.T) {
	raw := testsupport.PackageBytes(t, []testsupport.TarEntry{
		{Path: testID + "/preview.png", Data: []byte("PNG")},
		{Path: testID + "/pathname", Data: []byte("Assets/Pic.png")},
		{Path: testID + "/asset", Data: []byte("PIXELS")},
	})
	pkg := openPackage(t, raw, Options{})

	outputs, errs := drain(t, pkg.Entries())
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(outputs) != 1 || outputs[0] != (output{"Pic.png", "PIXELS"}) {
		t.Fatalf("outputs = %v", outputs)
	}
}

func TestNonAssetsPrefixKeptVerbatim(t *testing.T) {
	raw := testsupport.PackageBytes(t, []testsupport.TarEntry{
		{Path: testID + "/pathname", Data: []byte("ProjectSettings/Tags.asset")},
		{Path: testID + "/asset", Data: []byte("DATA")},
	})
	pkg := openPackage(t, raw, Options{})

	outputs, errs := drain(t, pkg.Entries())
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(outputs) != 1 || outputs[0] != (output{"ProjectSettings/Tags.asset", "DATA"}) {
		t.Fatalf("outputs = %v", outputs)
	}
}

func TestUnexpectedShapesSkipped(t *testing.T) {
	raw := testsupport.PackageBytes(t, []testsupport.TarEntry{
		{Path: "toplevel", Data: []byte("X")},
		{Path: "a/b/c", Data: []byte("X")},
		{Path: testID + "/thumbnail", Data: []byte("X")},
		{Path: testID, Dir: true},
		{Path: testID + "/pathname", Data: []byte("Assets/Keep.txt")},
		{Path: testID + "/asset", Data: []byte("KEEP")},
	})
	pkg := openPackage(t, raw, Options{})

	outputs, errs := drain(t, pkg.Entries())
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(outputs) != 1 || outputs[0] != (output{"Keep.txt", "KEEP"}) {
		t.Fatalf("outputs = %v", outputs)
	}
}

func TestDuplicatePayloadLastWriteWins(t *testing.T) {
	raw := testsupport.PackageBytes(t, []testsupport.TarEntry{
		{Path: testID + "/asset", Data: []byte("FIRST")},
		{Path: testID + "/asset", Data: []byte("SECOND")},
		{Path: testID + "/pathname", Data: []byte("Assets/Dup.txt")},
	})
	pkg := openPackage(t, raw, Options{})

	outputs, errs := drain(t, pkg.Entries())
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(outputs) != 1 || outputs[0] != (output{"Dup.txt", "SECOND"}) {
		t.Fatalf("outputs = %v", outputs)
	}
}

func TestLargePayloadSpillsAndRoundTrips(t *testing.T) {
	big := bytes.Repeat([]byte("unity"), 4096)
	raw := testsupport.PackageBytes(t, []testsupport.TarEntry{
		{Path: testID + "/asset", Data: big},
		{Path: testID + "/pathname", Data: []byte("Assets/Big.bin")},
	})
	// Ceiling far below the payload size forces the disk path.
	pkg := openPackage(t, raw, Options{SpoolCeiling: 128})

	outputs, errs := drain(t, pkg.Entries())
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(outputs) != 1 || outputs[0].path != "Big.bin" {
		t.Fatalf("outputs = %v", outputs)
	}
	if outputs[0].content != string(big) {
		t.Fatal("spilled content does not match source bytes")
	}
}

func TestMultipleIdentifiersInterleaved(t *testing.T) {
	otherID := "22222222222222222222222222222222"
	raw := testsupport.PackageBytes(t, []testsupport.TarEntry{
		{Path: testID + "/asset", Data: []byte("ONE")},
		{Path: otherID + "/pathname", Data: []byte("Assets/Two.txt")},
		{Path: otherID + "/asset", Data: []byte("TWO")},
		{Path: testID + "/pathname", Data: []byte("Assets/One.txt")},
		{Path: otherID + "/asset.meta", Data: []byte("TWOMETA")},
	})
	pkg := openPackage(t, raw, Options{})

	outputs, errs := drain(t, pkg.Entries())
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	sort.Slice(outputs, func(i, j int) bool { return outputs[i].path < outputs[j].path })
	want := []output{
		{"One.txt", "ONE"},
		{"Two.txt", "TWO"},
		{"Two.txt.meta", "TWOMETA"},
	}
	if len(outputs) != len(want) {
		t.Fatalf("outputs = %v, want %v", outputs, want)
	}
	for i := range want {
		if outputs[i] != want[i] {
			t.Fatalf("output[%d] = %v, want %v", i, outputs[i], want[i])
		}
	}
}

func TestCorruptStreamSurfacesOneErrorThenEnds(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write([]byte("this is not a tar stream, just noise that goes on and on")); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}

	pkg := openPackage(t, buf.Bytes(), Options{})
	entries := pkg.Entries()

	if _, err := entries.Next(); err == nil || errors.Is(err, io.EOF) {
		t.Fatalf("expected header error, got %v", err)
	}
	if _, err := entries.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF after surfaced header error, got %v", err)
	}
}

func TestOpenRejectsNonGzipInput(t *testing.T) {
	if _, err := Open(strings.NewReader("plain text"), Options{}); err == nil {
		t.Fatal("expected gzip header error")
	}
}
