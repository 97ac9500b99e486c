package upm

import (
	"errors"
	"strings"
	"testing"
)

func TestParseManifest(t *testing.T) {
	manifest, err := ParseManifest([]byte(`{"name":"com.example.pkg","version":"1.2.3"}`), "package.json")
	if err != nil {
		t.Fatal(err)
	}
	if manifest.Name != "com.example.pkg" || manifest.Version != "1.2.3" {
		t.Fatalf("manifest = %+v", manifest)
	}
	if manifest.Prefix() != "com.example.pkg@1.2.3" {
		t.Fatalf("Prefix = %q", manifest.Prefix())
	}
}

func TestParseManifestSyntaxErrorHasPosition(t *testing.T) {
	content := "{\n  \"name\": \"pkg\",\n  \"version\" 1\n}"
	_, err := ParseManifest([]byte(content), "package.json")
	if err == nil {
		t.Fatal("expected syntax error")
	}
	var manifestErr *ManifestError
	if !errors.As(err, &manifestErr) {
		t.Fatalf("error type %T", err)
	}
	if manifestErr.File != "package.json" {
		t.Fatalf("File = %q", manifestErr.File)
	}
	if manifestErr.Line != 3 {
		t.Fatalf("Line = %d, want 3 (error text: %v)", manifestErr.Line, err)
	}
	if !strings.HasPrefix(err.Error(), "package.json:3:") {
		t.Fatalf("error text missing location: %v", err)
	}
}

func TestParseManifestTypeErrorHasPosition(t *testing.T) {
	_, err := ParseManifest([]byte(`{"name":"pkg","version":7}`), "pkg.json")
	if err == nil {
		t.Fatal("expected type error")
	}
	var manifestErr *ManifestError
	if !errors.As(err, &manifestErr) {
		t.Fatalf("error type %T", err)
	}
	if manifestErr.Line != 1 || manifestErr.Column == 0 {
		t.Fatalf("location = %d:%d", manifestErr.Line, manifestErr.Column)
	}
}

func TestParseManifestRequiresFields(t *testing.T) {
	cases := map[string]string{
		"missing name":    `{"version":"1.0.0"}`,
		"blank name":      `{"name":"  ","version":"1.0.0"}`,
		"missing version": `{"name":"pkg"}`,
	}
	for label, content := range cases {
		if _, err := ParseManifest([]byte(content), "package.json"); err == nil {
			t.Errorf("%s: expected validation error", label)
		}
	}
}
