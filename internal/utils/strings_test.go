package utils

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeJSON(t *testing.T) {
	if got := NormalizeJSON(" {\n  \"a\": 1 }"); got != `{"a":1}` {
		t.Fatalf("NormalizeJSON = %q", got)
	}
	if got := NormalizeJSON(""); got != "" {
		t.Fatalf("empty input should stay empty, got %q", got)
	}
	if got := NormalizeJSON("not json"); got != "not json" {
		t.Fatalf("invalid input should pass through, got %q", got)
	}
}

func TestGlobRecursive(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "a.txt"), "a")
	mustWrite(t, filepath.Join(dir, "sub", "b.txt"), "b")
	mustWrite(t, filepath.Join(dir, "sub", "c.bin"), "c")

	matches, err := GlobRecursive(dir, "**/*.txt")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("matched %d files, want 2: %v", len(matches), matches)
	}
}

func TestZipDir(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "bootstrap"), "#!/bin/true\n")
	mustWrite(t, filepath.Join(dir, "assets", "routes.yaml"), "routes: []\n")

	data, err := ZipDir(dir)
	if err != nil {
		t.Fatalf("zip: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	if !names["bootstrap"] || !names["assets/routes.yaml"] {
		t.Fatalf("unexpected entries: %v", names)
	}

	// Same input, same bytes.
	again, err := ZipDir(dir)
	if err != nil {
		t.Fatalf("zip again: %v", err)
	}
	if len(again) != len(data) {
		t.Fatalf("archive is not deterministic: %d vs %d bytes", len(again), len(data))
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}
