package utils

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	ds "github.com/bmatcuk/doublestar/v4"
)

// NormalizeJSON minifies JSON text for stable equality comparisons; when
// input is empty returns empty string.
func NormalizeJSON(s string) string {
	if len(s) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return s
	}
	return string(b)
}

// GlobRecursive walks base and matches files against a doublestar pattern (supports **).
func GlobRecursive(base, pattern string) ([]string, error) {
	matches := []string{}
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, _ := filepath.Rel(base, path)
		ok, err := ds.PathMatch(pattern, rel)
		if err != nil {
			return err
		}
		if ok {
			matches = append(matches, path)
		}
		return nil
	})
	return matches, err
}

// ZipDir packages every file under dir (doublestar pattern "**/*") into an
// in-memory zip, with archive paths relative to dir. Entries are added in
// sorted order so the archive bytes are deterministic.
func ZipDir(dir string) ([]byte, error) {
	files, err := GlobRecursive(dir, "**/*")
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for _, file := range files {
		rel, err := filepath.Rel(dir, file)
		if err != nil {
			return nil, err
		}
		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
