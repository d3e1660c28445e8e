// Package export writes dashboard visualizations to disk: one as indented
// JSON, or all of them bundled in a zip archive with a manifest.
package export

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"graphchat/internal/viz"
)

// ManifestName is the index entry written into every archive.
const ManifestName = "manifest.json"

// ManifestEntry describes one archived visualization.
type ManifestEntry struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	GeneratedAt string `json:"generated_at"`
	File        string `json:"file"`
}

// Slug turns a title into a file-name stem.
func Slug(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "visualization"
	}
	return s
}

// FileName returns the JSON file name for v.
func FileName(v viz.Visualization) string {
	return Slug(v.DisplayTitle()) + ".json"
}

// WriteJSON writes v with its metadata as indented JSON.
func WriteJSON(w io.Writer, v viz.Visualization) error {
	if v.Title == "" {
		v.Title = v.DisplayTitle()
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode visualization %s: %w", v.ID, err)
	}
	b = append(b, '\n')
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("write visualization %s: %w", v.ID, err)
	}
	return nil
}

// WriteZip writes every visualization plus a manifest into one archive.
// Entry names are made unique by suffixing a counter.
func WriteZip(w io.Writer, vs []viz.Visualization) error {
	zw := zip.NewWriter(w)
	used := make(map[string]int, len(vs))
	manifest := make([]ManifestEntry, 0, len(vs))

	for _, v := range vs {
		name := uniqueName(used, Slug(v.DisplayTitle()))
		f, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("create %s: %w", name, err)
		}
		if err := WriteJSON(f, v); err != nil {
			return err
		}
		manifest = append(manifest, ManifestEntry{
			ID:          v.ID,
			Title:       v.DisplayTitle(),
			Type:        v.Type,
			GeneratedAt: v.GeneratedAt,
			File:        name,
		})
	}

	f, err := zw.Create(ManifestName)
	if err != nil {
		return fmt.Errorf("create manifest: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(manifest); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return zw.Close()
}

func uniqueName(used map[string]int, stem string) string {
	used[stem]++
	if n := used[stem]; n > 1 {
		return fmt.Sprintf("%s-%d.json", stem, n)
	}
	return stem + ".json"
}

// SaveJSON writes v into dir and returns the file path.
func SaveJSON(dir string, v viz.Visualization) (string, error) {
	path := filepath.Join(dir, FileName(v))
	return path, writeFile(path, func(w io.Writer) error { return WriteJSON(w, v) })
}

// SaveZip writes all visualizations into a timestamped archive in dir.
func SaveZip(dir string, vs []viz.Visualization, now time.Time) (string, error) {
	path := filepath.Join(dir, "dashboard-"+now.Format("20060102-150405")+".zip")
	return path, writeFile(path, func(w io.Writer) error { return WriteZip(w, vs) })
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
