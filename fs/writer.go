// Package fs provides file-based output for scan results.
package fs

import (
	"context"
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/sitebrief"
)

// URLToPath converts a scanned URL to a relative JSON file path.
// Example: https://acme.example/products → acme.example/products.json
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", sitebrief.Errorf(sitebrief.EINVALID, "URL has no host: %q", rawURL)
	}

	path := strings.TrimPrefix(u.Path, "/")
	if path == "" {
		return filepath.Join(u.Host, "index.json"), nil
	}
	path = strings.TrimSuffix(path, "/")
	return filepath.Join(u.Host, path+".json"), nil
}

// Ensure Writer implements sitebrief.BriefWriter at compile time.
var _ sitebrief.BriefWriter = (*Writer)(nil)

// Writer writes briefs as JSON files under a base directory, one file per
// scanned URL. Writes are atomic: the brief lands in a temp file first and
// is renamed into place, so readers never observe a partial file.
type Writer struct {
	baseDir string
}

// NewWriter creates a new Writer that writes to the given base directory.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

// WriteBrief writes a brief to disk, replacing any previous brief for the
// same URL.
func (w *Writer) WriteBrief(ctx context.Context, brief *sitebrief.Brief) error {
	relPath, err := URLToPath(brief.URL)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(w.baseDir, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(brief, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmpPath := fullPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
