package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalSource loads unit documents from the local filesystem. PDF files go
// through plain-text extraction; everything else (markdown, plain text) is
// read as-is.
type LocalSource struct {
	catalog *Catalog
	baseDir string
}

// NewLocalSource creates a filesystem-backed source. Relative catalog paths
// resolve against baseDir.
func NewLocalSource(catalog *Catalog, baseDir string) *LocalSource {
	return &LocalSource{catalog: catalog, baseDir: baseDir}
}

// Load extracts the full text of the unit's document.
func (s *LocalSource) Load(ctx context.Context, key string) (string, error) {
	unit, ok := s.catalog.Lookup(key)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownUnit, key)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := unit.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.baseDir, path)
	}

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()

		text, err := ExtractPDFText(f)
		if err != nil {
			return "", fmt.Errorf("extract %s: %w", path, err)
		}
		if strings.TrimSpace(text) == "" {
			return "", fmt.Errorf("%w: %s", ErrEmptyDocument, path)
		}
		return text, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyDocument, path)
	}
	return string(data), nil
}
