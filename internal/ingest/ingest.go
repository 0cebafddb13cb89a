// Package ingest converts source documents (plain text, Markdown, PDF, DOCX,
// XLSX) into the knowledge-base JSON format consumed by the loader.
package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/kotae/internal/models"
	"go.uber.org/zap"
)

// supportedExts are the extensions Dir picks up. File accepts anything and
// treats unknown extensions as plain text.
var supportedExts = map[string]bool{
	".txt":  true,
	".md":   true,
	".pdf":  true,
	".docx": true,
	".xlsx": true,
}

// Ingester turns source files into knowledge-base groups.
type Ingester struct {
	logger *zap.Logger // optional; when set, logs per-file progress
}

// Option configures an Ingester.
type Option func(*Ingester)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(ing *Ingester) { ing.logger = l }
}

// New returns an Ingester.
func New(opts ...Option) *Ingester {
	ing := &Ingester{}
	for _, opt := range opts {
		opt(ing)
	}
	return ing
}

// File converts a single source file into knowledge-base groups. XLSX
// workbooks yield one group per non-empty sheet; every other format is
// extracted to text, parsed for section/question markers, and returned as a
// single group named after the file. A file that yields no entries is
// malformed input.
func (ing *Ingester) File(path string) ([]models.Group, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", models.ErrNotFound, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	var groups []models.Group
	if ext == ".xlsx" {
		groups, err = parseWorkbook(content)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	} else {
		text, err := extractText(content, ext)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		docs := ParseMarkers(text)
		if len(docs) > 0 {
			base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			groups = []models.Group{{ID: slugify(base), Documents: docs}}
		}
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: no question entries in %s", models.ErrMalformedInput, path)
	}

	if ing.logger != nil {
		n := 0
		for _, g := range groups {
			n += len(g.Documents)
		}
		ing.logger.Debug("ingested file",
			zap.String("path", path),
			zap.Int("groups", len(groups)),
			zap.Int("documents", n))
	}
	return groups, nil
}

// Files converts several source files, concatenating their groups in
// argument order. The first failing file aborts the run.
func (ing *Ingester) Files(paths []string) ([]models.Group, error) {
	var groups []models.Group
	for _, path := range paths {
		g, err := ing.File(path)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g...)
	}
	return groups, nil
}

// Dir walks dir recursively and converts every regular file with a supported
// extension. Files are visited in lexical order, so output is deterministic.
func (ing *Ingester) Dir(dir string) ([]models.Group, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}
	var groups []models.Group
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !supportedExts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		finfo, statErr := os.Stat(path)
		if statErr != nil || !finfo.Mode().IsRegular() {
			return nil
		}
		g, fileErr := ing.File(path)
		if fileErr != nil {
			return fileErr
		}
		groups = append(groups, g...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// WriteKnowledgeBase writes groups as indented JSON to path, creating parent
// directories as needed. The output is the loader's input format.
func WriteKnowledgeBase(path string, groups []models.Group) error {
	data, err := json.MarshalIndent(groups, "", "  ")
	if err != nil {
		return fmt.Errorf("encode knowledge base: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create knowledge base directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write knowledge base: %w", err)
	}
	return nil
}

// slugify derives a group identifier from a file or sheet name: lowercase,
// alphanumeric runs kept, everything else collapsed to single hyphens.
func slugify(name string) string {
	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if hyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			hyphen = false
			b.WriteRune(r)
		default:
			hyphen = true
		}
	}
	return b.String()
}
