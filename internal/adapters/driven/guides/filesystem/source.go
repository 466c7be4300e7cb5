// Package filesystem loads style guides from a local directory.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
	"github.com/custodia-labs/styleaudit/internal/core/ports/driven"
	"github.com/custodia-labs/styleaudit/internal/logger"
	"github.com/custodia-labs/styleaudit/internal/normalisers/docx"
	"github.com/custodia-labs/styleaudit/internal/normalisers/xlsx"
)

// Ensure Source implements the interface.
var _ driven.GuideSource = (*Source)(nil)

// mimeTypes maps guide file extensions to the MIME types normalisers register for.
var mimeTypes = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".txt":      "text/plain",
	".text":     "text/plain",
	".html":     "text/html",
	".htm":      "text/html",
	".docx":     docx.MIMEType,
	".pdf":      "application/pdf",
	".xlsx":     xlsx.MIMEType,
}

// DetectMIMEType returns the MIME type for a guide filename, or "" if unsupported.
func DetectMIMEType(name string) string {
	return mimeTypes[strings.ToLower(filepath.Ext(name))]
}

// Extensions returns the supported guide file extensions, sorted.
func Extensions() []string {
	exts := make([]string, 0, len(mimeTypes))
	for ext := range mimeTypes {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Source reads every supported file under a root directory and normalises it.
type Source struct {
	root     string
	registry driven.NormaliserRegistry
	include  []string
	exclude  []string
}

// Option configures a Source.
type Option func(*Source)

// WithInclude restricts loading to paths matching any doublestar pattern.
// Patterns are relative to the root and use forward slashes.
func WithInclude(patterns ...string) Option {
	return func(s *Source) {
		s.include = append(s.include, patterns...)
	}
}

// WithExclude skips paths matching any doublestar pattern.
func WithExclude(patterns ...string) Option {
	return func(s *Source) {
		s.exclude = append(s.exclude, patterns...)
	}
}

// New creates a guide source rooted at root.
func New(root string, registry driven.NormaliserRegistry, opts ...Option) *Source {
	s := &Source{
		root:     filepath.Clean(root),
		registry: registry,
	}
	for _, opt := range opts {
		opt(s)
	}
	if len(s.include) == 0 {
		s.include = []string{"**/*"}
	}
	return s
}

// Root returns the guide directory.
func (s *Source) Root() string {
	return s.root
}

// Load reads and normalises every matching guide, ordered by ID.
// Files that fail to normalise are skipped with a warning.
func (s *Source) Load(ctx context.Context) ([]domain.Guide, error) {
	info, err := os.Stat(s.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s does not exist", domain.ErrNoGuides, s.root)
	}
	if err != nil {
		return nil, fmt.Errorf("stat guide directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, s.root)
	}

	var guides []domain.Guide
	err = filepath.WalkDir(s.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if s.excluded(rel + "/") {
				return filepath.SkipDir
			}
			return nil
		}
		if !s.included(rel) || s.excluded(rel) {
			return nil
		}

		mimeType := DetectMIMEType(rel)
		if mimeType == "" {
			logger.Debug("guides: skipping unsupported file %s", rel)
			return nil
		}

		guide, err := s.loadFile(ctx, path, rel, mimeType)
		if err != nil {
			logger.Warn("guides: skipping %s: %v", rel, err)
			return nil
		}
		guides = append(guides, *guide)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk guide directory: %w", err)
	}

	sort.Slice(guides, func(i, j int) bool { return guides[i].ID < guides[j].ID })
	logger.Debug("guides: loaded %d guides from %s", len(guides), s.root)
	return guides, nil
}

func (s *Source) loadFile(ctx context.Context, path, rel, mimeType string) (*domain.Guide, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	result, err := s.registry.Normalise(ctx, &domain.RawDocument{
		URI:      path,
		MIMEType: mimeType,
		Content:  content,
		Metadata: map[string]any{"relative_path": rel},
	})
	if err != nil {
		return nil, fmt.Errorf("normalise: %w", err)
	}

	guide := result.Guide
	guide.ID = domain.GuideID(rel)
	guide.Path = path
	if guide.Title == "" {
		guide.Title = guide.ID
	}
	return &guide, nil
}

func (s *Source) included(rel string) bool {
	return matchAny(s.include, rel)
}

func (s *Source) excluded(rel string) bool {
	return matchAny(s.exclude, rel)
}

func matchAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}

// isHidden reports dotfiles and dot-directories.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
