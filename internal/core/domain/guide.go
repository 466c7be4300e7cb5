package domain

import (
	"path/filepath"
	"strings"
)

// Guide is a style-rule source document converted to normalised text.
// Guides are created at load time and replaced wholesale on re-load.
type Guide struct {
	// ID is derived from the file path relative to the guide directory,
	// without extension and with forward slashes (e.g. "voice/tone").
	ID string

	// Title is the human-readable title.
	Title string

	// Path is the absolute file path the guide was read from.
	Path string

	// Format names the normaliser output format ("markdown", "pdf", ...).
	Format string

	// Content is the full normalised text.
	Content string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any
}

// GuideInfo is the listing view of a guide.
type GuideInfo struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Path   string `json:"path"`
	Format string `json:"format"`
	Hidden bool   `json:"hidden"`
}

// GuideID derives a guide identifier from a path relative to the guide directory.
func GuideID(relPath string) string {
	relPath = filepath.ToSlash(relPath)
	return strings.TrimSuffix(relPath, filepath.Ext(relPath))
}
