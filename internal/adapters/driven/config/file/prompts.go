package file

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/styleaudit/internal/core/ports/driven"
	"github.com/custodia-labs/styleaudit/internal/logger"
)

//go:embed defaults/*.txt defaults/README.md
var defaultFS embed.FS

var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore serves audit prompts from a user-editable directory.
// The directory is seeded with the built-in prompts on first use; a file
// that is missing or fails validation falls back to its built-in version.
type PromptStore struct {
	dir string

	seedOnce sync.Once
	seedErr  error

	mu    sync.RWMutex
	cache map[string]string
}

// NewPromptStore creates a prompt store rooted at dir.
// An empty dir means ~/.styleaudit/prompts. No I/O happens until Load.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".styleaudit", "prompts")
	}
	return &PromptStore{dir: dir, cache: make(map[string]string)}, nil
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Load returns the named prompt.
func (s *PromptStore) Load(name string) (string, error) {
	builtin, err := defaultPrompt(name)
	if err != nil {
		return "", err
	}

	s.seedOnce.Do(func() { s.seedErr = s.seed() })
	if s.seedErr != nil {
		logger.Debug("prompt directory unavailable, using built-in %s: %v", name, s.seedErr)
		return builtin, nil
	}

	s.mu.RLock()
	cached, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	prompt := builtin
	data, err := os.ReadFile(filepath.Join(s.dir, name+".txt"))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		logger.Warn("reading prompt %s: %v", name, err)
	default:
		custom := strings.TrimSpace(string(data))
		if verr := validatePrompt(name, custom); verr != nil {
			logger.Warn("ignoring prompt %s: %v", name, verr)
		} else {
			prompt = custom
		}
	}

	s.mu.Lock()
	s.cache[name] = prompt
	s.mu.Unlock()
	return prompt, nil
}

// Reload drops cached prompts so the next Load reads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// seed creates the directory and writes every built-in file that is absent.
func (s *PromptStore) seed() error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}

	entries, err := defaultFS.ReadDir("defaults")
	if err != nil {
		return err
	}
	for _, e := range entries {
		path := filepath.Join(s.dir, e.Name())
		if _, err := os.Stat(path); err == nil {
			continue
		}
		data, err := defaultFS.ReadFile("defaults/" + e.Name())
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return fmt.Errorf("write %s: %w", e.Name(), err)
		}
	}
	return nil
}

func defaultPrompt(name string) (string, error) {
	data, err := defaultFS.ReadFile("defaults/" + name + ".txt")
	if err != nil {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	return strings.TrimSpace(string(data)), nil
}

// validatePrompt rejects empty prompts and request templates with more
// than one %s placeholder.
func validatePrompt(name, prompt string) error {
	if prompt == "" {
		return errors.New("file is empty")
	}
	if name == driven.PromptAuditRequest && strings.Count(prompt, "%s") > 1 {
		return errors.New("more than one %s placeholder")
	}
	return nil
}
