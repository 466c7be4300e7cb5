package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	agentollama "github.com/custodia-labs/styleaudit/internal/adapters/driven/agent/ollama"
	"github.com/custodia-labs/styleaudit/internal/adapters/driven/config/file"
	"github.com/custodia-labs/styleaudit/internal/adapters/driven/embedding/hash"
	embedollama "github.com/custodia-labs/styleaudit/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/styleaudit/internal/adapters/driven/guides/filesystem"
	"github.com/custodia-labs/styleaudit/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/styleaudit/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/styleaudit/internal/adapters/driven/watcher"
	"github.com/custodia-labs/styleaudit/internal/adapters/driving/cli"
	"github.com/custodia-labs/styleaudit/internal/adapters/driving/mcp"
	"github.com/custodia-labs/styleaudit/internal/core/domain"
	"github.com/custodia-labs/styleaudit/internal/core/ports/driven"
	"github.com/custodia-labs/styleaudit/internal/core/ports/driving"
	"github.com/custodia-labs/styleaudit/internal/core/services"
	"github.com/custodia-labs/styleaudit/internal/logger"
	"github.com/custodia-labs/styleaudit/internal/normalisers"
	"github.com/custodia-labs/styleaudit/internal/parsers"
	"github.com/custodia-labs/styleaudit/internal/postprocessors"
)

// Environment variables that override config.toml.
const (
	envOllamaHost = "OLLAMA_HOST"
	envGuidesDir  = "STYLEAUDIT_GUIDES_DIR"
	envHome       = "STYLEAUDIT_HOME"
)

// overrides carries environment settings applied on top of config.toml.
type overrides struct {
	home       string
	ollamaHost string
	guidesDir  string
}

func envOverrides() overrides {
	return overrides{
		home:       os.Getenv(envHome),
		ollamaHost: os.Getenv(envOllamaHost),
		guidesDir:  os.Getenv(envGuidesDir),
	}
}

// app owns the wired services and the resources they hold open.
type app struct {
	services cli.Services
	closers  []io.Closer
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	return errors.Join(errs...)
}

func newApp(env overrides) (*app, error) {
	home, err := homeDir(env.home)
	if err != nil {
		return nil, err
	}

	configStore, err := file.NewConfigStore(home)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	applyOverrides(settings, env, home)

	a := &app{}

	store, err := sqlite.NewStore(settings.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	a.closers = append(a.closers, store)

	hidden, err := file.NewHiddenGuideStore(settings.Guides.HiddenFile)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	prompts, err := file.NewPromptStore(filepath.Join(home, "prompts"))
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	embedder, err := newEmbedder(settings.Embedding)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.closers = append(a.closers, embedder)

	pipeline, err := postprocessors.DefaultPipeline(settings.Index.ChunkSize, settings.Index.ChunkOverlap)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("building chunk pipeline: %w", err)
	}

	source := filesystem.New(settings.Guides.Dir, normalisers.DefaultRegistry(),
		filesystem.WithInclude(settings.Guides.Include...),
		filesystem.WithExclude(settings.Guides.Exclude...),
	)

	index := services.NewIndexStore(
		services.IndexConfig{ChunkSize: settings.Index.ChunkSize, ChunkOverlap: settings.Index.ChunkOverlap},
		source, hidden, embedder, pipeline, memory.NewVectorIndexFactory(), store.SnapshotStore(),
	)
	search := services.NewStyleGuideSearch(index, embedder, services.SearchConfig{
		RelevanceThreshold: settings.Index.RelevanceThreshold,
		DefaultTopK:        settings.Index.TopK,
	})

	toolServer, err := mcp.NewServer(&mcp.Ports{
		Search: search,
		Guides: services.NewGuideService(source, hidden),
	})
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	reports := store.ReportStore()
	a.services = cli.Services{
		Search:     search,
		Index:      index,
		Guides:     services.NewGuideService(source, hidden),
		Reports:    services.NewReportService(reports),
		Settings:   settingsService,
		Parser:     parsers.New(),
		NewAuditor: auditorFactory(settings.Agent, toolServer, prompts, reports),
		MCPServer:  toolServer,
		Watcher: watcher.New(settings.Guides.Dir, func(ctx context.Context) {
			if _, err := index.Refresh(ctx); err != nil {
				logger.Warn("Index refresh after guide change failed: %v", err)
			}
		},
			watcher.WithLogger(logger.L()),
			watcher.WithExtensions(filesystem.Extensions()...),
		),
	}
	return a, nil
}

func newEmbedder(cfg domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if cfg.Provider == domain.EmbeddingProviderHash {
		return hash.NewEmbeddingService(hash.DefaultDimensions), nil
	}
	svc, err := embedollama.NewEmbeddingService(embedollama.Config{
		BaseURL:           cfg.BaseURL,
		Model:             cfg.Model,
		RequestsPerSecond: float64(cfg.RateLimit),
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// auditorFactory connects the reasoning agent on first use. The agent reaches
// the search tool in-process unless an external tool server is configured.
func auditorFactory(
	cfg domain.AgentSettings,
	toolServer *mcp.Server,
	prompts driven.PromptStore,
	reports driven.ReportStore,
) cli.AuditorFactory {
	return func(ctx context.Context) (driving.AuditService, io.Closer, error) {
		var (
			session *agentollama.Session
			err     error
		)
		if cfg.ToolServer != "" {
			logger.Debug("Starting external tool server: %s", cfg.ToolServer)
			session, err = agentollama.ConnectCommand(ctx, cfg.ToolServer)
		} else {
			session, err = agentollama.ConnectInProcess(ctx, toolServer.MCP())
		}
		if err != nil {
			return nil, nil, err
		}

		agent, err := agentollama.New(agentollama.Config{
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxSteps:    cfg.MaxSteps,
			JSONFormat:  cfg.JSONFormat,
		}, session, prompts)
		if err != nil {
			_ = session.Close()
			return nil, nil, err
		}
		return services.NewAuditService(agent, reports), session, nil
	}
}

// homeDir returns the styleaudit home, ~/.styleaudit unless overridden.
func homeDir(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".styleaudit"), nil
}

// applyOverrides applies environment overrides and resolves relative paths against home.
func applyOverrides(settings *domain.AppSettings, env overrides, home string) {
	if env.guidesDir != "" {
		settings.Guides.Dir = env.guidesDir
	}
	if env.ollamaHost != "" {
		host := ollamaURL(env.ollamaHost)
		settings.Embedding.BaseURL = host
		settings.Agent.BaseURL = host
	}

	settings.Guides.Dir = resolve(home, settings.Guides.Dir)
	if settings.Guides.HiddenFile == "" {
		settings.Guides.HiddenFile = filepath.Join(home, "hidden_guides.json")
	}
	settings.Guides.HiddenFile = resolve(home, settings.Guides.HiddenFile)
	if settings.Storage.DataDir == "" {
		settings.Storage.DataDir = filepath.Join(home, "data")
	}
	settings.Storage.DataDir = resolve(home, settings.Storage.DataDir)
}

// ollamaURL accepts OLLAMA_HOST in its bare host:port form as well as a full URL.
func ollamaURL(host string) string {
	if strings.Contains(host, "://") {
		return host
	}
	return "http://" + host
}

func resolve(home, path string) string {
	if strings.HasPrefix(path, "~/") {
		if userHome, err := os.UserHomeDir(); err == nil {
			return filepath.Join(userHome, path[2:])
		}
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(home, path)
}
