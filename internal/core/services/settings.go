package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
	"github.com/custodia-labs/styleaudit/internal/core/ports/driven"
	"github.com/custodia-labs/styleaudit/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyGuidesDir         = "guides.dir"
	keyGuidesHiddenFile  = "guides.hidden_file"
	keyGuidesInclude     = "guides.include"
	keyGuidesExclude     = "guides.exclude"
	keyIndexChunkSize    = "index.chunk_size"
	keyIndexChunkOverlap = "index.chunk_overlap"
	keyIndexThreshold    = "index.relevance_threshold"
	keyIndexTopK         = "index.top_k"
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedRateLimit    = "embedding.rate_limit"
	keyAgentModel        = "agent.model"
	keyAgentBaseURL      = "agent.base_url"
	keyAgentTemperature  = "agent.temperature"
	keyAgentMaxSteps     = "agent.max_steps"
	keyAgentJSONFormat   = "agent.json_format"
	keyAgentToolServer   = "agent.tool_server"
	keyStorageDataDir    = "storage.data_dir"
	keyServerHost        = "server.host"
	keyServerPort        = "server.port"
)

// valueKind says how a raw string from Set is converted before storage.
type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindBool
	kindList
)

// settingKinds lists every key Set accepts.
var settingKinds = map[string]valueKind{
	keyGuidesDir:         kindString,
	keyGuidesHiddenFile:  kindString,
	keyGuidesInclude:     kindList,
	keyGuidesExclude:     kindList,
	keyIndexChunkSize:    kindInt,
	keyIndexChunkOverlap: kindInt,
	keyIndexThreshold:    kindFloat,
	keyIndexTopK:         kindInt,
	keyEmbedProvider:     kindString,
	keyEmbedModel:        kindString,
	keyEmbedBaseURL:      kindString,
	keyEmbedRateLimit:    kindInt,
	keyAgentModel:        kindString,
	keyAgentBaseURL:      kindString,
	keyAgentTemperature:  kindFloat,
	keyAgentMaxSteps:     kindInt,
	keyAgentJSONFormat:   kindBool,
	keyAgentToolServer:   kindString,
	keyStorageDataDir:    kindString,
	keyServerHost:        kindString,
	keyServerPort:        kindInt,
}

// SettingKeys returns every configurable key, sorted.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
	}
}

// Get retrieves current application settings with defaults applied.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Guides: domain.GuideSettings{
			Dir:        s.getString(keyGuidesDir, defaults.Guides.Dir),
			HiddenFile: s.getString(keyGuidesHiddenFile, defaults.Guides.HiddenFile),
			Include:    s.getStrings(keyGuidesInclude, defaults.Guides.Include),
			Exclude:    s.getStrings(keyGuidesExclude, defaults.Guides.Exclude),
		},
		Index: domain.IndexSettings{
			ChunkSize:          s.getInt(keyIndexChunkSize, defaults.Index.ChunkSize),
			ChunkOverlap:       s.getInt(keyIndexChunkOverlap, defaults.Index.ChunkOverlap),
			RelevanceThreshold: s.getFloat(keyIndexThreshold, defaults.Index.RelevanceThreshold),
			TopK:               s.getInt(keyIndexTopK, defaults.Index.TopK),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:  s.getProvider(defaults.Embedding.Provider),
			Model:     s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:   s.configStore.GetString(keyEmbedBaseURL),
			RateLimit: s.getInt(keyEmbedRateLimit, defaults.Embedding.RateLimit),
		},
		Agent: domain.AgentSettings{
			Model:       s.getString(keyAgentModel, defaults.Agent.Model),
			BaseURL:     s.configStore.GetString(keyAgentBaseURL),
			Temperature: s.getFloat(keyAgentTemperature, defaults.Agent.Temperature),
			MaxSteps:    s.getInt(keyAgentMaxSteps, defaults.Agent.MaxSteps),
			JSONFormat:  s.getBool(keyAgentJSONFormat, defaults.Agent.JSONFormat),
			ToolServer:  s.configStore.GetString(keyAgentToolServer),
		},
		Storage: domain.StorageSettings{
			DataDir: s.getString(keyStorageDataDir, defaults.Storage.DataDir),
		},
		Server: domain.ServerSettings{
			Host: s.getString(keyServerHost, defaults.Server.Host),
			Port: s.getInt(keyServerPort, defaults.Server.Port),
		},
	}

	return settings, nil
}

// Set parses value according to the key's type and persists it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("unknown setting %q: %w", key, domain.ErrInvalidInput)
	}

	parsed, err := parseSetting(key, kind, strings.TrimSpace(value))
	if err != nil {
		return err
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func parseSetting(key string, kind valueKind, value string) (any, error) {
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%s must be a non-negative integer: %w", key, domain.ErrInvalidInput)
		}
		return n, nil
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return nil, fmt.Errorf("%s must be a non-negative number: %w", key, domain.ErrInvalidInput)
		}
		return f, nil
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false: %w", key, domain.ErrInvalidInput)
		}
		return b, nil
	case kindList:
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return items, nil
	default:
		if key == keyEmbedProvider && !domain.EmbeddingProvider(value).IsValid() {
			return nil, fmt.Errorf("unknown embedding provider %q: %w", value, domain.ErrInvalidInput)
		}
		return value, nil
	}
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getStrings(key string, defaultVal []string) []string {
	if val := s.configStore.GetStringSlice(key); len(val) > 0 {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getProvider(defaultVal domain.EmbeddingProvider) domain.EmbeddingProvider {
	val := s.configStore.GetString(keyEmbedProvider)
	if val == "" {
		return defaultVal
	}
	provider := domain.EmbeddingProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
