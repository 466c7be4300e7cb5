package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
)

func TestSettingsCmd_Show(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "[Guides]")
	assert.Contains(t, out, "Chunk size: 1000")
	assert.Contains(t, out, "Relevance threshold: 0.60")
	assert.Contains(t, out, "Provider: Ollama (local)")
	assert.Contains(t, out, "Rate limit: unlimited")
	assert.Contains(t, out, "Tool server: (built-in)")
	assert.Contains(t, out, "Address: 127.0.0.1:8080")
}

func TestSettingsCmd_Set(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "settings", "set", "embedding.provider", "hash")
	require.NoError(t, err)
	assert.Contains(t, out, "Set embedding.provider = hash")

	settings, err := testEnv.settings.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.EmbeddingProviderHash, settings.Embedding.Provider)

	out, err = runCommand(t, "settings")
	require.NoError(t, err)
	assert.Contains(t, out, "Provider: Hash (offline, lexical only)")
	assert.NotContains(t, out, "Rate limit")
}

func TestSettingsCmd_SetInvalid(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := runCommand(t, "settings", "set", "index.chunk_size", "huge")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsSetCmd_ListsKeys(t *testing.T) {
	assert.Contains(t, settingsSetCmd.Long, "agent.tool_server")
	assert.Contains(t, settingsSetCmd.Long, "guides.dir")
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, "(not set)", orNotSet(""))
	assert.Equal(t, "x", orNotSet("x"))
	assert.Equal(t, "fallback", orDefault("", "fallback"))
}

func TestRateLimit(t *testing.T) {
	assert.Equal(t, "unlimited", rateLimit(0))
	assert.Equal(t, "10 req/s", rateLimit(10))
}
