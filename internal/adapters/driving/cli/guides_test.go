package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
)

func TestGuidesCmd_List(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	testEnv.guides.hidden["terms"] = true

	out, err := runCommand(t, "guides", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "voice/tone")
	assert.Regexp(t, `terms\s+xlsx\s+hidden\s+Word List`, out)
	assert.Regexp(t, `voice/tone\s+markdown\s+active\s+Tone`, out)
}

func TestGuidesCmd_DefaultsToList(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "guides")

	require.NoError(t, err)
	assert.Contains(t, out, "Word List")
}

func TestGuidesCmd_ListJSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "guides", "list", "--json")

	require.NoError(t, err)
	var guides []domain.GuideInfo
	require.NoError(t, json.Unmarshal([]byte(out), &guides))
	assert.Len(t, guides, 2)
}

func TestGuidesCmd_ListEmpty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	testEnv.guides.guides = nil

	out, err := runCommand(t, "guides", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No style guides found.")
}

func TestGuidesCmd_Show(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "guides", "show", "voice/tone")

	require.NoError(t, err)
	assert.Contains(t, out, "Tone")
	assert.Contains(t, out, "Guide text for voice/tone")
}

func TestGuidesCmd_HideUnhide(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "guides", "hide", "terms")
	require.NoError(t, err)
	assert.Contains(t, out, "Guide terms hidden")
	assert.True(t, testEnv.guides.hidden["terms"])

	out, err = runCommand(t, "guides", "unhide", "terms")
	require.NoError(t, err)
	assert.Contains(t, out, "Guide terms restored")
	assert.False(t, testEnv.guides.hidden["terms"])
}

func TestGuidesCmd_HideUnknown(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := runCommand(t, "guides", "hide", "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGuidesCmd_NotConfigured(t *testing.T) {
	SetServices(Services{})

	_, err := runCommand(t, "guides", "list")

	assert.ErrorContains(t, err, "guide service not configured")
}
