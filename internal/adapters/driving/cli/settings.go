package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
	"github.com/custodia-labs/styleaudit/internal/core/services"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change guide, index, embedding, agent and server settings.

Settings are stored in ~/.styleaudit/config.toml.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Long: `Change a single setting by its dotted key. List values are comma separated.

Keys:
  ` + strings.Join(services.SettingKeys(), "\n  "),
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Guides]")
	cmd.Printf("  Directory: %s\n", settings.Guides.Dir)
	cmd.Printf("  Hidden file: %s\n", orNotSet(settings.Guides.HiddenFile))
	cmd.Printf("  Include: %s\n", strings.Join(settings.Guides.Include, ", "))
	cmd.Printf("  Exclude: %s\n", orNotSet(strings.Join(settings.Guides.Exclude, ", ")))
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  Chunk size: %d\n", settings.Index.ChunkSize)
	cmd.Printf("  Chunk overlap: %d\n", settings.Index.ChunkOverlap)
	cmd.Printf("  Relevance threshold: %.2f\n", settings.Index.RelevanceThreshold)
	cmd.Printf("  Top K: %d\n", settings.Index.TopK)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	if settings.Embedding.Provider == domain.EmbeddingProviderOllama {
		cmd.Printf("  Model: %s\n", settings.Embedding.Model)
		cmd.Printf("  Base URL: %s\n", orNotSet(settings.Embedding.BaseURL))
		cmd.Printf("  Rate limit: %s\n", rateLimit(settings.Embedding.RateLimit))
	}
	cmd.Println()

	cmd.Println("[Agent]")
	cmd.Printf("  Model: %s\n", settings.Agent.Model)
	cmd.Printf("  Base URL: %s\n", orNotSet(settings.Agent.BaseURL))
	cmd.Printf("  Temperature: %.2f\n", settings.Agent.Temperature)
	cmd.Printf("  Max steps: %d\n", settings.Agent.MaxSteps)
	cmd.Printf("  JSON format: %t\n", settings.Agent.JSONFormat)
	cmd.Printf("  Tool server: %s\n", orDefault(settings.Agent.ToolServer, "(built-in)"))
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Data directory: %s\n", orNotSet(settings.Storage.DataDir))
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s:%d\n", settings.Server.Host, settings.Server.Port)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("Set %s = %s\n", args[0], args[1])
	return nil
}

func orNotSet(s string) string {
	return orDefault(s, "(not set)")
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func rateLimit(perSecond int) string {
	if perSecond <= 0 {
		return "unlimited"
	}
	return fmt.Sprintf("%d req/s", perSecond)
}
