// Package cli implements the styleaudit command line.
package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/styleaudit/internal/adapters/driving/mcp"
	"github.com/custodia-labs/styleaudit/internal/core/domain"
	"github.com/custodia-labs/styleaudit/internal/core/ports/driving"
	"github.com/custodia-labs/styleaudit/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// DocumentParser splits a document into audit chunks.
type DocumentParser interface {
	Parse(ctx context.Context, name string, content []byte) ([]domain.DocumentChunk, error)
}

// AuditorFactory connects the reasoning agent and returns an audit service.
// The closer releases the agent's tool session.
type AuditorFactory func(ctx context.Context) (driving.AuditService, io.Closer, error)

// GuideWatcher watches the guide directory for changes.
type GuideWatcher interface {
	Start(ctx context.Context) error
	Stop()
}

// Services holds everything the commands drive.
type Services struct {
	Search     driving.SearchService
	Index      driving.IndexService
	Guides     driving.GuideService
	Reports    driving.ReportService
	Settings   driving.SettingsService
	Parser     DocumentParser
	NewAuditor AuditorFactory
	MCPServer  *mcp.Server
	Watcher    GuideWatcher
}

var (
	searchService   driving.SearchService
	indexService    driving.IndexService
	guideService    driving.GuideService
	reportService   driving.ReportService
	settingsService driving.SettingsService
	documentParser  DocumentParser
	newAuditor      AuditorFactory
	mcpServer       *mcp.Server
	guideWatcher    GuideWatcher
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "styleaudit",
	Short: "Audit documents against your style guides",
	Long: `styleaudit reviews a document chunk by chunk with a local reasoning agent.
The agent looks up your style guides through a semantic search tool, then
returns feedback and a proposed rewrite for every heading, paragraph and
list item, plus a score for each writing quality.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetServices injects the services used by the commands.
func SetServices(s Services) {
	searchService = s.Search
	indexService = s.Index
	guideService = s.Guides
	reportService = s.Reports
	settingsService = s.Settings
	documentParser = s.Parser
	newAuditor = s.NewAuditor
	mcpServer = s.MCPServer
	guideWatcher = s.Watcher
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// startWatcher starts the guide watcher when requested and returns its stop function.
func startWatcher(ctx context.Context, cmd *cobra.Command, enabled bool) (func(), error) {
	if !enabled || guideWatcher == nil {
		return func() {}, nil
	}
	if err := guideWatcher.Start(ctx); err != nil {
		return nil, err
	}
	cmd.PrintErrln("Watching guide directory for changes.")
	return guideWatcher.Stop, nil
}
