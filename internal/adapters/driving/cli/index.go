package cli

import (
	"errors"
	"fmt"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
	"github.com/custodia-labs/styleaudit/internal/core/services"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build or refresh the style-guide index",
	Long: `Loads the style guides, skipping hidden ones, and rebuilds the retrieval
index if the guide set changed since the last build.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

// progressReporter is implemented by index services that report embedding progress.
type progressReporter interface {
	SetProgress(fn services.ProgressFunc)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	if reporter, ok := indexService.(progressReporter); ok && isTerminal(cmd.ErrOrStderr()) {
		var (
			mu  sync.Mutex
			bar *progressbar.ProgressBar
		)
		reporter.SetProgress(func(done, total int) {
			mu.Lock()
			defer mu.Unlock()
			if bar == nil {
				bar = newProgressBar(cmd.ErrOrStderr(), total, "[cyan]Embedding[reset]")
			}
			_ = bar.Set(done)
		})
		defer reporter.SetProgress(nil)
	}

	stats, err := indexService.Refresh(cmd.Context())
	if errors.Is(err, domain.ErrNoGuides) {
		cmd.Println("No style guides found. Add guides to the guide directory and run again.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("index failed: %w", err)
	}

	printStats(cmd, stats)
	return nil
}

func printStats(cmd *cobra.Command, stats domain.IndexStats) {
	cmd.Printf("Indexed %d chunks from %d guides.\n", stats.Chunks, stats.Guides)
	if stats.Fingerprint != "" {
		cmd.Printf("Fingerprint: %s\n", stats.Fingerprint)
	}
	if stats.Restored {
		cmd.Println("Restored from snapshot.")
	}
}
