package cli

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/styleaudit/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/styleaudit/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serve search, audit, guide management and report history over HTTP.

Endpoints:
  GET    /health
  POST   /api/v1/search
  POST   /api/v1/audit
  GET    /api/v1/guides
  PUT    /api/v1/guides/{id}/hidden
  DELETE /api/v1/guides/{id}/hidden
  GET    /api/v1/reports
  GET    /api/v1/reports/{id}`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("host", "", "listen host (default from server.host)")
	serveCmd.Flags().IntP("port", "p", 0, "listen port (default from server.port)")
	serveCmd.Flags().Bool("watch", false, "refresh the index when guide files change")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if searchService == nil || documentParser == nil || newAuditor == nil {
		return errors.New("services not configured")
	}
	ctx := cmd.Context()

	addr, err := serveAddr(cmd)
	if err != nil {
		return err
	}
	watch, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return fmt.Errorf("getting watch flag: %w", err)
	}

	auditor, closer, err := newAuditor(ctx)
	if err != nil {
		return fmt.Errorf("failed to start reasoning agent: %w", err)
	}
	defer closer.Close() //nolint:errcheck

	server, err := httpapi.NewServer(&httpapi.Ports{
		Search:  searchService,
		Audit:   auditor,
		Parser:  documentParser,
		Guides:  guideService,
		Reports: reportService,
	}, logger.L())
	if err != nil {
		return err
	}

	stop, err := startWatcher(ctx, cmd, watch)
	if err != nil {
		return fmt.Errorf("failed to watch guides: %w", err)
	}
	defer stop()

	cmd.PrintErrf("API listening on http://%s\n", addr)
	return server.Run(ctx, addr)
}

// serveAddr resolves the listen address from flags, falling back to settings.
func serveAddr(cmd *cobra.Command) (string, error) {
	host, err := cmd.Flags().GetString("host")
	if err != nil {
		return "", fmt.Errorf("getting host flag: %w", err)
	}
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return "", fmt.Errorf("getting port flag: %w", err)
	}

	if settingsService != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return "", fmt.Errorf("failed to get settings: %w", err)
		}
		if host == "" {
			host = settings.Server.Host
		}
		if port == 0 {
			port = settings.Server.Port
		}
	}
	if port == 0 {
		port = 8080
	}
	return net.JoinHostPort(host, strconv.Itoa(port)), nil
}
