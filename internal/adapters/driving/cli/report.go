package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/styleaudit/internal/core/services"
)

var (
	reportLimit     int
	reportJSON      bool
	reportOutput    string
	reportReject    []int
	reportRejectAll bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Browse past audit reports",
}

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent audit reports",
	Args:  cobra.NoArgs,
	RunE:  runReportList,
}

var reportShowCmd = &cobra.Command{
	Use:   "show [report-id]",
	Short: "Show an audit report",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportShow,
}

var reportExportCmd = &cobra.Command{
	Use:   "export [report-id]",
	Short: "Write the revised document from a saved report",
	Long: `Assembles the revised document from a saved audit report. Every proposal
is accepted unless its finding number is passed to --reject, or --reject-all
is set. Without --output the document is printed.`,
	Args: cobra.ExactArgs(1),
	RunE: runReportExport,
}

func init() {
	reportListCmd.Flags().IntVarP(&reportLimit, "limit", "n", 20, "maximum number of reports")
	reportShowCmd.Flags().BoolVar(&reportJSON, "json", false, "output the report as JSON")
	reportCmd.AddCommand(reportListCmd)
	reportExportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "write the revised document to this file")
	reportExportCmd.Flags().IntSliceVar(&reportReject, "reject", nil, "finding numbers whose proposals are not applied (e.g. 2,5)")
	reportExportCmd.Flags().BoolVar(&reportRejectAll, "reject-all", false, "keep the original text for every finding")
	reportCmd.AddCommand(reportShowCmd)
	reportCmd.AddCommand(reportExportCmd)
	rootCmd.AddCommand(reportCmd)
}

func runReportList(cmd *cobra.Command, _ []string) error {
	if reportService == nil {
		return errors.New("report service not configured")
	}

	reports, err := reportService.List(cmd.Context(), reportLimit)
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}
	if len(reports) == 0 {
		cmd.Println("No audit reports yet.")
		return nil
	}

	cmd.Printf("%-36s  %-20s  %8s  %s\n", "ID", "COMPLETED", "FINDINGS", "SOURCE")
	for _, r := range reports {
		cmd.Printf("%-36s  %-20s  %8d  %s\n",
			r.ID, r.CompletedAt.Local().Format("2006-01-02 15:04:05"), r.Findings, r.Source)
	}
	return nil
}

func runReportShow(cmd *cobra.Command, args []string) error {
	if reportService == nil {
		return errors.New("report service not configured")
	}

	report, err := reportService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get report: %w", err)
	}

	if reportJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	renderReport(cmd.OutOrStdout(), report)
	return nil
}

func runReportExport(cmd *cobra.Command, args []string) error {
	if reportService == nil {
		return errors.New("report service not configured")
	}

	report, err := reportService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get report: %w", err)
	}

	review := services.Review{Reject: reportReject, RejectAll: reportRejectAll}
	if reportOutput == "" {
		revised, err := services.RevisedDocument(report.Findings, review)
		if err != nil {
			return err
		}
		cmd.Println(revised)
		return nil
	}

	if err := writeRevised(reportOutput, report.Findings, review); err != nil {
		return err
	}
	cmd.PrintErrf("Revised document written to %s\n", reportOutput)
	return nil
}
