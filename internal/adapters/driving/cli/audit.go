package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
	"github.com/custodia-labs/styleaudit/internal/core/services"
)

var (
	auditOutput    string
	auditJSON      bool
	auditReject    []int
	auditRejectAll bool
)

var auditCmd = &cobra.Command{
	Use:   "audit [file]",
	Short: "Audit a document against the style guides",
	Long: `Parses a .docx, .md or .txt document into headings, paragraphs and list
items, and asks the reasoning agent to review each one in context.

Every chunk gets feedback and a proposed rewrite. The run ends with a score
for each writing quality. Use --output to write the revised document with
every proposal accepted, except those turned down with --reject or
--reject-all. A saved report can be exported again with "report export".`,
	Args: cobra.ExactArgs(1),
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().StringVarP(&auditOutput, "output", "o", "", "write the revised document to this file")
	auditCmd.Flags().BoolVar(&auditJSON, "json", false, "output the report as JSON")
	auditCmd.Flags().IntSliceVar(&auditReject, "reject", nil, "finding numbers whose proposals are not applied (e.g. 2,5)")
	auditCmd.Flags().BoolVar(&auditRejectAll, "reject-all", false, "keep the original text for every finding")
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	if documentParser == nil || newAuditor == nil {
		return errors.New("audit service not configured")
	}
	ctx := cmd.Context()
	path := args[0]

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	chunks, err := documentParser.Parse(ctx, filepath.Base(path), content)
	if err != nil {
		return fmt.Errorf("failed to parse document: %w", err)
	}
	if len(chunks) == 0 {
		cmd.Println("Document has no content to audit.")
		return nil
	}

	auditor, closer, err := newAuditor(ctx)
	if err != nil {
		return fmt.Errorf("failed to start reasoning agent: %w", err)
	}
	defer closer.Close() //nolint:errcheck

	progress := newAuditProgress(cmd.ErrOrStderr(), len(chunks))
	report, err := auditor.Audit(ctx, filepath.Base(path), chunks, progress)
	progress.Done()
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}

	if auditOutput != "" {
		review := services.Review{Reject: auditReject, RejectAll: auditRejectAll}
		if err := writeRevised(auditOutput, report.Findings, review); err != nil {
			return err
		}
		cmd.PrintErrf("Revised document written to %s\n", auditOutput)
	}

	if auditJSON {
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

// writeRevised assembles the revised document and writes it to path.
func writeRevised(path string, findings []domain.AuditFinding, review services.Review) error {
	revised, err := services.RevisedDocument(findings, review)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(revised+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write revised document: %w", err)
	}
	return nil
}
