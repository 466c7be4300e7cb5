package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
)

// Review holds the reviewer's decisions on a report's proposals.
// Reject lists finding numbers, 1-based as reports show them.
type Review struct {
	Reject    []int
	RejectAll bool
}

// RevisedDocument assembles the document, accepting every non-empty proposal
// the review does not reject. Rejected findings and findings without a
// proposal keep their original text. Blocks are separated by a blank line.
func RevisedDocument(findings []domain.AuditFinding, review Review) (string, error) {
	rejected := make(map[int]bool, len(review.Reject))
	for _, n := range review.Reject {
		if n < 1 || n > len(findings) {
			return "", fmt.Errorf("%w: finding %d does not exist (report has %d)",
				domain.ErrInvalidInput, n, len(findings))
		}
		rejected[n-1] = true
	}

	blocks := make([]string, 0, len(findings))
	for i, f := range findings {
		text := f.ProposedText
		if review.RejectAll || rejected[i] || strings.TrimSpace(text) == "" {
			text = f.OriginalText
		}
		blocks = append(blocks, strings.TrimSpace(text))
	}
	return strings.Join(blocks, "\n\n"), nil
}
