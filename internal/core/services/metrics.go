package services

import (
	"regexp"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
)

// metricPenalty is subtracted from a metric at most once per finding.
const metricPenalty = 10

// metricRule lowers a metric when feedback mentions any of its keywords.
type metricRule struct {
	metric  domain.Metric
	pattern *regexp.Regexp
}

// Credible and Compelling have no rules yet; they stay at MaxScore.
var metricRules = []metricRule{
	{domain.MetricConcise, regexp.MustCompile(`(?i)\b(?:wordy|brevity|filler)\b`)},
	{domain.MetricClear, regexp.MustCompile(`(?i)\b(?:jargon|acronym|unclear)\b`)},
	{domain.MetricConversational, regexp.MustCompile(`(?i)\b(?:formal|passive|corporate)\b`)},
}

// SummarizeMetrics scores a set of findings. Every metric starts at
// domain.MaxScore and each finding whose feedback matches a rule costs that
// metric metricPenalty points, floored at zero.
func SummarizeMetrics(findings []domain.AuditFinding) domain.Metrics {
	metrics := domain.NewMetrics()
	for _, f := range findings {
		for _, rule := range metricRules {
			if rule.pattern.MatchString(f.Feedback) {
				metrics[rule.metric] = max(0, metrics[rule.metric]-metricPenalty)
			}
		}
	}
	return metrics
}
