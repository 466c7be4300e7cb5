package domain

// Metric names one of the five qualitative scores.
type Metric string

// The five metrics, all starting at MaxScore.
const (
	MetricClear          Metric = "Clear"
	MetricConcise        Metric = "Concise"
	MetricConversational Metric = "Conversational"
	MetricCredible       Metric = "Credible"
	MetricCompelling     Metric = "Compelling"
)

// MaxScore is the starting value of every metric.
const MaxScore = 100

// Metrics maps each metric to a 0-100 score.
type Metrics map[Metric]int

// AllMetrics returns the metrics in display order.
func AllMetrics() []Metric {
	return []Metric{
		MetricClear,
		MetricConcise,
		MetricConversational,
		MetricCredible,
		MetricCompelling,
	}
}

// NewMetrics returns a Metrics with every score at MaxScore.
func NewMetrics() Metrics {
	m := make(Metrics, 5)
	for _, metric := range AllMetrics() {
		m[metric] = MaxScore
	}
	return m
}
