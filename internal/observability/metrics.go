package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "chronam_essays"

// Metrics счётчики одного запуска; выгружаются в textfile для node_exporter
type Metrics struct {
	registry *prometheus.Registry

	PagesFetched      prometheus.Counter
	LinksCollected    prometheus.Counter
	RecordsAttempted  prometheus.Counter
	RecordsFetched    prometheus.Counter
	RecordsFailed     prometheus.Counter
	EssaysAnalyzed    prometheus.Counter
	NormalizeFailures prometheus.Counter
	NonEnglishEssays  prometheus.Counter
}

func NewMetrics() *Metrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      name,
			Help:      help,
		})
	}

	m := &Metrics{
		registry:          prometheus.NewRegistry(),
		PagesFetched:      counter("listing_pages_fetched_total", "Listing pages fetched by the link collector."),
		LinksCollected:    counter("links_collected_total", "Catalog links collected from listing pages."),
		RecordsAttempted:  counter("records_attempted_total", "Catalog record fetches attempted."),
		RecordsFetched:    counter("records_fetched_total", "Catalog records fetched and projected."),
		RecordsFailed:     counter("records_failed_total", "Catalog record fetches written to the error log."),
		EssaysAnalyzed:    counter("essays_analyzed_total", "Title essays run through the analyzer."),
		NormalizeFailures: counter("essay_normalize_failures_total", "Title essays whose markup could not be stripped."),
		NonEnglishEssays:  counter("essays_non_english_total", "Title essays not detected as English."),
	}

	m.registry.MustRegister(
		m.PagesFetched,
		m.LinksCollected,
		m.RecordsAttempted,
		m.RecordsFetched,
		m.RecordsFailed,
		m.EssaysAnalyzed,
		m.NormalizeFailures,
		m.NonEnglishEssays,
	)

	return m
}

// WriteTextfile записывает текущие значения в файл; при пустом пути ничего не делает
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
