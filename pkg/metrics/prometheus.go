package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Merge states for RecordRaceMerged.
const (
	StateFull    = "full"
	StatePreRace = "pre_race"
)

// Manager manages all Prometheus metrics for an ingestion run.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      prometheus.Labels
	registry         *prometheus.Registry

	// Record decoding
	recordsDecoded   *prometheus.CounterVec
	recordsSkipped   *prometheus.CounterVec
	recordsFiltered  *prometheus.CounterVec
	filesScanned     *prometheus.CounterVec
	fileScanDuration *prometheus.HistogramVec

	// Race building
	racesMerged   *prometheus.CounterVec
	racesDropped  prometheus.Counter
	racesWritten  prometheus.Counter
	horsesWritten prometheus.Counter
	writeErrors   prometheus.Counter

	// Run state
	raceGroups       prometheus.Gauge
	summaryIndexSize prometheus.Gauge
	horses           prometheus.Gauge
	activeWorkers    prometheus.Gauge
	runDuration      *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "jvrace",
		subsystem:        "ingest",
		histogramBuckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000, 60000},
		enabled:          true,
		registry:         prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one block per metric
	auto := promauto.With(m.registry)

	m.recordsDecoded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "records_decoded_total",
		Help:        "Records decoded successfully, by record kind",
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.recordsSkipped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "records_skipped_total",
		Help:        "Records rejected by a decoder, by record kind and reason",
		ConstLabels: m.constLabels,
	}, []string{"kind", "reason"})

	m.recordsFiltered = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "records_filtered_total",
		Help:        "Records dropped by the raw date prefilter before decoding",
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.filesScanned = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "files_scanned_total",
		Help:        "Source files fully scanned, by record kind",
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.fileScanDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "file_scan_duration_milliseconds",
		Help:        "Time to scan one source file in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.racesMerged = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "races_merged_total",
		Help:        "Race masters built, by state (full or pre_race)",
		ConstLabels: m.constLabels,
	}, []string{"state"})

	m.racesDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "races_dropped_total",
		Help:        "Race groups dropped because they had no entries",
		ConstLabels: m.constLabels,
	})

	m.racesWritten = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "races_written_total",
		Help:        "Race master documents written",
		ConstLabels: m.constLabels,
	})

	m.horsesWritten = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "horses_written_total",
		Help:        "Horse master documents written",
		ConstLabels: m.constLabels,
	})

	m.writeErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "write_errors_total",
		Help:        "Output documents that failed to write",
		ConstLabels: m.constLabels,
	})

	m.raceGroups = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "race_groups",
		Help:        "Distinct race ids collected in the current run",
		ConstLabels: m.constLabels,
	})

	m.summaryIndexSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "summary_index_size",
		Help:        "Race summaries held in the SR index",
		ConstLabels: m.constLabels,
	})

	m.horses = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "horses",
		Help:        "Unique horses collected in the current run",
		ConstLabels: m.constLabels,
	})

	m.activeWorkers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "active_workers",
		Help:        "Workers currently scanning a file",
		ConstLabels: m.constLabels,
	})

	m.runDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "run_duration_milliseconds",
		Help:        "Wall time of a builder run in milliseconds, by mode",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"mode"})
}

// RecordDecoded increments the decoded counter for kind.
func (m *Manager) RecordDecoded(kind string) {
	if m.enabled {
		m.recordsDecoded.WithLabelValues(kind).Inc()
	}
}

// RecordSkipped increments the skipped counter for kind and reason.
func (m *Manager) RecordSkipped(kind, reason string) {
	if m.enabled {
		m.recordsSkipped.WithLabelValues(kind, reason).Inc()
	}
}

// RecordFiltered increments the prefilter counter for kind.
func (m *Manager) RecordFiltered(kind string) {
	if m.enabled {
		m.recordsFiltered.WithLabelValues(kind).Inc()
	}
}

// RecordFileScanned counts a scanned file and its duration.
func (m *Manager) RecordFileScanned(kind string, durationMs float64) {
	if m.enabled {
		m.filesScanned.WithLabelValues(kind).Inc()
		m.fileScanDuration.WithLabelValues(kind).Observe(durationMs)
	}
}

// RecordRaceMerged counts a built race master in state.
func (m *Manager) RecordRaceMerged(state string) {
	if m.enabled {
		m.racesMerged.WithLabelValues(state).Inc()
	}
}

// RecordRaceDropped counts an empty race group.
func (m *Manager) RecordRaceDropped() {
	if m.enabled {
		m.racesDropped.Inc()
	}
}

// RecordRaceWritten counts a written race master.
func (m *Manager) RecordRaceWritten() {
	if m.enabled {
		m.racesWritten.Inc()
	}
}

// RecordHorseWritten counts a written horse master.
func (m *Manager) RecordHorseWritten() {
	if m.enabled {
		m.horsesWritten.Inc()
	}
}

// RecordWriteError counts a failed output write.
func (m *Manager) RecordWriteError() {
	if m.enabled {
		m.writeErrors.Inc()
	}
}

// UpdateRaceGroups sets the race group gauge.
func (m *Manager) UpdateRaceGroups(count int) {
	if m.enabled {
		m.raceGroups.Set(float64(count))
	}
}

// UpdateSummaryIndexSize sets the SR index gauge.
func (m *Manager) UpdateSummaryIndexSize(count int) {
	if m.enabled {
		m.summaryIndexSize.Set(float64(count))
	}
}

// UpdateHorses sets the unique horse gauge.
func (m *Manager) UpdateHorses(count int) {
	if m.enabled {
		m.horses.Set(float64(count))
	}
}

// AddActiveWorkers adjusts the active worker gauge by delta.
func (m *Manager) AddActiveWorkers(delta int) {
	if m.enabled {
		m.activeWorkers.Add(float64(delta))
	}
}

// RecordRunDuration records a run's wall time for mode.
func (m *Manager) RecordRunDuration(mode string, durationMs float64) {
	if m.enabled {
		m.runDuration.WithLabelValues(mode).Observe(durationMs)
	}
}

// Registry returns the registry the manager's metrics are registered on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes every metric on the manager's registry to path in the
// text exposition format, for the node exporter textfile collector.
func (m *Manager) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteTextfile, path, err)
	}
	return nil
}

// Global recording functions operate on the process-wide manager.

// RecordDecoded increments the decoded counter for kind.
func RecordDecoded(kind string) { globalManager.RecordDecoded(kind) }

// RecordSkipped increments the skipped counter for kind and reason.
func RecordSkipped(kind, reason string) { globalManager.RecordSkipped(kind, reason) }

// RecordFiltered increments the prefilter counter for kind.
func RecordFiltered(kind string) { globalManager.RecordFiltered(kind) }

// RecordFileScanned counts a scanned file and its duration.
func RecordFileScanned(kind string, durationMs float64) {
	globalManager.RecordFileScanned(kind, durationMs)
}

// RecordRaceMerged counts a built race master in state.
func RecordRaceMerged(state string) { globalManager.RecordRaceMerged(state) }

// RecordRaceDropped counts an empty race group.
func RecordRaceDropped() { globalManager.RecordRaceDropped() }

// RecordRaceWritten counts a written race master.
func RecordRaceWritten() { globalManager.RecordRaceWritten() }

// RecordHorseWritten counts a written horse master.
func RecordHorseWritten() { globalManager.RecordHorseWritten() }

// RecordWriteError counts a failed output write.
func RecordWriteError() { globalManager.RecordWriteError() }

// UpdateRaceGroups sets the race group gauge.
func UpdateRaceGroups(count int) { globalManager.UpdateRaceGroups(count) }

// UpdateSummaryIndexSize sets the SR index gauge.
func UpdateSummaryIndexSize(count int) { globalManager.UpdateSummaryIndexSize(count) }

// UpdateHorses sets the unique horse gauge.
func UpdateHorses(count int) { globalManager.UpdateHorses(count) }

// AddActiveWorkers adjusts the active worker gauge.
func AddActiveWorkers(delta int) { globalManager.AddActiveWorkers(delta) }

// RecordRunDuration records a run's wall time for mode.
func RecordRunDuration(mode string, durationMs float64) {
	globalManager.RecordRunDuration(mode, durationMs)
}

// WriteTextfile writes the process-wide metrics to path.
func WriteTextfile(path string) error { return globalManager.WriteTextfile(path) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
