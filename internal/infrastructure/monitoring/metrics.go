package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics of the shell service. Each instance
// owns its registry so several instances can coexist (tests, multiple servers).
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Navigation metrics
	AppsOpened      *prometheus.CounterVec
	AppsClosed      prometheus.Counter
	AppsRunning     prometheus.Gauge
	Transitions     *prometheus.CounterVec
	BackNavigations *prometheus.CounterVec

	// Escape-hatch probe metrics
	ProbeDuration prometheus.Histogram
	ProbeResults  *prometheus.CounterVec

	// Layout metrics
	LayoutWrites *prometheus.CounterVec
	LayoutLoads  *prometheus.CounterVec

	// Drag metrics
	DragGestures *prometheus.CounterVec

	// Cross-document message metrics
	Messages *prometheus.CounterVec

	// Catalog metrics
	CatalogApps    prometheus.Gauge
	CatalogUpdates *prometheus.CounterVec

	// Stream metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec
	Shells        prometheus.Gauge

	startTime time.Time
	snapshot  Snapshot
	mu        sync.RWMutex
}

// Snapshot holds current metric values for the JSON health endpoint
type Snapshot struct {
	TotalRequests     int64   `json:"total_requests"`
	TotalErrors       int64   `json:"total_errors"`
	RunningApps       int64   `json:"running_apps"`
	ActiveConnections int64   `json:"active_connections"`
	RejectedMessages  int64   `json:"rejected_messages"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
}

// NewMetrics creates a new metrics collector on a fresh registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shell_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"method", "path"},
		),

		AppsOpened: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_apps_opened_total",
				Help: "Apps opened, by mode (embedded, refocused, top_level)",
			},
			[]string{"mode"},
		),
		AppsClosed: f.NewCounter(
			prometheus.CounterOpts{
				Name: "shell_apps_closed_total",
				Help: "Apps closed",
			},
		),
		AppsRunning: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "shell_apps_running",
				Help: "Running apps across all shells",
			},
		),
		Transitions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_navigation_transitions_total",
				Help: "Navigation transitions by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		BackNavigations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_back_navigations_total",
				Help: "Platform back signals by resolution",
			},
			[]string{"resolution"},
		),

		ProbeDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "shell_probe_duration_seconds",
				Help:    "Escape-hatch probe duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .075, .1, .15, .25},
			},
		),
		ProbeResults: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_probe_results_total",
				Help: "Escape-hatch probe results (embed, top_level, error)",
			},
			[]string{"result"},
		),

		LayoutWrites: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_layout_writes_total",
				Help: "Layout persistence writes by outcome",
			},
			[]string{"outcome"},
		),
		LayoutLoads: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_layout_loads_total",
				Help: "Layout loads by outcome (stored, empty, degraded)",
			},
			[]string{"outcome"},
		),

		DragGestures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_drag_gestures_total",
				Help: "Completed drag gestures by kind",
			},
			[]string{"kind"},
		),

		Messages: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_messages_total",
				Help: "Cross-document messages by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),

		CatalogApps: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "shell_catalog_apps",
				Help: "Entries in the app catalog",
			},
		),
		CatalogUpdates: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_catalog_updates_total",
				Help: "Catalog replacements by source (fetch, push, seed)",
			},
			[]string{"source"},
		),

		WSConnections: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "shell_ws_connections",
				Help: "Active stream connections",
			},
		),
		WSMessages: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_ws_messages_total",
				Help: "Stream messages by direction and type",
			},
			[]string{"direction", "type"},
		),
		Shells: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "shell_installations_loaded",
				Help: "Shell instances held in memory",
			},
		),
	}

	return m
}

// Registry exposes the underlying registry (tests gather from it)
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus exposition handler for this registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalRequests++
	if status[0] == '4' || status[0] == '5' {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordOpen records an open by mode
func (m *Metrics) RecordOpen(mode string) {
	m.AppsOpened.WithLabelValues(mode).Inc()
}

// RecordClose records a close
func (m *Metrics) RecordClose() {
	m.AppsClosed.Inc()
}

// AddRunning adjusts the running-apps gauge by delta
func (m *Metrics) AddRunning(delta int) {
	m.AppsRunning.Add(float64(delta))
	m.mu.Lock()
	m.snapshot.RunningApps += int64(delta)
	m.mu.Unlock()
}

// RecordTransition records a navigation operation
func (m *Metrics) RecordTransition(operation, outcome string) {
	m.Transitions.WithLabelValues(operation, outcome).Inc()
}

// RecordBack records how a platform back signal resolved
func (m *Metrics) RecordBack(resolution string) {
	m.BackNavigations.WithLabelValues(resolution).Inc()
}

// RecordProbe records an escape-hatch probe
func (m *Metrics) RecordProbe(result string, duration time.Duration) {
	m.ProbeResults.WithLabelValues(result).Inc()
	m.ProbeDuration.Observe(duration.Seconds())
}

// RecordLayoutWrite records a layout persistence write
func (m *Metrics) RecordLayoutWrite(outcome string) {
	m.LayoutWrites.WithLabelValues(outcome).Inc()
}

// RecordLayoutLoad records a layout load
func (m *Metrics) RecordLayoutLoad(outcome string) {
	m.LayoutLoads.WithLabelValues(outcome).Inc()
}

// RecordDrag records a completed drag gesture
func (m *Metrics) RecordDrag(kind string) {
	m.DragGestures.WithLabelValues(kind).Inc()
}

// RecordMessage records a routed cross-document message
func (m *Metrics) RecordMessage(kind, outcome string) {
	m.Messages.WithLabelValues(kind, outcome).Inc()
	if outcome != "accepted" {
		m.mu.Lock()
		m.snapshot.RejectedMessages++
		m.mu.Unlock()
	}
}

// SetCatalogApps sets the catalog size
func (m *Metrics) SetCatalogApps(count int) {
	m.CatalogApps.Set(float64(count))
}

// RecordCatalogUpdate records a catalog replacement
func (m *Metrics) RecordCatalogUpdate(source string) {
	m.CatalogUpdates.WithLabelValues(source).Inc()
}

// RecordWSMessage records a stream message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments stream connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.ActiveConnections++
	m.mu.Unlock()
}

// DecWSConnections decrements stream connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.ActiveConnections--
	m.mu.Unlock()
}

// SetShells sets the number of loaded shells
func (m *Metrics) SetShells(count int) {
	m.Shells.Set(float64(count))
}

// Snapshot returns the current JSON snapshot
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.snapshot
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}
