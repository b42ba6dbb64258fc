package metrics

import (
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/qchem/gausscat/internal/events"
)

// CatalogueMetrics tracks repository operations, change events and the
// database connection pool.
type CatalogueMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	changeEventsTotal *prometheus.CounterVec

	connectionsOpen  prometheus.Gauge
	connectionsInUse prometheus.Gauge
	connectionsIdle  prometheus.Gauge
	connectionsMax   prometheus.Gauge

	collectors []prometheus.Collector
}

// NewCatalogueMetrics creates and registers the catalogue collectors.
func NewCatalogueMetrics(registry prometheus.Registerer) (*CatalogueMetrics, error) {
	m := &CatalogueMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *CatalogueMetrics) initMetrics() {
	m.operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gausscat_catalogue_operations_total",
			Help: "Total number of catalogue repository operations",
		},
		[]string{"entity", "operation", "status"}, // operation: read, create, update, delete
	)

	m.operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gausscat_catalogue_operation_duration_seconds",
			Help:    "Time taken for catalogue repository operations",
			Buckets: prometheus.ExponentialBuckets(BucketStart100us, BucketFactor2, BucketCount15),
		},
		[]string{"entity", "operation"},
	)

	m.changeEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gausscat_catalogue_change_events_total",
			Help: "Total number of catalogue change events delivered",
		},
		[]string{"entity", "op"},
	)

	m.connectionsOpen = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gausscat_db_connections_open",
		Help: "Number of established database connections",
	})
	m.connectionsInUse = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gausscat_db_connections_in_use",
		Help: "Number of database connections currently in use",
	})
	m.connectionsIdle = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gausscat_db_connections_idle",
		Help: "Number of idle database connections",
	})
	m.connectionsMax = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gausscat_db_connections_max",
		Help: "Maximum number of open database connections",
	})

	m.collectors = []prometheus.Collector{
		m.operationsTotal,
		m.operationDuration,
		m.changeEventsTotal,
		m.connectionsOpen,
		m.connectionsInUse,
		m.connectionsIdle,
		m.connectionsMax,
	}
}

// Describe implements prometheus.Collector.
func (m *CatalogueMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.collectors {
		c.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (m *CatalogueMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.collectors {
		c.Collect(ch)
	}
}

// RecordOperation records one repository call.
func (m *CatalogueMetrics) RecordOperation(entity, operation, status string, d time.Duration) {
	m.operationsTotal.WithLabelValues(entity, operation, status).Inc()
	m.operationDuration.WithLabelValues(entity, operation).Observe(d.Seconds())
}

// UpdateConnectionStats copies the pool statistics into the gauges.
func (m *CatalogueMetrics) UpdateConnectionStats(stats sql.DBStats) {
	m.connectionsOpen.Set(float64(stats.OpenConnections))
	m.connectionsInUse.Set(float64(stats.InUse))
	m.connectionsIdle.Set(float64(stats.Idle))
	m.connectionsMax.Set(float64(stats.MaxOpenConnections))
}

// Name implements events.Consumer.
func (m *CatalogueMetrics) Name() string { return "metrics" }

// ProcessEvent counts a delivered change event.
func (m *CatalogueMetrics) ProcessEvent(ev events.ChangeEvent) error {
	m.changeEventsTotal.WithLabelValues(ev.Entity, string(ev.Op)).Inc()
	return nil
}
