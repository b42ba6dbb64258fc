package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/qchem/gausscat/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogueMetrics_RecordOperation(t *testing.T) {
	t.Parallel()

	m, err := NewCatalogueMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	m.RecordOperation("BaseMethod", "create", StatusSuccess, time.Millisecond)
	m.RecordOperation("BaseMethod", "create", StatusSuccess, time.Millisecond)
	m.RecordOperation("BaseMethod", "delete", StatusNotFound, time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(m.operationsTotal.WithLabelValues("BaseMethod", "create", StatusSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.operationsTotal.WithLabelValues("BaseMethod", "delete", StatusNotFound)), 0)
}

func TestCatalogueMetrics_OperationDuration(t *testing.T) {
	t.Parallel()

	m, err := NewCatalogueMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	m.RecordOperation("SpinState", "update", StatusSuccess, 2*time.Millisecond)
	m.RecordOperation("SpinState", "update", StatusSuccess, 4*time.Millisecond)

	observer, err := m.operationDuration.GetMetricWithLabelValues("SpinState", "update")
	require.NoError(t, err)
	metric, ok := observer.(prometheus.Metric)
	require.True(t, ok)

	var out dto.Metric
	require.NoError(t, metric.Write(&out))
	require.NotNil(t, out.GetHistogram())
	assert.Equal(t, uint64(2), out.GetHistogram().GetSampleCount())
	assert.InDelta(t, 0.006, out.GetHistogram().GetSampleSum(), 1e-9)
}

func TestCatalogueMetrics_ConsumesEvents(t *testing.T) {
	t.Parallel()

	m, err := NewCatalogueMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	var consumer events.Consumer = m
	assert.Equal(t, "metrics", consumer.Name())
	require.NoError(t, consumer.ProcessEvent(events.NewChangeEvent("FullMethod", events.OpDeleted, 4)))

	assert.InDelta(t, 1, testutil.ToFloat64(m.changeEventsTotal.WithLabelValues("FullMethod", "deleted")), 0)
}

func TestCatalogueMetrics_DoubleRegistrationFails(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	_, err := NewCatalogueMetrics(registry)
	require.NoError(t, err)
	_, err = NewCatalogueMetrics(registry)
	require.Error(t, err)
}

func TestHTTPMetrics_IgnoresUnknownSize(t *testing.T) {
	t.Parallel()

	m, err := NewHTTPMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	m.RecordHTTPResponseSize("GET", "/", -1)
	assert.Equal(t, 0, testutil.CollectAndCount(m.responseSize))
	m.RecordHTTPResponseSize("GET", "/", 512)
	assert.Equal(t, 1, testutil.CollectAndCount(m.responseSize))
}
