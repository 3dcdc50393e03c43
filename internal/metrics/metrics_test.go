package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerRecordsOnItsRegistry(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m := NewManager(
		WithRegistry(registry),
		WithNamespace("founders"),
		WithHistogramBuckets([]float64{0.1, 1}),
	)
	require.Same(t, registry, m.Registry())

	m.RunFinished("sales", OutcomeOK, 2*time.Second, 3)
	m.RunFinished("sales", OutcomeFailed, time.Second, 0)
	m.ItemFetched("sales")
	m.ItemRejected("low_score")
	m.SourceRequest("search", 50*time.Millisecond, nil)
	m.SourceRequest("search", 50*time.Millisecond, errors.New("503"))
	m.Extraction(OutcomeOK, 300*time.Millisecond)

	families, err := registry.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, mf := range families {
		names[mf.GetName()] = true
		switch mf.GetName() {
		case "founders_pipeline_runs_total":
			require.Len(t, mf.GetMetric(), 2)
			for _, metric := range mf.GetMetric() {
				assert.Equal(t, 1.0, metric.GetCounter().GetValue())
			}
		case "founders_pipeline_opportunities_total":
			assert.Equal(t, 3.0, mf.GetMetric()[0].GetCounter().GetValue())
		case "founders_source_failures_total":
			assert.Equal(t, 1.0, mf.GetMetric()[0].GetCounter().GetValue())
		case "founders_extract_judge_duration_seconds":
			buckets := mf.GetMetric()[0].GetHistogram().GetBucket()
			require.Len(t, buckets, 2)
			assert.Equal(t, 0.1, buckets[0].GetUpperBound())
		}
	}
	assert.True(t, names["founders_pipeline_runs_total"])
	assert.True(t, names["founders_fetch_items_total"])
	assert.True(t, names["founders_extract_judge_duration_seconds"])
}

func TestNilManagerIsSafe(t *testing.T) {
	t.Parallel()

	var m *Manager
	assert.NotPanics(t, func() {
		m.RunFinished("sales", OutcomeOK, time.Second, 1)
		m.ItemFetched("sales")
		m.ItemRejected("short")
		m.SourceRequest("search", time.Millisecond, errors.New("x"))
		m.Extraction(OutcomeFailed, 0)
	})
	assert.Nil(t, m.Registry())
	assert.NotNil(t, m.Handler())
}
