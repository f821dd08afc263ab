package services

import (
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry(t *testing.T) {
	m := NewMetrics()
	m.SetFree("mx960", "FPC: X @ 0/*/*", 1, "FW", 9)
	m.ObserveResult("WARN")

	families, err := m.Registry.Gather()
	require.NoError(t, err)
	types := map[string]dto.MetricType{}
	for _, mf := range families {
		types[mf.GetName()] = mf.GetType()
	}
	assert.Equal(t, dto.MetricType_GAUGE, types["pfemem_free_percent"])
	assert.Equal(t, dto.MetricType_COUNTER, types["pfemem_results_total"])
	assert.Equal(t, dto.MetricType_HISTOGRAM, types["pfemem_poll_duration_seconds"])
	assert.Contains(t, types, "go_goroutines")

	for _, mf := range families {
		if mf.GetName() != "pfemem_free_percent" {
			continue
		}
		require.Len(t, mf.GetMetric(), 1)
		labels := map[string]string{}
		for _, lp := range mf.GetMetric()[0].GetLabel() {
			labels[lp.GetName()] = lp.GetValue()
		}
		assert.Equal(t, map[string]string{"device": "mx960", "card": "FPC: X @ 0/*/*", "mic": "1", "pool": "FW"}, labels)
		assert.InDelta(t, 9, mf.GetMetric()[0].GetGauge().GetValue(), 0)
	}
}
