package connectors

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sulefrederickjohne/pfememory/transit"
)

func TestCreateMetric(t *testing.T) {
	warning, err := CreateWarningThreshold("nh_free_mic0_wn", 15)
	require.NoError(t, err)
	critical, err := CreateCriticalThreshold("nh_free_mic0_cr", 10)
	require.NoError(t, err)

	metric, err := CreateMetric("nh_free_mic0", 12, transit.PercentFree, *warning, *critical)
	require.NoError(t, err)
	assert.Equal(t, "nh_free_mic0", metric.MetricName)
	assert.Equal(t, transit.Value, metric.SampleType)
	assert.Equal(t, transit.PercentFree, metric.Unit)
	assert.Equal(t, "12", metric.Value.String())
	require.NotNil(t, metric.Interval)
	assert.Equal(t, metric.Interval.StartTime, metric.Interval.EndTime)
	require.NotNil(t, metric.Thresholds)
	assert.Len(t, *metric.Thresholds, 2)

	metric, err = CreateMetric("ratio", 0.5)
	require.NoError(t, err)
	assert.Equal(t, transit.UnitCounter, metric.Unit)
	assert.Nil(t, metric.Thresholds)
}

func TestCreateMetricErrors(t *testing.T) {
	_, err := CreateMetric("m", "12")
	assert.ErrorIs(t, err, ErrUnsupportedValue)
	_, err = CreateMetric("m", 12, 42)
	assert.ErrorIs(t, err, ErrUnsupportedArg)
	_, err = CreateThreshold(transit.Warning, "m_wn", []int{1})
	assert.ErrorIs(t, err, ErrUnsupportedValue)
	_, err = CreateService("svc", "host", "metrics")
	assert.ErrorIs(t, err, ErrUnsupportedArg)
	_, err = CreateResource("host", 1)
	assert.ErrorIs(t, err, ErrUnsupportedArg)
}

func TestCreateServiceAndResource(t *testing.T) {
	warning, _ := CreateWarningThreshold("fw_free_mic0_wn", 15)
	critical, _ := CreateCriticalThreshold("fw_free_mic0_cr", 10)
	low, err := CreateMetric("fw_free_mic0", 9, *warning, *critical)
	require.NoError(t, err)
	high, err := CreateMetric("nh_free_mic0", 90, *warning, *critical)
	require.NoError(t, err)

	service, err := CreateService("PFE card Memory Utilization", "mx960", []transit.TimeSeries{*high})
	require.NoError(t, err)
	assert.Equal(t, transit.ServiceOk, service.Status)
	assert.Equal(t, "mx960", service.Owner)
	assert.Equal(t, transit.ResourceTypeService, service.Type)

	degraded, err := CreateService("PFE other Memory Utilization", "mx960", []transit.TimeSeries{*high, *low})
	require.NoError(t, err)
	assert.Equal(t, transit.ServiceUnscheduledCritical, degraded.Status)

	resource, err := CreateResource("mx960")
	require.NoError(t, err)
	assert.Equal(t, transit.HostPending, resource.Status)

	resource, err = CreateResource("mx960", []transit.MonitoredService{*service})
	require.NoError(t, err)
	assert.Equal(t, transit.HostUp, resource.Status)
	assert.Equal(t, transit.ResourceTypeHost, resource.Type)

	resource, err = CreateResource("mx960", []transit.MonitoredService{*service, *degraded})
	require.NoError(t, err)
	assert.Equal(t, transit.HostWarning, resource.Status)
}

func TestStartScheduler(t *testing.T) {
	var runs atomic.Int32
	sch, err := StartScheduler("@every 1s", func() { runs.Add(1) })
	require.NoError(t, err)
	defer sch.Stop()
	assert.Eventually(t, func() bool { return runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)

	_, err = StartScheduler("not a spec", func() {})
	assert.Error(t, err)
}

func TestSigTermContext(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := SigTermContext(parent)
	defer stop()
	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context is not canceled with parent")
	}
}
