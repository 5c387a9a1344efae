package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willdeuschle/cruise/pkg/container"
)

type fakeLister struct {
	containers []*container.Container
}

func (f *fakeLister) ListContainers() ([]*container.Container, error) {
	return f.containers, nil
}

func gaugeValue(t *testing.T, vec *prometheus.GaugeVec, status string) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, vec.WithLabelValues(status).Write(&m))
	return m.GetGauge().GetValue()
}

func TestCollectorSetsCountsByStatus(t *testing.T) {
	lister := &fakeLister{containers: []*container.Container{
		{ID: "a", Status: container.Running},
		{ID: "b", Status: container.Running},
		{ID: "c", Status: container.Stopped},
	}}

	c := NewCollector(lister, time.Hour)
	c.collect()

	assert.Equal(t, float64(2), gaugeValue(t, ContainersTotal, string(container.Running)))
	assert.Equal(t, float64(1), gaugeValue(t, ContainersTotal, string(container.Stopped)))
	assert.Equal(t, float64(0), gaugeValue(t, ContainersTotal, string(container.Paused)))
}
