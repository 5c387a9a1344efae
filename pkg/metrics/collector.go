package metrics

import (
	"time"

	"github.com/willdeuschle/cruise/pkg/container"
	"github.com/willdeuschle/cruise/pkg/log"
)

// containerLister is the subset of *manager.ContainerManager the collector
// needs. Defined here, rather than imported, so this package never depends
// on pkg/manager: metrics must stay a pure observer of the core, never a
// dependency it has to carry.
type containerLister interface {
	ListContainers() ([]*container.Container, error)
}

// Collector periodically refreshes ContainersTotal from the manager's
// current state. It is the only ambient caller of ListContainers: nothing
// in the lifecycle path depends on its output.
type Collector struct {
	lister   containerLister
	interval time.Duration
	stopCh   chan struct{}
}

// NewCollector builds a Collector that polls lister every interval.
func NewCollector(lister containerLister, interval time.Duration) *Collector {
	return &Collector{
		lister:   lister,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Run polls until Stop is called. Intended to be run in its own goroutine.
func (c *Collector) Run() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopCh:
			return
		}
	}
}

// Stop ends the polling loop. Safe to call once.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	logger := log.WithComponent("metrics-collector")
	containers, err := c.lister.ListContainers()
	if err != nil {
		logger.Warn().Err(err).Msg("failed to list containers for metrics")
		return
	}

	counts := make(map[container.Status]float64)
	for _, s := range []container.Status{
		container.Created, container.Running, container.Stopped, container.Paused, container.Unknown,
	} {
		counts[s] = 0
	}
	for _, c := range containers {
		counts[c.Status]++
	}
	for status, count := range counts {
		ContainersTotal.WithLabelValues(string(status)).Set(count)
	}
}
