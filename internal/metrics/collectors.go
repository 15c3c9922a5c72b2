package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"tentacles/pkg/logger"
)

// AdapterState exposes the in-memory state held by an exchange adapter.
type AdapterState interface {
	Name() string
	PendingQuantities() int
	RegisteredContracts() int
}

// AdapterCollector reports adapter state on every scrape
type AdapterCollector struct {
	log     *logger.Logger
	sources []AdapterState

	pendingQuantities *prometheus.Desc
	contracts         *prometheus.Desc
}

// NewAdapterCollector creates a collector over the given adapters
func NewAdapterCollector(log *logger.Logger, sources ...AdapterState) *AdapterCollector {
	return &AdapterCollector{
		log:     log,
		sources: sources,

		pendingQuantities: prometheus.NewDesc(
			"tentacles_adapter_pending_quantities",
			"Entries held by the market buy quantity book",
			[]string{"exchange"}, nil,
		),
		contracts: prometheus.NewDesc(
			"tentacles_adapter_contracts",
			"Future contracts registered in the adapter",
			[]string{"exchange"}, nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *AdapterCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.pendingQuantities
	ch <- c.contracts
}

// Collect implements prometheus.Collector
func (c *AdapterCollector) Collect(ch chan<- prometheus.Metric) {
	for _, src := range c.sources {
		ch <- prometheus.MustNewConstMetric(c.pendingQuantities, prometheus.GaugeValue, float64(src.PendingQuantities()), src.Name())
		ch <- prometheus.MustNewConstMetric(c.contracts, prometheus.GaugeValue, float64(src.RegisteredContracts()), src.Name())
	}
	c.log.Debugw("Adapter metrics collected", "adapters", len(c.sources))
}
