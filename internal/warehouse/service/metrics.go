package service

import (
	"context"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/warehouse-management/warehouse/internal/application/components/prometheus"
	"github.com/warehouse-management/warehouse/internal/application/core"
	bizConsts "github.com/warehouse-management/warehouse/internal/warehouse/consts"
)

// Metrics holds the warehouse counters. Without a prometheus component
// every method is a no-op.
type Metrics struct {
	*core.BaseComponent
	Prom *prometheus.Component `infra:"dep:prometheus?"`

	mutations     *prom.CounterVec
	logins        *prom.CounterVec
	exportSeconds *prom.HistogramVec
}

func NewMetrics() *Metrics {
	return &Metrics{BaseComponent: core.NewBaseComponent(bizConsts.COMP_SVC_METRICS)}
}

func (m *Metrics) Start(ctx context.Context) error {
	if m.Prom != nil {
		m.mutations = m.Prom.NewCounter("product_mutations_total",
			"Product changes by operation.", []string{"operation"})
		m.logins = m.Prom.NewCounter("login_attempts_total",
			"Login attempts by result.", []string{"result"})
		m.exportSeconds = m.Prom.NewHistogram("export_duration_seconds",
			"Time spent rendering exports.", []string{"format"}, prom.DefBuckets)
	}
	return m.BaseComponent.Start(ctx)
}

func (m *Metrics) Stop(ctx context.Context) error { return m.BaseComponent.Stop(ctx) }

func (m *Metrics) ProductMutation(operation string) {
	if m == nil || m.mutations == nil {
		return
	}
	m.mutations.WithLabelValues(operation).Inc()
}

func (m *Metrics) LoginAttempt(result string) {
	if m == nil || m.logins == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveExport(format string, started time.Time) {
	if m == nil || m.exportSeconds == nil {
		return
	}
	m.exportSeconds.WithLabelValues(format).Observe(time.Since(started).Seconds())
}
