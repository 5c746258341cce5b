package utils

import (
	"context"
	"sync"
	"time"

	"github.com/iov-one/ledger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is a decorator counting processed transactions and observing
// handler latency, labeled by message path.
type Metrics struct {
	txs      *prometheus.CounterVec
	duration *prometheus.HistogramVec

	// registerOnce ensures collectors are only registered once
	registerOnce sync.Once
}

var _ ledger.Decorator = (*Metrics)(nil)

// NewMetrics returns a Metrics decorator with collectors registered in
// given registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{}
	m.Register(registry)
	return m
}

// Register creates the collectors using given registry. Only the first call
// has an effect.
func (m *Metrics) Register(registry prometheus.Registerer) {
	m.registerOnce.Do(func() {
		factory := promauto.With(registry)
		m.txs = factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "transactions_total",
			Help:      "Number of processed transactions by path, phase and outcome.",
		}, []string{"path", "phase", "outcome"})
		m.duration = factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ledger",
			Name:      "deliver_duration_seconds",
			Help:      "Time spent delivering a transaction.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"path"})
	})
}

func (m *Metrics) Check(ctx context.Context, db ledger.KVStore, tx ledger.Tx, next ledger.Checker) (*ledger.CheckResult, error) {
	res, err := next.Check(ctx, db, tx)
	m.count(tx, "check", err)
	return res, err
}

func (m *Metrics) Deliver(ctx context.Context, db ledger.KVStore, tx ledger.Tx, next ledger.Deliverer) (*ledger.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, db, tx)
	if m.duration != nil {
		m.duration.WithLabelValues(ledger.GetPath(tx)).Observe(time.Since(start).Seconds())
	}
	m.count(tx, "deliver", err)
	return res, err
}

func (m *Metrics) count(tx ledger.Tx, phase string, err error) {
	if m.txs == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.txs.WithLabelValues(ledger.GetPath(tx), phase, outcome).Inc()
}
