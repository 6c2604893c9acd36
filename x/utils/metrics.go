package utils

import (
	"time"

	"github.com/arabica-labs/arabica"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a decorator that counts processed transactions and measures
// their duration, labeled by message path and result.
type Metrics struct {
	txs      *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ arabica.Decorator = (*Metrics)(nil)

// NewMetrics creates a Metrics decorator. All collectors are registered
// with the given registerer, so it must be called only once per registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		txs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arabica",
			Name:      "transactions_total",
			Help:      "Number of processed transactions.",
		}, []string{"mode", "path", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "arabica",
			Name:      "transaction_duration_seconds",
			Help:      "Time spent processing a transaction.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"mode", "path"}),
	}
	reg.MustRegister(m.txs, m.duration)
	return m
}

// Check records check calls.
func (m *Metrics) Check(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx, next arabica.Checker) (*arabica.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, db, tx)
	m.observe("check", tx, start, err)
	return res, err
}

// Deliver records deliver calls.
func (m *Metrics) Deliver(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx, next arabica.Deliverer) (*arabica.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, db, tx)
	m.observe("deliver", tx, start, err)
	return res, err
}

func (m *Metrics) observe(mode string, tx arabica.Tx, start time.Time, err error) {
	path := arabica.GetPath(tx)
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.txs.WithLabelValues(mode, path, result).Inc()
	m.duration.WithLabelValues(mode, path).Observe(time.Since(start).Seconds())
}
