package utils

import (
	"strconv"
	"sync"
	"time"

	"github.com/iov-one/tradeweave/errors"
	"github.com/iov-one/tradeweave/weave"
	"github.com/prometheus/client_golang/prometheus"
)

type txMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

var (
	txMetricsOnce sync.Once
	txRegistry    *txMetrics
)

// defaultTxMetrics returns the lazily initialised transaction metrics,
// registered with the default prometheus registry.
func defaultTxMetrics() *txMetrics {
	txMetricsOnce.Do(func() {
		txRegistry = newTxMetrics()
		prometheus.MustRegister(txRegistry.requests, txRegistry.latency)
	})
	return txRegistry
}

func newTxMetrics() *txMetrics {
	return &txMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tradeweave",
			Subsystem: "tx",
			Name:      "processed_total",
			Help:      "Total transactions processed segmented by phase, message path and ABCI code.",
		}, []string{"phase", "path", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tradeweave",
			Subsystem: "tx",
			Name:      "duration_seconds",
			Help:      "Latency distribution of transaction processing.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"phase", "path"}),
	}
}

func (m *txMetrics) observe(phase string, tx weave.Tx, err error, start time.Time) {
	path := weave.GetPath(tx)
	code, _ := errors.ABCIInfo(err, false)
	m.requests.WithLabelValues(phase, path, strconv.FormatUint(uint64(code), 10)).Inc()
	m.latency.WithLabelValues(phase, path).Observe(time.Since(start).Seconds())
}

// Metrics is a decorator that counts every processed transaction and
// measures how long it took. Results are exposed to prometheus.
type Metrics struct {
	m *txMetrics
}

var _ weave.Decorator = Metrics{}

// NewMetrics creates a Metrics decorator that reports to the default
// prometheus registry.
func NewMetrics() Metrics {
	return Metrics{m: defaultTxMetrics()}
}

// Check records the check phase.
func (d Metrics) Check(ctx weave.Context, store weave.KVStore, tx weave.Tx, next weave.Checker) (*weave.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, store, tx)
	d.m.observe("check", tx, err, start)
	return res, err
}

// Deliver records the deliver phase.
func (d Metrics) Deliver(ctx weave.Context, store weave.KVStore, tx weave.Tx, next weave.Deliverer) (*weave.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, store, tx)
	d.m.observe("deliver", tx, err, start)
	return res, err
}
