package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/franco-bianco/solanatrades-go/parse"
)

const namespace = "solanatrades"

// Block outcomes.
const (
	BlockOK      = "ok"
	BlockSkipped = "skipped"
	BlockFailed  = "failed"
)

// Metrics collects decoding and indexing counters. It implements
// trades.Observer.
type Metrics struct {
	tradesEmitted       *prometheus.CounterVec
	instructionsDropped *prometheus.CounterVec
	transactionsSkipped *prometheus.CounterVec
	blocks              *prometheus.CounterVec
	blockDuration       prometheus.Histogram
	inflight            prometheus.Gauge
	lastSlot            prometheus.Gauge

	highest atomic.Uint64
}

func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return &Metrics{
		tradesEmitted: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decoder",
			Name:      "trades_emitted_total",
			Help:      "Trades decoded, by exchange program.",
		}, []string{"program"}),
		instructionsDropped: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decoder",
			Name:      "instructions_dropped_total",
			Help:      "Recognized swap instructions that produced no trade.",
		}, []string{"program", "reason"}),
		transactionsSkipped: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decoder",
			Name:      "transactions_skipped_total",
			Help:      "Transactions rejected before decoding.",
		}, []string{"reason"}),
		blocks: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "blocks_total",
			Help:      "Blocks handled by the indexer, by outcome.",
		}, []string{"status"}),
		blockDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "block_duration_seconds",
			Help:      "Time to fetch, decode and persist one block.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		inflight: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "blocks_inflight",
			Help:      "Blocks currently being processed.",
		}),
		lastSlot: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "last_processed_slot",
			Help:      "Highest slot processed successfully.",
		}),
	}
}

func (m *Metrics) TransactionSkipped(reason string) {
	m.transactionsSkipped.WithLabelValues(reason).Inc()
}

func (m *Metrics) InstructionDropped(program parse.SwapType, reason string) {
	m.instructionsDropped.WithLabelValues(string(program), reason).Inc()
}

func (m *Metrics) TradeEmitted(program parse.SwapType) {
	m.tradesEmitted.WithLabelValues(string(program)).Inc()
}

func (m *Metrics) BlockStarted() {
	m.inflight.Inc()
}

// BlockFinished records the outcome of a block started with BlockStarted.
func (m *Metrics) BlockFinished(slot uint64, status string, elapsed time.Duration) {
	m.inflight.Dec()
	m.blocks.WithLabelValues(status).Inc()
	m.blockDuration.Observe(elapsed.Seconds())
	if status == BlockOK {
		m.observeSlot(slot)
	}
}

// observeSlot keeps the highest slot seen; blocks finish out of order.
func (m *Metrics) observeSlot(slot uint64) {
	for {
		current := m.highest.Load()
		if slot <= current {
			return
		}
		if m.highest.CompareAndSwap(current, slot) {
			m.lastSlot.Set(float64(m.highest.Load()))
			return
		}
	}
}

// LastSlot returns the highest slot processed successfully.
func (m *Metrics) LastSlot() uint64 {
	return m.highest.Load()
}
