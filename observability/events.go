package observability

import (
	"math/big"

	"github.com/prometheus/client_golang/prometheus"

	"stablestake/core/events"
)

// weiPerToken scales 18-decimal amounts into whole tokens for gauges.
var weiPerToken = new(big.Float).SetFloat64(1e18)

// LedgerMetrics turns committed ledger events into Prometheus series.
type LedgerMetrics struct {
	events    *prometheus.CounterVec
	volume    *prometheus.CounterVec
	lastEvent prometheus.Gauge
}

// NewLedgerMetrics registers the ledger series on reg. A nil registerer uses
// the default Prometheus registry.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &LedgerMetrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stablestake",
			Subsystem: "ledger",
			Name:      "events_total",
			Help:      "Committed ledger events segmented by type.",
		}, []string{"type"}),
		volume: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stablestake",
			Subsystem: "ledger",
			Name:      "volume_tokens_total",
			Help:      "Token amounts carried by ledger events, in whole tokens.",
		}, []string{"type"}),
		lastEvent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "stablestake",
			Subsystem: "ledger",
			Name:      "last_event_timestamp_seconds",
			Help:      "Ledger timestamp of the most recent committed event.",
		}),
	}
	reg.MustRegister(m.events, m.volume, m.lastEvent)
	return m
}

// Emit implements events.Emitter.
func (m *LedgerMetrics) Emit(evt events.Event) {
	if m == nil || evt == nil {
		return
	}
	eventType := evt.EventType()
	m.events.WithLabelValues(eventType).Inc()

	attrs := events.Attributes(evt)
	if amount, ok := new(big.Int).SetString(attrs["amount"], 10); ok && amount.Sign() > 0 {
		tokens, _ := new(big.Float).Quo(new(big.Float).SetInt(amount), weiPerToken).Float64()
		m.volume.WithLabelValues(eventType).Add(tokens)
	}
	if ts, ok := new(big.Int).SetString(attrs["timestamp"], 10); ok {
		m.lastEvent.Set(float64(ts.Uint64()))
	}
}
