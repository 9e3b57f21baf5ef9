package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"stablestake/core/events"
	"stablestake/core/types"
)

type payload struct{ evt *types.Event }

func (p payload) EventType() string    { return p.evt.Type }
func (p payload) Event() *types.Event { return p.evt }

func TestLedgerMetricsCountsEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewLedgerMetrics(reg)
	var emitter events.Emitter = metrics

	emitter.Emit(payload{evt: &types.Event{Type: "stablestake.deposit.created", Attributes: map[string]string{
		"amount":    "2500000000000000000",
		"timestamp": "1700000000",
	}}})
	emitter.Emit(payload{evt: &types.Event{Type: "stablestake.deposit.created", Attributes: map[string]string{
		"amount": "500000000000000000",
	}}})
	emitter.Emit(payload{evt: &types.Event{Type: "stablestake.pause.updated"}})

	if got := testutil.ToFloat64(metrics.events.WithLabelValues("stablestake.deposit.created")); got != 2 {
		t.Fatalf("expected 2 deposit events, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.volume.WithLabelValues("stablestake.deposit.created")); got != 3 {
		t.Fatalf("expected 3 tokens of volume, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.lastEvent); got != 1700000000 {
		t.Fatalf("unexpected last event timestamp %v", got)
	}
}
