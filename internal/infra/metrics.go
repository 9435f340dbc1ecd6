package infra

import (
	"sync/atomic"
	"time"

	"github.com/zohersahli/EscrowMarket/internal/event"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety. It implements event.Sink, so it
// can simply be wired into the market's sink fan-out.
type Metrics struct {
	// Counters
	dealsCreated   atomic.Uint64
	transitions    atomic.Uint64
	withdrawals    atomic.Uint64
	eventsTotal    atomic.Uint64
	creditedCents  atomic.Int64
	withdrawnCents atomic.Int64

	// Gauges
	activeStreams atomic.Int32
}

// Emit counts the audit event. Called synchronously on the mutation path,
// so it must stay allocation-free and non-blocking.
func (m *Metrics) Emit(ev event.Event) {
	m.eventsTotal.Add(1)
	switch ev.Type {
	case event.TypeCreated:
		m.dealsCreated.Add(1)
	case event.TypeFunded, event.TypeShipped, event.TypeDisputed:
		m.transitions.Add(1)
	case event.TypeCompleted, event.TypeCancelled, event.TypeResolved:
		m.transitions.Add(1)
		m.creditedCents.Add(ev.AmountCents)
	case event.TypeWithdrawn:
		m.withdrawals.Add(1)
		m.withdrawnCents.Add(ev.AmountCents)
	}
}

// IncrementStreams increments the connected observer count by 1.
func (m *Metrics) IncrementStreams() {
	m.activeStreams.Add(1)
}

// DecrementStreams decrements the connected observer count by 1.
func (m *Metrics) DecrementStreams() {
	m.activeStreams.Add(-1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	DealsCreated   uint64 `json:"deals_created"`
	Transitions    uint64 `json:"transitions"`
	Withdrawals    uint64 `json:"withdrawals"`
	EventsTotal    uint64 `json:"events_total"`
	CreditedCents  int64  `json:"credited_cents"`
	WithdrawnCents int64  `json:"withdrawn_cents"`
	ActiveStreams  int32  `json:"active_streams"`
	CapturedAt     int64  `json:"captured_at"`
}

// Snapshot returns the current metric values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		DealsCreated:   m.dealsCreated.Load(),
		Transitions:    m.transitions.Load(),
		Withdrawals:    m.withdrawals.Load(),
		EventsTotal:    m.eventsTotal.Load(),
		CreditedCents:  m.creditedCents.Load(),
		WithdrawnCents: m.withdrawnCents.Load(),
		ActiveStreams:  m.activeStreams.Load(),
		CapturedAt:     time.Now().UnixMicro(),
	}
}
