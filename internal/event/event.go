package event

// Type identifies what happened to a deal or an account balance.
type Type string

const (
	TypeCreated       Type = "DEAL_CREATED"
	TypeTitleUpdated  Type = "DEAL_TITLE_UPDATED"
	TypeFunded        Type = "DEAL_FUNDED"
	TypeShipped       Type = "DEAL_SHIPPED"
	TypeCompleted     Type = "DEAL_COMPLETED"
	TypeCancelled     Type = "DEAL_CANCELLED"
	TypeRemoved       Type = "DEAL_REMOVED"
	TypeDisputed      Type = "DEAL_DISPUTED"
	TypeResolved      Type = "DEAL_RESOLVED"
	TypeWithdrawn     Type = "FUNDS_WITHDRAWN"
	TypePausedChanged Type = "PAUSED_CHANGED"
	TypeFrozenChanged Type = "FROZEN_CHANGED"
	TypeBannedChanged Type = "BANNED_CHANGED"
)

// Event is the flat audit record emitted exactly once per successful
// mutation, synchronously with the mutation itself. Seq is process-monotonic
// and gap-free for a single run; Ts is Unix microseconds.
type Event struct {
	Seq         uint64 `json:"seq"`
	Ts          int64  `json:"ts"`
	Type        Type   `json:"type"`
	DealID      uint64 `json:"deal_id,omitempty"`
	Actor       string `json:"actor,omitempty"`
	Account     string `json:"account,omitempty"`
	AmountCents int64  `json:"amount,omitempty"`
	State       string `json:"state,omitempty"`
	Title       string `json:"title,omitempty"`
	// Flag carries the boolean payload of RESOLVED (true = seller wins) and
	// of the guard change events (the new flag value).
	Flag bool `json:"flag"`
}

// Sink consumes events. Emit is called inside the mutation's atomic unit,
// so implementations must not block on slow consumers.
type Sink interface {
	Emit(ev Event)
}

// MultiSink fans an event out to several sinks in order.
type MultiSink []Sink

func (m MultiSink) Emit(ev Event) {
	for _, s := range m {
		if s != nil {
			s.Emit(ev)
		}
	}
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ev Event)

func (f SinkFunc) Emit(ev Event) {
	f(ev)
}
