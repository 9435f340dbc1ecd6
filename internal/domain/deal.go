package domain

import "time"

// DealState is the lifecycle state of a deal.
//
// The ordinal values are stable and appear in persisted snapshots, event
// payloads and WrongState diagnostics. Never reorder or reuse them:
//
//	0 Listed, 1 Funded, 2 Shipped, 3 Completed, 4 Cancelled, 5 Disputed
type DealState uint8

const (
	StateListed    DealState = 0 // created by the seller, awaiting a buyer
	StateFunded    DealState = 1 // buyer has paid the exact price into custody
	StateShipped   DealState = 2 // seller has dispatched the goods
	StateCompleted DealState = 3 // terminal: seller credited
	StateCancelled DealState = 4 // terminal: buyer credited
	StateDisputed  DealState = 5 // frozen pending admin arbitration
)

// String returns the human-readable state name.
func (s DealState) String() string {
	switch s {
	case StateListed:
		return "LISTED"
	case StateFunded:
		return "FUNDED"
	case StateShipped:
		return "SHIPPED"
	case StateCompleted:
		return "COMPLETED"
	case StateCancelled:
		return "CANCELLED"
	case StateDisputed:
		return "DISPUTED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether no transition originates from s.
func (s DealState) Terminal() bool {
	return s == StateCompleted || s == StateCancelled
}

// Deal represents one sale held in escrow.
// All monetary values are strictly int64 cents.
type Deal struct {
	ID         uint64    `json:"id"`
	Seller     string    `json:"seller"`
	Buyer      string    `json:"buyer"` // empty until funded, then immutable
	PriceCents int64     `json:"price"` // fixed at creation, always positive
	Title      string    `json:"title"` // editable only while LISTED
	State      DealState `json:"state"`
	CreatedAt  time.Time `json:"created_at"`
}

// Funded reports whether a buyer is bound to the deal.
func (d *Deal) Funded() bool {
	return d.Buyer != ""
}

// Participant reports whether account is the deal's seller or buyer.
func (d *Deal) Participant(account string) bool {
	return account == d.Seller || (d.Buyer != "" && account == d.Buyer)
}
