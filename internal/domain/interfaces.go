package domain

import "context"

// TransferGateway executes the external payout leg of a withdrawal. A
// returned error means no funds moved; the ledger restores the balance and
// the caller may retry.
type TransferGateway interface {
	Transfer(ctx context.Context, account string, amountCents int64) error
}

// DealStore persists deal snapshots and ledger balances so the market can
// resume mid-lifecycle after a restart. Persistence is an observer of the
// in-memory state, not the source of truth on the mutation path.
type DealStore interface {
	SaveDeal(d *Deal) error
	DeleteDeal(id uint64) error
	LoadDeals() ([]Deal, error)
	SaveBalance(account string, amountCents int64) error
	LoadBalances() (map[string]int64, error)
}
