package ledger

import (
	"context"
	"sync"

	"github.com/zohersahli/EscrowMarket/internal/domain"
	"github.com/zohersahli/EscrowMarket/pkg/safe"
)

// Ledger tracks per-account pending-withdrawal balances in int64 cents.
// Balances are credited by the market when a deal reaches a terminal state
// and debited to zero only by Withdraw, the pull-payment step.
//
// Each account has its own mutex. Withdraw holds it across the whole
// read-zero-transfer sequence, so two concurrent withdrawals can never both
// observe a positive balance, and a credit arriving mid-withdrawal waits
// and is then safely additive.
type Ledger struct {
	gateway domain.TransferGateway

	mu       sync.Mutex // guards the accounts map only
	accounts map[string]*account
}

type account struct {
	mu      sync.Mutex
	balance int64
}

// New creates an empty ledger that pays out through gateway.
func New(gateway domain.TransferGateway) *Ledger {
	return &Ledger{
		gateway:  gateway,
		accounts: make(map[string]*account),
	}
}

func (l *Ledger) account(name string) *account {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.accounts[name]
	if !ok {
		a = &account{}
		l.accounts[name] = a
	}
	return a
}

// Credit adds amountCents to the account's owed balance and returns the new
// balance. Credited amounts always equal a deal's price, which is strictly
// positive.
func (l *Ledger) Credit(name string, amountCents int64) int64 {
	a := l.account(name)
	a.mu.Lock()
	defer a.mu.Unlock()
	a.balance = safe.SafeAdd(a.balance, amountCents)
	return a.balance
}

// Balance returns the currently owed amount for the account.
func (l *Ledger) Balance(name string) int64 {
	a := l.account(name)
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// Withdraw atomically zeroes the account's balance and executes the external
// transfer for the full owed amount. If the transfer fails the balance is
// restored and a retriable TransferError is returned; the ledger never loses
// track of an un-paid balance. On success the paid amount is returned.
func (l *Ledger) Withdraw(ctx context.Context, name string) (int64, error) {
	a := l.account(name)
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.balance == 0 {
		return 0, domain.ErrNothingToWithdraw
	}

	owed := a.balance
	a.balance = 0

	if err := l.gateway.Transfer(ctx, name, owed); err != nil {
		a.balance = safe.SafeAdd(a.balance, owed)
		return 0, &domain.TransferError{Account: name, AmountCents: owed, Err: err}
	}

	return owed, nil
}

// Restore seeds an account balance during startup recovery. It must only be
// called before the ledger is serving traffic.
func (l *Ledger) Restore(name string, amountCents int64) {
	if amountCents <= 0 {
		return
	}
	a := l.account(name)
	a.mu.Lock()
	a.balance = amountCents
	a.mu.Unlock()
}

// Snapshot returns a copy of all non-zero balances. The map lock is not
// held while individual accounts are read, so a withdrawal in flight delays
// only its own account's entry.
func (l *Ledger) Snapshot() map[string]int64 {
	l.mu.Lock()
	accounts := make(map[string]*account, len(l.accounts))
	for name, a := range l.accounts {
		accounts[name] = a
	}
	l.mu.Unlock()

	result := make(map[string]int64, len(accounts))
	for name, a := range accounts {
		a.mu.Lock()
		if a.balance != 0 {
			result[name] = a.balance
		}
		a.mu.Unlock()
	}
	return result
}
