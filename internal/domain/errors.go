package domain

import (
	"errors"
	"fmt"
)

// RetriableError defines an interface for errors that can be retried
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

var (
	// ErrNotAdmin is returned when a caller invokes an admin-only operation.
	ErrNotAdmin = errors.New("caller is not the admin")

	// ErrNotSeller is returned when a seller-only operation is called by anyone else.
	ErrNotSeller = errors.New("caller is not the seller")

	// ErrNotBuyer is returned when a buyer-only operation is called by anyone else.
	ErrNotBuyer = errors.New("caller is not the buyer")

	// ErrNotParticipant is returned when the caller is neither seller nor buyer.
	ErrNotParticipant = errors.New("caller is not a participant of the deal")

	// ErrZeroValue is returned when a deal is created with a non-positive price.
	ErrZeroValue = errors.New("price must be positive")

	// ErrSelfPurchase is returned when a seller tries to fund their own listing.
	ErrSelfPurchase = errors.New("seller cannot fund their own listing")

	// ErrPaused is returned while the global pause flag blocks the operation.
	ErrPaused = errors.New("market is paused")

	// ErrNothingToWithdraw is returned when the caller's owed balance is zero.
	ErrNothingToWithdraw = errors.New("nothing to withdraw")

	// ErrIDExhausted is returned if the deal id counter would overflow.
	// The allocator fails closed rather than wrapping.
	ErrIDExhausted = errors.New("deal id space exhausted")
)

// NotFoundError marks a deal that was never created or has been removed.
// Removal is permanent; a removed id is indistinguishable from one that
// never existed.
type NotFoundError struct {
	ID uint64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("deal %d does not exist", e.ID)
}

// WrongStateError is returned when an operation is attempted in a state it
// is not legal in. It carries both sides so cross-component diagnostics
// stay meaningful (states render as "NAME(ordinal)").
type WrongStateError struct {
	Op       string
	Expected DealState
	Actual   DealState
}

func (e *WrongStateError) Error() string {
	return fmt.Sprintf("%s: wrong state: expected %s(%d), actual %s(%d)",
		e.Op, e.Expected, uint8(e.Expected), e.Actual, uint8(e.Actual))
}

// DisputeStateError is returned when a dispute is opened from a state other
// than FUNDED or SHIPPED, the only two disputable states.
type DisputeStateError struct {
	Actual DealState
}

func (e *DisputeStateError) Error() string {
	return fmt.Sprintf("dispute: deal must be FUNDED or SHIPPED, actual %s(%d)",
		e.Actual, uint8(e.Actual))
}

// AmountMismatchError is returned when a funding payment does not equal the
// deal's price exactly. Partial and excess payments are both rejected.
type AmountMismatchError struct {
	WantCents int64
	GotCents  int64
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("amount mismatch: price is %d cents, paid %d cents", e.WantCents, e.GotCents)
}

// FrozenError is returned while a per-deal freeze blocks the operation.
type FrozenError struct {
	ID uint64
}

func (e *FrozenError) Error() string {
	return fmt.Sprintf("deal %d is frozen", e.ID)
}

// BannedError is returned when a banned account tries to create or fund.
type BannedError struct {
	Account string
}

func (e *BannedError) Error() string {
	return fmt.Sprintf("account %s is banned", e.Account)
}

// TransferError wraps a failed external payout. It is always retriable: the
// ledger restores the owed balance before returning it, so the caller can
// simply withdraw again.
type TransferError struct {
	Account     string
	AmountCents int64
	Err         error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer of %d cents to %s failed: %v", e.AmountCents, e.Account, e.Err)
}

func (e *TransferError) IsRetriable() bool {
	return true
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error (never retriable)
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) IsRetriable() bool {
	return false
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
