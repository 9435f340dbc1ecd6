package market

import "github.com/zohersahli/EscrowMarket/internal/domain"

// A check is one step of an operation's validation pipeline. Checks are
// pure: they read the deal and the guard state and never mutate either.
// Each operation composes its pipeline explicitly in the order
// existence -> role -> state -> value -> guard; the first failure wins and
// leaves the deal untouched.
type check func(d *domain.Deal) error

func runChecks(d *domain.Deal, checks ...check) error {
	for _, c := range checks {
		if err := c(d); err != nil {
			return err
		}
	}
	return nil
}

func requireState(op string, want domain.DealState) check {
	return func(d *domain.Deal) error {
		if d.State != want {
			return &domain.WrongStateError{Op: op, Expected: want, Actual: d.State}
		}
		return nil
	}
}

func requireSeller(caller string) check {
	return func(d *domain.Deal) error {
		if caller != d.Seller {
			return domain.ErrNotSeller
		}
		return nil
	}
}

func requireBuyer(caller string) check {
	return func(d *domain.Deal) error {
		if d.Buyer == "" || caller != d.Buyer {
			return domain.ErrNotBuyer
		}
		return nil
	}
}

func requireParticipant(caller string) check {
	return func(d *domain.Deal) error {
		if !d.Participant(caller) {
			return domain.ErrNotParticipant
		}
		return nil
	}
}

// rejectSeller blocks a seller from acting as the buyer of their own listing.
func rejectSeller(caller string) check {
	return func(d *domain.Deal) error {
		if caller == d.Seller {
			return domain.ErrSelfPurchase
		}
		return nil
	}
}

// requireDisputable admits the two states a dispute can be opened from.
func requireDisputable() check {
	return func(d *domain.Deal) error {
		if d.State != domain.StateFunded && d.State != domain.StateShipped {
			return &domain.DisputeStateError{Actual: d.State}
		}
		return nil
	}
}

// requireExactAmount enforces amount-matched funding: no partial, no excess.
func requireExactAmount(paidCents int64) check {
	return func(d *domain.Deal) error {
		if paidCents != d.PriceCents {
			return &domain.AmountMismatchError{WantCents: d.PriceCents, GotCents: paidCents}
		}
		return nil
	}
}

func (m *Market) requireAdmin(caller string) check {
	return func(*domain.Deal) error {
		if caller != m.admin {
			return domain.ErrNotAdmin
		}
		return nil
	}
}

func (m *Market) notPaused() check {
	return func(*domain.Deal) error {
		if m.guard.Paused() {
			return domain.ErrPaused
		}
		return nil
	}
}

func (m *Market) notFrozen() check {
	return func(d *domain.Deal) error {
		if m.guard.Frozen(d.ID) {
			return &domain.FrozenError{ID: d.ID}
		}
		return nil
	}
}

func (m *Market) notBanned(caller string) check {
	return func(*domain.Deal) error {
		if m.guard.Banned(caller) {
			return &domain.BannedError{Account: caller}
		}
		return nil
	}
}
