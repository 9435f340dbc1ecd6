package market

import (
	"github.com/zohersahli/EscrowMarket/internal/domain"
	"github.com/zohersahli/EscrowMarket/internal/event"
)

// SetPaused flips the global pause flag. Pause blocks creation, funding,
// shipping, confirmation, cancellation and dispute opening. Withdrawal and
// dispute resolution stay available, so owed funds and arbitration are never
// locked out during an incident. Setting the flag to its current value is a
// no-op and emits nothing.
func (m *Market) SetPaused(caller string, v bool) error {
	if caller != m.admin {
		return domain.ErrNotAdmin
	}
	if m.guard.SetPaused(v) {
		m.emit(event.Event{
			Type:  event.TypePausedChanged,
			Actor: caller,
			Flag:  v,
		})
	}
	return nil
}

// SetFrozen freezes or unfreezes a single deal. A freeze blocks funding,
// shipping, confirmation and cancellation for that deal only; creation of
// other deals, dispute resolution and withdrawal are unaffected.
func (m *Market) SetFrozen(caller string, id uint64, v bool) error {
	if caller != m.admin {
		return domain.ErrNotAdmin
	}
	s, err := m.lockDeal(id)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()

	if m.guard.SetFrozen(id, v) {
		m.emit(event.Event{
			Type:   event.TypeFrozenChanged,
			DealID: id,
			Actor:  caller,
			Flag:   v,
		})
	}
	return nil
}

// SetBanned bans or unbans an account. A ban blocks only deal creation and
// funding by that account; it does not retroactively block shipping or
// confirming deals the account already participates in, nor withdrawal of
// balances already credited.
func (m *Market) SetBanned(caller, account string, v bool) error {
	if caller != m.admin {
		return domain.ErrNotAdmin
	}
	if m.guard.SetBanned(account, v) {
		m.emit(event.Event{
			Type:    event.TypeBannedChanged,
			Actor:   caller,
			Account: account,
			Flag:    v,
		})
	}
	return nil
}
