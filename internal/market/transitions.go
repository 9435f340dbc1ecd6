package market

import (
	"github.com/zohersahli/EscrowMarket/internal/domain"
	"github.com/zohersahli/EscrowMarket/internal/event"
)

// The transition table. Crediting the ledger and advancing the state happen
// under the per-deal lock, so no observer can see a COMPLETED deal without
// the matching credit or vice versa.
//
//	LISTED   --Fund(buyer, exact amount)-->  FUNDED
//	FUNDED   --Ship(seller)-->               SHIPPED
//	FUNDED   --Cancel(buyer)-->              CANCELLED  credit buyer
//	SHIPPED  --Confirm(buyer)-->             COMPLETED  credit seller
//	FUNDED|SHIPPED --OpenDispute(either)-->  DISPUTED
//	DISPUTED --ResolveDispute(admin,true)--> COMPLETED  credit seller
//	DISPUTED --ResolveDispute(admin,false)-> CANCELLED  credit buyer

// Fund moves a LISTED deal to FUNDED and binds the caller as its buyer. The
// paid amount must equal the price exactly; this is also the only way money
// enters the system, so any unsolicited or mismatched payment is rejected
// here. The seller cannot fund their own listing.
func (m *Market) Fund(caller string, id uint64, paidCents int64) error {
	s, err := m.lockDeal(id)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()

	if err := runChecks(&s.deal,
		rejectSeller(caller),
		requireState("fund", domain.StateListed),
		requireExactAmount(paidCents),
		m.notPaused(),
		m.notFrozen(),
		m.notBanned(caller),
	); err != nil {
		return err
	}

	s.deal.Buyer = caller
	s.deal.State = domain.StateFunded
	m.persistDeal(&s.deal)
	m.emit(event.Event{
		Type:        event.TypeFunded,
		DealID:      id,
		Actor:       caller,
		Account:     caller,
		AmountCents: paidCents,
		State:       s.deal.State.String(),
	})
	return nil
}

// Ship marks a FUNDED deal as dispatched. Seller only.
func (m *Market) Ship(caller string, id uint64) error {
	s, err := m.lockDeal(id)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()

	if err := runChecks(&s.deal,
		requireSeller(caller),
		requireState("ship", domain.StateFunded),
		m.notPaused(),
		m.notFrozen(),
	); err != nil {
		return err
	}

	s.deal.State = domain.StateShipped
	m.persistDeal(&s.deal)
	m.emit(event.Event{
		Type:   event.TypeShipped,
		DealID: id,
		Actor:  caller,
		State:  s.deal.State.String(),
	})
	return nil
}

// Confirm completes a SHIPPED deal and credits the seller the full price.
// Buyer only. COMPLETED is terminal.
func (m *Market) Confirm(caller string, id uint64) error {
	s, err := m.lockDeal(id)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()

	if err := runChecks(&s.deal,
		requireBuyer(caller),
		requireState("confirm", domain.StateShipped),
		m.notPaused(),
		m.notFrozen(),
	); err != nil {
		return err
	}

	s.deal.State = domain.StateCompleted
	m.ledger.Credit(s.deal.Seller, s.deal.PriceCents)
	m.persistDeal(&s.deal)
	m.persistBalance(s.deal.Seller)
	m.emit(event.Event{
		Type:        event.TypeCompleted,
		DealID:      id,
		Actor:       caller,
		Account:     s.deal.Seller,
		AmountCents: s.deal.PriceCents,
		State:       s.deal.State.String(),
	})
	return nil
}

// Cancel aborts a FUNDED deal and credits the buyer their payment back.
// Buyer only, and only before shipment. CANCELLED is terminal.
func (m *Market) Cancel(caller string, id uint64) error {
	s, err := m.lockDeal(id)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()

	if err := runChecks(&s.deal,
		requireBuyer(caller),
		requireState("cancel", domain.StateFunded),
		m.notPaused(),
		m.notFrozen(),
	); err != nil {
		return err
	}

	s.deal.State = domain.StateCancelled
	m.ledger.Credit(s.deal.Buyer, s.deal.PriceCents)
	m.persistDeal(&s.deal)
	m.persistBalance(s.deal.Buyer)
	m.emit(event.Event{
		Type:        event.TypeCancelled,
		DealID:      id,
		Actor:       caller,
		Account:     s.deal.Buyer,
		AmountCents: s.deal.PriceCents,
		State:       s.deal.State.String(),
	})
	return nil
}

// OpenDispute moves a FUNDED or SHIPPED deal to DISPUTED, the only trigger
// reachable from two source states. Either participant may open it. A
// per-deal freeze does not block it; the global pause does.
func (m *Market) OpenDispute(caller string, id uint64) error {
	s, err := m.lockDeal(id)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()

	if err := runChecks(&s.deal,
		requireParticipant(caller),
		requireDisputable(),
		m.notPaused(),
	); err != nil {
		return err
	}

	s.deal.State = domain.StateDisputed
	m.persistDeal(&s.deal)
	m.emit(event.Event{
		Type:   event.TypeDisputed,
		DealID: id,
		Actor:  caller,
		State:  s.deal.State.String(),
	})
	return nil
}

// ResolveDispute is the admin-only override out of DISPUTED: toSeller=true
// completes the deal and credits the seller, toSeller=false cancels it and
// credits the buyer. No partial or split resolution exists. Arbitration is
// intentionally available even while the market is paused or the deal is
// frozen.
func (m *Market) ResolveDispute(caller string, id uint64, toSeller bool) error {
	s, err := m.lockDeal(id)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()

	if err := runChecks(&s.deal,
		m.requireAdmin(caller),
		requireState("resolve dispute", domain.StateDisputed),
	); err != nil {
		return err
	}

	var account string
	if toSeller {
		s.deal.State = domain.StateCompleted
		account = s.deal.Seller
	} else {
		s.deal.State = domain.StateCancelled
		account = s.deal.Buyer
	}
	m.ledger.Credit(account, s.deal.PriceCents)
	m.persistDeal(&s.deal)
	m.persistBalance(account)
	m.emit(event.Event{
		Type:        event.TypeResolved,
		DealID:      id,
		Actor:       caller,
		Account:     account,
		AmountCents: s.deal.PriceCents,
		State:       s.deal.State.String(),
		Flag:        toSeller,
	})
	return nil
}
