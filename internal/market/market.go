// Package market implements the escrow core: the deal registry, the
// lifecycle transition engine, the admin guard surface and withdrawal.
// Market is the single entry point for every mutating operation; each call
// validates existence, role, state and guard flags in order before any
// effect is applied, and each successful mutation emits exactly one audit
// event inside the same atomic unit.
package market

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zohersahli/EscrowMarket/internal/domain"
	"github.com/zohersahli/EscrowMarket/internal/event"
	"github.com/zohersahli/EscrowMarket/internal/guard"
	"github.com/zohersahli/EscrowMarket/internal/ledger"
)

// Market mediates buyer-seller sales, holding payments in the ledger until
// delivery is confirmed or a dispute is arbitrated.
type Market struct {
	admin  string
	guard  *guard.Guard
	ledger *ledger.Ledger
	sink   event.Sink
	store  domain.DealStore // nil disables persistence

	mu     sync.RWMutex // guards deals map and the id allocator
	deals  map[uint64]*slot
	nextID uint64

	seq atomic.Uint64
}

// slot pairs a deal with its exclusive lock. Operations on different deals
// proceed in parallel; operations on the same deal serialize on mu, making
// the whole read-check-mutate sequence atomic with respect to other callers.
type slot struct {
	mu      sync.Mutex
	deal    domain.Deal
	removed bool
}

// New creates an empty market. The admin account is fixed for the market's
// lifetime; there is no rotation or multi-party mechanism.
func New(admin string, g *guard.Guard, l *ledger.Ledger, sink event.Sink, store domain.DealStore) *Market {
	return &Market{
		admin:  admin,
		guard:  g,
		ledger: l,
		sink:   sink,
		store:  store,
		deals:  make(map[uint64]*slot),
		nextID: 1,
	}
}

// Admin returns the fixed admin account.
func (m *Market) Admin() string {
	return m.admin
}

// lockDeal returns the slot for id with its mutex held. A slot that was
// removed between the map lookup and the lock acquisition reports NotFound,
// so a removed id can never be resurrected by a racing caller.
func (m *Market) lockDeal(id uint64) (*slot, error) {
	m.mu.RLock()
	s := m.deals[id]
	m.mu.RUnlock()
	if s == nil {
		return nil, &domain.NotFoundError{ID: id}
	}
	s.mu.Lock()
	if s.removed {
		s.mu.Unlock()
		return nil, &domain.NotFoundError{ID: id}
	}
	return s, nil
}

// emit stamps the event with the next sequence number and timestamp and
// hands it to the sink. Callers invoke it while still holding the lock that
// covers the mutation, so an observer never sees an event without the state
// change or a state change without its event.
func (m *Market) emit(ev event.Event) {
	ev.Seq = m.seq.Add(1)
	ev.Ts = time.Now().UnixMicro()
	if m.sink != nil {
		m.sink.Emit(ev)
	}
}

func (m *Market) persistDeal(d *domain.Deal) {
	if m.store == nil {
		return
	}
	if err := m.store.SaveDeal(d); err != nil {
		slog.Error("Failed to persist deal snapshot", slog.Uint64("deal_id", d.ID), slog.Any("error", err))
	}
}

func (m *Market) persistBalance(account string) {
	if m.store == nil {
		return
	}
	if err := m.store.SaveBalance(account, m.ledger.Balance(account)); err != nil {
		slog.Error("Failed to persist balance", slog.String("account", account), slog.Any("error", err))
	}
}

// Create lists a new sale and returns its deal id. Ids start at 1, are
// strictly increasing and are never reused, including ids of removed deals.
// The allocator fails closed if the id space would overflow.
func (m *Market) Create(caller string, priceCents int64, title string) (uint64, error) {
	if m.guard.Paused() {
		return 0, domain.ErrPaused
	}
	if m.guard.Banned(caller) {
		return 0, &domain.BannedError{Account: caller}
	}
	if priceCents <= 0 {
		return 0, domain.ErrZeroValue
	}

	m.mu.Lock()
	if m.nextID == math.MaxUint64 {
		m.mu.Unlock()
		return 0, domain.ErrIDExhausted
	}
	s := &slot{deal: domain.Deal{
		ID:         m.nextID,
		Seller:     caller,
		PriceCents: priceCents,
		Title:      title,
		State:      domain.StateListed,
		CreatedAt:  time.Now(),
	}}
	// Lock before publishing in the map so the creation event is emitted
	// before any other operation can touch the id.
	s.mu.Lock()
	m.deals[s.deal.ID] = s
	m.nextID++
	m.mu.Unlock()
	defer s.mu.Unlock()

	m.persistDeal(&s.deal)
	m.emit(event.Event{
		Type:        event.TypeCreated,
		DealID:      s.deal.ID,
		Actor:       caller,
		AmountCents: priceCents,
		State:       s.deal.State.String(),
		Title:       s.deal.Title,
	})
	return s.deal.ID, nil
}

// UpdateTitle replaces the listing title. Only the seller may edit, and only
// while the deal is still LISTED.
func (m *Market) UpdateTitle(caller string, id uint64, title string) error {
	s, err := m.lockDeal(id)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()

	if err := runChecks(&s.deal,
		requireSeller(caller),
		requireState("update title", domain.StateListed),
	); err != nil {
		return err
	}

	s.deal.Title = title
	m.persistDeal(&s.deal)
	m.emit(event.Event{
		Type:   event.TypeTitleUpdated,
		DealID: id,
		Actor:  caller,
		Title:  title,
		State:  s.deal.State.String(),
	})
	return nil
}

// Remove erases a LISTED deal. Afterwards the id permanently reports
// NotFound and is never reassigned.
func (m *Market) Remove(caller string, id uint64) error {
	s, err := m.lockDeal(id)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()

	if err := runChecks(&s.deal,
		requireSeller(caller),
		requireState("remove", domain.StateListed),
	); err != nil {
		return err
	}

	s.removed = true
	m.mu.Lock()
	delete(m.deals, id)
	m.mu.Unlock()

	// A removed id no longer exists, so a stale freeze entry for it is
	// dead bookkeeping. Dropped without a FrozenChanged event.
	m.guard.SetFrozen(id, false)

	if m.store != nil {
		if err := m.store.DeleteDeal(id); err != nil {
			slog.Error("Failed to delete deal snapshot", slog.Uint64("deal_id", id), slog.Any("error", err))
		}
	}
	m.emit(event.Event{
		Type:   event.TypeRemoved,
		DealID: id,
		Actor:  caller,
	})
	return nil
}

// Withdraw pays out the caller's full owed balance through the transfer
// gateway. Deliberately not blocked by pause, freeze or ban: funds already
// owed must remain retrievable during an incident. On transfer failure the
// balance is restored and the returned error is retriable.
func (m *Market) Withdraw(ctx context.Context, caller string) (int64, error) {
	paid, err := m.ledger.Withdraw(ctx, caller)
	if err != nil {
		return 0, err
	}
	m.persistBalance(caller)
	m.emit(event.Event{
		Type:        event.TypeWithdrawn,
		Actor:       caller,
		Account:     caller,
		AmountCents: paid,
	})
	return paid, nil
}

// Deal returns a copy of the deal, if it exists.
func (m *Market) Deal(id uint64) (domain.Deal, bool) {
	m.mu.RLock()
	s := m.deals[id]
	m.mu.RUnlock()
	if s == nil {
		return domain.Deal{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removed {
		return domain.Deal{}, false
	}
	return s.deal, true
}

// Deals returns copies of all live deals sorted by id.
func (m *Market) Deals() []domain.Deal {
	m.mu.RLock()
	slots := make([]*slot, 0, len(m.deals))
	for _, s := range m.deals {
		slots = append(slots, s)
	}
	m.mu.RUnlock()

	result := make([]domain.Deal, 0, len(slots))
	for _, s := range slots {
		s.mu.Lock()
		if !s.removed {
			result = append(result, s.deal)
		}
		s.mu.Unlock()
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Balance returns the account's currently owed balance.
func (m *Market) Balance(account string) int64 {
	return m.ledger.Balance(account)
}

// GuardState returns a snapshot of the guard flags for diagnostics.
func (m *Market) GuardState() guard.Snapshot {
	return m.guard.Snapshot()
}

// Restore seeds deals and the event sequence from persisted snapshots.
// Must be called before the market serves traffic.
func (m *Market) Restore(deals []domain.Deal, lastSeq uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range deals {
		m.deals[d.ID] = &slot{deal: d}
		if d.ID >= m.nextID {
			m.nextID = d.ID + 1
		}
	}
	m.seq.Store(lastSeq)
}
