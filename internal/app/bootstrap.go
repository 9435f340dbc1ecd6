package app

import (
	"log/slog"
	"time"

	"github.com/zohersahli/EscrowMarket/internal/event"
	"github.com/zohersahli/EscrowMarket/internal/guard"
	"github.com/zohersahli/EscrowMarket/internal/infra"
	"github.com/zohersahli/EscrowMarket/internal/infra/storage"
	"github.com/zohersahli/EscrowMarket/internal/infra/stream"
	"github.com/zohersahli/EscrowMarket/internal/ledger"
	"github.com/zohersahli/EscrowMarket/internal/market"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config  *infra.Config
	Storage *storage.Storage
	Guard   *guard.Guard
	Ledger  *ledger.Ledger
	Market  *market.Market
	Hub     *stream.Hub
	Metrics *infra.Metrics
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize wires the escrow core and restores persisted state.
func (b *Bootstrap) Initialize() error {
	slog.Info("🚀 Bootstrapping EscrowMarket...")

	// 1. Load Config
	cfg, err := infra.LoadConfig("configs/config.yaml")
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Initialize Storage (DB)
	store, err := storage.NewStorage(cfg.Storage.Path)
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("✅ Database initialized")

	// 4. Core components
	b.Guard = guard.New()
	gateway := infra.NewPayoutClient(
		cfg.Payout.URL,
		cfg.Payout.Currency,
		time.Duration(cfg.Payout.TimeoutSec)*time.Second,
	)
	b.Ledger = ledger.New(gateway)
	b.Metrics = &infra.Metrics{}
	b.Hub = stream.NewHub()
	b.Hub.OnCountChange = func(delta int) {
		if delta > 0 {
			b.Metrics.IncrementStreams()
		} else {
			b.Metrics.DecrementStreams()
		}
	}

	// Journal first so a persisted event always precedes its broadcast.
	sink := event.MultiSink{store, b.Hub, b.Metrics}
	b.Market = market.New(cfg.Admin.Account, b.Guard, b.Ledger, sink, store)

	// 5. Restore persisted state
	if err := b.restore(); err != nil {
		return err
	}
	slog.Info("✅ Escrow market ready", slog.String("admin", cfg.Admin.Account))

	return nil
}

// restore reloads deal snapshots, ledger balances and the event sequence so
// the process resumes mid-lifecycle after a restart.
func (b *Bootstrap) restore() error {
	deals, err := b.Storage.LoadDeals()
	if err != nil {
		return err
	}
	lastSeq, err := b.Storage.LastSeq()
	if err != nil {
		return err
	}
	b.Market.Restore(deals, lastSeq)

	balances, err := b.Storage.LoadBalances()
	if err != nil {
		return err
	}
	for account, amount := range balances {
		b.Ledger.Restore(account, amount)
	}

	slog.Info("🔄 State restored",
		slog.Int("deals", len(deals)),
		slog.Int("balances", len(balances)),
		slog.Uint64("last_seq", lastSeq))
	return nil
}
