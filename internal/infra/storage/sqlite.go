package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/zohersahli/EscrowMarket/internal/domain"
	"github.com/zohersahli/EscrowMarket/internal/event"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DealRecord is the persisted snapshot of one deal.
type DealRecord struct {
	ID         uint64 `gorm:"primaryKey"`
	Seller     string
	Buyer      string
	PriceCents int64
	Title      string
	State      uint8
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// BalanceRecord mirrors one ledger account's owed balance.
type BalanceRecord struct {
	Account     string `gorm:"primaryKey"`
	AmountCents int64
	UpdatedAt   time.Time
}

// EventRecord is one row of the append-only audit journal.
type EventRecord struct {
	Seq         uint64 `gorm:"primaryKey"`
	Ts          int64
	Type        string `gorm:"index"`
	DealID      uint64 `gorm:"index"`
	Actor       string
	Account     string
	AmountCents int64
	State       string
	Title       string
	Flag        bool
}

// Storage persists deal snapshots, ledger balances and the audit journal in
// SQLite. The in-memory market is the source of truth; storage is an
// observer used for restart recovery and audit.
type Storage struct {
	db *gorm.DB
}

// NewStorage creates a new SQLite storage instance. An empty path selects
// the default location under the user config directory.
func NewStorage(path string) (*Storage, error) {
	dbPath := path
	if dbPath == "" {
		resolved, err := defaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve DB path: %w", err)
		}
		dbPath = resolved
	}

	// Ensure directory exists
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto Migration
	if err := db.AutoMigrate(&DealRecord{}, &BalanceRecord{}, &EventRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// defaultDBPath resolves the database file path based on OS
func defaultDBPath() (string, error) {
	var configDir string
	var err error

	if runtime.GOOS == "windows" {
		configDir = os.Getenv("LOCALAPPDATA")
		if configDir == "" {
			configDir, err = os.UserConfigDir()
		}
	} else {
		configDir, err = os.UserConfigDir()
	}

	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "EscrowMarket", "data", "escrow.db"), nil
}

// SaveDeal upserts the deal snapshot.
func (s *Storage) SaveDeal(d *domain.Deal) error {
	record := DealRecord{
		ID:         d.ID,
		Seller:     d.Seller,
		Buyer:      d.Buyer,
		PriceCents: d.PriceCents,
		Title:      d.Title,
		State:      uint8(d.State),
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  time.Now(),
	}
	return s.db.Save(&record).Error
}

// DeleteDeal erases the deal snapshot. The id stays burned: the market's
// allocator never reuses it.
func (s *Storage) DeleteDeal(id uint64) error {
	return s.db.Where("id = ?", id).Delete(&DealRecord{}).Error
}

// LoadDeals returns all persisted deal snapshots.
func (s *Storage) LoadDeals() ([]domain.Deal, error) {
	var records []DealRecord
	if err := s.db.Find(&records).Error; err != nil {
		return nil, err
	}

	deals := make([]domain.Deal, 0, len(records))
	for _, r := range records {
		deals = append(deals, domain.Deal{
			ID:         r.ID,
			Seller:     r.Seller,
			Buyer:      r.Buyer,
			PriceCents: r.PriceCents,
			Title:      r.Title,
			State:      domain.DealState(r.State),
			CreatedAt:  r.CreatedAt,
		})
	}
	return deals, nil
}

// SaveBalance upserts one account's owed balance.
func (s *Storage) SaveBalance(account string, amountCents int64) error {
	record := BalanceRecord{
		Account:     account,
		AmountCents: amountCents,
		UpdatedAt:   time.Now(),
	}
	return s.db.Save(&record).Error
}

// LoadBalances returns all persisted balances keyed by account.
func (s *Storage) LoadBalances() (map[string]int64, error) {
	var records []BalanceRecord
	if err := s.db.Find(&records).Error; err != nil {
		return nil, err
	}

	balances := make(map[string]int64, len(records))
	for _, r := range records {
		balances[r.Account] = r.AmountCents
	}
	return balances, nil
}

// AppendEvent writes one audit event to the journal.
func (s *Storage) AppendEvent(ev event.Event) error {
	record := EventRecord{
		Seq:         ev.Seq,
		Ts:          ev.Ts,
		Type:        string(ev.Type),
		DealID:      ev.DealID,
		Actor:       ev.Actor,
		Account:     ev.Account,
		AmountCents: ev.AmountCents,
		State:       ev.State,
		Title:       ev.Title,
		Flag:        ev.Flag,
	}
	return s.db.Create(&record).Error
}

// Emit implements event.Sink. Journal failures are logged, not propagated:
// the in-memory mutation has already committed and must not be rolled back
// by an audit hiccup.
func (s *Storage) Emit(ev event.Event) {
	if err := s.AppendEvent(ev); err != nil {
		slog.Error("Failed to journal event",
			slog.Uint64("seq", ev.Seq),
			slog.String("type", string(ev.Type)),
			slog.Any("error", err))
	}
}

// LastSeq returns the highest journaled sequence number, or 0 for an empty
// journal.
func (s *Storage) LastSeq() (uint64, error) {
	var record EventRecord
	err := s.db.Order("seq DESC").First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return record.Seq, nil
}

// Events returns up to limit journal rows starting at fromSeq, in order.
func (s *Storage) Events(fromSeq uint64, limit int) ([]event.Event, error) {
	var records []EventRecord
	err := s.db.Where("seq >= ?", fromSeq).Order("seq ASC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, err
	}

	events := make([]event.Event, 0, len(records))
	for _, r := range records {
		events = append(events, event.Event{
			Seq:         r.Seq,
			Ts:          r.Ts,
			Type:        event.Type(r.Type),
			DealID:      r.DealID,
			Actor:       r.Actor,
			Account:     r.Account,
			AmountCents: r.AmountCents,
			State:       r.State,
			Title:       r.Title,
			Flag:        r.Flag,
		})
	}
	return events, nil
}
