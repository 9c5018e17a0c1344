// internal/services/ledger.go
package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/runhunter/shoedeal-backend/internal/models"
)

// LedgerService owns the append-only price history. It is the source of truth
// for "did the price actually change".
type LedgerService struct {
	db *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

// WithTx returns a ledger bound to an open transaction, so history writes
// commit or roll back together with the canonical record they belong to.
func (s *LedgerService) WithTx(tx *gorm.DB) *LedgerService {
	return &LedgerService{db: tx}
}

// Record appends a new entry unless the most recent entry already carries the
// same price. Returns whether an entry was appended.
func (s *LedgerService) Record(identity string, price float64, at time.Time) (bool, error) {
	latest, err := s.Latest(identity)
	if err != nil {
		return false, err
	}

	if latest != nil && latest.Price == price {
		return false, nil
	}

	entry := &models.PriceEntry{
		Identity:   identity,
		Price:      price,
		RecordedAt: at,
	}
	if err := s.db.Create(entry).Error; err != nil {
		return false, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}

	return true, nil
}

// Latest returns the most recent entry for an identity, or nil for one that
// has never been priced.
func (s *LedgerService) Latest(identity string) (*models.PriceEntry, error) {
	var entry models.PriceEntry
	err := s.db.Where("identity = ?", identity).
		Order("recorded_at DESC, id DESC").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	return &entry, nil
}

// History returns the full time-ordered (oldest-first) price history.
func (s *LedgerService) History(identity string) ([]models.PriceEntry, error) {
	var entries []models.PriceEntry
	if err := s.db.Where("identity = ?", identity).
		Order("recorded_at ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	return entries, nil
}
