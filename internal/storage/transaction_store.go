package storage

import (
	"context"
	"fmt"
	"time"

	"accounting/internal/calendar"
	"accounting/internal/core"
	"accounting/internal/log"
)

// LoadResult describes where the loaded collection came from.
type LoadResult struct {
	// Seeded is true when nothing usable was persisted and sample data was returned.
	Seeded bool
}

// TransactionStore persists the whole transaction collection as one blob in a KV backend.
type TransactionStore struct {
	kv     KV
	cal    calendar.Calendar
	now    func() time.Time
	logger *log.Logger
}

// NewTransactionStore creates a store over kv. A nil now defaults to time.Now
// and a nil logger discards.
func NewTransactionStore(kv KV, cal calendar.Calendar, now func() time.Time, logger *log.Logger) *TransactionStore {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &TransactionStore{kv: kv, cal: cal, now: now, logger: logger.WithComponent(log.ComponentStorage)}
}

// Save replaces the persisted collection. When encoding fails the previous blob is
// left untouched.
func (s *TransactionStore) Save(ctx context.Context, txs []core.Transaction) error {
	data, err := EncodeTransactions(txs)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, TransactionsKey, data); err != nil {
		return fmt.Errorf("write transactions: %w", err)
	}
	s.logger.DebugContext(ctx, "Transactions persisted", log.FieldCount, len(txs), "bytes", len(data))
	return nil
}

// Load reads the persisted collection. It always returns a usable collection:
// a missing, corrupt or unreadable blob yields the seed data. The error is
// non-nil for corrupt or unreadable blobs so callers can report it.
func (s *TransactionStore) Load(ctx context.Context) ([]core.Transaction, LoadResult, error) {
	data, ok, err := s.kv.Get(ctx, TransactionsKey)
	if err != nil {
		return s.seed(), LoadResult{Seeded: true}, fmt.Errorf("read transactions: %w", err)
	}
	if !ok {
		s.logger.DebugContext(ctx, "No transactions persisted, using seed data")
		return s.seed(), LoadResult{Seeded: true}, nil
	}

	txs, err := DecodeTransactions(data, s.cal.Location)
	if err != nil {
		return s.seed(), LoadResult{Seeded: true}, err
	}
	s.logger.DebugContext(ctx, "Transactions loaded", log.FieldCount, len(txs), "bytes", len(data))
	return txs, LoadResult{}, nil
}

// Clear persists an empty collection. A cleared store loads as empty, not as seed data.
func (s *TransactionStore) Clear(ctx context.Context) error {
	return s.Save(ctx, nil)
}

func (s *TransactionStore) seed() []core.Transaction {
	return SeedTransactions(s.cal, s.now())
}
