package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"accounting/internal/calendar"
	"accounting/internal/core"
	"accounting/internal/log"
	"accounting/internal/stats"
	"accounting/internal/storage"
)

// TransactionRepository persists the whole transaction collection.
// storage.TransactionStore is the production implementation.
type TransactionRepository interface {
	Load(ctx context.Context) ([]core.Transaction, storage.LoadResult, error)
	Save(ctx context.Context, txs []core.Transaction) error
	Clear(ctx context.Context) error
}

// ManagerConfig holds the collaborators of a TransactionManager.
type ManagerConfig struct {
	Calendar calendar.Calendar
	Clock    func() time.Time
	Logger   *log.Logger
}

// TransactionManager owns the in-memory transaction collection and the selected
// month. Every mutation persists the full collection through the repository;
// every query is recomputed from the current collection.
type TransactionManager struct {
	mu            sync.RWMutex
	store         TransactionRepository
	cal           calendar.Calendar
	now           func() time.Time
	logger        *log.Logger
	transactions  []core.Transaction
	selectedMonth time.Time

	obsMu     sync.Mutex
	observers []observerEntry
	nextObs   int
}

type observerEntry struct {
	id int
	o  Observer
}

// NewTransactionManager creates a manager and loads the collection from store.
// Load problems are logged; the manager always starts with a usable collection.
func NewTransactionManager(ctx context.Context, store TransactionRepository, config ManagerConfig) *TransactionManager {
	if config.Clock == nil {
		config.Clock = time.Now
	}
	if config.Logger == nil {
		config.Logger = log.FromContext(ctx)
	}
	m := &TransactionManager{
		store:  store,
		cal:    config.Calendar,
		now:    config.Clock,
		logger: config.Logger,
	}
	m.selectedMonth = m.now()
	m.initialize(ctx)
	return m
}

func (m *TransactionManager) initialize(ctx context.Context) {
	txs, res, err := m.store.Load(ctx)
	if err != nil {
		errType := log.ErrorTypeStorage
		if errors.Is(err, storage.ErrDecode) {
			errType = log.ErrorTypeEncoding
		}
		m.logger.WarnContext(ctx, "Persisted transactions unusable, falling back to sample data",
			log.NewFields().WithOperation(log.OpLoad).WithError(err, errType).ToSlice()...)
	}
	if res.Seeded && err == nil {
		// Nothing was persisted yet; store the seed so its ids are stable across runs.
		if err := m.store.Save(ctx, txs); err != nil {
			m.logPersistError(ctx, log.OpLoad, len(txs), err)
		}
	}
	m.transactions = txs
	m.logger.InfoContext(ctx, "Transactions loaded",
		log.FieldCount, len(txs),
		log.FieldSeeded, res.Seeded)
}

// Subscribe registers o for change notifications and returns a function that
// removes it.
func (m *TransactionManager) Subscribe(o Observer) (unsubscribe func()) {
	m.obsMu.Lock()
	defer m.obsMu.Unlock()
	id := m.nextObs
	m.nextObs++
	m.observers = append(m.observers, observerEntry{id: id, o: o})
	return func() {
		m.obsMu.Lock()
		defer m.obsMu.Unlock()
		for i, e := range m.observers {
			if e.id == id {
				m.observers = append(m.observers[:i:i], m.observers[i+1:]...)
				return
			}
		}
	}
}

// Add appends tx and persists the collection. Invalid transactions are rejected
// without touching the collection.
func (m *TransactionManager) Add(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		m.logRejected(ctx, log.OpAdd, tx, err)
		return fmt.Errorf("add transaction: %w", err)
	}

	m.mu.Lock()
	m.transactions = append(m.transactions, tx)
	count := len(m.transactions)
	err := m.persist(ctx, log.OpAdd)
	m.mu.Unlock()

	m.logApplied(ctx, log.OpAdd, tx, count)
	m.notify(ctx, ChangeEvent{Op: OpAdded, TransactionID: tx.ID, Count: count})
	return err
}

// Update replaces the transaction with the same id, keeping its position.
// An unknown id is ignored.
func (m *TransactionManager) Update(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		m.logRejected(ctx, log.OpUpdate, tx, err)
		return fmt.Errorf("update transaction: %w", err)
	}

	m.mu.Lock()
	idx := m.indexOf(tx.ID)
	if idx < 0 {
		m.mu.Unlock()
		m.logger.DebugContext(ctx, "Update ignored, transaction not found", log.FieldTransactionID, tx.ID)
		return nil
	}
	m.transactions[idx] = tx
	count := len(m.transactions)
	err := m.persist(ctx, log.OpUpdate)
	m.mu.Unlock()

	m.logApplied(ctx, log.OpUpdate, tx, count)
	m.notify(ctx, ChangeEvent{Op: OpUpdated, TransactionID: tx.ID, Count: count})
	return err
}

// Delete removes every transaction with tx's id and persists the collection.
func (m *TransactionManager) Delete(ctx context.Context, tx core.Transaction) error {
	return m.DeleteByID(ctx, tx.ID)
}

// DeleteByID removes every transaction with id and persists the collection.
func (m *TransactionManager) DeleteByID(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	var deleted core.Transaction
	kept := m.transactions[:0]
	for _, tx := range m.transactions {
		if tx.ID != id {
			kept = append(kept, tx)
		} else {
			deleted = tx
		}
	}
	removed := len(m.transactions) - len(kept)
	// Zero the tail so removed records do not linger in the backing array.
	for i := len(kept); i < len(m.transactions); i++ {
		m.transactions[i] = core.Transaction{}
	}
	m.transactions = kept
	count := len(kept)
	err := m.persist(ctx, log.OpDelete)
	m.mu.Unlock()

	if removed > 0 {
		m.logApplied(ctx, log.OpDelete, deleted, count)
		m.notify(ctx, ChangeEvent{Op: OpDeleted, TransactionID: id, Count: count})
	}
	return err
}

// Clear removes all transactions and persists the empty collection.
func (m *TransactionManager) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.transactions = nil
	err := m.store.Clear(ctx)
	if err != nil {
		m.logPersistError(ctx, log.OpClear, 0, err)
		err = fmt.Errorf("clear transactions: %w", err)
	}
	m.mu.Unlock()

	m.notify(ctx, ChangeEvent{Op: OpCleared})
	return err
}

// persist must be called with m.mu held.
func (m *TransactionManager) persist(ctx context.Context, op string) error {
	if err := m.store.Save(ctx, m.transactions); err != nil {
		m.logPersistError(ctx, op, len(m.transactions), err)
		return fmt.Errorf("persist transactions: %w", err)
	}
	return nil
}

func (m *TransactionManager) logPersistError(ctx context.Context, op string, count int, err error) {
	errType := log.ErrorTypeStorage
	if errors.Is(err, storage.ErrEncode) {
		errType = log.ErrorTypeEncoding
	}
	m.logger.WithFields(log.NewFields().WithOperation(op).WithCount(count)).
		ErrorContext(ctx, "Failed to persist transactions", log.NewFields().WithError(err, errType).ToSlice()...)
}

func (m *TransactionManager) logApplied(ctx context.Context, op string, tx core.Transaction, count int) {
	m.logger.WithFields(log.NewFields().WithOperation(op).WithCount(count)).
		DebugContext(ctx, "Transaction applied", transactionFields(tx).ToSlice()...)
}

func (m *TransactionManager) logRejected(ctx context.Context, op string, tx core.Transaction, err error) {
	m.logger.WarnContext(ctx, "Transaction rejected",
		transactionFields(tx).WithOperation(op).WithError(err, log.ErrorTypeValidation).ToSlice()...)
}

func transactionFields(tx core.Transaction) log.LogFields {
	return log.NewFields().WithTransaction(tx.ID.String(), string(tx.Type), tx.Category.Name, core.FormatAmount(tx.Amount))
}

func (m *TransactionManager) notify(ctx context.Context, ev ChangeEvent) {
	ev.At = m.now()

	m.obsMu.Lock()
	observers := append([]observerEntry(nil), m.observers...)
	m.obsMu.Unlock()

	for _, e := range observers {
		e.o.TransactionsChanged(ctx, ev)
	}
}

func (m *TransactionManager) indexOf(id uuid.UUID) int {
	for i, tx := range m.transactions {
		if tx.ID == id {
			return i
		}
	}
	return -1
}

// SelectedMonth returns the reference date used by monthly queries.
func (m *TransactionManager) SelectedMonth() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.selectedMonth
}

// SetSelectedMonth changes the reference date for subsequent monthly queries.
func (m *TransactionManager) SetSelectedMonth(t time.Time) {
	m.mu.Lock()
	m.selectedMonth = t
	m.mu.Unlock()
	m.logger.Debug("Selected month changed", log.FieldMonth, m.cal.FormatMonth(t))
}

// PreviousMonth moves the selection one month back and returns the new value.
func (m *TransactionManager) PreviousMonth() time.Time {
	return m.shiftMonth(-1)
}

// NextMonth moves the selection one month forward and returns the new value.
func (m *TransactionManager) NextMonth() time.Time {
	return m.shiftMonth(1)
}

func (m *TransactionManager) shiftMonth(n int) time.Time {
	m.mu.Lock()
	m.selectedMonth = m.cal.AddMonths(m.selectedMonth, n)
	month := m.selectedMonth
	m.mu.Unlock()
	m.logger.Debug("Selected month changed", log.FieldMonth, m.cal.FormatMonth(month))
	return month
}

// snapshot copies the collection and selected month under the read lock.
func (m *TransactionManager) snapshot() ([]core.Transaction, time.Time) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]core.Transaction(nil), m.transactions...), m.selectedMonth
}

// Transactions returns a copy of the whole collection in insertion order.
func (m *TransactionManager) Transactions() []core.Transaction {
	txs, _ := m.snapshot()
	return txs
}

// Count returns the number of stored transactions.
func (m *TransactionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.transactions)
}

// Find returns the transaction with id.
func (m *TransactionManager) Find(id uuid.UUID) (core.Transaction, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := m.indexOf(id); i >= 0 {
		return m.transactions[i], true
	}
	return core.Transaction{}, false
}

func (m *TransactionManager) MonthlyTransactions() []core.Transaction {
	txs, month := m.snapshot()
	return stats.MonthlyTransactions(m.cal, month, txs)
}

func (m *TransactionManager) TotalIncome() decimal.Decimal {
	return stats.Total(m.MonthlyTransactions(), core.Income)
}

func (m *TransactionManager) TotalExpense() decimal.Decimal {
	return stats.Total(m.MonthlyTransactions(), core.Expense)
}

func (m *TransactionManager) Balance() decimal.Decimal {
	return stats.Balance(m.MonthlyTransactions())
}

// CategoryExpenses returns the selected month's expenses per category, largest first.
func (m *TransactionManager) CategoryExpenses() []core.CategoryAmount {
	return stats.CategoryBreakdown(m.MonthlyTransactions(), core.Expense)
}

// CategoryIncome returns the selected month's income per category, largest first.
func (m *TransactionManager) CategoryIncome() []core.CategoryAmount {
	return stats.CategoryBreakdown(m.MonthlyTransactions(), core.Income)
}

// DailyExpenses returns the selected month's expenses per day, oldest first.
func (m *TransactionManager) DailyExpenses() []core.DayAmount {
	return stats.DailyBreakdown(m.cal, m.MonthlyTransactions())
}

// Statistics summarizes one transaction type for the selected month.
func (m *TransactionManager) Statistics(t core.TransactionType) core.Statistics {
	txs, month := m.snapshot()
	return stats.Summarize(m.cal, month, txs, t)
}

// Search filters the selected month's transactions by note or category name.
func (m *TransactionManager) Search(query string) []core.Transaction {
	return stats.Search(m.MonthlyTransactions(), query)
}

// GroupedByDay returns the selected month's transactions matching query,
// grouped by day, newest first.
func (m *TransactionManager) GroupedByDay(query string) []core.DayGroup {
	return stats.GroupByDay(m.cal, m.Search(query))
}

// DaysOfRecord counts the days since the earliest transaction, inclusive.
func (m *TransactionManager) DaysOfRecord() int {
	txs, _ := m.snapshot()
	return stats.DaysOfRecord(m.cal, txs, m.now())
}
