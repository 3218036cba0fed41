package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"accounting/internal/core"
)

var (
	ErrEncode = errors.New("encode transactions")
	ErrDecode = errors.New("decode transactions")
)

// transactionRecord is the persisted shape of a transaction.
type transactionRecord struct {
	ID       string         `json:"id"`
	Amount   json.Number    `json:"amount"`
	Type     string         `json:"type"`
	Category categoryRecord `json:"category"`
	Note     string         `json:"note"`
	Date     string         `json:"date"` // ISO-8601
	Account  string         `json:"account"`
}

type categoryRecord struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
	Type string `json:"type"`
}

// EncodeTransactions serializes the collection as a JSON array. Invalid
// transactions make the whole encode fail so nothing partial is written.
func EncodeTransactions(txs []core.Transaction) ([]byte, error) {
	records := make([]transactionRecord, 0, len(txs))
	for i, tx := range txs {
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("%w: transaction %d (%s): %v", ErrEncode, i, tx.ID, err)
		}
		records = append(records, transactionRecord{
			ID:     tx.ID.String(),
			Amount: json.Number(tx.Amount.String()),
			Type:   string(tx.Type),
			Category: categoryRecord{
				Name: tx.Category.Name,
				Icon: tx.Category.Icon,
				Type: string(tx.Category.Type),
			},
			Note:    tx.Note,
			Date:    tx.Date.UTC().Format(time.RFC3339Nano),
			Account: tx.Account,
		})
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return data, nil
}

// DecodeTransactions parses a blob produced by EncodeTransactions. Dates are
// returned in loc.
func DecodeTransactions(data []byte, loc *time.Location) ([]core.Transaction, error) {
	var records []transactionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	// EncodeTransactions always writes an array; a null blob was not written by it.
	if records == nil {
		return nil, fmt.Errorf("%w: blob is null, want array", ErrDecode)
	}
	if loc == nil {
		loc = time.Local
	}

	txs := make([]core.Transaction, 0, len(records))
	for i, r := range records {
		tx, err := r.toTransaction(loc)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrDecode, i, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func (r transactionRecord) toTransaction(loc *time.Location) (core.Transaction, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("invalid id %q: %w", r.ID, err)
	}
	amount, err := decimal.NewFromString(string(r.Amount))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("invalid amount %q: %w", r.Amount, err)
	}
	txType, err := core.ParseTransactionType(r.Type)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("type %q: %w", r.Type, err)
	}
	catType, err := core.ParseTransactionType(r.Category.Type)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("category type %q: %w", r.Category.Type, err)
	}
	date, err := time.Parse(time.RFC3339Nano, r.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("invalid date %q: %w", r.Date, err)
	}
	account := r.Account
	if strings.TrimSpace(account) == "" {
		account = core.DefaultAccount
	}

	tx := core.Transaction{
		ID:       id,
		Amount:   amount,
		Type:     txType,
		Category: core.Category{Name: r.Category.Name, Icon: r.Category.Icon, Type: catType},
		Note:     r.Note,
		Date:     date.In(loc),
		Account:  account,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}
