package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// DefaultAccount is used when a transaction is created without an account label.
const DefaultAccount = "Cash"

type (
	TransactionType string

	// Category is compared by value, so it can be used directly as a map key.
	Category struct {
		Name string
		Icon string
		Type TransactionType
	}

	Transaction struct {
		ID       uuid.UUID
		Amount   decimal.Decimal
		Type     TransactionType
		Category Category
		Note     string
		Date     time.Time
		Account  string
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrEmptyCategory = errors.New("empty category")
	ErrMissingID     = errors.New("missing transaction id")
)

var (
	ExpenseCategories = []Category{
		{Name: "Dining", Icon: "🍜", Type: Expense},
		{Name: "Transport", Icon: "🚗", Type: Expense},
		{Name: "Shopping", Icon: "🛍️", Type: Expense},
		{Name: "Entertainment", Icon: "🎮", Type: Expense},
		{Name: "Medical", Icon: "🏥", Type: Expense},
		{Name: "Education", Icon: "📚", Type: Expense},
		{Name: "Housing", Icon: "🏠", Type: Expense},
		{Name: "Telecom", Icon: "📱", Type: Expense},
		{Name: "Other", Icon: "💰", Type: Expense},
	}

	IncomeCategories = []Category{
		{Name: "Salary", Icon: "💼", Type: Income},
		{Name: "Bonus", Icon: "🎁", Type: Income},
		{Name: "Investment", Icon: "📈", Type: Income},
		{Name: "Part-time", Icon: "💻", Type: Income},
		{Name: "Gift", Icon: "🧧", Type: Income},
		{Name: "Other", Icon: "💰", Type: Income},
	}
)

// ParseTransactionType converts a wire token ("income", "expense") to a TransactionType.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", ErrInvalidType
	}
	return t, nil
}

func (t TransactionType) IsValid() bool {
	switch t {
	case Income, Expense:
		return true
	default:
		return false
	}
}

// Label returns the display label for the type.
func (t TransactionType) Label() string {
	switch t {
	case Income:
		return "Income"
	case Expense:
		return "Expense"
	default:
		return string(t)
	}
}

func (t TransactionType) String() string {
	return string(t)
}

// CategoriesFor returns the fixed category list for a transaction type.
func CategoriesFor(t TransactionType) []Category {
	switch t {
	case Income:
		return append([]Category(nil), IncomeCategories...)
	case Expense:
		return append([]Category(nil), ExpenseCategories...)
	default:
		return nil
	}
}

// LookupCategory finds a category of the given type by case-insensitive name.
func LookupCategory(t TransactionType, name string) (Category, bool) {
	name = strings.TrimSpace(name)
	for _, c := range CategoriesFor(t) {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Category{}, false
}

// NewTransaction creates a transaction with a fresh id. An empty account falls back
// to DefaultAccount.
func NewTransaction(amount decimal.Decimal, t TransactionType, c Category, note string, date time.Time, account string) Transaction {
	if strings.TrimSpace(account) == "" {
		account = DefaultAccount
	}
	return Transaction{
		ID:       uuid.New(),
		Amount:   amount,
		Type:     t,
		Category: c,
		Note:     note,
		Date:     date,
		Account:  account,
	}
}

// SignedAmount is positive for income and negative for expenses.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.Type == Income {
		return t.Amount
	}
	return t.Amount.Neg()
}

// CategoryMatchesType reports whether the category belongs to the transaction's type.
// Mismatches are tolerated by Validate.
func (t Transaction) CategoryMatchesType() bool {
	return t.Category.Type == t.Type
}

func (t Transaction) Validate() error {
	if t.ID == uuid.Nil {
		return ErrMissingID
	}
	if t.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(t.Category.Name) == "" {
		return ErrEmptyCategory
	}
	return nil
}
