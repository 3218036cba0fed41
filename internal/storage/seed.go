package storage

import (
	"time"

	"github.com/shopspring/decimal"

	"accounting/internal/calendar"
	"accounting/internal/core"
)

// SeedTransactions returns the first-run demonstration data: two incomes and three
// expenses dated relative to now.
func SeedTransactions(cal calendar.Calendar, now time.Time) []core.Transaction {
	seed := func(amount string, t core.TransactionType, c core.Category, note string, days int) core.Transaction {
		return core.NewTransaction(decimal.RequireFromString(amount), t, c, note, cal.AddDays(now, days), core.DefaultAccount)
	}
	return []core.Transaction{
		seed("8500", core.Income, core.IncomeCategories[0], "Monthly salary", -25),
		seed("45.5", core.Expense, core.ExpenseCategories[0], "Lunch", -2),
		seed("1200", core.Expense, core.ExpenseCategories[2], "Clothes", -5),
		seed("30", core.Expense, core.ExpenseCategories[1], "Transit card top-up", -1),
		seed("2000", core.Income, core.IncomeCategories[1], "Project bonus", -10),
	}
}
