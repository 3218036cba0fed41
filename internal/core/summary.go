package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryAmount represents an amount aggregated by category.
type CategoryAmount struct {
	Category Category
	Amount   decimal.Decimal
}

// CategoryShare is a breakdown entry with its fraction of the breakdown total (0..1).
type CategoryShare struct {
	CategoryAmount
	Percentage float64
}

// DayAmount represents an amount aggregated by calendar day.
type DayAmount struct {
	Day    time.Time // start of day in the calendar's location
	Amount decimal.Decimal
}

// DayGroup holds the transactions recorded on one calendar day.
type DayGroup struct {
	Day          time.Time
	Transactions []Transaction
}

// Statistics is a compact summary of one transaction type for a month.
type Statistics struct {
	Type          TransactionType
	Year          int
	Month         time.Month
	Total         decimal.Decimal
	AveragePerDay decimal.Decimal
	Count         int
	ByCategory    []CategoryShare
}
