// Package stats computes monthly totals and breakdowns over transaction slices.
//
// Every function is pure: inputs are never modified and results are recomputed on
// each call. Month and day boundaries are evaluated through a calendar.Calendar.
package stats

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"accounting/internal/calendar"
	"accounting/internal/core"
)

// MonthlyTransactions returns the transactions in the same year and month as ref,
// preserving order.
func MonthlyTransactions(cal calendar.Calendar, ref time.Time, txs []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if cal.SameMonth(tx.Date, ref) {
			out = append(out, tx)
		}
	}
	return out
}

// OfType returns the transactions of the given type, preserving order.
func OfType(txs []core.Transaction, t core.TransactionType) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Type == t {
			out = append(out, tx)
		}
	}
	return out
}

// Total sums the amounts of transactions of the given type.
func Total(txs []core.Transaction, t core.TransactionType) decimal.Decimal {
	sum := decimal.Zero
	for _, tx := range txs {
		if tx.Type == t {
			sum = sum.Add(tx.Amount)
		}
	}
	return sum
}

// Balance is total income minus total expense.
func Balance(txs []core.Transaction) decimal.Decimal {
	return Total(txs, core.Income).Sub(Total(txs, core.Expense))
}

// CategoryBreakdown groups transactions of type t by category and sorts the sums
// by amount descending. Equal amounts are ordered by category name.
func CategoryBreakdown(txs []core.Transaction, t core.TransactionType) []core.CategoryAmount {
	sums := make(map[core.Category]decimal.Decimal)
	for _, tx := range txs {
		if tx.Type != t {
			continue
		}
		sums[tx.Category] = sums[tx.Category].Add(tx.Amount)
	}

	out := make([]core.CategoryAmount, 0, len(sums))
	for c, amount := range sums {
		out = append(out, core.CategoryAmount{Category: c, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		if out[i].Category.Name != out[j].Category.Name {
			return out[i].Category.Name < out[j].Category.Name
		}
		return out[i].Category.Icon < out[j].Category.Icon
	})
	return out
}

// DailyBreakdown sums expenses per calendar day, sorted by day ascending.
func DailyBreakdown(cal calendar.Calendar, txs []core.Transaction) []core.DayAmount {
	sums := make(map[int64]*core.DayAmount)
	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		day := cal.StartOfDay(tx.Date)
		key := day.Unix()
		if entry, ok := sums[key]; ok {
			entry.Amount = entry.Amount.Add(tx.Amount)
			continue
		}
		sums[key] = &core.DayAmount{Day: day, Amount: tx.Amount}
	}

	out := make([]core.DayAmount, 0, len(sums))
	for _, entry := range sums {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}

// Percentages returns each entry's fraction of the breakdown total. A zero total
// yields zero fractions rather than a division error.
func Percentages(entries []core.CategoryAmount) []core.CategoryShare {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	out := make([]core.CategoryShare, len(entries))
	for i, e := range entries {
		out[i] = core.CategoryShare{CategoryAmount: e, Percentage: Fraction(e.Amount, total)}
	}
	return out
}

// Fraction returns part/total as a float64, or 0 when total is zero.
func Fraction(part, total decimal.Decimal) float64 {
	if total.IsZero() {
		return 0
	}
	return part.DivRound(total, 16).InexactFloat64()
}

// AveragePerDay divides total by the number of days in ref's month.
func AveragePerDay(cal calendar.Calendar, ref time.Time, total decimal.Decimal) decimal.Decimal {
	days := cal.DaysInMonth(ref)
	if days == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(days)))
}

// Summarize builds the statistics summary of type t for ref's month.
func Summarize(cal calendar.Calendar, ref time.Time, txs []core.Transaction, t core.TransactionType) core.Statistics {
	monthly := MonthlyTransactions(cal, ref, txs)
	total := Total(monthly, t)
	year, month := cal.YearMonth(ref)
	return core.Statistics{
		Type:          t,
		Year:          year,
		Month:         month,
		Total:         total,
		AveragePerDay: AveragePerDay(cal, ref, total),
		Count:         len(OfType(monthly, t)),
		ByCategory:    Percentages(CategoryBreakdown(monthly, t)),
	}
}

// Search keeps transactions whose note or category name contains query,
// ignoring case. An empty query returns txs unchanged.
func Search(txs []core.Transaction, query string) []core.Transaction {
	query = strings.TrimSpace(query)
	if query == "" {
		return txs
	}
	q := strings.ToLower(query)
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if strings.Contains(strings.ToLower(tx.Note), q) || strings.Contains(strings.ToLower(tx.Category.Name), q) {
			out = append(out, tx)
		}
	}
	return out
}

// GroupByDay groups transactions by calendar day. Groups are ordered newest day
// first and transactions within a group newest first.
func GroupByDay(cal calendar.Calendar, txs []core.Transaction) []core.DayGroup {
	index := make(map[int64]int)
	var groups []core.DayGroup
	for _, tx := range txs {
		day := cal.StartOfDay(tx.Date)
		key := day.Unix()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, core.DayGroup{Day: day})
		}
		groups[i].Transactions = append(groups[i].Transactions, tx)
	}
	for _, g := range groups {
		sort.SliceStable(g.Transactions, func(i, j int) bool {
			return g.Transactions[i].Date.After(g.Transactions[j].Date)
		})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Day.After(groups[j].Day) })
	return groups
}

// DaysOfRecord counts the days from the earliest transaction's day through now's
// day, inclusive. It returns 0 for an empty collection.
func DaysOfRecord(cal calendar.Calendar, txs []core.Transaction, now time.Time) int {
	if len(txs) == 0 {
		return 0
	}
	first := txs[0].Date
	for _, tx := range txs[1:] {
		if tx.Date.Before(first) {
			first = tx.Date
		}
	}
	return cal.DaysBetween(first, now) + 1
}
