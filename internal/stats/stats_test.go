package stats

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"accounting/internal/calendar"
	"accounting/internal/core"
)

var (
	cal    = calendar.In(time.UTC)
	dining = core.ExpenseCategories[0]
	bus    = core.ExpenseCategories[1]
	shop   = core.ExpenseCategories[2]
	salary = core.IncomeCategories[0]
	bonus  = core.IncomeCategories[1]
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func tx(amount string, t core.TransactionType, c core.Category, date time.Time) core.Transaction {
	return core.NewTransaction(dec(amount), t, c, "", date, "")
}

func day(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func fixture() []core.Transaction {
	return []core.Transaction{
		tx("3000", core.Income, salary, day(2025, 3, 1, 9)),
		tx("500", core.Income, bonus, day(2025, 3, 20, 9)),
		tx("12.40", core.Expense, dining, day(2025, 3, 2, 12)),
		tx("7.60", core.Expense, dining, day(2025, 3, 2, 20)),
		tx("2.50", core.Expense, bus, day(2025, 3, 5, 8)),
		tx("80", core.Expense, shop, day(2025, 3, 5, 18)),
		tx("999", core.Expense, shop, day(2025, 4, 1, 0)),  // next month
		tx("1000", core.Income, salary, day(2025, 2, 28, 23)), // previous month
	}
}

func TestMonthlyTransactions(t *testing.T) {
	got := MonthlyTransactions(cal, day(2025, 3, 15, 0), fixture())
	if len(got) != 6 {
		t.Fatalf("expected 6 march transactions, got %d", len(got))
	}
	for _, tx := range got {
		if tx.Date.Month() != time.March {
			t.Fatalf("unexpected month %v", tx.Date)
		}
	}
	if !got[0].Amount.Equal(dec("3000")) || !got[5].Amount.Equal(dec("80")) {
		t.Fatalf("order not preserved")
	}
}

func TestTotalsAndBalance(t *testing.T) {
	monthly := MonthlyTransactions(cal, day(2025, 3, 15, 0), fixture())
	income := Total(monthly, core.Income)
	expense := Total(monthly, core.Expense)
	if !income.Equal(dec("3500")) {
		t.Fatalf("income = %s", income)
	}
	if !expense.Equal(dec("102.5")) {
		t.Fatalf("expense = %s", expense)
	}
	if !Balance(monthly).Equal(income.Sub(expense)) {
		t.Fatalf("balance = %s, want %s", Balance(monthly), income.Sub(expense))
	}
}

func TestCategoryBreakdownSortedAndSummed(t *testing.T) {
	monthly := MonthlyTransactions(cal, day(2025, 3, 15, 0), fixture())
	got := CategoryBreakdown(monthly, core.Expense)
	want := []core.CategoryAmount{
		{Category: shop, Amount: dec("80")},
		{Category: dining, Amount: dec("20")},
		{Category: bus, Amount: dec("2.5")},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %v", len(want), got)
	}
	sum := decimal.Zero
	for i := range want {
		if got[i].Category != want[i].Category || !got[i].Amount.Equal(want[i].Amount) {
			t.Fatalf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
		sum = sum.Add(got[i].Amount)
	}
	if !sum.Equal(Total(monthly, core.Expense)) {
		t.Fatalf("breakdown sum %s != total expense", sum)
	}

	income := CategoryBreakdown(monthly, core.Income)
	if len(income) != 2 || income[0].Category != salary {
		t.Fatalf("unexpected income breakdown %v", income)
	}
}

func TestCategoryBreakdownTiesAreDeterministic(t *testing.T) {
	txs := []core.Transaction{
		tx("10", core.Expense, shop, day(2025, 3, 1, 0)),
		tx("10", core.Expense, bus, day(2025, 3, 1, 0)),
		tx("10", core.Expense, dining, day(2025, 3, 1, 0)),
	}
	got := CategoryBreakdown(txs, core.Expense)
	names := []string{got[0].Category.Name, got[1].Category.Name, got[2].Category.Name}
	if names[0] != "Dining" || names[1] != "Shopping" || names[2] != "Transport" {
		t.Fatalf("unexpected tie order %v", names)
	}
}

func TestSameCategoryMergesToSingleEntry(t *testing.T) {
	txs := []core.Transaction{
		tx("100", core.Expense, dining, day(2025, 3, 3, 0)),
		tx("50", core.Expense, dining, day(2025, 3, 9, 0)),
	}
	shares := Percentages(CategoryBreakdown(txs, core.Expense))
	if len(shares) != 1 {
		t.Fatalf("expected one entry, got %v", shares)
	}
	if !shares[0].Amount.Equal(dec("150")) {
		t.Fatalf("amount = %s", shares[0].Amount)
	}
	if shares[0].Percentage != 1 {
		t.Fatalf("percentage = %v", shares[0].Percentage)
	}
}

func TestDailyBreakdown(t *testing.T) {
	monthly := MonthlyTransactions(cal, day(2025, 3, 15, 0), fixture())
	got := DailyBreakdown(cal, monthly)
	if len(got) != 2 {
		t.Fatalf("expected 2 days, got %v", got)
	}
	if !got[0].Day.Equal(day(2025, 3, 2, 0)) || !got[0].Amount.Equal(dec("20")) {
		t.Fatalf("first day = %+v", got[0])
	}
	if !got[1].Day.Equal(day(2025, 3, 5, 0)) || !got[1].Amount.Equal(dec("82.5")) {
		t.Fatalf("second day = %+v", got[1])
	}
	sum := decimal.Zero
	for _, d := range got {
		sum = sum.Add(d.Amount)
	}
	if !sum.Equal(Total(monthly, core.Expense)) {
		t.Fatalf("daily sum %s != total expense", sum)
	}
}

func TestDailyBreakdownUsesCalendarLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	// 15:00 and 16:00 UTC on the 1st are the 2nd in UTC+10; 13:00 UTC stays on the 1st.
	txs := []core.Transaction{
		tx("1", core.Expense, bus, day(2025, 3, 1, 13)),
		tx("2", core.Expense, bus, day(2025, 3, 1, 15)),
		tx("3", core.Expense, bus, day(2025, 3, 1, 16)),
	}
	got := DailyBreakdown(calendar.In(loc), txs)
	if len(got) != 2 {
		t.Fatalf("expected 2 local days, got %v", got)
	}
	if !got[1].Amount.Equal(dec("5")) || got[1].Day.Day() != 2 {
		t.Fatalf("unexpected second day %+v", got[1])
	}
}

func TestPercentages(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if got := Percentages(nil); len(got) != 0 {
			t.Fatalf("expected empty result, got %v", got)
		}
	})

	t.Run("sums to one", func(t *testing.T) {
		entries := []core.CategoryAmount{
			{Category: dining, Amount: dec("1")},
			{Category: bus, Amount: dec("1")},
			{Category: shop, Amount: dec("1")},
		}
		sum := 0.0
		for _, s := range Percentages(entries) {
			sum += s.Percentage
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Fatalf("percentages sum to %v", sum)
		}
	})

	t.Run("zero total", func(t *testing.T) {
		entries := []core.CategoryAmount{{Category: dining, Amount: decimal.Zero}}
		got := Percentages(entries)
		if len(got) != 1 || got[0].Percentage != 0 {
			t.Fatalf("expected zero share, got %v", got)
		}
	})
}

func TestAveragePerDay(t *testing.T) {
	cases := []struct {
		ref   time.Time
		total string
		want  string
	}{
		{day(2025, 2, 10, 0), "280", "10"},
		{day(2024, 2, 10, 0), "290", "10"},
		{day(2025, 4, 10, 0), "300", "10"},
		{day(2025, 3, 10, 0), "0", "0"},
	}
	for _, tc := range cases {
		got := AveragePerDay(cal, tc.ref, dec(tc.total))
		if !got.Equal(dec(tc.want)) {
			t.Errorf("%s: got %s, want %s", tc.ref.Format("2006-01"), got, tc.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(cal, day(2025, 3, 15, 0), fixture(), core.Expense)
	if s.Year != 2025 || s.Month != time.March {
		t.Fatalf("unexpected period %d-%d", s.Year, s.Month)
	}
	if !s.Total.Equal(dec("102.5")) || s.Count != 4 {
		t.Fatalf("unexpected total/count %s/%d", s.Total, s.Count)
	}
	if !s.AveragePerDay.Equal(dec("102.5").Div(dec("31"))) {
		t.Fatalf("unexpected average %s", s.AveragePerDay)
	}
	if len(s.ByCategory) != 3 {
		t.Fatalf("unexpected breakdown %v", s.ByCategory)
	}
}

func TestSearch(t *testing.T) {
	txs := []core.Transaction{
		core.NewTransaction(dec("1"), core.Expense, dining, "Lunch with Ann", day(2025, 3, 1, 0), ""),
		core.NewTransaction(dec("1"), core.Expense, bus, "monthly pass", day(2025, 3, 1, 0), ""),
		core.NewTransaction(dec("1"), core.Income, salary, "", day(2025, 3, 1, 0), ""),
	}
	if got := Search(txs, "  "); len(got) != 3 {
		t.Fatalf("empty query should return everything, got %d", len(got))
	}
	if got := Search(txs, "LUNCH"); len(got) != 1 || got[0].Category != dining {
		t.Fatalf("note search failed: %v", got)
	}
	if got := Search(txs, "sal"); len(got) != 1 || got[0].Category != salary {
		t.Fatalf("category search failed: %v", got)
	}
	if got := Search(txs, "nothing"); len(got) != 0 {
		t.Fatalf("expected no match, got %v", got)
	}
}

func TestGroupByDay(t *testing.T) {
	txs := []core.Transaction{
		tx("1", core.Expense, dining, day(2025, 3, 2, 8)),
		tx("2", core.Expense, dining, day(2025, 3, 5, 8)),
		tx("3", core.Expense, dining, day(2025, 3, 2, 20)),
	}
	groups := GroupByDay(cal, txs)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Day.Day() != 5 || groups[1].Day.Day() != 2 {
		t.Fatalf("groups not newest first: %v, %v", groups[0].Day, groups[1].Day)
	}
	second := groups[1].Transactions
	if len(second) != 2 || !second[0].Amount.Equal(dec("3")) {
		t.Fatalf("transactions not newest first: %v", second)
	}
}

func TestDaysOfRecord(t *testing.T) {
	now := day(2025, 3, 10, 12)
	if got := DaysOfRecord(cal, nil, now); got != 0 {
		t.Fatalf("expected 0 for empty, got %d", got)
	}
	txs := []core.Transaction{
		tx("1", core.Expense, dining, day(2025, 3, 8, 23)),
		tx("1", core.Expense, dining, day(2025, 3, 1, 1)),
	}
	if got := DaysOfRecord(cal, txs, now); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
}

func TestInputsAreNotModified(t *testing.T) {
	txs := fixture()
	before := make([]core.Transaction, len(txs))
	copy(before, txs)
	_ = CategoryBreakdown(txs, core.Expense)
	_ = DailyBreakdown(cal, txs)
	_ = GroupByDay(cal, txs)
	for i := range txs {
		if txs[i].ID != before[i].ID {
			t.Fatalf("input reordered at %d", i)
		}
	}
}
