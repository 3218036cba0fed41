package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"accounting/internal/calendar"
	"accounting/internal/core"
	"accounting/internal/services"
)

var errUsage = errors.New("invalid usage")

func usageErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

// commander executes one command against the manager and prints to out.
type commander struct {
	manager *services.TransactionManager
	cal     calendar.Calendar
	out     io.Writer
	now     func() time.Time

	// add options
	date    string
	account string
}

func (c *commander) run(ctx context.Context, name string, args []string) error {
	switch name {
	case "summary":
		return c.summary()
	case "list":
		return c.list(strings.Join(args, " "))
	case "stats":
		return c.stats(args)
	case "daily":
		return c.daily()
	case "add":
		return c.add(ctx, args)
	case "delete":
		return c.delete(ctx, args)
	case "clear":
		return c.clear(ctx)
	case "categories":
		return c.categories(args)
	default:
		return usageErr("unknown command %q", name)
	}
}

func (c *commander) summary() error {
	m := c.manager
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Month\t%s\n", c.cal.FormatMonth(m.SelectedMonth()))
	fmt.Fprintf(tw, "Income\t%s\n", core.FormatAmount(m.TotalIncome()))
	fmt.Fprintf(tw, "Expense\t%s\n", core.FormatAmount(m.TotalExpense()))
	fmt.Fprintf(tw, "Balance\t%s\n", core.FormatAmount(m.Balance()))
	fmt.Fprintf(tw, "Transactions\t%d of %d\n", len(m.MonthlyTransactions()), m.Count())
	fmt.Fprintf(tw, "Days of record\t%d\n", m.DaysOfRecord())
	return tw.Flush()
}

func (c *commander) list(query string) error {
	groups := c.manager.GroupedByDay(query)
	if len(groups) == 0 {
		fmt.Fprintln(c.out, "No transactions")
		return nil
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	for _, g := range groups {
		fmt.Fprintf(tw, "%s\n", c.cal.FormatDay(g.Day))
		for _, tx := range g.Transactions {
			fmt.Fprintf(tw, "  %s\t%s %s\t%s\t%s\t%s\n",
				tx.ID, tx.Category.Icon, tx.Category.Name, signed(tx), tx.Account, tx.Note)
		}
	}
	return tw.Flush()
}

func (c *commander) stats(args []string) error {
	t := core.Expense
	if len(args) > 0 {
		parsed, err := core.ParseTransactionType(args[0])
		if err != nil {
			return usageErr("stats: %v", err)
		}
		t = parsed
	}

	s := c.manager.Statistics(t)
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%d-%02d\n", s.Type.Label(), s.Year, int(s.Month))
	fmt.Fprintf(tw, "Total\t%s\n", core.FormatAmount(s.Total))
	fmt.Fprintf(tw, "Average per day\t%s\n", core.FormatAmount(s.AveragePerDay))
	fmt.Fprintf(tw, "Count\t%d\n", s.Count)
	for _, share := range s.ByCategory {
		fmt.Fprintf(tw, "  %s %s\t%s\t%5.1f%%\n",
			share.Category.Icon, share.Category.Name, core.FormatAmount(share.Amount), share.Percentage*100)
	}
	return tw.Flush()
}

func (c *commander) daily() error {
	days := c.manager.DailyExpenses()
	if len(days) == 0 {
		fmt.Fprintln(c.out, "No expenses")
		return nil
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', tabwriter.AlignRight)
	for _, d := range days {
		fmt.Fprintf(tw, "%s\t%s\t\n", c.cal.FormatDay(d.Day), core.FormatAmount(d.Amount))
	}
	return tw.Flush()
}

func (c *commander) add(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return usageErr("add <income|expense> <amount> <category> [note]")
	}

	t, err := core.ParseTransactionType(args[0])
	if err != nil {
		return usageErr("add: %v", err)
	}
	amount, err := core.ParseAmount(args[1])
	if err != nil {
		return usageErr("add: %v", err)
	}
	category, ok := core.LookupCategory(t, args[2])
	if !ok {
		return usageErr("add: unknown %s category %q", t, args[2])
	}

	date := c.now()
	if c.date != "" {
		if date, err = c.cal.ParseDay(c.date); err != nil {
			return usageErr("add: %v", err)
		}
	}

	tx := core.NewTransaction(amount, t, category, strings.Join(args[3:], " "), date, c.account)
	if err := c.manager.Add(ctx, tx); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Added %s %s %s (%s)\n", tx.Category.Icon, tx.Category.Name, signed(tx), tx.ID)
	return nil
}

func (c *commander) delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageErr("delete <id>")
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return usageErr("delete: %v", err)
	}

	tx, ok := c.manager.Find(id)
	if !ok {
		return fmt.Errorf("transaction %s not found", id)
	}
	if err := c.manager.Delete(ctx, tx); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Deleted %s %s %s\n", tx.Category.Icon, tx.Category.Name, signed(tx))
	return nil
}

func (c *commander) clear(ctx context.Context) error {
	n := c.manager.Count()
	if err := c.manager.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Cleared %d transactions\n", n)
	return nil
}

func (c *commander) categories(args []string) error {
	types := []core.TransactionType{core.Expense, core.Income}
	if len(args) > 0 {
		t, err := core.ParseTransactionType(args[0])
		if err != nil {
			return usageErr("categories: %v", err)
		}
		types = []core.TransactionType{t}
	}

	for _, t := range types {
		fmt.Fprintf(c.out, "%s:\n", t.Label())
		for _, cat := range core.CategoriesFor(t) {
			fmt.Fprintf(c.out, "  %s %s\n", cat.Icon, cat.Name)
		}
	}
	return nil
}

// signed renders the amount with its direction, e.g. +8500.00 or -45.50.
func signed(tx core.Transaction) string {
	s := core.FormatAmount(tx.SignedAmount())
	if tx.SignedAmount().GreaterThan(decimal.Zero) {
		return "+" + s
	}
	return s
}
