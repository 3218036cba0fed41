package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"accounting/internal/amqp"
	"accounting/internal/cli"
	"accounting/internal/config"
	"accounting/internal/core"
	"accounting/internal/log"
)

const usageText = `Usage: accounting [flags] <command> [args]

Commands:
  summary                                   income, expense and balance for the month
  list [query]                              transactions grouped by day, filtered by note or category
  stats [income|expense]                    totals, daily average and category shares
  daily                                     expenses per day
  add <income|expense> <amount> <category> [note]
  delete <id>
  clear                                     remove every transaction
  categories [income|expense]
  watch                                     print change notifications from the broker

Flags:
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	// Load .env file for local development (ignore errors in production)
	cli.LoadEnvFile()

	fs := flag.NewFlagSet("accounting", flag.ContinueOnError)
	fs.SetOutput(stderr)
	month := fs.String("month", "", "reference month as YYYY-MM (default: current month)")
	date := fs.String("date", "", "date for add as YYYY-MM-DD (default: now)")
	account := fs.String("account", core.DefaultAccount, "account for add")
	fs.Usage = func() {
		fmt.Fprint(stderr, usageText)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		// No config means no LOG_LEVEL/LOG_FORMAT yet; report with defaults.
		bootstrap := log.New(log.Config{Component: log.ComponentCLI, Output: stderr})
		bootstrap.Error("Invalid configuration",
			log.NewFields().WithOperation(fs.Arg(0)).WithError(err, log.ErrorTypeConfiguration).ToSlice()...)
		return 1
	}
	logger := cli.SetupLogger(cfg, stderr)

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()
	ctx = log.NewContext(ctx, logger)

	command := fs.Arg(0)
	if command == "watch" {
		return watch(ctx, cfg, logger, stdout)
	}

	app, err := cli.BuildApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize", log.FieldError, err)
		return 1
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("Cleanup failed", log.FieldError, err)
		}
	}()

	if *month != "" {
		m, err := app.Calendar.ParseMonth(*month)
		if err != nil {
			fmt.Fprintf(stderr, "invalid -month: %v\n", err)
			return 2
		}
		app.Manager.SetSelectedMonth(m)
	}

	c := &commander{
		manager: app.Manager,
		cal:     app.Calendar,
		out:     stdout,
		now:     time.Now,
		date:    *date,
		account: *account,
	}
	if err := c.run(ctx, command, fs.Args()[1:]); err != nil {
		fmt.Fprintln(stderr, err)
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	return 0
}

func watch(ctx context.Context, cfg *config.Config, logger *log.Logger, out io.Writer) int {
	if !cfg.AMQPEnabled() {
		logger.Error("watch requires AMQP_URL")
		return 1
	}

	client, err := amqp.NewClient(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, cfg.AMQPConnectAttempts)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		return 1
	}
	defer client.Close()

	err = client.ConsumeChanges(ctx, func(_ context.Context, msg *amqp.ChangeMessage) error {
		_, err := fmt.Fprintf(out, "%s %-8s count=%d %s\n",
			msg.Timestamp.Format(time.RFC3339), msg.Op, msg.Count, msg.TransactionID)
		return err
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Stopped consuming change notifications", log.FieldError, err)
		return 1
	}
	return 0
}
