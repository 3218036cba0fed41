package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"accounting/internal/config"
	"accounting/internal/core"
)

func testConfig(t *testing.T, backendType string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		DataBackend:  backendType,
		SQLiteDBPath: filepath.Join(dir, "accounting.db"),
		DataDir:      dir,
		Timezone:     "UTC",
		LogLevel:     "debug",
		LogFormat:    "json",
	}
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig(t, "memory")

	logger := SetupLogger(cfg, &buf)
	logger.Debug("hello")

	out := buf.String()
	if !strings.Contains(out, `"msg":"hello"`) || !strings.Contains(out, `"component":"app"`) {
		t.Fatalf("log output = %s", out)
	}
}

func TestLoadAndValidateConfig(t *testing.T) {
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("AMQP_URL", "")

	cfg, err := LoadAndValidateConfig()
	if err != nil {
		t.Fatalf("LoadAndValidateConfig() error = %v", err)
	}
	if cfg.DataBackend != "memory" {
		t.Errorf("DataBackend = %s", cfg.DataBackend)
	}

	t.Setenv("DATA_BACKEND", "paper")
	if _, err := LoadAndValidateConfig(); err == nil {
		t.Fatal("LoadAndValidateConfig() should fail for an unknown backend")
	}
}

func TestBuildAppPersistsAcrossRestarts(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, "sqlite")
	logger := SetupLogger(cfg, &bytes.Buffer{})

	app, err := BuildApp(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("BuildApp() error = %v", err)
	}
	seeded := app.Manager.Count()
	if seeded == 0 {
		t.Fatal("fresh database should start with sample data")
	}

	cat, _ := core.LookupCategory(core.Expense, "Dining")
	tx := core.NewTransaction(decimal.RequireFromString("12.50"), core.Expense, cat, "Coffee", time.Now(), "")
	if err := app.Manager.Add(ctx, tx); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := app.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := BuildApp(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("BuildApp() reopen error = %v", err)
	}
	defer reopened.Close()

	if got := reopened.Manager.Count(); got != seeded+1 {
		t.Fatalf("Count() after reopen = %d, want %d", got, seeded+1)
	}
	if _, ok := reopened.Manager.Find(tx.ID); !ok {
		t.Fatal("added transaction not found after reopen")
	}
}

func TestBuildAppInvalidTimezone(t *testing.T) {
	cfg := testConfig(t, "memory")
	cfg.Timezone = "Nowhere/Special"

	if _, err := BuildApp(context.Background(), cfg, SetupLogger(cfg, &bytes.Buffer{})); err == nil {
		t.Fatal("BuildApp() should fail for an unknown time zone")
	}
}
