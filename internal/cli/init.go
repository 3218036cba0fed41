// Package cli provides common process initialization for the accounting binary:
// environment loading, logging, configuration and wiring of the manager.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"accounting/internal/backend"
	"accounting/internal/calendar"
	"accounting/internal/config"
	"accounting/internal/log"
	"accounting/internal/services"
	"accounting/internal/storage"
)

// SetupLogger builds the application logger from cfg and installs it as the
// default slog logger. Invalid levels fall back to info; Validate reports them.
func SetupLogger(cfg *config.Config, out io.Writer) *log.Logger {
	level, _ := log.ParseLevel(cfg.LogLevel)
	logger := log.New(log.Config{
		Level:     level,
		Component: log.ComponentApp,
		Format:    cfg.LogFormat,
		Output:    out,
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// App bundles the wired manager with the resources that must be released on exit.
type App struct {
	Manager  *services.TransactionManager
	Calendar calendar.Calendar
	Logger   *log.Logger
	backend  *backend.BackendResult
}

// Close releases the backend and the broker connection, if any.
func (a *App) Close() error {
	return a.backend.Close()
}

// BuildApp creates the configured backend, loads the transaction manager from it
// and subscribes the change notifier when one is configured.
func BuildApp(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	cal, err := calendar.New(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("configure calendar: %w", err)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}

	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", backendCfg.Type, err)
	}

	store := storage.NewTransactionStore(result.KV, cal, nil, logger)
	manager := services.NewTransactionManager(ctx, store, services.ManagerConfig{
		Calendar: cal,
		Logger:   logger.WithComponent(log.ComponentManager),
	})
	if result.Notifier != nil {
		manager.Subscribe(result.Notifier)
	}

	return &App{
		Manager:  manager,
		Calendar: cal,
		Logger:   logger,
		backend:  result,
	}, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context, logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
