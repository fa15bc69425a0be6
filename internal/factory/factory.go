package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/gamedb-go/internal/content"
	"github.com/mcoot/gamedb-go/internal/dependencies/clock"
	"github.com/mcoot/gamedb-go/internal/services/account"
	"github.com/mcoot/gamedb-go/internal/services/sweep"
	"github.com/mcoot/gamedb-go/internal/storage"
	"github.com/mcoot/gamedb-go/internal/storeconn"
	"github.com/mcoot/gamedb-go/internal/worker"
)

// App contains all wired application components
type App struct {
	// Store connection shared by every service
	Conn *storeconn.Conn

	// External dependencies
	Clock  clock.Clock
	Logger *slog.Logger

	// Services
	Accounts *account.Service
	Sweeps   *sweep.Service
	Worker   *worker.SweepWorker

	sweepEnabled bool
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// Store describes the backend to connect to
	Store storeconn.Config
	// Content holds the game data the sweeps read (optional)
	// If zero value, defaults to content.Default()
	Content content.Content
	// BcryptCost is the work factor for new password hashes (optional)
	BcryptCost int
	// Sweep schedules the background sweeps
	Sweep worker.Config
	// Dialer replaces the backend dialer (optional)
	Dialer storeconn.DialFunc
}

// New creates a new application with all dependencies wired. The store is
// not contacted until Connect.
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	gameContent := cfg.Content
	if gameContent.TutorialQuest.Key == "" {
		gameContent = content.Default()
	}
	if err := gameContent.Validate(); err != nil {
		return nil, fmt.Errorf("invalid content: %w", err)
	}
	if cfg.Sweep.Enabled && cfg.Sweep.Interval <= 0 {
		return nil, errors.New("sweep interval must be positive when sweeps are enabled")
	}

	var opts []storeconn.Option
	if cfg.Dialer != nil {
		opts = append(opts, storeconn.WithDialer(cfg.Dialer))
	}
	conn := storeconn.New(cfg.Store, logger.With("component", "storeconn"), opts...)

	return newWithDependencies(conn, clock.New(), account.NewBcryptVerifier(cfg.BcryptCost), gameContent, cfg.Sweep, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(conn *storeconn.Conn, clk clock.Clock, passwords account.PasswordVerifier, gameContent content.Content, sweepCfg worker.Config, logger *slog.Logger) *App {
	accounts := account.New(conn, passwords, account.NewValidator(), clk, logger.With("component", "account"))
	sweeps := sweep.New(conn, gameContent, clk, logger.With("component", "sweep"))
	sweepWorker := worker.NewSweepWorker(sweeps, sweepCfg, logger.With("component", "worker"))

	app := &App{
		Conn:         conn,
		Clock:        clk,
		Logger:       logger,
		Accounts:     accounts,
		Sweeps:       sweeps,
		Worker:       sweepWorker,
		sweepEnabled: sweepCfg.Enabled,
	}

	// Scheduled sweeps only run against a connected store
	conn.OnReady(func(storage.Storage) {
		if !app.sweepEnabled {
			return
		}
		if err := sweepWorker.Start(context.Background()); err != nil {
			logger.Error("failed to start sweep worker", "error", err)
		}
	})
	return app
}

// Connect attempts the store connection and reports the outcome
func (a *App) Connect(ctx context.Context) storeconn.Outcome {
	return a.Conn.Connect(ctx)
}

// Close stops the sweep worker and releases the store
func (a *App) Close() error {
	if err := a.Worker.Stop(); err != nil {
		return err
	}
	return a.Conn.Close()
}
