// Package storeconn establishes the single connection to the remote store
// and reports whether it became ready or failed.
package storeconn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/gamedb-go/internal/storage"
	"github.com/mcoot/gamedb-go/internal/storage/memory"
	"github.com/mcoot/gamedb-go/internal/storage/postgres"
	redisstorage "github.com/mcoot/gamedb-go/internal/storage/redis"
)

// ErrStoreUnavailable is returned while the store is not connected,
// and permanently once the connection attempt has failed.
var ErrStoreUnavailable = errors.New("store unavailable")

// DialFunc opens a store at the assembled target
type DialFunc func(ctx context.Context, cfg Config, target string, logger *slog.Logger) (storage.Storage, error)

// Outcome is the terminal result of a connection attempt.
// Exactly one of Store or Err is set.
type Outcome struct {
	store storage.Storage
	err   error
}

// Ready reports whether the connection succeeded
func (o Outcome) Ready() bool {
	return o.store != nil
}

// Store returns the connected store, or nil if the attempt failed
func (o Outcome) Store() storage.Storage {
	return o.store
}

// Err returns the connection error, or nil if the attempt succeeded
func (o Outcome) Err() error {
	return o.err
}

// Conn owns the one connection attempt to the store
type Conn struct {
	cfg    Config
	dial   DialFunc
	logger *slog.Logger

	once sync.Once

	mu       sync.Mutex
	resolved bool
	outcome  Outcome
	onReady  []func(storage.Storage)
	onFail   []func(error)
}

// Option customises a Conn
type Option func(*Conn)

// WithDialer replaces the backend dialer
func WithDialer(dial DialFunc) Option {
	return func(c *Conn) {
		c.dial = dial
	}
}

// New creates a Conn. No connection is attempted until Connect.
func New(cfg Config, logger *slog.Logger, opts ...Option) *Conn {
	c := &Conn{
		cfg:    cfg,
		dial:   Dial,
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect attempts the connection once. Later and concurrent calls
// wait for and return the same outcome.
func (c *Conn) Connect(ctx context.Context) Outcome {
	c.once.Do(func() {
		c.resolve(c.attempt(ctx))
	})
	return c.Outcome()
}

// Outcome returns the current outcome; before Connect resolves it
// carries ErrStoreUnavailable.
func (c *Conn) Outcome() Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.resolved {
		return Outcome{err: ErrStoreUnavailable}
	}
	return c.outcome
}

// Store returns the connected store or ErrStoreUnavailable
func (c *Conn) Store() (storage.Storage, error) {
	o := c.Outcome()
	if !o.Ready() {
		return nil, ErrStoreUnavailable
	}
	return o.store, nil
}

// OnReady registers fn to run once with the store when the connection succeeds.
// If it already has, fn runs immediately.
func (c *Conn) OnReady(fn func(storage.Storage)) {
	c.mu.Lock()
	if !c.resolved {
		c.onReady = append(c.onReady, fn)
		c.mu.Unlock()
		return
	}
	outcome := c.outcome
	c.mu.Unlock()

	if outcome.Ready() {
		fn(outcome.store)
	}
}

// OnFail registers fn to run once with the error when the connection fails.
// If it already has, fn runs immediately.
func (c *Conn) OnFail(fn func(error)) {
	c.mu.Lock()
	if !c.resolved {
		c.onFail = append(c.onFail, fn)
		c.mu.Unlock()
		return
	}
	outcome := c.outcome
	c.mu.Unlock()

	if !outcome.Ready() {
		fn(outcome.err)
	}
}

// Close releases the store if one was connected
func (c *Conn) Close() error {
	store, err := c.Store()
	if err != nil {
		return nil
	}
	return store.Close()
}

func (c *Conn) attempt(ctx context.Context) Outcome {
	if timeout := c.cfg.ConnectTimeout + c.cfg.SelectionTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	target, err := c.cfg.Target(ctx)
	if err != nil {
		return Outcome{err: err}
	}

	store, err := c.dial(ctx, c.cfg, target, c.logger)
	if err != nil {
		return Outcome{err: fmt.Errorf("connecting to %s store: %w", c.cfg.Backend, err)}
	}
	if store == nil {
		return Outcome{err: fmt.Errorf("connecting to %s store: %w", c.cfg.Backend, ErrStoreUnavailable)}
	}
	return Outcome{store: store}
}

// resolve records the outcome and fires the matching callbacks.
// The fail path leaves the store unset.
func (c *Conn) resolve(outcome Outcome) {
	c.mu.Lock()
	c.resolved = true
	c.outcome = outcome
	ready, fail := c.onReady, c.onFail
	c.onReady, c.onFail = nil, nil
	c.mu.Unlock()

	if !outcome.Ready() {
		c.logger.Error("store connection failed",
			"backend", c.cfg.Backend,
			"host", c.cfg.Host,
			"error", outcome.err,
		)
		for _, fn := range fail {
			fn(outcome.err)
		}
		return
	}

	c.logger.Info("store connected", "backend", c.cfg.Backend, "host", c.cfg.Host)
	for _, fn := range ready {
		fn(outcome.store)
	}
}

// Dial opens the configured backend
func Dial(ctx context.Context, cfg Config, target string, logger *slog.Logger) (storage.Storage, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		return memory.New(), nil
	case BackendRedis:
		rcfg := redisstorage.DefaultConfig()
		rcfg.URL = target
		rcfg.DialTimeout = cfg.ConnectTimeout
		rcfg.PingTimeout = cfg.SelectionTimeout
		rcfg.WriteTimeout = cfg.WriteTimeout
		return redisstorage.New(ctx, rcfg)
	case BackendPostgres:
		pcfg := postgres.DefaultConfig()
		pcfg.DSN = target
		pcfg.ConnectTimeout = cfg.ConnectTimeout
		return postgres.New(ctx, pcfg, logger)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
