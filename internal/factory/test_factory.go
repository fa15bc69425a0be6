package factory

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/gamedb-go/internal/content"
	"github.com/mcoot/gamedb-go/internal/dependencies/mocks"
	"github.com/mcoot/gamedb-go/internal/services/account"
	"github.com/mcoot/gamedb-go/internal/storage"
	"github.com/mcoot/gamedb-go/internal/storage/memory"
	"github.com/mcoot/gamedb-go/internal/storeconn"
	"github.com/mcoot/gamedb-go/internal/testutil"
	"github.com/mcoot/gamedb-go/internal/worker"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Direct handles for test control
	MockClock *mocks.MockClock
	Store     *memory.Storage
}

// NewTestApp creates an App backed by a connected in-memory store
func NewTestApp() *TestApp {
	app := NewUnconnectedTestApp()
	app.Connect(context.Background())
	return app
}

// NewUnconnectedTestApp creates a TestApp whose store has not been connected yet
func NewUnconnectedTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	logger := testutil.NopLogger()

	conn := storeconn.New(storeconn.DefaultConfig(), logger, storeconn.WithDialer(
		func(context.Context, storeconn.Config, string, *slog.Logger) (storage.Storage, error) {
			return store, nil
		},
	))

	app := newWithDependencies(
		conn,
		mockClock,
		account.NewBcryptVerifier(bcrypt.MinCost),
		content.Default(),
		worker.Config{Interval: time.Hour},
		logger,
	)

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		Store:     store,
	}
}
